// Package uploads implements the two step browser upload: presign, then confirm.
package uploads

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/mirror-ball/mirrorball/internal/auth"
	"github.com/mirror-ball/mirrorball/internal/gallery"
	"github.com/mirror-ball/mirrorball/internal/web/handler"
)

const (
	// PresignPath issues an upload url.
	PresignPath = "/presign-upload"

	// ConfirmPath marks an upload complete.
	ConfirmPath = "/confirm-upload"
)

// PresignBody is the presign request.
type PresignBody struct {
	ContentType string  `json:"contentType"          validate:"required"`
	FileName    string  `json:"fileName"             validate:"required"`
	Title       string  `json:"title"                validate:"required"`
	Dimensions  *string `json:"dimensions,omitempty"`
	FileSize    *int64  `json:"fileSize,omitempty"   validate:"omitempty,gte=0"`
}

// ConfirmBody is the confirm request.
type ConfirmBody struct {
	ImageID string `json:"imageId" validate:"required"`
}

// Service is the uploads handler service.
type Service struct {
	gallery   *gallery.Service
	validator *validator.Validate
}

// New creates the uploads handler.
func New(g *gallery.Service) *Service {
	return &Service{gallery: g, validator: handler.NewValidator()}
}

// Init registers the upload routes. Callers need the dev or admin group and an allowed email.
// limit, when set, runs before authentication on the presign route.
func (s *Service) Init(router fiber.Router, authenticator *auth.Authenticator, limit fiber.Handler) {
	if router == nil || authenticator == nil || s.gallery == nil {
		log.Fatal().Msg(handler.ErrNilFatalLogMsg)
		return
	}

	guards := []fiber.Handler{
		auth.Authenticate(authenticator),
		auth.RequireAnyGroup(auth.ErrForbidden, auth.GroupDev, auth.GroupAdmin),
		auth.RequireEmailAllowed(authenticator),
	}

	presign := guards
	if limit != nil {
		presign = append([]fiber.Handler{limit}, guards...)
	}

	router.Post(PresignPath, append(presign, s.Presign)...)
	router.Post(ConfirmPath, append(guards, s.Confirm)...)
}

// Presign validates the body and returns where to upload.
func (s *Service) Presign(c *fiber.Ctx) error {
	var body PresignBody
	if err := handler.BindAndValidate(c, s.validator, &body, handler.InvalidBody); err != nil {
		return err
	}

	principal := auth.PrincipalFrom(c)

	res, err := s.gallery.Presign(c.UserContext(), gallery.PresignRequest{
		ContentType: body.ContentType,
		FileName:    body.FileName,
		Title:       body.Title,
		Dimensions:  body.Dimensions,
		FileSize:    body.FileSize,
		Owner:       principal.Claims.Owner(),
	})
	if err != nil {
		return err //nolint:wrapcheck
	}

	return c.JSON(res)
}

// Confirm marks the upload complete.
func (s *Service) Confirm(c *fiber.Ctx) error {
	var body ConfirmBody
	if err := handler.BindAndValidate(c, s.validator, &body, handler.InvalidBody); err != nil {
		return err
	}

	if _, err := s.gallery.Confirm(c.UserContext(), body.ImageID); err != nil {
		return err //nolint:wrapcheck
	}

	return c.JSON(handler.OK{OK: true})
}
