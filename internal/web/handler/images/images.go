// Package images lists and deletes gallery images.
package images

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/mirror-ball/mirrorball/internal/auth"
	"github.com/mirror-ball/mirrorball/internal/db/models"
	"github.com/mirror-ball/mirrorball/internal/gallery"
	"github.com/mirror-ball/mirrorball/internal/web/handler"
)

// Path is the collection route.
const Path = "/images"

// ListResponse is one page of images. Cursor is always null.
type ListResponse struct {
	Items  []models.Image `json:"items"`
	Cursor *string        `json:"cursor"`
}

// Service is the images handler service.
type Service struct {
	gallery *gallery.Service
}

// New creates the images handler.
func New(g *gallery.Service) *Service {
	return &Service{gallery: g}
}

// Init registers the routes. Listing needs a valid token, deleting the admin group and an allowed email.
func (s *Service) Init(router fiber.Router, authenticator *auth.Authenticator) {
	if router == nil || authenticator == nil || s.gallery == nil {
		log.Fatal().Msg(handler.ErrNilFatalLogMsg)
		return
	}

	router.Get(Path, auth.Authenticate(authenticator), s.List)
	router.Delete(Path+"/:imageId",
		auth.Authenticate(authenticator),
		auth.RequireAnyGroup(auth.ErrAdminOnly, auth.GroupAdmin),
		auth.RequireEmailAllowed(authenticator),
		s.Delete,
	)
}

// List answers GET /images?owner=&devName=&limit=.
// A missing or unparsable limit selects the default.
func (s *Service) List(c *fiber.Ctx) error {
	items, err := s.gallery.List(c.UserContext(), gallery.ListQuery{
		Owner:   c.Query("owner"),
		DevName: c.Query("devName"),
		Limit:   c.QueryInt("limit", gallery.DefaultListLimit),
	})
	if err != nil {
		return err //nolint:wrapcheck
	}

	return c.JSON(ListResponse{Items: items})
}

// Delete removes one image.
func (s *Service) Delete(c *fiber.Ctx) error {
	if err := s.gallery.Delete(c.UserContext(), c.Params("imageId")); err != nil {
		return err //nolint:wrapcheck
	}

	return c.JSON(handler.OK{OK: true})
}
