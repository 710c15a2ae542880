package web

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/mirror-ball/mirrorball/internal/apierror"
	"github.com/mirror-ball/mirrorball/internal/appconfig"
	"github.com/mirror-ball/mirrorball/internal/auth"
	"github.com/mirror-ball/mirrorball/internal/gallery"
)

const (
	msgNotFound       = "Not Found"
	msgInternalError  = "Internal Server Error"
	msgTooManyRequest = "Too Many Requests"
)

// sentinelStatus maps domain errors to the status the client receives. The error text is the message.
var sentinelStatus = []struct { //nolint:gochecknoglobals
	err    error
	status int
}{
	{auth.ErrMissingBearer, fiber.StatusUnauthorized},
	{auth.ErrInvalidToken, fiber.StatusUnauthorized},
	{auth.ErrNotConfigured, fiber.StatusInternalServerError},
	{auth.ErrRestricted, fiber.StatusForbidden},
	{auth.ErrForbidden, fiber.StatusForbidden},
	{auth.ErrAdminOnly, fiber.StatusForbidden},
	{auth.ErrUploadsRestricted, fiber.StatusForbidden},
	{gallery.ErrBucketNotConfigured, fiber.StatusInternalServerError},
	{gallery.ErrTableNotConfigured, fiber.StatusInternalServerError},
	{gallery.ErrObjectMissing, fiber.StatusConflict},
	{gallery.ErrCorruptData, fiber.StatusInternalServerError},
	{appconfig.ErrNotConfigured, fiber.StatusInternalServerError},
}

// detailer is implemented by errors carrying client visible details.
type detailer interface {
	Details() any
}

// Resolve returns the status and body the client receives for err.
func Resolve(err error) (int, apierror.Body) {
	var apiErr *apierror.Error
	if errors.As(err, &apiErr) {
		return apiErr.Status, apiErr.Body()
	}

	var dupErr *gallery.DuplicateTitleError
	if errors.As(err, &dupErr) {
		return fiber.StatusBadRequest, apierror.Body{Error: dupErr.Error()}
	}

	if errors.Is(err, gallery.ErrImageNotFound) {
		return fiber.StatusNotFound, apierror.Body{Error: msgNotFound}
	}

	for _, s := range sentinelStatus {
		if !errors.Is(err, s.err) {
			continue
		}

		body := apierror.Body{Error: s.err.Error()}

		var d detailer
		if errors.As(err, &d) {
			body.Details = d.Details()
		}

		return s.status, body
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		switch fiberErr.Code {
		case fiber.StatusNotFound, fiber.StatusMethodNotAllowed:
			// a known path with another method is an unknown route
			return fiber.StatusNotFound, apierror.Body{Error: msgNotFound}
		case fiber.StatusTooManyRequests:
			return fiberErr.Code, apierror.Body{Error: msgTooManyRequest}
		default:
			return fiberErr.Code, apierror.Body{Error: fiberErr.Message}
		}
	}

	return fiber.StatusInternalServerError, apierror.Body{Error: msgInternalError}
}

// ErrorHandler writes every error returned by a handler as json.
// Server side failures are logged with the request id.
func ErrorHandler(c *fiber.Ctx, err error) error {
	status, body := Resolve(err)

	if status >= fiber.StatusInternalServerError {
		log.Error().Err(err).
			Str("requestId", c.GetRespHeader(fiber.HeaderXRequestID)).
			Str("path", c.Path()).
			Msg("request failed")
	}

	return c.Status(status).JSON(body)
}
