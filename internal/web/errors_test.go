package web

import (
	"errors"
	"fmt"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"

	"github.com/mirror-ball/mirrorball/internal/apierror"
	"github.com/mirror-ball/mirrorball/internal/appconfig"
	"github.com/mirror-ball/mirrorball/internal/auth"
	"github.com/mirror-ball/mirrorball/internal/gallery"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantMessage string
		wantDetails any
	}{
		{"api error", apierror.New(400, "Invalid body", []string{"x"}), 400, "Invalid body", []string{"x"}},
		{"missing bearer", auth.ErrMissingBearer, 401, "Missing Bearer token", nil},
		{"invalid token", &auth.TokenError{Err: errors.New("token is expired")}, 401, "Invalid token", "token is expired"},
		{"auth not configured", auth.ErrNotConfigured, 500, "Auth not configured", nil},
		{"restricted", auth.ErrRestricted, 403, "Access restricted. Your email does not fit criteria.", nil},
		{"forbidden", auth.ErrForbidden, 403, "Forbidden", nil},
		{"admin only", auth.ErrAdminOnly, 403, "Admin only", nil},
		{"uploads restricted", auth.ErrUploadsRestricted, 403, "Uploads restricted to company domain", nil},
		{
			"duplicate title",
			fmt.Errorf("presign: %w", &gallery.DuplicateTitleError{Title: "sunset beach"}),
			400,
			`An image with the title "sunset beach" already exists. Please choose a unique title.`,
			nil,
		},
		{"image not found", fmt.Errorf("confirm: %w", gallery.ErrImageNotFound), 404, "Not Found", nil},
		{"object missing", gallery.ErrObjectMissing, 409, "Upload not found in storage", nil},
		{"corrupt row", &gallery.CorruptRowError{ImageID: "1", Field: "publicUrl", Reason: "bad"}, 500, "Corrupt data", nil},
		{"bucket", gallery.ErrBucketNotConfigured, 500, "BUCKET_NAME not configured", nil},
		{"table", gallery.ErrTableNotConfigured, 500, "TABLE_NAME not configured", nil},
		{"config table", appconfig.ErrNotConfigured, 500, "CONFIG_TABLE_NAME not configured", nil},
		{"route not found", fiber.ErrNotFound, 404, "Not Found", nil},
		{"rate limited", fiber.ErrTooManyRequests, 429, "Too Many Requests", nil},
		{"method not allowed is an unknown route", fiber.ErrMethodNotAllowed, 404, "Not Found", nil},
		{"downstream failure", errors.New("dynamodb: throttled"), 500, "Internal Server Error", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := Resolve(tt.err)

			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantMessage, body.Error)
			assert.Equal(t, tt.wantDetails, body.Details)
		})
	}
}
