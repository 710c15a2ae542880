package auth_test

import (
	"context"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mirror-ball/mirrorball/internal/auth"
	"github.com/mirror-ball/mirrorball/internal/auth/authtest"
)

func newProtectedApp(a *auth.Authenticator) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(fiber.StatusTeapot).SendString(err.Error())
		},
	})

	ok := func(c *fiber.Ctx) error {
		return c.SendString("owner=" + auth.PrincipalFrom(c).Claims.Owner())
	}

	app.Post("/upload",
		auth.Authenticate(a),
		auth.RequireAnyGroup(auth.ErrForbidden, auth.GroupDev, auth.GroupAdmin),
		auth.RequireEmailAllowed(a),
		ok,
	)
	app.Delete("/admin", auth.Authenticate(a), auth.RequireAnyGroup(auth.ErrAdminOnly, auth.GroupAdmin), ok)
	app.Get("/open", auth.RequireAnyGroup(auth.ErrAdminOnly, auth.GroupAdmin), ok)

	return app
}

func TestMiddleware(t *testing.T) {
	issuer := authtest.NewIssuer(t)

	devToken := issuer.Bearer(t, map[string]any{
		"sub": "u1", "cognito:username": "dev-user", "email": "dev@example.com", "cognito:groups": []string{"dev"},
	})
	adminToken := issuer.Bearer(t, map[string]any{
		"sub": "u2", "cognito:username": "admin-user", "email": "admin@example.com", "cognito:groups": []string{"admin"},
	})
	viewerToken := issuer.Bearer(t, map[string]any{
		"sub": "u3", "cognito:username": "viewer", "email": "viewer@example.com", "cognito:groups": []string{"viewer"},
	})

	tests := []struct {
		name        string
		method      string
		path        string
		header      string
		restriction string
		wantStatus  int
		wantBody    string
	}{
		{"upload without token", fiber.MethodPost, "/upload", "", "", fiber.StatusTeapot, "Missing Bearer token"},
		{"upload as dev", fiber.MethodPost, "/upload", devToken, "", fiber.StatusOK, "owner=dev-user"},
		{"upload as admin", fiber.MethodPost, "/upload", adminToken, "", fiber.StatusOK, "owner=admin-user"},
		{"upload as viewer", fiber.MethodPost, "/upload", viewerToken, "", fiber.StatusTeapot, "Forbidden"},
		{"admin route as dev", fiber.MethodDelete, "/admin", devToken, "", fiber.StatusTeapot, "Admin only"},
		{"admin route as admin", fiber.MethodDelete, "/admin", adminToken, "", fiber.StatusOK, "owner=admin-user"},
		{"restricted email", fiber.MethodPost, "/upload", devToken, "corp.example.com", fiber.StatusTeapot, "Access restricted. Your email does not fit criteria."},
		{"group check without authenticate", fiber.MethodGet, "/open", "", "", fiber.StatusTeapot, "Missing Bearer token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := auth.NewAuthenticator(issuer.Verifier(), nil, authtest.Restriction(tt.restriction), "")
			app := newProtectedApp(a)

			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.header != "" {
				req.Header.Set(fiber.HeaderAuthorization, tt.header)
			}

			resp, err := app.Test(req)
			require.NoError(t, err)

			defer resp.Body.Close()

			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err)

			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			assert.Equal(t, tt.wantBody, string(body))
		})
	}
}

// restrictionAfterAuth flips the restriction between the token check and the write check.
type restrictionAfterAuth struct {
	calls int
}

func (r *restrictionAfterAuth) Restriction(_ context.Context) string {
	r.calls++
	if r.calls == 1 {
		return ""
	}

	return "corp.example.com"
}

func TestRequireEmailAllowedRechecks(t *testing.T) {
	issuer := authtest.NewIssuer(t)
	a := auth.NewAuthenticator(issuer.Verifier(), nil, &restrictionAfterAuth{}, "")
	app := newProtectedApp(a)

	req := httptest.NewRequest(fiber.MethodPost, "/upload", nil)
	req.Header.Set(fiber.HeaderAuthorization, issuer.Bearer(t, map[string]any{
		"sub": "u1", "email": "dev@example.com", "cognito:groups": []string{"dev"},
	}))

	resp, err := app.Test(req)
	require.NoError(t, err)

	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "Uploads restricted to company domain", string(body))
}
