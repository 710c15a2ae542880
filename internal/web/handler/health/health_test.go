package health

import (
	"io"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealth(t *testing.T) {
	var alive atomic.Bool
	alive.Store(true)

	app := fiber.New()
	New(alive.Load).Init(app)

	for _, p := range Paths {
		t.Run(p, func(t *testing.T) {
			resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, p, nil))
			require.NoError(t, err)

			defer resp.Body.Close()

			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err)

			assert.Equal(t, fiber.StatusOK, resp.StatusCode)
			assert.JSONEq(t, `{"ok":true}`, string(body))
		})
	}

	t.Run("draining", func(t *testing.T) {
		alive.Store(false)

		resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/api/health", nil))
		require.NoError(t, err)

		defer resp.Body.Close()

		assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
	})
}
