// Package health answers load balancer and uptime probes.
package health

import (
	"github.com/gofiber/fiber/v2"

	"github.com/mirror-ball/mirrorball/internal/web/handler"
)

// Paths are the probe routes.
var Paths = []string{handler.RootPath, "/health", handler.APIPath + "/health"} //nolint:gochecknoglobals

// Service is the health handler service.
type Service struct {
	alive func() bool
}

// New creates the health handler. alive reports false while the server drains; nil means always alive.
func New(alive func() bool) *Service {
	return &Service{alive: alive}
}

// Init registers the probe routes.
func (s *Service) Init(router fiber.Router) {
	for _, p := range Paths {
		router.Get(p, s.Get)
	}
}

// Get answers {"ok": true}, or 503 with {"ok": false} during shutdown.
func (s *Service) Get(c *fiber.Ctx) error {
	if s.alive != nil && !s.alive() {
		return c.Status(fiber.StatusServiceUnavailable).JSON(handler.OK{OK: false})
	}

	return c.JSON(handler.OK{OK: true})
}
