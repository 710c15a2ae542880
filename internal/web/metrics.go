package web

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsPath exposes the prometheus registry.
const MetricsPath = "/metrics"

var requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{ //nolint:gochecknoglobals
	Name: "mirrorball_http_requests_total",
	Help: "HTTP requests by method, route and status.",
}, []string{"method", "route", "status"})

// countRequests counts every request once the response status is known.
// Errors are rendered first so the counted status matches the one sent.
func countRequests(c *fiber.Ctx) error {
	err := c.Next()
	if err != nil {
		if herr := c.App().ErrorHandler(c, err); herr != nil {
			_ = c.SendStatus(fiber.StatusInternalServerError) //nolint:errcheck
		}
	}

	// route pattern, not the raw path, keeps the label set bounded
	requestsTotal.WithLabelValues(c.Method(), c.Route().Path, strconv.Itoa(c.Response().StatusCode())).Inc()

	return nil
}
