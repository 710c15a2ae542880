package gallery

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var operations = promauto.NewCounterVec( //nolint:gochecknoglobals
	prometheus.CounterOpts{
		Namespace: "mirrorball",
		Subsystem: "gallery",
		Name:      "operations_total",
		Help:      "Gallery operations by name and outcome.",
	},
	[]string{"operation", "result"},
)

func observe(operation string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}

	operations.WithLabelValues(operation, result).Inc()
}
