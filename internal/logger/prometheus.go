package logger

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

var (
	statements     *prometheus.CounterVec //nolint:gochecknoglobals
	statementsOnce sync.Once              //nolint:gochecknoglobals

	writeFailures = promauto.NewCounter(prometheus.CounterOpts{ //nolint:gochecknoglobals
		Namespace: "mirrorball",
		Name:      "log_write_failures_total",
		Help:      "Number of log events that could not be written.",
	})
)

// PrometheusHook counts log statements per level.
type PrometheusHook struct{}

// Run implements zerolog.Hook.
func (h PrometheusHook) Run(_ *zerolog.Event, level zerolog.Level, _ string) {
	if level == zerolog.NoLevel {
		return
	}

	statements.WithLabelValues(level.String()).Inc()
}

// NewPrometheusHook registers mirrorball_log_statements_total on first use.
// The service label is fixed by the first call.
func NewPrometheusHook(service string) PrometheusHook {
	statementsOnce.Do(func() {
		statements = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   "mirrorball",
				Name:        "log_statements_total",
				Help:        "Number of log statements by level.",
				ConstLabels: prometheus.Labels{"service": service},
			},
			[]string{"level"},
		)
	})

	return PrometheusHook{}
}
