package logger

import (
	"errors"
	"fmt"
	"io"
	"os"
)

var (
	// ErrAppNameIsEmpty is returned if Log.AppName was not defined.
	ErrAppNameIsEmpty = errors.New("config Log.AppName can not be empty")

	// ErrServiceNameIsEmpty is returned if Log.ServiceName was not defined.
	ErrServiceNameIsEmpty = errors.New("config Log.ServiceName can not be empty")

	// fallback receives events zerolog failed to write.
	fallback io.Writer = os.Stderr //nolint:gochecknoglobals
)

// ErrorHandler reports a failed log write on stderr and counts it.
func ErrorHandler(err error) {
	writeFailures.Inc()

	_, _ = fmt.Fprintf(fallback, "mirrorball: dropped log event: %v\n", err)
}
