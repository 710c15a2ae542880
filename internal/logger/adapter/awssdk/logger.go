// Package awssdk routes aws sdk client logging into zerolog.
package awssdk

import (
	"fmt"

	"github.com/aws/smithy-go/logging"
	"github.com/rs/zerolog"
)

// Logger implements logging.Logger on top of a zerolog logger.
type Logger struct {
	log zerolog.Logger
}

var _ logging.Logger = Logger{}

// New returns an sdk logger tagging every entry with component=aws.
func New(l zerolog.Logger) Logger {
	return Logger{log: l.With().Str("component", "aws").Logger()}
}

// Logf implements logging.Logger.
func (l Logger) Logf(classification logging.Classification, format string, v ...any) {
	var event *zerolog.Event

	switch classification {
	case logging.Warn:
		event = l.log.Warn()
	case logging.Debug:
		event = l.log.Debug()
	default:
		event = l.log.Info()
	}

	event.Msg(fmt.Sprintf(format, v...))
}
