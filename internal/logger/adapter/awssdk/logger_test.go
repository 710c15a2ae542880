package awssdk_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/aws/smithy-go/logging"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mirror-ball/mirrorball/internal/logger/adapter/awssdk"
)

func TestLogf(t *testing.T) {
	tests := []struct {
		name           string
		classification logging.Classification
		wantLevel      string
	}{
		{"warn", logging.Warn, "warn"},
		{"debug", logging.Debug, "debug"},
		{"unknown falls back to info", logging.Classification("NOTICE"), "info"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer

			l := awssdk.New(zerolog.New(&out).Level(zerolog.DebugLevel))
			l.Logf(tt.classification, "retrying %s after %d attempts", "PutItem", 2)

			var entry map[string]string
			require.NoError(t, json.Unmarshal(out.Bytes(), &entry))

			assert.Equal(t, tt.wantLevel, entry["level"])
			assert.Equal(t, "aws", entry["component"])
			assert.Equal(t, "retrying PutItem after 2 attempts", entry["message"])
		})
	}
}
