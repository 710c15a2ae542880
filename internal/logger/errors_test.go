package logger

import (
	"bytes"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestErrorHandler(t *testing.T) {
	var buf bytes.Buffer

	prev := fallback
	fallback = &buf

	t.Cleanup(func() { fallback = prev })

	before := testutil.ToFloat64(writeFailures)

	ErrorHandler(errors.New("disk full"))

	assert.Equal(t, "mirrorball: dropped log event: disk full\n", buf.String())
	assert.InDelta(t, before+1, testutil.ToFloat64(writeFailures), 0)
}
