package apierror

import (
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBodyJSON(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "without details",
			err:  New(404, "Not Found", nil),
			want: `{"error":"Not Found"}`,
		},
		{
			name: "with details",
			err:  New(401, "Invalid token", "token is expired"),
			want: `{"error":"Invalid token","details":"token is expired"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := json.Marshal(tt.err.Body())
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(out))
		})
	}
}

func TestErrorString(t *testing.T) {
	assert.Equal(t, "403 Admin only", New(403, "Admin only", nil).Error())
}
