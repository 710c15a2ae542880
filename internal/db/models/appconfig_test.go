package models_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mirror-ball/mirrorball/internal/db/models"
)

func TestAppConfigIsRestricted(t *testing.T) {
	tests := []struct {
		name string
		cfg  models.AppConfig
		want bool
	}{
		{"default", models.DefaultAppConfig(), false},
		{"empty restriction", models.AppConfig{UserRestriction: ""}, false},
		{"domain restriction", models.AppConfig{UserRestriction: "example.com"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cfg.IsRestricted())
		})
	}
}
