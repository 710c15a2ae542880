package db

import (
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mirror-ball/mirrorball/internal/config"
	"github.com/mirror-ball/mirrorball/internal/db/models"
)

func TestDialector(t *testing.T) {
	tests := []struct {
		driver  string
		want    string
		wantErr bool
	}{
		{config.DriverSQLite, "sqlite", false},
		{config.DriverMySQL, "mysql", false},
		{config.DriverPostgres, "postgres", false},
		{config.DriverDynamoDB, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.driver, func(t *testing.T) {
			cfg := &config.Config{Store: config.Store{Driver: tt.driver}, DB: config.DB{Path: ":memory:", Host: "localhost", Port: 1}}

			d, err := Dialector(cfg)
			if tt.wantErr {
				require.ErrorIs(t, err, config.ErrUnknownStoreDriver)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, d.Name())
		})
	}
}

func TestOpen(t *testing.T) {
	db, err := Open(sqlite.Open(filepath.Join(t.TempDir(), "gallery.db")), false)
	require.NoError(t, err)

	assert.True(t, db.Migrator().HasTable(&models.Image{}))
	assert.True(t, db.Migrator().HasTable(&models.Setting{}))
}
