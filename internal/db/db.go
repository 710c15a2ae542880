// Package db opens and migrates the sql metadata database.
package db

import (
	"fmt"

	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog/log"
	gormmysql "gorm.io/driver/mysql"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/mirror-ball/mirrorball/internal/config"
	"github.com/mirror-ball/mirrorball/internal/db/dsn"
	"github.com/mirror-ball/mirrorball/internal/db/models"
)

// Dialector picks the gorm driver for the configured store driver.
func Dialector(cfg *config.Config) (gorm.Dialector, error) {
	switch cfg.Store.Driver {
	case config.DriverSQLite:
		return sqlite.Open(cfg.DB.Path), nil
	case config.DriverMySQL:
		return gormmysql.Open(dsn.MySQL(cfg.DB)), nil
	case config.DriverPostgres:
		return gormpostgres.Open(dsn.Postgres(cfg.DB)), nil
	default:
		return nil, fmt.Errorf("%w: %q has no sql dialect", config.ErrUnknownStoreDriver, cfg.Store.Driver)
	}
}

// Open connects with the given dialector and migrates every model.
func Open(dialector gorm.Dialector, devMode bool) (*gorm.DB, error) {
	level := gormlogger.Warn
	if devMode {
		level = gormlogger.Info
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(level),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	if err = Migrate(db); err != nil {
		return nil, err
	}

	log.Info().Str("dialect", db.Name()).Msg("sql metadata store ready")

	return db, nil
}

// Migrate creates or updates the tables.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.Image{},
		&models.Setting{},
	); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	return nil
}
