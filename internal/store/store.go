// Package store defines the persistence contracts for image metadata and the global configuration.
// internal/store/dynamo and internal/store/sqlstore implement them.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/mirror-ball/mirrorball/internal/db/models"
)

var (
	// ErrNotFound is returned when the addressed record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrAlreadyExists is returned when a create collides with an existing record.
	ErrAlreadyExists = errors.New("record already exists")
	// ErrNotConfigured is returned when the backing table is not configured.
	ErrNotConfigured = errors.New("table not configured")
)

// ObjectInfo carries what confirm learned about the uploaded object.
// Nil fields leave the stored value untouched.
type ObjectInfo struct {
	FileSize   *int64
	Dimensions *string
}

// ImageFilter narrows a listing. Limit bounds the rows read before filtering.
type ImageFilter struct {
	Owner   string
	DevName string
	Limit   int
}

// Images persists image metadata.
type Images interface {
	// FindByTitle returns the first image with exactly this title or ErrNotFound.
	FindByTitle(ctx context.Context, title string) (*models.Image, error)
	// Create inserts a new row, ErrAlreadyExists if the id is taken.
	Create(ctx context.Context, img *models.Image) error
	// Confirm marks an existing row complete and merges info, ErrNotFound if the row is missing.
	Confirm(ctx context.Context, imageID string, info ObjectInfo) (*models.Image, error)
	// Get returns one row or ErrNotFound.
	Get(ctx context.Context, imageID string) (*models.Image, error)
	// List returns rows matching the filter.
	List(ctx context.Context, filter ImageFilter) ([]models.Image, error)
	// Delete removes a row. Deleting a missing row is not an error.
	Delete(ctx context.Context, imageID string) error
}

// Configs persists the global configuration record.
type Configs interface {
	// Get returns the record stored under key or ErrNotFound.
	Get(ctx context.Context, key string) (models.AppConfig, error)
	// Put replaces the record stored under key.
	Put(ctx context.Context, key string, cfg models.AppConfig, updatedAt time.Time) error
}
