// Package sqlstore implements the store contracts on gorm for self-hosted deployments.
package sqlstore

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/mirror-ball/mirrorball/internal/db/models"
	"github.com/mirror-ball/mirrorball/internal/store"
)

var _ store.Images = (*Images)(nil)

// Images stores image metadata in the images table.
// Owner and devName filters run in the query, so a page is filled before the limit applies.
type Images struct {
	db *gorm.DB
}

// NewImages returns a gorm backed image store.
func NewImages(db *gorm.DB) *Images {
	return &Images{db: db}
}

// FindByTitle returns the first image with this title.
func (s *Images) FindByTitle(ctx context.Context, title string) (*models.Image, error) {
	var img models.Image

	err := s.db.WithContext(ctx).Where("title = ?", title).Take(&img).Error

	return found(&img, err, "find image by title")
}

// Create inserts the row. A duplicate primary key or title yields store.ErrAlreadyExists.
func (s *Images) Create(ctx context.Context, img *models.Image) error {
	err := s.db.WithContext(ctx).Create(img).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return store.ErrAlreadyExists
	}

	if err != nil {
		return fmt.Errorf("create image: %w", err)
	}

	return nil
}

// Confirm sets status complete and merges info in one update.
func (s *Images) Confirm(ctx context.Context, imageID string, info store.ObjectInfo) (*models.Image, error) {
	updates := map[string]any{"status": models.StatusComplete}

	if info.FileSize != nil {
		updates["file_size"] = *info.FileSize
	}

	if info.Dimensions != nil {
		updates["dimensions"] = *info.Dimensions
	}

	var img models.Image

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Image{}).Where("image_id = ?", imageID).Updates(updates)
		if res.Error != nil {
			return res.Error
		}

		if res.RowsAffected == 0 {
			return store.ErrNotFound
		}

		return tx.Where("image_id = ?", imageID).Take(&img).Error
	})
	if errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	if err != nil {
		return nil, fmt.Errorf("confirm image: %w", err)
	}

	return &img, nil
}

// Get returns one row by id.
func (s *Images) Get(ctx context.Context, imageID string) (*models.Image, error) {
	var img models.Image

	err := s.db.WithContext(ctx).Where("image_id = ?", imageID).Take(&img).Error

	return found(&img, err, "get image")
}

// List returns matching rows, oldest upload first.
func (s *Images) List(ctx context.Context, filter store.ImageFilter) ([]models.Image, error) {
	q := s.db.WithContext(ctx).Model(&models.Image{}).Order("upload_time, image_id")

	if filter.Owner != "" {
		q = q.Where("owner = ?", filter.Owner)
	}

	if filter.DevName != "" {
		q = q.Where("dev_name = ?", filter.DevName)
	}

	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}

	var images []models.Image
	if err := q.Find(&images).Error; err != nil {
		return nil, fmt.Errorf("list images: %w", err)
	}

	return images, nil
}

// Delete removes the row.
func (s *Images) Delete(ctx context.Context, imageID string) error {
	if err := s.db.WithContext(ctx).Where("image_id = ?", imageID).Delete(&models.Image{}).Error; err != nil {
		return fmt.Errorf("delete image: %w", err)
	}

	return nil
}

func found(img *models.Image, err error, op string) (*models.Image, error) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, store.ErrNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return img, nil
}
