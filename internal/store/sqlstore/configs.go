package sqlstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	json "github.com/goccy/go-json"
	"gorm.io/gorm"

	"github.com/mirror-ball/mirrorball/internal/db/controller/setting"
	"github.com/mirror-ball/mirrorball/internal/db/models"
	"github.com/mirror-ball/mirrorball/internal/store"
)

var _ store.Configs = (*Configs)(nil)

// Configs keeps each configuration record as a JSON encoded setting.
type Configs struct {
	db *gorm.DB
}

// NewConfigs returns a settings backed config store.
func NewConfigs(db *gorm.DB) *Configs {
	return &Configs{db: db}
}

// Get decodes the setting named key.
func (s *Configs) Get(ctx context.Context, key string) (models.AppConfig, error) {
	row, err := setting.Get(s.db.WithContext(ctx), key)
	if errors.Is(err, setting.ErrSettingNotFound) {
		return models.AppConfig{}, store.ErrNotFound
	}

	if err != nil {
		return models.AppConfig{}, fmt.Errorf("get config: %w", err)
	}

	var cfg models.AppConfig
	if err = json.Unmarshal(row.Value, &cfg); err != nil {
		return models.AppConfig{}, fmt.Errorf("decode config %s: %w", key, err)
	}

	return cfg, nil
}

// Put replaces the setting named key. The row's own UpdatedAt column is stamped by gorm,
// updatedAt is stored inside the document as well so both stores return the same shape.
func (s *Configs) Put(ctx context.Context, key string, cfg models.AppConfig, updatedAt time.Time) error {
	value, err := json.Marshal(struct {
		models.AppConfig
		UpdatedAt string `json:"updatedAt"`
	}{cfg, updatedAt.UTC().Format(time.RFC3339Nano)})
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	if _, err = setting.Set(s.db.WithContext(ctx), key, value); err != nil {
		return fmt.Errorf("put config: %w", err)
	}

	return nil
}
