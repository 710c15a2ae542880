// Package appconfig serves the global configuration record through a per-process TTL cache.
package appconfig

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/mirror-ball/mirrorball/internal/db/models"
	"github.com/mirror-ball/mirrorball/internal/store"
)

// DefaultTTL is how long a fetched record is served without asking the store.
const DefaultTTL = time.Minute

// ErrNotConfigured is returned by Set when no config store is configured.
var ErrNotConfigured = errors.New("CONFIG_TABLE_NAME not configured") //nolint:staticcheck

// Service caches the global configuration.
// A nil store serves the default and refuses writes.
type Service struct {
	mu        sync.Mutex
	store     store.Configs
	ttl       time.Duration
	clock     clockwork.Clock
	cached    models.AppConfig
	lastFetch time.Time
}

// New creates a config service. ttl <= 0 selects DefaultTTL, a nil clock the real one.
func New(configs store.Configs, ttl time.Duration, clock clockwork.Clock) *Service {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	return &Service{
		store:  configs,
		ttl:    ttl,
		clock:  clock,
		cached: models.DefaultAppConfig(),
	}
}

// Configured reports whether writes can succeed.
func (s *Service) Configured() bool {
	return s.store != nil
}

// Get returns the cached record while fresh, otherwise refetches.
// A missing record resets the cache to the default without stamping the fetch time and seeds the store with it.
// A store error yields the last cached value. Store calls run without holding the lock.
func (s *Service) Get(ctx context.Context) models.AppConfig {
	if s.store == nil {
		return models.DefaultAppConfig()
	}

	now := s.clock.Now()

	s.mu.Lock()
	if !s.lastFetch.IsZero() && now.Sub(s.lastFetch) < s.ttl {
		cached := s.cached
		s.mu.Unlock()

		return cached
	}
	s.mu.Unlock()

	cfg, err := s.store.Get(ctx, models.GlobalConfigKey)

	switch {
	case err == nil:
		s.mu.Lock()
		s.cached = cfg
		s.lastFetch = now
		s.mu.Unlock()

		return cfg
	case errors.Is(err, store.ErrNotFound):
		def := models.DefaultAppConfig()

		s.mu.Lock()
		s.cached = def
		s.lastFetch = time.Time{}
		s.mu.Unlock()

		if perr := s.store.Put(ctx, models.GlobalConfigKey, def, now); perr != nil {
			log.Warn().Err(perr).Msg("could not store default app config")
		}

		return def
	default:
		log.Error().Err(err).Msg("could not fetch app config, serving cached value")

		s.mu.Lock()
		defer s.mu.Unlock()

		return s.cached
	}
}

// Set persists cfg and clears the cache so the next Get refetches.
func (s *Service) Set(ctx context.Context, cfg models.AppConfig) error {
	if s.store == nil {
		return ErrNotConfigured
	}

	if err := s.store.Put(ctx, models.GlobalConfigKey, cfg, s.clock.Now()); err != nil {
		return fmt.Errorf("save app config: %w", err)
	}

	s.Clear()

	return nil
}

// Clear resets the cache to the default.
func (s *Service) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cached = models.DefaultAppConfig()
	s.lastFetch = time.Time{}
}

// Restriction returns the active email restriction, empty when unrestricted.
func (s *Service) Restriction(ctx context.Context) string {
	return s.Get(ctx).UserRestriction
}
