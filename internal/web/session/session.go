// Package session keeps short-lived server side state shared by the webserver:
// hosted login states and rate limiter counters.
package session

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	mysqlstorage "github.com/gofiber/storage/mysql/v2"
	postgresstorage "github.com/gofiber/storage/postgres/v3"
	"github.com/rs/zerolog/log"

	"github.com/mirror-ball/mirrorball/internal/config"
	"github.com/mirror-ball/mirrorball/internal/db/dsn"
)

const (
	// StateTTL is how long a hosted login state stays valid.
	StateTTL = 5 * time.Minute

	// Table holds the shared state in sql deployments.
	Table = "mirrorball_state"

	statePrefix = "login_state:"
	gcInterval  = 10 * time.Second
)

// Store wraps the fiber session store and its storage backend.
type Store struct {
	*session.Store
}

// New creates the store on top of storage. A nil storage keeps everything in process memory.
func New(storage fiber.Storage) *Store {
	return &Store{
		Store: session.New(session.Config{
			Storage:    storage,
			Expiration: StateTTL,
		}),
	}
}

// NewStorage opens the shared storage matching the configured sql store driver.
// DynamoDB and sqlite deployments get nil, which selects process memory.
func NewStorage(cfg *config.Config) fiber.Storage {
	switch cfg.Store.Driver {
	case config.DriverMySQL:
		log.Info().Str("table", Table).Msg("shared state in mysql")

		return mysqlstorage.New(mysqlstorage.Config{
			ConnectionURI: dsn.MySQL(cfg.DB),
			Table:         Table,
			GCInterval:    gcInterval,
		})
	case config.DriverPostgres:
		log.Info().Str("table", Table).Msg("shared state in postgres")

		return postgresstorage.New(postgresstorage.Config{
			ConnectionURI: dsn.Postgres(cfg.DB),
			Table:         Table,
			GCInterval:    gcInterval,
		})
	default:
		return nil
	}
}

// PutState remembers a hosted login state for StateTTL.
func (s *Store) PutState(state string) error {
	return s.Storage.Set(statePrefix+state, []byte{1}, StateTTL) //nolint:wrapcheck
}

// TakeState reports whether state was issued and not yet used, and forgets it.
func (s *Store) TakeState(state string) (bool, error) {
	if state == "" {
		return false, nil
	}

	val, err := s.Storage.Get(statePrefix + state)
	if err != nil {
		return false, err //nolint:wrapcheck
	}

	if len(val) == 0 {
		return false, nil
	}

	if err = s.Storage.Delete(statePrefix + state); err != nil {
		return false, err //nolint:wrapcheck
	}

	return true, nil
}

// Close releases the storage backend.
func (s *Store) Close() error {
	return s.Storage.Close() //nolint:wrapcheck
}
