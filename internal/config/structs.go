package config

import (
	"time"

	"github.com/mirror-ball/mirrorball/internal/logger"
)

// Store drivers.
const (
	DriverDynamoDB = "dynamodb"
	DriverSQLite   = "sqlite"
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
)

// Config overall data structure.
type Config struct {
	DevMode   bool // enable dev mode for development
	Title     string
	Webserver Webserver
	Log       logger.Log
	AWS       AWS
	Store     Store
	DB        DB
	Auth      Auth
	Upload    Upload
}

// Webserver implement webserver settings.
type Webserver struct {
	Port           int    // listening port for the webserver
	ShutDownTime   int    // seconds to keep answering 503 on health before shutdown
	URL            string // public base url of the api
	FrontendURL    string // where the hosted login flow returns the browser to
	AllowOrigins   string // CORS allow-origins list, comma separated
	ReadBufferSize int
	RateLimit      RateLimit
}

// RateLimit limits upload presign requests per client IP.
type RateLimit struct {
	Enabled    bool
	Max        int
	Expiration time.Duration
}

// AWS holds the cloud account settings.
type AWS struct {
	Region           string
	Endpoint         string // custom endpoint, e.g. localstack
	BucketName       string
	CloudFrontDomain string
	LogRequests      bool // log sdk retries and signing through zerolog
}

// Store selects and configures the metadata store.
type Store struct {
	Driver          string // dynamodb, sqlite, mysql or postgres
	ImageTableName  string
	ConfigTableName string
	TitleIndexName  string
}

// Auth holds identity provider settings.
type Auth struct {
	UserPoolID     string
	Issuer         string // overrides the issuer derived from region and pool id
	ClientID       string
	ClientSecret   string
	Domain         string // hosted UI base url
	Scopes         []string
	DefaultGroup   string        // group assigned to users without any
	ConfigCacheTTL time.Duration // lifetime of the cached global configuration
}

// Upload holds upload flow settings.
type Upload struct {
	PresignExpiry   time.Duration
	ProbeDimensions bool
	ProbeBytes      int64
}
