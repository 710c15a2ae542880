package config

// DB holds the database configuration settings used by the sql store drivers.
type DB struct {
	Extras   string
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	Path     string // sqlite database file
	SSLMode  string
}
