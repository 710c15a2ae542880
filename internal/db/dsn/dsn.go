// Package dsn provides Data Source Name construction utilities for database connections.
package dsn

import (
	"fmt"
	"net"
	"net/url"
	"strconv"

	"github.com/mirror-ball/mirrorball/internal/config"
)

// MySQL builds the go-sql-driver style DSN used by gorm and the mysql session storage.
func MySQL(db config.DB) string {
	out := fmt.Sprintf("%s:%s@tcp(%s)/%s?%s",
		db.User,
		db.Password,
		net.JoinHostPort(db.Host, strconv.Itoa(db.Port)),
		db.Name,
		db.Extras,
	)

	return out
}

// Postgres builds a postgres:// connection URI.
func Postgres(db config.DB) string {
	q := url.Values{}
	if db.SSLMode != "" {
		q.Set("sslmode", db.SSLMode)
	}

	if extras, err := url.ParseQuery(db.Extras); err == nil {
		for k, v := range extras {
			q[k] = v
		}
	}

	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(db.User, db.Password),
		Host:     net.JoinHostPort(db.Host, strconv.Itoa(db.Port)),
		Path:     "/" + db.Name,
		RawQuery: q.Encode(),
	}

	return u.String()
}
