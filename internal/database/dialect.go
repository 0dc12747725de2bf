package database

import (
	"database/sql"
	"strconv"
	"strings"
)

// Dialect hides the differences between the journal backends
type Dialect interface {
	// DriverName is the database/sql driver registered by the dialect's import
	DriverName() string

	// DSN builds the connection string from the journal settings
	DSN(config DialectConfig) string

	// RewriteQuery adapts a ?-placeholder query to the backend
	RewriteQuery(query string) string

	// ConfigureConnection tunes the pool and session settings after sql.Open
	ConfigureConnection(db *sql.DB) error

	// MigrationsSubdir names the directory under migrations/ holding the
	// outcome_events schema for this backend
	MigrationsSubdir() string

	// CreateMigrationsTableQuery creates the table recording applied
	// migration files
	CreateMigrationsTableQuery() string
}

// DialectConfig carries the connection settings. Path is used by SQLite,
// URL by the server backends.
type DialectConfig struct {
	Path string
	URL  string
}

// rewritePlaceholdersToNumbered turns ? placeholders into $1, $2, ... and
// leaves question marks inside quoted literals alone
func rewritePlaceholdersToNumbered(query string) string {
	var b strings.Builder
	b.Grow(len(query) + 8)

	n := 0
	var quote rune
	for _, c := range query {
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '\'' || c == '"':
			quote = c
		case c == '?':
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(c)
	}
	return b.String()
}
