package database

import (
	"database/sql"
	"strings"
	"time"

	_ "github.com/lib/pq"
)

// journalAppName tags journal connections in pg_stat_activity
const journalAppName = "wordquest-journal"

// PostgresDialect implements Dialect for PostgreSQL
type PostgresDialect struct{}

// NewPostgresDialect creates a new PostgreSQL dialect
func NewPostgresDialect() *PostgresDialect {
	return &PostgresDialect{}
}

func (d *PostgresDialect) DriverName() string {
	return "postgres"
}

// DSN adds an application_name unless the URL already sets one. Both the
// URL and the key=value connection string forms are handled.
func (d *PostgresDialect) DSN(config DialectConfig) string {
	dsn := config.URL
	if dsn == "" || strings.Contains(dsn, "application_name") {
		return dsn
	}
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		if strings.Contains(dsn, "?") {
			return dsn + "&application_name=" + journalAppName
		}
		return dsn + "?application_name=" + journalAppName
	}
	return dsn + " application_name=" + journalAppName
}

func (d *PostgresDialect) RewriteQuery(query string) string {
	return rewritePlaceholdersToNumbered(query)
}

// ConfigureConnection sizes the pool for the journal: one short insert per
// outcome event plus the occasional export or prune.
func (d *PostgresDialect) ConfigureConnection(db *sql.DB) error {
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(time.Minute)
	return nil
}

func (d *PostgresDialect) MigrationsSubdir() string {
	return "postgres"
}

func (d *PostgresDialect) CreateMigrationsTableQuery() string {
	return `
		CREATE TABLE IF NOT EXISTS migrations (
			id BIGSERIAL PRIMARY KEY,
			filename TEXT UNIQUE NOT NULL,
			executed_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
	`
}
