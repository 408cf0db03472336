package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"
)

const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

// Options controls how Open connects.
type Options struct {
	MaxRetries    int
	RetryInterval time.Duration
}

var DefaultOptions = Options{MaxRetries: 10, RetryInterval: 2 * time.Second}

// ParseDatabaseURL picks a driver from the URL scheme. postgres:// and
// postgresql:// select lib/pq; anything else is treated as a sqlite DSN.
func ParseDatabaseURL(databaseURL string) (driver, dsn string) {
	switch {
	case strings.HasPrefix(databaseURL, "postgres://"), strings.HasPrefix(databaseURL, "postgresql://"):
		return DriverPostgres, databaseURL
	case strings.HasPrefix(databaseURL, "sqlite3://"):
		return DriverSQLite, sqliteDSN(strings.TrimPrefix(databaseURL, "sqlite3://"))
	case strings.HasPrefix(databaseURL, "sqlite://"):
		return DriverSQLite, sqliteDSN(strings.TrimPrefix(databaseURL, "sqlite://"))
	default:
		return DriverSQLite, sqliteDSN(databaseURL)
	}
}

// sqliteParams are appended to every sqlite DSN unless the caller already set
// them. _txlock=immediate makes BEGIN take the write lock up front, so
// overlapping writers wait on the busy timeout instead of failing with
// SQLITE_BUSY when a read lock cannot be upgraded.
var sqliteParams = []struct{ name, value string }{
	{"_foreign_keys", "on"},
	{"_txlock", "immediate"},
	{"_busy_timeout", "5000"},
}

func sqliteDSN(dsn string) string {
	for _, p := range sqliteParams {
		if strings.Contains(dsn, p.name+"=") || (p.name == "_foreign_keys" && strings.Contains(dsn, "_fk=")) {
			continue
		}
		sep := "?"
		if strings.Contains(dsn, "?") {
			sep = "&"
		}
		dsn += sep + p.name + "=" + p.value
	}
	return dsn
}

func isInMemory(dsn string) bool {
	return strings.HasPrefix(dsn, ":memory:") || strings.Contains(dsn, "mode=memory")
}

// opens a database connection, retrying while the server comes up, and
// creates the schema if it does not exist yet.
func Open(ctx context.Context, databaseURL string, opts Options) (*sqlx.DB, error) {
	driver, dsn := ParseDatabaseURL(databaseURL)
	if opts.MaxRetries < 1 {
		opts.MaxRetries = 1
	}

	var (
		conn *sqlx.DB
		err  error
	)
	for attempt := 1; attempt <= opts.MaxRetries; attempt++ {
		conn, err = sqlx.ConnectContext(ctx, driver, dsn)
		if err == nil {
			log.Info().Str("driver", driver).Msg("connected to database")
			break
		}

		log.Error().Err(err).
			Int("attempt", attempt).
			Msgf("failed to connect to database, retrying in %s", opts.RetryInterval)

		if attempt == opts.MaxRetries {
			return nil, fmt.Errorf("could not connect to database after %d attempts: %w", opts.MaxRetries, err)
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(opts.RetryInterval):
		}
	}

	// every sqlite :memory: connection is its own database
	if driver == DriverSQLite && isInMemory(dsn) {
		conn.SetMaxOpenConns(1)
	}

	if err := CreateSchema(ctx, conn); err != nil {
		conn.Close()
		return nil, err
	}
	return conn, nil
}

// executes the CREATE ... IF NOT EXISTS statements for the connection's dialect.
func CreateSchema(ctx context.Context, conn *sqlx.DB) error {
	stmts, ok := schemas[conn.DriverName()]
	if !ok {
		return fmt.Errorf("no schema for driver %q", conn.DriverName())
	}
	for _, stmt := range stmts {
		if _, err := conn.ExecContext(ctx, stmt); err != nil {
			log.Error().Err(err).Msg("[db] CreateSchema: failed to execute statement")
			return fmt.Errorf("create schema: %w", err)
		}
	}
	return nil
}

var schemas = map[string][]string{
	DriverSQLite: {
		`CREATE TABLE IF NOT EXISTS media (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			media_id TEXT NOT NULL UNIQUE,
			title TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS ix_media_title ON media(title)`,
		`CREATE TABLE IF NOT EXISTS timestamps (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			type TEXT NOT NULL,
			start_time TEXT,
			end_time TEXT,
			media_id INTEGER NOT NULL REFERENCES media(id)
		)`,
		`CREATE INDEX IF NOT EXISTS ix_timestamps_media_id ON timestamps(media_id)`,
	},
	DriverPostgres: {
		`CREATE TABLE IF NOT EXISTS media (
			id SERIAL PRIMARY KEY,
			media_id TEXT NOT NULL UNIQUE,
			title TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS ix_media_title ON media(title)`,
		`CREATE TABLE IF NOT EXISTS timestamps (
			id SERIAL PRIMARY KEY,
			type TEXT NOT NULL,
			start_time TEXT,
			end_time TEXT,
			media_id INTEGER NOT NULL REFERENCES media(id)
		)`,
		`CREATE INDEX IF NOT EXISTS ix_timestamps_media_id ON timestamps(media_id)`,
	},
}
