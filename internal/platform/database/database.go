// Package database opens the traced sqlx handle used by the SQL stores.
// Postgres is the production backend; sqlite serves single-node runs and
// tests.
package database

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
	_ "modernc.org/sqlite"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	Driver                      string
	URL                         string
	DisablePreparedBinaryResult bool
	MaxOpenConns                int
	MaxIdleConns                int
	ConnMaxLifetime             time.Duration
	AutoMigrate                 bool
}

// NormalizeDriver maps driver aliases to DriverPostgres or DriverSQLite.
func NormalizeDriver(raw string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "postgres", "postgresql", "pg":
		return DriverPostgres, nil
	case "sqlite", "sqlite3":
		return DriverSQLite, nil
	default:
		return "", fmt.Errorf("unsupported database driver %q", raw)
	}
}

func Open(ctx context.Context, cfg Config) (*sqlx.DB, error) {
	driver, err := NormalizeDriver(cfg.Driver)
	if err != nil {
		return nil, err
	}
	dsn := strings.TrimSpace(cfg.URL)
	if dsn == "" {
		return nil, fmt.Errorf("database url is required")
	}
	if driver == DriverPostgres {
		dsn = NormalizeURL(dsn, cfg.DisablePreparedBinaryResult)
	}

	db, err := otelsqlx.Open(driver, dsn,
		otelsql.WithDBName(databaseName(driver, dsn)),
		otelsql.WithQueryFormatter(formatDBQueryForTrace),
	)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", driver, err)
	}

	if driver == DriverSQLite {
		// one connection keeps :memory: databases shared and serializes writers
		db.SetMaxOpenConns(1)
	} else {
		if cfg.MaxOpenConns > 0 {
			db.SetMaxOpenConns(cfg.MaxOpenConns)
		}
		if cfg.MaxIdleConns > 0 {
			db.SetMaxIdleConns(cfg.MaxIdleConns)
		}
		if cfg.ConnMaxLifetime > 0 {
			db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
		}
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s database: %w", driver, err)
	}

	if cfg.AutoMigrate {
		if err := Migrate(db.DB, driver, dsn); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	return db, nil
}

func databaseName(driver, dsn string) string {
	if driver == DriverSQLite {
		path := strings.TrimPrefix(dsn, "file:")
		if idx := strings.IndexByte(path, '?'); idx >= 0 {
			path = path[:idx]
		}
		return filepath.Base(path)
	}
	return dbNameFromURL(dsn)
}
