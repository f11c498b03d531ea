package database

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/riskibarqy/fantasy-live/db"
)

// NewMigrator builds a migrator over the embedded migrations. Sqlite
// migrates through the open handle so in-memory databases see the schema,
// and closing the migrator closes that handle. Postgres opens its own
// connection from dsn.
func NewMigrator(sqlDB *sql.DB, driver, dsn string) (*migrate.Migrate, error) {
	src, err := iofs.New(db.Migrations, db.MigrationsDir)
	if err != nil {
		return nil, fmt.Errorf("load embedded migrations: %w", err)
	}

	switch driver {
	case DriverSQLite:
		instance, err := sqlite.WithInstance(sqlDB, &sqlite.Config{})
		if err != nil {
			return nil, fmt.Errorf("create sqlite migration driver: %w", err)
		}
		m, err := migrate.NewWithInstance("iofs", src, "sqlite", instance)
		if err != nil {
			return nil, fmt.Errorf("create migrator: %w", err)
		}
		return m, nil
	case DriverPostgres:
		m, err := migrate.NewWithSourceInstance("iofs", src, dsn)
		if err != nil {
			return nil, fmt.Errorf("create migrator: %w", err)
		}
		return m, nil
	default:
		return nil, fmt.Errorf("unsupported migration driver %q", driver)
	}
}

// Migrate applies every pending migration.
func Migrate(sqlDB *sql.DB, driver, dsn string) error {
	m, err := NewMigrator(sqlDB, driver, dsn)
	if err != nil {
		return err
	}
	if driver == DriverPostgres {
		defer func() {
			_, _ = m.Close()
		}()
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}
