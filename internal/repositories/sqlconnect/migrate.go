package sqlconnect

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"moneymigo/internal/config"
	"moneymigo/pkg/utils"

	"github.com/golang-migrate/migrate/v4"
	migratemysql "github.com/golang-migrate/migrate/v4/database/mysql"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// RunMigrations brings the schema up to date, seeding the default payment
// types. It uses its own connection because migration files hold more than
// one statement.
func RunMigrations(cfg config.DBConfig) error {
	migrateDB, err := sql.Open("mysql", cfg.DSN(true))
	if err != nil {
		return fmt.Errorf("open migration database: %w", err)
	}
	defer migrateDB.Close()

	driver, err := migratemysql.WithInstance(migrateDB, &migratemysql.Config{DatabaseName: cfg.Name})
	if err != nil {
		return fmt.Errorf("create mysql driver: %w", err)
	}

	d, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("create iofs source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", d, "mysql", driver)
	if err != nil {
		return fmt.Errorf("create migrate instance: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("run migrations: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("read migration version: %w", err)
	}
	utils.Logger.WithField("version", version).WithField("dirty", dirty).Info("Database migrations applied")
	return nil
}
