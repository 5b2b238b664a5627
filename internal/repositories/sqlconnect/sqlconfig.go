package sqlconnect

import (
	"database/sql"
	"fmt"

	"moneymigo/internal/config"
	"moneymigo/pkg/utils"

	_ "github.com/go-sql-driver/mysql"
)

var DB *sql.DB

func ConnectDb(cfg config.DBConfig) error {
	if DB != nil {
		return nil
	}

	utils.Logger.WithField("addr", fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)).Info("Connecting to MySQL...")

	db, err := sql.Open("mysql", cfg.DSN(false))
	if err != nil {
		return fmt.Errorf("failed to open DB connection: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err = db.Ping(); err != nil {
		db.Close()
		return fmt.Errorf("failed to ping DB: %w", err)
	}

	DB = db
	utils.Logger.WithField("database", cfg.Name).Info("Connected to MySQL")
	return nil
}

// Close releases the pool. Safe to call when no pool was opened.
func Close() error {
	if DB == nil {
		return nil
	}
	err := DB.Close()
	DB = nil
	return err
}
