package config

import (
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// DBConfig carries full DB_* keys and is processed on its own. Under a
// prefix envconfig would fall back to bare names like PORT and USER.
type DBConfig struct {
	Host            string        `envconfig:"DB_HOST" default:"localhost"`
	Port            int           `envconfig:"DB_PORT" default:"3306"`
	User            string        `envconfig:"DB_USER" default:"root"`
	Password        string        `envconfig:"DB_PASSWORD"`
	Name            string        `envconfig:"DB_NAME" default:"moneymigo"`
	MaxOpenConns    int           `envconfig:"DB_MAX_OPEN_CONNS" default:"10"`
	MaxIdleConns    int           `envconfig:"DB_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"DB_CONN_MAX_LIFETIME" default:"5m"`
}

// DSN renders the driver connection string. clientFoundRows makes
// RowsAffected report matched rows, so a repeated withdraw still counts.
func (c DBConfig) DSN(multiStatements bool) string {
	cfg := mysql.NewConfig()
	cfg.User = c.User
	cfg.Passwd = c.Password
	cfg.Net = "tcp"
	cfg.Addr = fmt.Sprintf("%s:%d", c.Host, c.Port)
	cfg.DBName = c.Name
	cfg.ClientFoundRows = true
	cfg.MultiStatements = multiStatements
	return cfg.FormatDSN()
}

type AppConfig struct {
	Env             string        `envconfig:"APP_ENV" default:"development"`
	Port            string        `envconfig:"PORT" default:"5000"`
	LogLevel        string        `envconfig:"LOG_LEVEL" default:"info"`
	LogFile         string        `envconfig:"LOG_FILE" default:"logs/app.log"`
	CertFile        string        `envconfig:"CERT_FILE"`
	KeyFile         string        `envconfig:"KEY_FILE"`
	CORSOrigins     []string      `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`
	QueryTimeout    time.Duration `envconfig:"QUERY_TIMEOUT" default:"5s"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
	MigrateOnStart  bool          `envconfig:"MIGRATE_ON_START" default:"true"`
	DB              DBConfig      `ignored:"true"`
}

// Addr is the listen address for the HTTP server.
func (c *AppConfig) Addr() string {
	return ":" + c.Port
}

func (c *AppConfig) TLSEnabled() bool {
	return c.CertFile != "" && c.KeyFile != ""
}

// Load reads an optional .env file and then the process environment. The
// returned bool reports whether a .env file was found.
func Load(envFilePath ...string) (*AppConfig, bool, error) {
	var err error
	if len(envFilePath) > 0 && envFilePath[0] != "" {
		err = godotenv.Load(envFilePath[0])
	} else {
		err = godotenv.Load()
	}
	loaded := err == nil

	var cfg AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, loaded, fmt.Errorf("process env config: %w", err)
	}
	if err := envconfig.Process("", &cfg.DB); err != nil {
		return nil, loaded, fmt.Errorf("process db config: %w", err)
	}
	return &cfg, loaded, nil
}
