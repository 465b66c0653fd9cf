// Package config provides centralized configuration management for the
// ETL processes. It loads configuration from environment variables with
// sensible defaults and validates all settings on startup to fail fast
// on misconfiguration.
package config

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"time"
)

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Database DatabaseConfig
	ETL      ETLConfig
	Logging  LoggingConfig
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	// Host is the database server host (default: localhost)
	Host string `env:"DB_HOST" default:"localhost"`

	// Port is the database server port (default: 5432)
	Port int `env:"DB_PORT" default:"5432"`

	// Name is the database name (default: bank_db)
	Name string `env:"DB_NAME" default:"bank_db"`

	// User is the database role (default: postgres)
	User string `env:"DB_USER" default:"postgres"`

	// Password is the database password (default: postgres)
	Password string `env:"DB_PASSWORD" default:"postgres"`

	// SSLMode is the libpq sslmode value (default: prefer)
	SSLMode string `env:"DB_SSLMODE" default:"prefer"`

	// MaxConns is the maximum number of connections in the pool (default: 4)
	MaxConns int `env:"DB_MAX_CONNS" default:"4"`

	// MinConns is the minimum number of connections to keep open (default: 1)
	MinConns int `env:"DB_MIN_CONNS" default:"1"`

	// MaxConnLifetime is the maximum lifetime of a connection (default: 1h)
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`

	// MaxConnIdleTime is the maximum idle time before a connection is closed (default: 30m)
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" default:"30m"`
}

// ETLConfig holds the form 101 export/import settings.
type ETLConfig struct {
	// SourceTable is the form 101 relation read by export and used as the
	// structural reference when provisioning the import target.
	SourceTable string `env:"ETL_SOURCE_TABLE" default:"dm.dm_f101_round_f"`

	// TargetTable is the relation the import path provisions and loads into.
	TargetTable string `env:"ETL_TARGET_TABLE" default:"dm.dm_f101_round_f_v2"`

	// LedgerTable is the run ledger relation tracking every attempt.
	LedgerTable string `env:"ETL_LEDGER_TABLE" default:"logs.etl_logs"`

	// ExportFile is the CSV path the export path writes.
	ExportFile string `env:"ETL_EXPORT_FILE" default:"data/f101_round_data.csv"`

	// ImportFile is the CSV path the import path reads. By convention this is
	// the export output after hand edits.
	ImportFile string `env:"ETL_IMPORT_FILE" default:"data/f101_round_data_modified.csv"`

	// BatchSize is the number of rows per bulk-insert round trip (default: 1000)
	BatchSize int `env:"ETL_BATCH_SIZE" default:"1000"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// DSN returns the pgx connection string for the configured database.
func (c *DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.User, c.Password),
		Host:   net.JoinHostPort(c.Host, strconv.Itoa(c.Port)),
		Path:   "/" + c.Name,
	}
	q := u.Query()
	q.Set("sslmode", c.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}

// String returns a safe string representation of the config for logging.
// The database password is masked.
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{Database: {Host: %q, Port: %d, Name: %q, User: %q, Password: [MASKED], MaxConns: %d}, "+
			"ETL: {SourceTable: %q, TargetTable: %q, LedgerTable: %q, BatchSize: %d}, "+
			"Logging: {Level: %q, Format: %q}}",
		c.Database.Host, c.Database.Port, c.Database.Name, c.Database.User, c.Database.MaxConns,
		c.ETL.SourceTable, c.ETL.TargetTable, c.ETL.LedgerTable, c.ETL.BatchSize,
		c.Logging.Level, c.Logging.Format,
	)
}
