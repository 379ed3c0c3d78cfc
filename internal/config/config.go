package config

import (
	"fmt"
	"slices"
	"strings"

	"github.com/caarlos0/env/v11"

	"github.com/abhisek/kidquest/internal/store"
)

// Config is the process-wide configuration read from the environment.
// Command line flags override individual fields after loading.
type Config struct {
	DBDriver   string `env:"KIDQUEST_DB_DRIVER" envDefault:"sqlite"`
	DB         string `env:"KIDQUEST_DB"` // sqlite path or server DSN; empty uses the XDG data dir
	ContentDir string `env:"KIDQUEST_CONTENT_DIR"`

	LogLevel string `env:"KIDQUEST_LOG_LEVEL" envDefault:"warn"`
	LogJSON  bool   `env:"KIDQUEST_LOG_JSON"`
	LogFile  string `env:"KIDQUEST_LOG_FILE"` // empty logs to stderr

	Telemetry Telemetry
}

// Telemetry configures OpenTelemetry tracing. Tracing stays off unless an
// endpoint is set.
type Telemetry struct {
	Endpoint string `env:"KIDQUEST_OTEL_ENDPOINT"`
	Enabled  bool   `env:"KIDQUEST_OTEL_ENABLED" envDefault:"true"`
	Service  string `env:"KIDQUEST_OTEL_SERVICE" envDefault:"kidquest"`
}

// Active reports whether traces should be exported.
func (t Telemetry) Active() bool {
	return t.Enabled && t.Endpoint != ""
}

var logLevels = []string{"trace", "debug", "info", "warn", "error"}

// Load reads the environment. It does not validate: callers apply their
// overrides first and then call Validate.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// Validate checks enumerated values.
func (c Config) Validate() error {
	switch c.DBDriver {
	case store.DriverSQLite, store.DriverPostgres, store.DriverMySQL:
	default:
		return fmt.Errorf("unsupported database driver %q (want sqlite, postgres or mysql)", c.DBDriver)
	}
	if c.DBDriver != store.DriverSQLite && c.DB == "" {
		return fmt.Errorf("KIDQUEST_DB must hold a DSN for the %s driver", c.DBDriver)
	}
	if !slices.Contains(logLevels, strings.ToLower(c.LogLevel)) {
		return fmt.Errorf("unknown log level %q (want one of %s)", c.LogLevel, strings.Join(logLevels, ", "))
	}
	return nil
}

// DSN returns the data source for the store, defaulting the SQLite path.
func (c Config) DSN() (string, error) {
	if c.DB != "" {
		return c.DB, nil
	}
	if c.DBDriver != store.DriverSQLite {
		return "", fmt.Errorf("KIDQUEST_DB is required for the %s driver", c.DBDriver)
	}
	return store.DefaultDBPath()
}
