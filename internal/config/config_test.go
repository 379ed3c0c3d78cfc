package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"KIDQUEST_DB_DRIVER", "KIDQUEST_DB", "KIDQUEST_CONTENT_DIR", "KIDQUEST_LOG_LEVEL",
		"KIDQUEST_LOG_JSON", "KIDQUEST_OTEL_ENDPOINT", "KIDQUEST_OTEL_ENABLED", "KIDQUEST_OTEL_SERVICE",
	} {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.False(t, cfg.LogJSON)
	assert.Equal(t, "kidquest", cfg.Telemetry.Service)
	assert.False(t, cfg.Telemetry.Active())
}

func TestLoadFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("KIDQUEST_DB_DRIVER", "postgres")
	t.Setenv("KIDQUEST_DB", "postgres://kid@localhost/kidquest?sslmode=disable")
	t.Setenv("KIDQUEST_CONTENT_DIR", "/srv/games")
	t.Setenv("KIDQUEST_LOG_LEVEL", "debug")
	t.Setenv("KIDQUEST_LOG_JSON", "true")
	t.Setenv("KIDQUEST_OTEL_ENDPOINT", "http://localhost:4318")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, "/srv/games", cfg.ContentDir)
	assert.True(t, cfg.LogJSON)
	assert.True(t, cfg.Telemetry.Active())

	dsn, err := cfg.DSN()
	require.NoError(t, err)
	assert.Equal(t, "postgres://kid@localhost/kidquest?sslmode=disable", dsn)

	t.Setenv("KIDQUEST_OTEL_ENABLED", "false")
	cfg, err = Load()
	require.NoError(t, err)
	assert.False(t, cfg.Telemetry.Active())
}

func TestLoadLeavesValidationToCaller(t *testing.T) {
	clearEnv(t)
	t.Setenv("KIDQUEST_DB_DRIVER", "postgres")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Error(t, cfg.Validate())

	cfg.DB = "postgres://kid@localhost/kidquest"
	assert.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{"sqlite default", Config{DBDriver: "sqlite", LogLevel: "warn"}, ""},
		{"level case-insensitive", Config{DBDriver: "sqlite", LogLevel: "DEBUG"}, ""},
		{"mysql with dsn", Config{DBDriver: "mysql", DB: "kid:pw@/kidquest", LogLevel: "info"}, ""},
		{"mysql without dsn", Config{DBDriver: "mysql", LogLevel: "info"}, "must hold a DSN"},
		{"unknown driver", Config{DBDriver: "oracle", LogLevel: "info"}, "unsupported database driver"},
		{"unknown level", Config{DBDriver: "sqlite", LogLevel: "loud"}, "unknown log level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestDSNDefaultsToXDG(t *testing.T) {
	dataHome := t.TempDir()
	t.Setenv("XDG_DATA_HOME", dataHome)

	dsn, err := Config{DBDriver: "sqlite"}.DSN()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dataHome, "kidquest", "kidquest.db"), dsn)
	assert.DirExists(t, filepath.Join(dataHome, "kidquest"))

	_, err = Config{DBDriver: "postgres"}.DSN()
	assert.Error(t, err)
}
