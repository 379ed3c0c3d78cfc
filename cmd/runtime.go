package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/abhisek/kidquest/internal/catalog"
	"github.com/abhisek/kidquest/internal/config"
	"github.com/abhisek/kidquest/internal/logging"
	"github.com/abhisek/kidquest/internal/rewards"
	"github.com/abhisek/kidquest/internal/screens"
	"github.com/abhisek/kidquest/internal/store"
	"github.com/abhisek/kidquest/internal/telemetry"
)

// runtime holds the services a command needs. Close releases them.
type runtime struct {
	cfg      config.Config
	logger   hclog.Logger
	registry *catalog.Registry
	store    *store.Store // nil until openStore

	closers []func() error
}

// loadConfig reads the environment and applies the persistent flags.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, err
	}
	flags := cmd.Flags()
	if flags.Changed("db") {
		cfg.DB, _ = flags.GetString("db")
	}
	if flags.Changed("db-driver") {
		cfg.DBDriver, _ = flags.GetString("db-driver")
	}
	if flags.Changed("content-dir") {
		cfg.ContentDir, _ = flags.GetString("content-dir")
	}
	if flags.Changed("log-level") {
		cfg.LogLevel, _ = flags.GetString("log-level")
	}
	return cfg, cfg.Validate()
}

// newRuntime loads configuration, the logger, tracing and the game catalog.
func newRuntime(cmd *cobra.Command) (*runtime, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	rt := &runtime{cfg: cfg}

	var out io.Writer = os.Stderr
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		rt.closers = append(rt.closers, f.Close)
		out = f
	}
	rt.logger = logging.New(logging.Options{Level: cfg.LogLevel, JSON: cfg.LogJSON, Output: out})

	shutdown, err := telemetry.Setup(cmd.Context(), cfg.Telemetry, version)
	if err != nil {
		rt.Close()
		return nil, err
	}
	rt.closers = append(rt.closers, func() error { return shutdown(context.Background()) })

	rt.registry, err = catalog.LoadDefault(cfg.ContentDir)
	if err != nil {
		rt.Close()
		return nil, fmt.Errorf("load games: %w", err)
	}
	rt.logger.Debug("games loaded", "count", rt.registry.Len(), "content_dir", cfg.ContentDir)
	return rt, nil
}

// openStore opens the configured event store.
func (rt *runtime) openStore() (*store.Store, error) {
	if rt.store != nil {
		return rt.store, nil
	}
	dsn, err := rt.cfg.DSN()
	if err != nil {
		return nil, fmt.Errorf("resolve database: %w", err)
	}
	if rt.cfg.DBDriver == store.DriverSQLite {
		if err := store.EnsureDir(dsn); err != nil {
			return nil, fmt.Errorf("create database dir: %w", err)
		}
	}
	st, err := store.Open(rt.cfg.DBDriver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	rt.logger.Debug("store opened", "driver", rt.cfg.DBDriver, "dialect", st.Dialect())
	rt.store = st
	rt.closers = append(rt.closers, st.Close)
	return st, nil
}

// env builds the screen environment backed by the store.
func (rt *runtime) env() (screens.Env, error) {
	st, err := rt.openStore()
	if err != nil {
		return screens.Env{}, err
	}
	repo := st.EventRepo()
	return screens.Env{
		Registry: rt.registry,
		Events:   repo,
		Rewards:  rewards.NewService(repo, rt.logger),
		Logger:   rt.logger,
	}.WithDefaults(), nil
}

// Close releases resources in reverse order of acquisition.
func (rt *runtime) Close() {
	for i := len(rt.closers) - 1; i >= 0; i-- {
		if err := rt.closers[i](); err != nil && rt.logger != nil {
			rt.logger.Warn("close failed", "error", err)
		}
	}
	rt.closers = nil
}
