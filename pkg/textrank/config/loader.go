package config

import (
	"context"
	"fmt"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/cognicore/textrank/pkg/textrank"
	"github.com/cognicore/textrank/pkg/textrank/internalerr"
	"github.com/cognicore/textrank/pkg/textrank/store"
	"github.com/cognicore/textrank/pkg/textrank/store/memstore"
	"github.com/cognicore/textrank/pkg/textrank/store/sqlite"
	"github.com/cognicore/textrank/pkg/textrank/summarize"
)

// Loader loads the configuration file and environment, then constructs
// components
type Loader struct {
	ConfigPath string
	EnvFile    string
}

// Components holds all loaded configuration components
type Components struct {
	Config  Config
	Options textrank.Options
	Summary summarize.Options
	Logger  *zap.Logger
}

// Load reads the config file and environment and returns initialized
// components
func (l *Loader) Load() (*Components, error) {
	if l.EnvFile != "" {
		if err := godotenv.Load(l.EnvFile); err != nil {
			return nil, fmt.Errorf("load env file: %w", err)
		}
	}

	cfg := Default()
	if l.ConfigPath != "" {
		var err error
		if cfg, err = LoadConfig(l.ConfigPath); err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
	}
	ApplyEnv(&cfg)

	opts, err := cfg.Options()
	if err != nil {
		return nil, err
	}
	logger, err := NewLogger(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	opts.Logger = logger

	return &Components{
		Config:  cfg,
		Options: opts,
		Summary: cfg.Summary,
		Logger:  logger,
	}, nil
}

// Engine creates an engine from the loaded options
func (c *Components) Engine() (*textrank.Engine, error) {
	return textrank.New(c.Options)
}

// OpenStore opens the SQLite store at db_path, or an in-memory store when
// no path is configured.
func (c *Components) OpenStore(ctx context.Context) (store.Store, error) {
	if c.Config.DBPath == "" {
		return memstore.New(), nil
	}
	st, err := sqlite.OpenSQLite(ctx, c.Config.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open store %s: %w", c.Config.DBPath, err)
	}
	return st, nil
}

// NewLogger builds a production zap logger at the given level. An empty
// level or "nop" disables logging.
func NewLogger(level string) (*zap.Logger, error) {
	if level == "" || level == "nop" {
		return zap.NewNop(), nil
	}
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("%w: log level %q", internalerr.ErrInvalidConfig, level)
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	return cfg.Build()
}
