package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/shelfsync/internal/binder"
	"github.com/desertthunder/shelfsync/internal/catalog"
	"github.com/desertthunder/shelfsync/internal/dedupe"
	"github.com/desertthunder/shelfsync/internal/exporter"
	"github.com/desertthunder/shelfsync/internal/orchestrator"
	"github.com/desertthunder/shelfsync/internal/remote"
	"github.com/desertthunder/shelfsync/internal/shared"
	"github.com/desertthunder/shelfsync/internal/sync"
)

// Runner holds all dependencies for CLI commands and provides methods for
// each command action.
type Runner struct {
	config       *shared.Config
	db           func() error
	pool         *catalog.Pool
	client       remote.Client
	orchestrator *orchestrator.Orchestrator
	binder       *binder.Engine
	dedupe       *dedupe.Engine
	exporter     *exporter.Engine
	logger       *log.Logger
	output       io.Writer
}

// RunnerConfig contains configuration options for creating a Runner.
type RunnerConfig struct {
	Config *shared.Config
	Client remote.Client
	Logger *log.Logger
	Output io.Writer
}

// NewRunner creates a new Runner with the provided configuration, opening
// the catalog database and wiring every engine against it.
func NewRunner(cfg RunnerConfig) (*Runner, error) {
	if cfg.Config == nil {
		cfg.Config = shared.DefaultConfig()
	}
	if cfg.Logger == nil {
		cfg.Logger = shared.NewLogger(nil)
	}
	cfg.Logger = shared.WithLogger(cfg.Logger, "component", "cli")
	if cfg.Output == nil {
		cfg.Output = os.Stdout
	}

	db, err := shared.NewDatabase(cfg.Config.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	shared.ConfigureDatabase(db, cfg.Config.Database.MaxOpenConns, cfg.Config.Database.MaxIdleConns)

	pool := catalog.NewPool(db, cfg.Config.Database.MaxOpenConns)

	client := cfg.Client
	if client == nil {
		client = remote.NewNoopClient()
	}

	syncEngine := sync.New(pool, client, cfg.Config.Library.ReferencePlaylistID)

	return &Runner{
		config:       cfg.Config,
		db:           db.Close,
		pool:         pool,
		client:       client,
		orchestrator: orchestrator.New(syncEngine),
		binder:       binder.New(pool),
		dedupe:       dedupe.New(pool),
		exporter:     exporter.New(pool),
		logger:       cfg.Logger,
		output:       cfg.Output,
	}, nil
}

// Close releases the underlying database connection.
func (r *Runner) Close() error {
	if r.db == nil {
		return nil
	}
	return r.db()
}

// SetLogger swaps the runner's logger, used when a command needs to
// redirect logs away from stdout (an interactive TUI, for instance).
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	output, err := shared.MarshalJSON(data, pretty)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}
	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// Setup initializes the database and runs migrations against the database
// path from the config file named by --config, falling back to the
// runner's current configuration when that file is absent or fails to load.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	config := r.config
	if _, err := os.Stat(configPath); err == nil {
		if loaded, err := shared.LoadConfig(configPath); err == nil {
			config = loaded
		} else {
			r.logger.Warn("failed to load config, using current", "error", err)
		}
	}

	r.logger.Info("running database migrations", "path", config.Database.Path)
	db, err := shared.NewDatabase(config.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := shared.RunMigrations(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	r.logger.Infof("setup complete for database: %v", config.Database.Path)
	return nil
}
