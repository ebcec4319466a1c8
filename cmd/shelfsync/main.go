package main

import (
	"context"
	"errors"
	"os"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/shelfsync/internal/shared"
)

var logger *log.Logger

func main() {
	logger = shared.NewLogger(nil)
	if hasVerboseFlag(os.Args) {
		shared.SetLogLevel(logger, log.DebugLevel)
	}

	config := shared.DefaultConfig()
	if _, err := os.Stat("config.toml"); err == nil {
		if loaded, err := shared.LoadConfig("config.toml"); err == nil {
			config = loaded
		}
	}

	runner, err := NewRunner(RunnerConfig{Config: config, Logger: logger})
	if err != nil {
		logger.Fatalf("failed to initialize runner: %v", err)
	}
	defer runner.Close()

	app := &cli.Command{
		Name:    "shelfsync",
		Usage:   "Sync a local music library against a remote catalog",
		Version: "0.1.0",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "Enable debug-level logging"},
		},
		Commands: []*cli.Command{
			setupCommand(runner),
			authCommand(runner),
			syncCommand(runner),
			bindCommand(runner),
			dedupeCommand(runner),
			exportCommand(runner),
			serveCommand(runner),
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		switch {
		case errors.Is(err, shared.ErrCancelled):
			logger.Warn("cancelled")
			os.Exit(2)
		case errors.Is(err, shared.ErrNotImplemented):
			logger.Warn("not implemented")
			os.Exit(0)
		default:
			logger.Errorf("application error: %v", err)
			os.Exit(1)
		}
	}
}

// hasVerboseFlag scans the raw args for -v/--verbose ahead of the CLI
// framework's own flag parsing, since the logger is built before any
// cli.Command runs.
func hasVerboseFlag(args []string) bool {
	for _, a := range args {
		if a == "-v" || a == "--verbose" {
			return true
		}
	}
	return false
}

func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Initialize the database and run migrations",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Value: "config.toml", Usage: "Path to configuration file"},
		},
		Action: r.Setup,
	}
}
