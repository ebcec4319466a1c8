package main

import (
	"context"
	"fmt"
	"strconv"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/shelfsync/internal/binder"
	"github.com/desertthunder/shelfsync/internal/shared"
	"github.com/desertthunder/shelfsync/internal/ui"
)

func bindCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "bind",
		Usage: "Bind local audio files to catalog tracks",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "root", Usage: "Directory to scan for audio files", Required: true},
			&cli.StringFlag{Name: "threshold", Usage: "Minimum match score for an automatic bind", Value: fmt.Sprintf("%.2f", binder.DefaultThreshold)},
			&cli.BoolFlag{Name: "interactive", Usage: "Launch a TUI to resolve ambiguous files"},
			&cli.BoolFlag{Name: "pretty", Usage: "Pretty-print JSON output", Value: true},
		},
		Action: r.Bind,
	}
}

// Bind runs the binder's analyze phase and, depending on --interactive,
// either reports the plan or walks the user through resolving it before
// executing.
func (r *Runner) Bind(ctx context.Context, cmd *cli.Command) error {
	root, err := shared.AbsolutePath(shared.ExpandPath(cmd.String("root")))
	if err != nil {
		return fmt.Errorf("%w: --root: %v", shared.ErrInvalidFlag, err)
	}
	threshold, err := strconv.ParseFloat(cmd.String("threshold"), 64)
	if err != nil {
		return fmt.Errorf("%w: --threshold must be a number", shared.ErrInvalidFlag)
	}

	plan, err := r.binder.Analyze(ctx, root, threshold)
	if err != nil {
		return fmt.Errorf("analyze failed: %w", err)
	}

	selections := make(map[string]string)
	if cmd.Bool("interactive") && len(plan.NeedsSelection) > 0 {
		fileLogger, err := shared.NewFileLogger("./tmp/shelfsync-bind.log")
		if err != nil {
			return fmt.Errorf("failed to create file logger: %w", err)
		}
		r.SetLogger(fileLogger)

		model := ui.NewModel(plan)
		program := tea.NewProgram(model)
		result, err := program.Run()
		if err != nil {
			return fmt.Errorf("error running bind TUI: %w", err)
		}
		if resolved, ok := result.(*ui.Model); ok {
			selections = resolved.Resolutions()
		}
	}

	result, err := r.binder.Execute(ctx, plan, selections, nil)
	if err != nil {
		return fmt.Errorf("execute failed: %w", err)
	}

	return r.writeJSON(result, cmd.Bool("pretty"))
}
