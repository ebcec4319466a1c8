package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"
)

func dedupeCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "dedupe",
		Usage: "Detect and clean up duplicate catalog tracks",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "confirm", Usage: "Apply cleanup for the detected duplicate groups"},
			&cli.BoolFlag{Name: "dry-run", Usage: "Report what cleanup would do without deleting anything"},
			&cli.BoolFlag{Name: "pretty", Usage: "Pretty-print JSON output", Value: true},
		},
		Action: r.Dedupe,
	}
}

// Dedupe detects duplicate catalog tracks and, with --confirm, adds each
// group's primary to its duplicates' playlists and deletes the duplicates.
func (r *Runner) Dedupe(ctx context.Context, cmd *cli.Command) error {
	groups, err := r.dedupe.Detect(ctx)
	if err != nil {
		return fmt.Errorf("detect failed: %w", err)
	}

	if !cmd.Bool("confirm") {
		return r.writeJSON(groups, cmd.Bool("pretty"))
	}

	result, err := r.dedupe.Cleanup(ctx, groups, cmd.Bool("dry-run"))
	if err != nil {
		return fmt.Errorf("cleanup failed: %w", err)
	}
	return r.writeJSON(result, cmd.Bool("pretty"))
}
