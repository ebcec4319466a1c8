package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/shelfsync/internal/orchestrator"
)

// syncCommand drives the orchestrator's analyze/execute protocol from the
// command line: a dry-run analysis by default, --confirm to execute it.
func syncCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "sync",
		Usage: "Analyze or execute a sync action against the remote catalog",
		Commands: []*cli.Command{
			{
				Name:  "playlists",
				Usage: "Sync playlist metadata",
				Flags: syncFlags(),
				Action: r.syncAction(orchestrator.ActionPlaylists),
			},
			{
				Name:  "tracks",
				Usage: "Sync track metadata",
				Flags: syncFlags(),
				Action: r.syncAction(orchestrator.ActionTracks),
			},
			{
				Name:  "associations",
				Usage: "Sync playlist/track associations",
				Flags: syncFlags(),
				Action: r.syncAction(orchestrator.ActionAssociations),
			},
			{
				Name:  "all",
				Usage: "Sync playlists, tracks, and associations in sequence",
				Flags: syncFlags(),
				Action: r.syncAction(orchestrator.ActionAll),
			},
			{
				Name:   "clear",
				Usage:  "Clear the local catalog mirror",
				Action: r.syncAction(orchestrator.ActionClear),
			},
		},
	}
}

func syncFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{Name: "confirm", Usage: "Execute the previously analyzed plan instead of only reporting it"},
		&cli.BoolFlag{Name: "force-refresh", Usage: "Ignore snapshot tokens and re-read every playlist"},
		&cli.BoolFlag{Name: "pretty", Usage: "Pretty-print JSON output", Value: true},
	}
}

func (r *Runner) syncAction(action orchestrator.Action) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		req := orchestrator.Request{
			Action:       action,
			Confirmed:    cmd.Bool("confirm"),
			ForceRefresh: cmd.Bool("force-refresh"),
		}
		resp := r.orchestrator.Handle(ctx, req)
		if !resp.Success {
			r.logger.Error("sync failed", "action", action, "message", resp.Message)
		}
		return r.writeJSON(resp, cmd.Bool("pretty"))
	}
}
