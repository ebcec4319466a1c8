package main

import (
	"context"
	"fmt"
	"time"

	"github.com/urfave/cli/v3"
)

func exportCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Regenerate playlist files or clean up the playlists directory",
		Commands: []*cli.Command{
			{
				Name:  "playlist",
				Usage: "Regenerate a single playlist's .m3u file",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "id", Usage: "Playlist ID", Required: true},
					&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "Playlists output directory", Required: true},
					&cli.BoolFlag{Name: "plain", Usage: "Write bare one-path-per-line files instead of #EXTM3U"},
					&cli.BoolFlag{Name: "pretty", Usage: "Pretty-print JSON output", Value: true},
				},
				Action: r.ExportPlaylist,
			},
			{
				Name:  "all",
				Usage: "Regenerate every playlist's .m3u file",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "Playlists output directory", Required: true},
					&cli.StringSliceFlag{Name: "id", Usage: "Playlist ID to include (repeatable); all playlists if omitted"},
					&cli.BoolFlag{Name: "plain", Usage: "Write bare one-path-per-line files instead of #EXTM3U"},
					&cli.BoolFlag{Name: "pretty", Usage: "Pretty-print JSON output", Value: true},
				},
				Action: r.ExportAll,
			},
			{
				Name:  "cleanup",
				Usage: "Remove orphaned .m3u files whose names match no catalog playlist",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "Playlists output directory", Required: true},
					&cli.BoolFlag{Name: "dry-run", Usage: "Report orphans without deleting them"},
					&cli.BoolFlag{Name: "pretty", Usage: "Pretty-print JSON output", Value: true},
				},
				Action: r.ExportCleanup,
			},
		},
	}
}

// ExportPlaylist regenerates a single playlist's .m3u file.
func (r *Runner) ExportPlaylist(ctx context.Context, cmd *cli.Command) error {
	result, err := r.exporter.RegeneratePlaylist(ctx, cmd.String("id"), cmd.String("output"), !cmd.Bool("plain"))
	if err != nil {
		return fmt.Errorf("regenerate failed: %w", err)
	}
	return r.writeJSON(result, cmd.Bool("pretty"))
}

// ExportAll regenerates every named playlist (or every playlist in the
// catalog when --id is omitted) in one batch.
func (r *Runner) ExportAll(ctx context.Context, cmd *cli.Command) error {
	ids := cmd.StringSlice("id")
	if len(ids) == 0 {
		var err error
		ids, err = r.allPlaylistIDs(ctx)
		if err != nil {
			return fmt.Errorf("list playlists failed: %w", err)
		}
	}

	result, err := r.exporter.RegenerateBatch(ctx, ids, cmd.String("output"), !cmd.Bool("plain"))
	if err != nil {
		return fmt.Errorf("regenerate batch failed: %w", err)
	}
	return r.writeJSON(result, cmd.Bool("pretty"))
}

// ExportCleanup removes .m3u files whose names match no catalog playlist,
// then prunes those names from the structure state.
func (r *Runner) ExportCleanup(ctx context.Context, cmd *cli.Command) error {
	removed, err := r.exporter.CleanupOrphans(ctx, cmd.String("output"), cmd.Bool("dry-run"), time.Now())
	if err != nil {
		return fmt.Errorf("cleanup failed: %w", err)
	}
	return r.writeJSON(removed, cmd.Bool("pretty"))
}

func (r *Runner) allPlaylistIDs(ctx context.Context) ([]string, error) {
	uow, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer uow.Rollback()

	playlists, err := uow.Playlists.List()
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(playlists))
	for i, p := range playlists {
		ids[i] = p.ID
	}
	return ids, nil
}
