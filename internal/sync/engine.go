package sync

import (
	"context"
	"fmt"

	"github.com/desertthunder/shelfsync/internal/catalog"
	"github.com/desertthunder/shelfsync/internal/remote"
)

// Engine orchestrates C1 (catalog) and C2 (remote client) through the
// three sync operations. One Engine is built per process and reused
// across requests; it holds no per-request mutable state of its own.
type Engine struct {
	pool                *catalog.Pool
	client              remote.Client
	referencePlaylistID string
}

// New builds an Engine. referencePlaylistID identifies the "master"
// playlist whose contents define the Track universe.
func New(pool *catalog.Pool, client remote.Client, referencePlaylistID string) *Engine {
	return &Engine{pool: pool, client: client, referencePlaylistID: referencePlaylistID}
}

// AllPlan bundles one plan per stage of the "all" pipeline, threaded from
// AnalyzeAll to ExecuteAll (or individually confirmed/executed by the
// orchestrator one stage at a time).
type AllPlan struct {
	Playlists    *PlaylistPlan
	Tracks       *TrackPlan
	Associations *AssociationPlan
}

// AnalyzeAll runs PlaylistSync, TrackSync, and AssociationSync analysis in
// their fixed order, stopping at the first error.
func (e *Engine) AnalyzeAll(ctx context.Context, filter remote.FilterConfig, progress chan<- ProgressUpdate) (*AllPlan, error) {
	playlistPlan, err := e.AnalyzePlaylists(ctx, filter, progress)
	if err != nil {
		return nil, fmt.Errorf("analyze playlists: %w", err)
	}

	trackPlan, err := e.AnalyzeTracks(ctx, progress)
	if err != nil {
		return nil, fmt.Errorf("analyze tracks: %w", err)
	}

	associationPlan, err := e.AnalyzeAssociations(ctx, filter, progress)
	if err != nil {
		return nil, fmt.Errorf("analyze associations: %w", err)
	}

	return &AllPlan{Playlists: playlistPlan, Tracks: trackPlan, Associations: associationPlan}, nil
}

// ExecuteAll applies a previously analyzed AllPlan in the same fixed
// order: playlists, then tracks, then associations.
func (e *Engine) ExecuteAll(ctx context.Context, plan *AllPlan, progress chan<- ProgressUpdate) error {
	if err := e.ExecutePlaylists(ctx, plan.Playlists, progress); err != nil {
		return fmt.Errorf("execute playlists: %w", err)
	}
	if err := e.ExecuteTracks(ctx, plan.Tracks, progress); err != nil {
		return fmt.Errorf("execute tracks: %w", err)
	}
	if err := e.ExecuteAssociations(ctx, plan.Associations, progress); err != nil {
		return fmt.Errorf("execute associations: %w", err)
	}
	return nil
}
