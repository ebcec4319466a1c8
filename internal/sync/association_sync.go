package sync

import (
	"context"
	"fmt"
	"sync"

	"github.com/desertthunder/shelfsync/internal/models"
	"github.com/desertthunder/shelfsync/internal/remote"
)

type dirtyFetch struct {
	playlistID string
	uris       []string
	token      string
	err        error
}

// AnalyzeAssociations compares each non-reference playlist's stored
// associations_token against its current remote token; only "dirty"
// playlists (token changed) are re-read. It makes no catalog writes.
func (e *Engine) AnalyzeAssociations(ctx context.Context, filter remote.FilterConfig, progress chan<- ProgressUpdate) (*AssociationPlan, error) {
	sendProgress(progress, associationsUpdate(1, 3, "fetching remote playlist tokens"))
	summaries, err := e.client.ListUserPlaylists(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list user playlists: %w", err)
	}

	uow, err := e.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire catalog connection: %w", err)
	}
	defer uow.Rollback()

	storePlaylists, err := uow.Playlists.List()
	if err != nil {
		return nil, fmt.Errorf("list store playlists: %w", err)
	}
	storeTokens := make(map[string]string, len(storePlaylists))
	for _, p := range storePlaylists {
		storeTokens[p.ID] = p.AssociationsToken
	}

	storeTracks, err := uow.Tracks.List()
	if err != nil {
		return nil, fmt.Errorf("list store tracks: %w", err)
	}
	known := make(map[string]struct{}, len(storeTracks))
	for _, t := range storeTracks {
		known[t.URI] = struct{}{}
	}

	var dirty []remote.PlaylistSummary
	for _, s := range summaries {
		if models.IsReference(s.ID, e.referencePlaylistID) {
			continue
		}
		if storeTokens[s.ID] != s.Snapshot {
			dirty = append(dirty, s)
		}
	}

	plan := &AssociationPlan{ObservedTokens: make(map[string]string)}
	if len(dirty) == 0 {
		return plan, nil
	}

	allMappings, err := uow.AllPlaylistTrackMappings()
	if err != nil {
		return nil, fmt.Errorf("load store associations: %w", err)
	}

	sendProgress(progress, associationsUpdate(2, 3, fmt.Sprintf("fetching %d dirty playlists", len(dirty))))
	fetches := fetchDirtyPlaylists(ctx, e.client, dirty)

	sendProgress(progress, associationsUpdate(3, 3, "computing association diff"))
	for i, f := range fetches {
		if f.err != nil {
			plan.Warnings = append(plan.Warnings, fmt.Sprintf("playlist %s: %v", f.playlistID, f.err))
			continue
		}

		freshURIs := make([]string, 0, len(f.uris))
		for _, uri := range f.uris {
			if _, ok := known[uri]; ok {
				freshURIs = append(freshURIs, uri)
			}
		}

		freshSet := edgeSetFor(f.playlistID, freshURIs)
		storedSet := edgeSetFor(f.playlistID, allMappings[f.playlistID])

		plan.ToAdd = append(plan.ToAdd, freshSet.Minus(storedSet)...)
		plan.ToRemove = append(plan.ToRemove, storedSet.Minus(freshSet)...)
		plan.DirtyPlaylists = append(plan.DirtyPlaylists, f.playlistID)
		plan.ObservedTokens[f.playlistID] = dirty[i].Snapshot
	}

	return plan, nil
}

func edgeSetFor(playlistID string, uris []string) models.EdgeSet {
	edges := make([]models.TrackPlaylistEdge, 0, len(uris))
	for _, uri := range uris {
		edges = append(edges, models.TrackPlaylistEdge{PlaylistID: playlistID, TrackURI: uri})
	}
	return models.NewEdgeSet(edges...)
}

// fetchDirtyPlaylists reads each dirty playlist's item URIs concurrently —
// these are independent remote reads with no shared mutable state.
func fetchDirtyPlaylists(ctx context.Context, client remote.Client, dirty []remote.PlaylistSummary) []dirtyFetch {
	results := make([]dirtyFetch, len(dirty))
	var wg sync.WaitGroup
	for i, p := range dirty {
		wg.Add(1)
		go func(i int, p remote.PlaylistSummary) {
			defer wg.Done()
			uris, err := client.ListPlaylistItemURIs(ctx, p.ID)
			results[i] = dirtyFetch{playlistID: p.ID, uris: uris, token: p.Snapshot, err: err}
		}(i, p)
	}
	wg.Wait()
	return results
}

// ExecuteAssociations applies an AssociationPlan's edge changes in one
// transaction, then advances every touched playlist's associations_token.
func (e *Engine) ExecuteAssociations(ctx context.Context, plan *AssociationPlan, progress chan<- ProgressUpdate) error {
	if plan.Empty() {
		return nil
	}

	uow, err := e.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire catalog connection: %w", err)
	}
	defer uow.Rollback()

	total := len(plan.ToAdd) + len(plan.ToRemove)
	step := 0

	for _, edge := range plan.ToAdd {
		step++
		sendProgress(progress, associationsUpdate(step, total, fmt.Sprintf("adding %s to %s", edge.TrackURI, edge.PlaylistID)))
		if err := uow.Associations.Add(edge); err != nil {
			return fmt.Errorf("add edge %s/%s: %w", edge.PlaylistID, edge.TrackURI, err)
		}
	}

	for _, edge := range plan.ToRemove {
		step++
		sendProgress(progress, associationsUpdate(step, total, fmt.Sprintf("removing %s from %s", edge.TrackURI, edge.PlaylistID)))
		if err := uow.Associations.Remove(edge); err != nil {
			return fmt.Errorf("remove edge %s/%s: %w", edge.PlaylistID, edge.TrackURI, err)
		}
	}

	for _, playlistID := range plan.DirtyPlaylists {
		token, ok := plan.ObservedTokens[playlistID]
		if !ok {
			continue
		}
		if err := uow.Playlists.UpdateAssociationsToken(playlistID, token); err != nil {
			return fmt.Errorf("advance associations token for %s: %w", playlistID, err)
		}
	}

	return uow.Commit()
}
