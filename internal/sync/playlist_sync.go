package sync

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/shelfsync/internal/models"
	"github.com/desertthunder/shelfsync/internal/remote"
)

// AnalyzePlaylists diffs (id, trimmed-name) tuples from the remote against
// the store. It makes no catalog writes.
func (e *Engine) AnalyzePlaylists(ctx context.Context, filter remote.FilterConfig, progress chan<- ProgressUpdate) (*PlaylistPlan, error) {
	sendProgress(progress, playlistsUpdate(1, 2, "fetching remote playlists"))
	remotePlaylists, err := e.client.ListUserPlaylists(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list user playlists: %w", err)
	}

	uow, err := e.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire catalog connection: %w", err)
	}
	defer uow.Rollback()

	sendProgress(progress, playlistsUpdate(2, 2, "diffing against catalog"))
	storePlaylists, err := uow.Playlists.List()
	if err != nil {
		return nil, fmt.Errorf("list store playlists: %w", err)
	}

	storeByID := make(map[string]models.Playlist, len(storePlaylists))
	for _, p := range storePlaylists {
		storeByID[p.ID] = p
	}

	remoteByID := make(map[string]remote.PlaylistSummary, len(remotePlaylists))
	for _, p := range remotePlaylists {
		remoteByID[p.ID] = p
	}

	plan := &PlaylistPlan{}

	for _, rp := range remotePlaylists {
		stored, exists := storeByID[rp.ID]
		if !exists {
			plan.ToAdd = append(plan.ToAdd, models.Playlist{ID: rp.ID, Name: rp.Name})
			continue
		}
		if stored.TrimmedName() != strings.TrimSpace(rp.Name) {
			plan.ToUpdate = append(plan.ToUpdate, PlaylistRename{ID: rp.ID, Name: rp.Name, OldName: stored.Name})
			continue
		}
	}

	for _, sp := range storePlaylists {
		if models.IsReference(sp.ID, e.referencePlaylistID) {
			continue
		}
		if _, stillRemote := remoteByID[sp.ID]; !stillRemote {
			plan.ToDelete = append(plan.ToDelete, sp.ID)
		}
	}

	plan.Stats = Stats{
		Added:     len(plan.ToAdd),
		Updated:   len(plan.ToUpdate),
		Deleted:   len(plan.ToDelete),
		Unchanged: len(remotePlaylists) - len(plan.ToAdd) - len(plan.ToUpdate),
	}

	return plan, nil
}

// ExecutePlaylists applies a PlaylistPlan in one transaction. Deletions
// remove TrackPlaylist edges first. Version tokens are untouched here —
// TrackSync and AssociationSync own them.
func (e *Engine) ExecutePlaylists(ctx context.Context, plan *PlaylistPlan, progress chan<- ProgressUpdate) error {
	uow, err := e.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire catalog connection: %w", err)
	}
	defer uow.Rollback()

	total := len(plan.ToAdd) + len(plan.ToUpdate) + len(plan.ToDelete)
	step := 0

	for _, p := range plan.ToAdd {
		step++
		sendProgress(progress, playlistsUpdate(step, total, fmt.Sprintf("adding playlist %s", p.Name)))
		if err := uow.Playlists.Create(p); err != nil {
			return fmt.Errorf("create playlist %s: %w", p.ID, err)
		}
	}

	for _, u := range plan.ToUpdate {
		step++
		sendProgress(progress, playlistsUpdate(step, total, fmt.Sprintf("renaming playlist %s", u.ID)))
		if err := uow.Playlists.UpdateName(u.ID, u.Name); err != nil {
			return fmt.Errorf("rename playlist %s: %w", u.ID, err)
		}
	}

	for _, id := range plan.ToDelete {
		step++
		sendProgress(progress, playlistsUpdate(step, total, fmt.Sprintf("deleting playlist %s", id)))
		if err := uow.DeleteAllForPlaylist(id); err != nil {
			return fmt.Errorf("delete edges for playlist %s: %w", id, err)
		}
		if err := uow.Playlists.Delete(id); err != nil {
			return fmt.Errorf("delete playlist %s: %w", id, err)
		}
	}

	return uow.Commit()
}
