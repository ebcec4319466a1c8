package sync

import (
	"context"
	"fmt"

	"github.com/desertthunder/shelfsync/internal/models"
	"github.com/desertthunder/shelfsync/internal/remote"
)

// itemURI derives a track's identity from a remote item: local entries
// (no stable remote ID) get a deterministic surrogate URI; everything
// else is identified by its own URI.
func itemURI(service string, item remote.Item) string {
	if !item.IsLocal {
		return item.URI
	}
	durationSec := 0
	if item.DurationMS != nil {
		durationSec = *item.DurationMS / 1000
	}
	return models.LocalURI(service, joinArtists(item.Artists), item.Album, item.Title, durationSec)
}

func joinArtists(artists []string) string {
	out := ""
	for i, a := range artists {
		if i > 0 {
			out += ", "
		}
		out += a
	}
	return out
}

func itemToTrack(service string, item remote.Item) models.Track {
	artist := joinArtists(item.Artists)
	t := models.Track{
		URI:        itemURI(service, item),
		Title:      item.Title,
		Artist:     artist,
		Album:      item.Album,
		DurationMS: item.DurationMS,
		AddedAt:    item.AddedAt,
		IsLocal:    item.IsLocal,
	}
	if item.IsLocal {
		t.SurrogateKey = models.SurrogateKeyFor(artist, item.Title)
	}
	return t
}

// referenceSnapshot finds the reference playlist's current remote
// snapshot token from a ListUserPlaylists call, since the client exposes
// no single-playlist lookup.
func (e *Engine) referenceSnapshot(ctx context.Context) (string, error) {
	summaries, err := e.client.ListUserPlaylists(ctx, remote.FilterConfig{})
	if err != nil {
		return "", fmt.Errorf("list user playlists: %w", err)
	}
	for _, s := range summaries {
		if s.ID == e.referencePlaylistID {
			return s.Snapshot, nil
		}
	}
	return "", nil
}

// AnalyzeTracks reads the reference playlist's items via C2 and diffs
// them against the store's Track table. It makes no catalog writes.
func (e *Engine) AnalyzeTracks(ctx context.Context, progress chan<- ProgressUpdate) (*TrackPlan, error) {
	sendProgress(progress, tracksUpdate(1, 3, "observing reference playlist token"))
	token, err := e.referenceSnapshot(ctx)
	if err != nil {
		return nil, err
	}

	sendProgress(progress, tracksUpdate(2, 3, "fetching reference playlist items"))
	items, err := e.client.ListPlaylistItems(ctx, e.referencePlaylistID)
	if err != nil {
		return nil, fmt.Errorf("list reference playlist items: %w", err)
	}

	uow, err := e.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire catalog connection: %w", err)
	}
	defer uow.Rollback()

	sendProgress(progress, tracksUpdate(3, 3, "diffing against catalog"))
	storeTracks, err := uow.Tracks.List()
	if err != nil {
		return nil, fmt.Errorf("list store tracks: %w", err)
	}

	storeByURI := make(map[string]models.Track, len(storeTracks))
	for _, t := range storeTracks {
		storeByURI[t.URI] = t
	}

	remoteByURI := make(map[string]models.Track, len(items))
	for _, item := range items {
		t := itemToTrack(remote.ServiceName, item)
		remoteByURI[t.URI] = t
	}

	plan := &TrackPlan{SnapshotToken: token}

	for uri, rt := range remoteByURI {
		st, exists := storeByURI[uri]
		if !exists {
			plan.ToAdd = append(plan.ToAdd, rt)
			continue
		}
		if st.Title != rt.Title || st.Artist != rt.Artist || st.Album != rt.Album {
			plan.ToUpdate = append(plan.ToUpdate, rt)
		}
	}

	for uri := range storeByURI {
		if _, stillPresent := remoteByURI[uri]; !stillPresent {
			plan.ToDelete = append(plan.ToDelete, uri)
		}
	}

	plan.Stats = Stats{
		Added:     len(plan.ToAdd),
		Updated:   len(plan.ToUpdate),
		Deleted:   len(plan.ToDelete),
		Unchanged: len(remoteByURI) - len(plan.ToAdd) - len(plan.ToUpdate),
	}

	return plan, nil
}

// ExecuteTracks applies a TrackPlan in one transaction, then advances the
// reference playlist's master_sync_token to the token observed at the
// start of analysis.
func (e *Engine) ExecuteTracks(ctx context.Context, plan *TrackPlan, progress chan<- ProgressUpdate) error {
	uow, err := e.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire catalog connection: %w", err)
	}
	defer uow.Rollback()

	total := len(plan.ToAdd) + len(plan.ToUpdate) + len(plan.ToDelete)
	step := 0

	for _, t := range plan.ToAdd {
		step++
		sendProgress(progress, tracksUpdate(step, total, fmt.Sprintf("adding track %s", t.URI)))
		if err := uow.Tracks.Create(t); err != nil {
			return fmt.Errorf("create track %s: %w", t.URI, err)
		}
	}

	for _, t := range plan.ToUpdate {
		step++
		sendProgress(progress, tracksUpdate(step, total, fmt.Sprintf("updating track %s", t.URI)))
		if err := uow.Tracks.Update(t); err != nil {
			return fmt.Errorf("update track %s: %w", t.URI, err)
		}
	}

	for _, uri := range plan.ToDelete {
		step++
		sendProgress(progress, tracksUpdate(step, total, fmt.Sprintf("deleting track %s", uri)))
		if err := uow.Tracks.Delete(uri); err != nil {
			return fmt.Errorf("delete track %s: %w", uri, err)
		}
	}

	if plan.SnapshotToken != "" {
		if err := uow.Playlists.UpdateMasterSyncToken(e.referencePlaylistID, plan.SnapshotToken); err != nil {
			return fmt.Errorf("advance master sync token: %w", err)
		}
	}

	return uow.Commit()
}
