package orchestrator_test

import (
	"context"
	"testing"

	"github.com/desertthunder/shelfsync/internal/catalog"
	"github.com/desertthunder/shelfsync/internal/orchestrator"
	"github.com/desertthunder/shelfsync/internal/remote"
	"github.com/desertthunder/shelfsync/internal/shared"
	"github.com/desertthunder/shelfsync/internal/sync"
)

const referenceID = "ref-playlist"

func newTestPool(t *testing.T) *catalog.Pool {
	t.Helper()
	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("NewDatabase: %v", err)
	}
	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("RunMigrations: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return catalog.NewPool(db, 4)
}

type stubClient struct {
	playlists []remote.PlaylistSummary
}

func (s *stubClient) ListUserPlaylists(ctx context.Context, filter remote.FilterConfig) ([]remote.PlaylistSummary, error) {
	return s.playlists, nil
}
func (s *stubClient) ListPlaylistItems(ctx context.Context, playlistID string) ([]remote.Item, error) {
	return nil, nil
}
func (s *stubClient) ListPlaylistItemURIs(ctx context.Context, playlistID string) ([]string, error) {
	return nil, nil
}
func (s *stubClient) CreatePlaylist(ctx context.Context, name, description string, public bool) (string, error) {
	return "new-id", nil
}
func (s *stubClient) AddItems(ctx context.Context, playlistID string, uris []string) error    { return nil }
func (s *stubClient) RemoveItems(ctx context.Context, playlistID string, uris []string) error { return nil }

func TestHandleAnalyzePlaylistsNeedsConfirmation(t *testing.T) {
	pool := newTestPool(t)
	client := &stubClient{playlists: []remote.PlaylistSummary{
		{ID: "p1", Name: "New Playlist", Snapshot: "s1"},
	}}
	engine := sync.New(pool, client, referenceID)
	o := orchestrator.New(engine)

	resp := o.Handle(context.Background(), orchestrator.Request{Action: orchestrator.ActionPlaylists})
	if !resp.Success {
		t.Fatalf("Handle returned failure: %+v", resp)
	}
	if !resp.NeedsConfirmation {
		t.Error("expected NeedsConfirmation on unconfirmed analysis request")
	}
	if resp.Stage != orchestrator.StageAnalysis {
		t.Errorf("Stage = %q, want analysis", resp.Stage)
	}
	if resp.Stats.Added != 1 {
		t.Errorf("Stats.Added = %d, want 1", resp.Stats.Added)
	}
}

func TestHandleExecutePlaylistsRecomputesWithoutPrecomputedPlan(t *testing.T) {
	pool := newTestPool(t)
	client := &stubClient{playlists: []remote.PlaylistSummary{
		{ID: "p1", Name: "New Playlist", Snapshot: "s1"},
	}}
	engine := sync.New(pool, client, referenceID)
	o := orchestrator.New(engine)

	resp := o.Handle(context.Background(), orchestrator.Request{Action: orchestrator.ActionPlaylists, Confirmed: true})
	if !resp.Success {
		t.Fatalf("Handle returned failure: %+v", resp)
	}
	if resp.Stage != orchestrator.StageSyncComplete {
		t.Errorf("Stage = %q, want sync_complete", resp.Stage)
	}
	if resp.Stats.Added != 1 {
		t.Errorf("Stats.Added = %d, want 1", resp.Stats.Added)
	}
}

func TestHandleClearIsImmediatelyComplete(t *testing.T) {
	pool := newTestPool(t)
	engine := sync.New(pool, &stubClient{}, referenceID)
	o := orchestrator.New(engine)

	resp := o.Handle(context.Background(), orchestrator.Request{Action: orchestrator.ActionClear})
	if !resp.Success || resp.Stage != orchestrator.StageComplete {
		t.Errorf("Handle(clear) = %+v, want success/complete", resp)
	}
}
