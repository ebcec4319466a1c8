package sync_test

import (
	"context"
	"testing"

	"github.com/desertthunder/shelfsync/internal/catalog"
	"github.com/desertthunder/shelfsync/internal/models"
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

// stubClient is a hand-written remote.Client double driven entirely by
// its field values, standing in for the real HTTP-backed client in tests.
type stubClient struct {
	playlists     []remote.PlaylistSummary
	items         map[string][]remote.Item
	itemURIs      map[string][]string
	missing       map[string]bool
	createdName   string
	addedItems    map[string][]string
	removedItems  map[string][]string
}

func newStubClient() *stubClient {
	return &stubClient{
		items:        make(map[string][]remote.Item),
		itemURIs:     make(map[string][]string),
		missing:      make(map[string]bool),
		addedItems:   make(map[string][]string),
		removedItems: make(map[string][]string),
	}
}

func (s *stubClient) ListUserPlaylists(ctx context.Context, filter remote.FilterConfig) ([]remote.PlaylistSummary, error) {
	return s.playlists, nil
}

func (s *stubClient) ListPlaylistItems(ctx context.Context, playlistID string) ([]remote.Item, error) {
	return s.items[playlistID], nil
}

func (s *stubClient) ListPlaylistItemURIs(ctx context.Context, playlistID string) ([]string, error) {
	if s.missing[playlistID] {
		return nil, shared.ErrRemoteUnavailable
	}
	return s.itemURIs[playlistID], nil
}

func (s *stubClient) CreatePlaylist(ctx context.Context, name, description string, public bool) (string, error) {
	s.createdName = name
	return "new-id", nil
}

func (s *stubClient) AddItems(ctx context.Context, playlistID string, uris []string) error {
	s.addedItems[playlistID] = append(s.addedItems[playlistID], uris...)
	return nil
}

func (s *stubClient) RemoveItems(ctx context.Context, playlistID string, uris []string) error {
	s.removedItems[playlistID] = append(s.removedItems[playlistID], uris...)
	return nil
}

func seedPlaylist(t *testing.T, pool *catalog.Pool, p models.Playlist) {
	t.Helper()
	ctx := context.Background()
	uow, err := pool.Acquire(ctx)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	defer uow.Rollback()
	if err := uow.Playlists.Create(p); err != nil {
		t.Fatalf("seed playlist: %v", err)
	}
	if err := uow.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}
}

func TestPlaylistSyncAddUpdateDelete(t *testing.T) {
	pool := newTestPool(t)
	ctx := context.Background()

	seedPlaylist(t, pool, models.Playlist{ID: referenceID, Name: "Reference"})
	seedPlaylist(t, pool, models.Playlist{ID: "stale", Name: "Old"})
	seedPlaylist(t, pool, models.Playlist{ID: "renamed", Name: "Old Name"})

	client := newStubClient()
	client.playlists = []remote.PlaylistSummary{
		{ID: referenceID, Name: "Reference"},
		{ID: "renamed", Name: "New Name"},
		{ID: "fresh", Name: "Fresh"},
	}

	engine := sync.New(pool, client, referenceID)

	plan, err := engine.AnalyzePlaylists(ctx, remote.FilterConfig{}, nil)
	if err != nil {
		t.Fatalf("AnalyzePlaylists: %v", err)
	}
	if len(plan.ToAdd) != 1 || plan.ToAdd[0].ID != "fresh" {
		t.Errorf("ToAdd = %+v, want [fresh]", plan.ToAdd)
	}
	if len(plan.ToUpdate) != 1 || plan.ToUpdate[0].ID != "renamed" {
		t.Errorf("ToUpdate = %+v, want [renamed]", plan.ToUpdate)
	}
	if len(plan.ToDelete) != 1 || plan.ToDelete[0] != "stale" {
		t.Errorf("ToDelete = %+v, want [stale]", plan.ToDelete)
	}

	if err := engine.ExecutePlaylists(ctx, plan, nil); err != nil {
		t.Fatalf("ExecutePlaylists: %v", err)
	}

	uow, err := pool.Acquire(ctx)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	defer uow.Rollback()

	if _, err := uow.Playlists.Get("stale"); err == nil {
		t.Error("expected stale playlist to be deleted")
	}
	renamed, err := uow.Playlists.Get("renamed")
	if err != nil {
		t.Fatalf("Get renamed: %v", err)
	}
	if renamed.Name != "New Name" {
		t.Errorf("renamed.Name = %q, want New Name", renamed.Name)
	}
	if _, err := uow.Playlists.Get("fresh"); err != nil {
		t.Errorf("expected fresh playlist to exist: %v", err)
	}
}

func TestTrackSyncAddUpdateDelete(t *testing.T) {
	pool := newTestPool(t)
	ctx := context.Background()
	seedPlaylist(t, pool, models.Playlist{ID: referenceID, Name: "Reference"})

	uow, _ := pool.Acquire(ctx)
	if err := uow.Tracks.Create(models.Track{URI: "spotify:track:stale", Title: "Stale", Artist: "X"}); err != nil {
		t.Fatalf("seed track: %v", err)
	}
	if err := uow.Tracks.Create(models.Track{URI: "spotify:track:keep", Title: "Old Title", Artist: "Y"}); err != nil {
		t.Fatalf("seed track: %v", err)
	}
	if err := uow.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	client := newStubClient()
	client.playlists = []remote.PlaylistSummary{{ID: referenceID, Name: "Reference", Snapshot: "tok-2"}}
	client.items[referenceID] = []remote.Item{
		{URI: "spotify:track:keep", Title: "New Title", Artists: []string{"Y"}},
		{URI: "spotify:track:new", Title: "Brand New", Artists: []string{"Z"}},
	}

	engine := sync.New(pool, client, referenceID)

	plan, err := engine.AnalyzeTracks(ctx, nil)
	if err != nil {
		t.Fatalf("AnalyzeTracks: %v", err)
	}
	if plan.SnapshotToken != "tok-2" {
		t.Errorf("SnapshotToken = %q, want tok-2", plan.SnapshotToken)
	}
	if len(plan.ToAdd) != 1 || plan.ToAdd[0].URI != "spotify:track:new" {
		t.Errorf("ToAdd = %+v", plan.ToAdd)
	}
	if len(plan.ToUpdate) != 1 || plan.ToUpdate[0].URI != "spotify:track:keep" {
		t.Errorf("ToUpdate = %+v", plan.ToUpdate)
	}
	if len(plan.ToDelete) != 1 || plan.ToDelete[0] != "spotify:track:stale" {
		t.Errorf("ToDelete = %+v", plan.ToDelete)
	}

	if err := engine.ExecuteTracks(ctx, plan, nil); err != nil {
		t.Fatalf("ExecuteTracks: %v", err)
	}

	uow2, _ := pool.Acquire(ctx)
	defer uow2.Rollback()
	if _, err := uow2.Tracks.Get("spotify:track:stale"); err == nil {
		t.Error("expected stale track to be deleted")
	}
	kept, err := uow2.Tracks.Get("spotify:track:keep")
	if err != nil {
		t.Fatalf("Get keep: %v", err)
	}
	if kept.Title != "New Title" {
		t.Errorf("kept.Title = %q, want New Title", kept.Title)
	}
	ref, err := uow2.Playlists.Get(referenceID)
	if err != nil {
		t.Fatalf("Get reference: %v", err)
	}
	if ref.MasterSyncToken != "tok-2" {
		t.Errorf("MasterSyncToken = %q, want tok-2", ref.MasterSyncToken)
	}
}

func TestAssociationSyncDirtyPlaylistOnly(t *testing.T) {
	pool := newTestPool(t)
	ctx := context.Background()
	seedPlaylist(t, pool, models.Playlist{ID: referenceID, Name: "Reference"})
	seedPlaylist(t, pool, models.Playlist{ID: "p1", Name: "P1", AssociationsToken: "old-token"})
	seedPlaylist(t, pool, models.Playlist{ID: "p2", Name: "P2", AssociationsToken: "unchanged-token"})

	uow, _ := pool.Acquire(ctx)
	for _, uri := range []string{"spotify:track:x", "spotify:track:y", "spotify:track:z"} {
		if err := uow.Tracks.Create(models.Track{URI: uri, Title: uri, Artist: "A"}); err != nil {
			t.Fatalf("seed track: %v", err)
		}
	}
	if err := uow.Associations.Add(models.TrackPlaylistEdge{PlaylistID: "p1", TrackURI: "spotify:track:x"}); err != nil {
		t.Fatalf("seed edge: %v", err)
	}
	if err := uow.Associations.Add(models.TrackPlaylistEdge{PlaylistID: "p1", TrackURI: "spotify:track:y"}); err != nil {
		t.Fatalf("seed edge: %v", err)
	}
	if err := uow.Associations.Add(models.TrackPlaylistEdge{PlaylistID: "p2", TrackURI: "spotify:track:x"}); err != nil {
		t.Fatalf("seed edge: %v", err)
	}
	if err := uow.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	client := newStubClient()
	client.playlists = []remote.PlaylistSummary{
		{ID: referenceID, Name: "Reference"},
		{ID: "p1", Name: "P1", Snapshot: "new-token"},
		{ID: "p2", Name: "P2", Snapshot: "unchanged-token"},
	}
	// p1 is now {y, z}; p2 untouched so never fetched.
	client.itemURIs["p1"] = []string{"spotify:track:y", "spotify:track:z"}

	engine := sync.New(pool, client, referenceID)

	plan, err := engine.AnalyzeAssociations(ctx, remote.FilterConfig{}, nil)
	if err != nil {
		t.Fatalf("AnalyzeAssociations: %v", err)
	}
	if len(plan.DirtyPlaylists) != 1 || plan.DirtyPlaylists[0] != "p1" {
		t.Errorf("DirtyPlaylists = %+v, want [p1]", plan.DirtyPlaylists)
	}
	if len(plan.ToAdd) != 1 || plan.ToAdd[0].TrackURI != "spotify:track:z" {
		t.Errorf("ToAdd = %+v", plan.ToAdd)
	}
	if len(plan.ToRemove) != 1 || plan.ToRemove[0].TrackURI != "spotify:track:x" {
		t.Errorf("ToRemove = %+v", plan.ToRemove)
	}

	if err := engine.ExecuteAssociations(ctx, plan, nil); err != nil {
		t.Fatalf("ExecuteAssociations: %v", err)
	}

	uow2, _ := pool.Acquire(ctx)
	defer uow2.Rollback()
	uris, err := uow2.Associations.URIsForPlaylist("p1")
	if err != nil {
		t.Fatalf("URIsForPlaylist: %v", err)
	}
	got := map[string]bool{}
	for _, u := range uris {
		got[u] = true
	}
	if got["spotify:track:x"] || !got["spotify:track:y"] || !got["spotify:track:z"] {
		t.Errorf("p1 edges = %v, want {y,z}", got)
	}

	p1, err := uow2.Playlists.Get("p1")
	if err != nil {
		t.Fatalf("Get p1: %v", err)
	}
	if p1.AssociationsToken != "new-token" {
		t.Errorf("p1.AssociationsToken = %q, want new-token", p1.AssociationsToken)
	}
}

func TestAssociationSyncSkipsMissingPlaylist(t *testing.T) {
	pool := newTestPool(t)
	ctx := context.Background()
	seedPlaylist(t, pool, models.Playlist{ID: referenceID, Name: "Reference"})
	seedPlaylist(t, pool, models.Playlist{ID: "p1", Name: "P1", AssociationsToken: "old"})

	uow, _ := pool.Acquire(ctx)
	if err := uow.Tracks.Create(models.Track{URI: "spotify:track:x", Title: "X", Artist: "A"}); err != nil {
		t.Fatalf("seed track: %v", err)
	}
	if err := uow.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	client := newStubClient()
	client.playlists = []remote.PlaylistSummary{
		{ID: referenceID, Name: "Reference"},
		{ID: "p1", Name: "P1", Snapshot: "new"},
	}
	client.missing["p1"] = true

	engine := sync.New(pool, client, referenceID)
	plan, err := engine.AnalyzeAssociations(ctx, remote.FilterConfig{}, nil)
	if err != nil {
		t.Fatalf("AnalyzeAssociations: %v", err)
	}
	if len(plan.Warnings) != 1 {
		t.Errorf("Warnings = %+v, want 1 entry", plan.Warnings)
	}
	if len(plan.DirtyPlaylists) != 0 {
		t.Errorf("DirtyPlaylists = %+v, want none (missing playlist skipped)", plan.DirtyPlaylists)
	}
}
