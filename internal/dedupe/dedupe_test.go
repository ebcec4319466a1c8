package dedupe_test

import (
	"context"
	"testing"

	"github.com/desertthunder/shelfsync/internal/catalog"
	"github.com/desertthunder/shelfsync/internal/dedupe"
	"github.com/desertthunder/shelfsync/internal/models"
	"github.com/desertthunder/shelfsync/internal/shared"
)

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

func durationPtr(v int) *int { return &v }

func TestDetectGroupsDuplicatesAndPicksPrimary(t *testing.T) {
	pool := newTestPool(t)
	ctx := context.Background()

	uow, err := pool.Acquire(ctx)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	tracks := []models.Track{
		{URI: "a", Title: "One More Time", Artist: "Daft Punk", DurationMS: durationPtr(320000), Album: "Discovery"},
		{URI: "b", Title: "One More Time (Radio Edit)", Artist: "Daft Punk", DurationMS: durationPtr(180000), Album: "D"},
		{URI: "c", Title: "Completely Different Song", Artist: "Someone Else", DurationMS: durationPtr(200000)},
	}
	for _, tr := range tracks {
		if err := uow.Tracks.Create(tr); err != nil {
			t.Fatalf("create track: %v", err)
		}
	}
	if err := uow.Playlists.Create(models.Playlist{ID: "p1", Name: "P1"}); err != nil {
		t.Fatalf("create playlist: %v", err)
	}
	if err := uow.Associations.Add(models.TrackPlaylistEdge{PlaylistID: "p1", TrackURI: "b"}); err != nil {
		t.Fatalf("add edge: %v", err)
	}
	if err := uow.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	engine := dedupe.New(pool)
	groups, err := engine.Detect(ctx)
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if len(groups) != 1 {
		t.Fatalf("len(groups) = %d, want 1", len(groups))
	}
	g := groups[0]
	if g.Primary.URI != "a" {
		t.Errorf("Primary.URI = %q, want a (longer duration)", g.Primary.URI)
	}
	if len(g.Duplicates) != 1 || g.Duplicates[0].URI != "b" {
		t.Errorf("Duplicates = %+v, want [b]", g.Duplicates)
	}
	if len(g.PlaylistsToMerge) != 1 || g.PlaylistsToMerge[0] != "p1" {
		t.Errorf("PlaylistsToMerge = %+v, want [p1]", g.PlaylistsToMerge)
	}
}

func TestCleanupRemovesDuplicatesAndMergesPlaylists(t *testing.T) {
	pool := newTestPool(t)
	ctx := context.Background()

	uow, err := pool.Acquire(ctx)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	for _, tr := range []models.Track{
		{URI: "a", Title: "Song", Artist: "Band", DurationMS: durationPtr(300000)},
		{URI: "b", Title: "Song", Artist: "Band", DurationMS: durationPtr(150000)},
	} {
		if err := uow.Tracks.Create(tr); err != nil {
			t.Fatalf("create track: %v", err)
		}
	}
	if err := uow.Playlists.Create(models.Playlist{ID: "p1", Name: "P1"}); err != nil {
		t.Fatalf("create playlist: %v", err)
	}
	if err := uow.Associations.Add(models.TrackPlaylistEdge{PlaylistID: "p1", TrackURI: "b"}); err != nil {
		t.Fatalf("add edge: %v", err)
	}
	if err := uow.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	engine := dedupe.New(pool)
	groups, err := engine.Detect(ctx)
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if _, err := engine.Cleanup(ctx, groups, false); err != nil {
		t.Fatalf("Cleanup: %v", err)
	}

	uow2, err := pool.Acquire(ctx)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	defer uow2.Rollback()

	if _, err := uow2.Tracks.Get("b"); err == nil {
		t.Error("expected duplicate b to be deleted")
	}
	uris, err := uow2.Associations.URIsForPlaylist("p1")
	if err != nil {
		t.Fatalf("URIsForPlaylist: %v", err)
	}
	found := false
	for _, u := range uris {
		if u == "a" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected primary a merged into p1, got %v", uris)
	}
}

func TestCleanupDryRunMakesNoWrites(t *testing.T) {
	pool := newTestPool(t)
	ctx := context.Background()

	uow, err := pool.Acquire(ctx)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	for _, tr := range []models.Track{
		{URI: "a", Title: "Song", Artist: "Band", DurationMS: durationPtr(300000)},
		{URI: "b", Title: "Song", Artist: "Band", DurationMS: durationPtr(150000)},
	} {
		if err := uow.Tracks.Create(tr); err != nil {
			t.Fatalf("create track: %v", err)
		}
	}
	if err := uow.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	engine := dedupe.New(pool)
	groups, err := engine.Detect(ctx)
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if _, err := engine.Cleanup(ctx, groups, true); err != nil {
		t.Fatalf("Cleanup dry-run: %v", err)
	}

	uow2, err := pool.Acquire(ctx)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	defer uow2.Rollback()
	if _, err := uow2.Tracks.Get("b"); err != nil {
		t.Errorf("expected b to still exist after dry-run, got %v", err)
	}
}
