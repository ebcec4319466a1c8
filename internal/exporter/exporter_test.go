package exporter_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/shelfsync/internal/catalog"
	"github.com/desertthunder/shelfsync/internal/exporter"
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

func seedCatalog(t *testing.T, pool *catalog.Pool, audioDir string) {
	t.Helper()
	ctx := context.Background()
	uow, err := pool.Acquire(ctx)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}

	path := filepath.Join(audioDir, "track-a.mp3")
	if err := os.WriteFile(path, []byte("fake"), 0644); err != nil {
		t.Fatalf("write fake audio: %v", err)
	}

	if err := uow.Tracks.Create(models.Track{URI: "uri:a", Title: "Song A", Artist: "Artist A", DurationMS: durationPtr(200000)}); err != nil {
		t.Fatalf("create track: %v", err)
	}
	if err := uow.Tracks.Create(models.Track{URI: "uri:b", Title: "Song B", Artist: "Artist B", DurationMS: durationPtr(180000)}); err != nil {
		t.Fatalf("create track: %v", err)
	}
	if err := uow.Playlists.Create(models.Playlist{ID: "p1", Name: "My Playlist"}); err != nil {
		t.Fatalf("create playlist: %v", err)
	}
	if err := uow.Associations.Add(models.TrackPlaylistEdge{PlaylistID: "p1", TrackURI: "uri:a"}); err != nil {
		t.Fatalf("add edge a: %v", err)
	}
	if err := uow.Associations.Add(models.TrackPlaylistEdge{PlaylistID: "p1", TrackURI: "uri:b"}); err != nil {
		t.Fatalf("add edge b: %v", err)
	}
	if _, err := uow.FileMappings.Create(models.FileMapping{FilePath: path, TrackURI: "uri:a", Active: true, FileHash: "abc", FileSize: 4, ModifiedAt: time.Now(), CreatedAt: time.Now()}); err != nil {
		t.Fatalf("create file mapping: %v", err)
	}
	if err := uow.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}
}

func TestRegeneratePlaylistWritesOnlyMappedExistingTracks(t *testing.T) {
	pool := newTestPool(t)
	outDir := t.TempDir()
	audioDir := t.TempDir()
	seedCatalog(t, pool, audioDir)

	engine := exporter.New(pool)
	result, err := engine.RegeneratePlaylist(context.Background(), "p1", outDir, true)
	if err != nil {
		t.Fatalf("RegeneratePlaylist: %v", err)
	}
	if result.TracksFound != 2 {
		t.Errorf("TracksFound = %d, want 2", result.TracksFound)
	}
	if result.TracksWritten != 1 {
		t.Errorf("TracksWritten = %d, want 1 (only uri:a has an active mapping to an existing file)", result.TracksWritten)
	}

	data, err := os.ReadFile(result.Path)
	if err != nil {
		t.Fatalf("read written playlist: %v", err)
	}
	content := string(data)
	if !strings.HasPrefix(content, "#EXTM3U\n") {
		t.Errorf("missing #EXTM3U header: %q", content)
	}
	if !strings.Contains(content, "Artist A - Song A") {
		t.Errorf("missing expected EXTINF line: %q", content)
	}
	if strings.Contains(content, "Song B") {
		t.Errorf("unexpected unmapped track in output: %q", content)
	}
}

func TestRegeneratePlaylistPlainFormOmitsHeaderAndMetadata(t *testing.T) {
	pool := newTestPool(t)
	outDir := t.TempDir()
	audioDir := t.TempDir()
	seedCatalog(t, pool, audioDir)

	engine := exporter.New(pool)
	result, err := engine.RegeneratePlaylist(context.Background(), "p1", outDir, false)
	if err != nil {
		t.Fatalf("RegeneratePlaylist: %v", err)
	}

	data, err := os.ReadFile(result.Path)
	if err != nil {
		t.Fatalf("read written playlist: %v", err)
	}
	content := string(data)
	if strings.Contains(content, "#EXTM3U") || strings.Contains(content, "#EXTINF") {
		t.Errorf("plain form should have no header or metadata: %q", content)
	}
	lines := strings.Split(strings.TrimRight(content, "\n"), "\n")
	if len(lines) != 1 {
		t.Fatalf("want 1 path line, got %d: %q", len(lines), content)
	}
	if !strings.HasSuffix(lines[0], "track-a.mp3") {
		t.Errorf("unexpected path line: %q", lines[0])
	}
}

func TestRegenerateBatchAccumulatesSuccesses(t *testing.T) {
	pool := newTestPool(t)
	outDir := t.TempDir()
	audioDir := t.TempDir()
	seedCatalog(t, pool, audioDir)

	engine := exporter.New(pool)
	result, err := engine.RegenerateBatch(context.Background(), []string{"p1", "missing"}, outDir, true)
	if err != nil {
		t.Fatalf("RegenerateBatch: %v", err)
	}
	if len(result.Succeeded) != 1 {
		t.Errorf("Succeeded = %+v, want 1 entry", result.Succeeded)
	}
	if _, ok := result.Failed["missing"]; !ok {
		t.Error("expected 'missing' playlist id to fail")
	}
}

func TestCleanupOrphansDryRunReportsWithoutDeleting(t *testing.T) {
	pool := newTestPool(t)
	outDir := t.TempDir()
	audioDir := t.TempDir()
	seedCatalog(t, pool, audioDir)

	orphanPath := filepath.Join(outDir, "Old Playlist.m3u")
	if err := os.WriteFile(orphanPath, []byte("#EXTM3U\n"), 0644); err != nil {
		t.Fatalf("write orphan file: %v", err)
	}

	engine := exporter.New(pool)
	orphans, err := engine.CleanupOrphans(context.Background(), outDir, true, time.Now())
	if err != nil {
		t.Fatalf("CleanupOrphans dry run: %v", err)
	}
	if len(orphans) != 1 {
		t.Fatalf("orphans = %v, want 1", orphans)
	}
	if _, err := os.Stat(orphanPath); err != nil {
		t.Errorf("orphan file should still exist after dry run: %v", err)
	}

	orphans, err = engine.CleanupOrphans(context.Background(), outDir, false, time.Now())
	if err != nil {
		t.Fatalf("CleanupOrphans: %v", err)
	}
	if len(orphans) != 1 {
		t.Fatalf("orphans = %v, want 1", orphans)
	}
	if _, err := os.Stat(orphanPath); !os.IsNotExist(err) {
		t.Errorf("orphan file should be removed, stat err = %v", err)
	}
}

func TestReorganizeMovesFilesToDesiredFolders(t *testing.T) {
	pool := newTestPool(t)
	outDir := t.TempDir()
	audioDir := t.TempDir()
	seedCatalog(t, pool, audioDir)

	engine := exporter.New(pool)
	if _, err := engine.RegeneratePlaylist(context.Background(), "p1", outDir, true); err != nil {
		t.Fatalf("RegeneratePlaylist: %v", err)
	}

	desired := exporter.DesiredStructure{"My Playlist": "Favorites"}
	if err := engine.Reorganize(context.Background(), outDir, desired, false, time.Now()); err != nil {
		t.Fatalf("Reorganize: %v", err)
	}

	newPath := filepath.Join(outDir, "Favorites", "My Playlist.m3u")
	if _, err := os.Stat(newPath); err != nil {
		t.Errorf("expected relocated file at %s: %v", newPath, err)
	}
	oldPath := filepath.Join(outDir, "My Playlist.m3u")
	if _, err := os.Stat(oldPath); !os.IsNotExist(err) {
		t.Errorf("expected old location to be removed, stat err = %v", err)
	}

	structPath := filepath.Join(outDir, ".playlist_structure.json")
	if _, err := os.Stat(structPath); err != nil {
		t.Errorf("expected structure file to be written: %v", err)
	}
}
