package binder_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/desertthunder/shelfsync/internal/binder"
	"github.com/desertthunder/shelfsync/internal/catalog"
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

func TestAnalyzeAutoMatchesObviousFilename(t *testing.T) {
	pool := newTestPool(t)
	ctx := context.Background()

	uow, err := pool.Acquire(ctx)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if err := uow.Tracks.Create(models.Track{URI: "uri:a", Title: "Around the World", Artist: "Daft Punk", DurationMS: durationPtr(200000)}); err != nil {
		t.Fatalf("create track: %v", err)
	}
	if err := uow.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "Daft Punk - Around the World.mp3")
	if err := os.WriteFile(path, []byte("not really audio"), 0644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	engine := binder.New(pool)
	plan, err := engine.Analyze(ctx, dir, binder.DefaultThreshold)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if plan.FilesScanned != 1 {
		t.Errorf("FilesScanned = %d, want 1", plan.FilesScanned)
	}
	if len(plan.AutoMatches) != 1 || plan.AutoMatches[0].URI != "uri:a" {
		t.Errorf("AutoMatches = %+v, want one match to uri:a", plan.AutoMatches)
	}
}

func TestAnalyzeSkipsAlreadyBoundFile(t *testing.T) {
	pool := newTestPool(t)
	ctx := context.Background()

	dir := t.TempDir()
	path := filepath.Join(dir, "Daft Punk - Around the World.mp3")
	if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	uow, err := pool.Acquire(ctx)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if err := uow.Tracks.Create(models.Track{URI: "uri:a", Title: "Around the World", Artist: "Daft Punk"}); err != nil {
		t.Fatalf("create track: %v", err)
	}
	if _, err := uow.FileMappings.Create(models.FileMapping{FilePath: path, TrackURI: "uri:a", Active: true, FileHash: "h", FileSize: 1}); err != nil {
		t.Fatalf("create mapping: %v", err)
	}
	if err := uow.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	engine := binder.New(pool)
	plan, err := engine.Analyze(ctx, dir, binder.DefaultThreshold)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if plan.FilesSkipped != 1 {
		t.Errorf("FilesSkipped = %d, want 1", plan.FilesSkipped)
	}
	if len(plan.AutoMatches) != 0 || len(plan.NeedsSelection) != 0 {
		t.Errorf("expected no matches for an already-bound file, got %+v / %+v", plan.AutoMatches, plan.NeedsSelection)
	}
}

func TestExecuteDetectsMappingConflict(t *testing.T) {
	pool := newTestPool(t)
	ctx := context.Background()

	dir := t.TempDir()
	path := filepath.Join(dir, "song.mp3")
	if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	uow, err := pool.Acquire(ctx)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if err := uow.Tracks.Create(models.Track{URI: "uri:a", Title: "Song A", Artist: "Artist"}); err != nil {
		t.Fatalf("create track a: %v", err)
	}
	if err := uow.Tracks.Create(models.Track{URI: "uri:b", Title: "Song B", Artist: "Artist"}); err != nil {
		t.Fatalf("create track b: %v", err)
	}
	if _, err := uow.FileMappings.Create(models.FileMapping{FilePath: path, TrackURI: "uri:a", Active: true, FileHash: "h", FileSize: 1}); err != nil {
		t.Fatalf("create mapping: %v", err)
	}
	if err := uow.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	engine := binder.New(pool)
	plan := &binder.Plan{}
	result, err := engine.Execute(ctx, plan, map[string]string{path: "uri:b"}, nil)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(result.Conflicts) != 1 {
		t.Fatalf("Conflicts = %+v, want 1", result.Conflicts)
	}
	if result.Conflicts[0].ExistingURI != "uri:a" {
		t.Errorf("ExistingURI = %q, want uri:a", result.Conflicts[0].ExistingURI)
	}
}

func TestExecuteNoOpWhenSameBindingAlreadyExists(t *testing.T) {
	pool := newTestPool(t)
	ctx := context.Background()

	dir := t.TempDir()
	path := filepath.Join(dir, "song.mp3")
	if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	uow, err := pool.Acquire(ctx)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if err := uow.Tracks.Create(models.Track{URI: "uri:a", Title: "Song A", Artist: "Artist"}); err != nil {
		t.Fatalf("create track: %v", err)
	}
	if _, err := uow.FileMappings.Create(models.FileMapping{FilePath: path, TrackURI: "uri:a", Active: true, FileHash: "h", FileSize: 1}); err != nil {
		t.Fatalf("create mapping: %v", err)
	}
	if err := uow.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	engine := binder.New(pool)
	plan := &binder.Plan{AutoMatches: []binder.AutoMatch{{FilePath: path, URI: "uri:a", Score: 1.0}}}
	result, err := engine.Execute(ctx, plan, nil, nil)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(result.NoOps) != 1 {
		t.Errorf("NoOps = %+v, want 1", result.NoOps)
	}
	if len(result.Bound) != 0 {
		t.Errorf("Bound = %+v, want none", result.Bound)
	}
}

func TestCleanupStaleMappingsDeactivatesMissingFiles(t *testing.T) {
	pool := newTestPool(t)
	ctx := context.Background()

	uow, err := pool.Acquire(ctx)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if err := uow.Tracks.Create(models.Track{URI: "uri:a", Title: "Song A", Artist: "Artist"}); err != nil {
		t.Fatalf("create track: %v", err)
	}
	missingPath := filepath.Join(t.TempDir(), "gone.mp3")
	if _, err := uow.FileMappings.Create(models.FileMapping{FilePath: missingPath, TrackURI: "uri:a", Active: true, FileHash: "h", FileSize: 1}); err != nil {
		t.Fatalf("create mapping: %v", err)
	}
	if err := uow.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	engine := binder.New(pool)
	stale, err := engine.CleanupStaleMappings(ctx)
	if err != nil {
		t.Fatalf("CleanupStaleMappings: %v", err)
	}
	if len(stale) != 1 || stale[0] != missingPath {
		t.Errorf("stale = %v, want [%s]", stale, missingPath)
	}
}
