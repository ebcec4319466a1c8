package dedupe

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/shelfsync/internal/catalog"
	"github.com/desertthunder/shelfsync/internal/models"
)

// Engine detects and cleans up duplicate catalog tracks.
type Engine struct {
	pool *catalog.Pool
}

// New builds an Engine bound to a catalog connection pool.
func New(pool *catalog.Pool) *Engine {
	return &Engine{pool: pool}
}

// Group is one duplicate equivalence group: the track that survives, the
// tracks to remove, and the union of playlists the primary must be added
// to so no membership is lost when the duplicates disappear.
type Group struct {
	Primary          models.Track
	Duplicates       []models.Track
	PlaylistsToMerge []string
}

// Detect loads every track and playlist membership in one batch, buckets
// tracks by coarse fingerprint, verifies within-bucket similarity, and
// returns one Group per duplicate cluster of size >= 2. It makes no
// catalog writes.
func (e *Engine) Detect(ctx context.Context) ([]Group, error) {
	uow, err := e.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire catalog connection: %w", err)
	}
	defer uow.Rollback()

	tracks, err := uow.Tracks.List()
	if err != nil {
		return nil, fmt.Errorf("list tracks: %w", err)
	}

	mappings, err := uow.AllPlaylistTrackMappings()
	if err != nil {
		return nil, fmt.Errorf("load playlist memberships: %w", err)
	}
	playlistsByURI := make(map[string][]string)
	for playlistID, uris := range mappings {
		for _, uri := range uris {
			playlistsByURI[uri] = append(playlistsByURI[uri], playlistID)
		}
	}

	buckets := make(map[string][]models.Track)
	for _, t := range tracks {
		if strings.TrimSpace(t.Title) == "" || len(t.Artists()) == 0 {
			continue
		}
		key := fingerprint(t)
		buckets[key] = append(buckets[key], t)
	}

	var groups []Group
	for _, bucket := range buckets {
		if len(bucket) < 2 {
			continue
		}
		for _, cluster := range groupBucket(bucket) {
			if len(cluster) < 2 {
				continue
			}
			primary, duplicates := selectPrimary(cluster)

			merge := make(map[string]struct{})
			for _, dup := range duplicates {
				for _, p := range playlistsByURI[dup.URI] {
					merge[p] = struct{}{}
				}
			}
			for _, p := range playlistsByURI[primary.URI] {
				delete(merge, p)
			}
			toMerge := make([]string, 0, len(merge))
			for p := range merge {
				toMerge = append(toMerge, p)
			}

			groups = append(groups, Group{Primary: primary, Duplicates: duplicates, PlaylistsToMerge: toMerge})
		}
	}

	return groups, nil
}

// Cleanup applies Detect's result transactionally, one transaction per
// group so a failure in one group doesn't roll back another's merge.
// dryRun reports the same shape without writing anything.
func (e *Engine) Cleanup(ctx context.Context, groups []Group, dryRun bool) ([]Group, error) {
	if dryRun {
		return groups, nil
	}

	for _, g := range groups {
		if err := e.cleanupGroup(ctx, g); err != nil {
			return nil, fmt.Errorf("cleanup group primary=%s: %w", g.Primary.URI, err)
		}
	}
	return groups, nil
}

func (e *Engine) cleanupGroup(ctx context.Context, g Group) error {
	uow, err := e.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire catalog connection: %w", err)
	}
	defer uow.Rollback()

	for _, playlistID := range g.PlaylistsToMerge {
		if err := uow.Associations.Add(models.TrackPlaylistEdge{PlaylistID: playlistID, TrackURI: g.Primary.URI}); err != nil {
			return fmt.Errorf("add primary to playlist %s: %w", playlistID, err)
		}
	}

	for _, dup := range g.Duplicates {
		if err := uow.Tracks.Delete(dup.URI); err != nil {
			return fmt.Errorf("delete duplicate %s: %w", dup.URI, err)
		}
	}

	return uow.Commit()
}
