package remote

import (
	"context"
	"time"
)

// PlaylistSummary is one entry of list_user_playlists: identity, display
// name, and the opaque snapshot token used to skip re-reading unchanged
// playlists.
type PlaylistSummary struct {
	ID       string
	Name     string
	Snapshot string
}

// Item is one track entry returned by list_playlist_items: enough fields
// for TrackSync's diff, plus the remote's local/non-local flag.
type Item struct {
	URI        string
	Title      string
	Artists    []string
	Album      string
	DurationMS *int
	AddedAt    *time.Time
	IsLocal    bool
}

// FilterConfig excludes playlists from list_user_playlists by name,
// description, or ID, entirely client-side — the remote SDK has no
// server-side exclusion support.
type FilterConfig struct {
	ForbiddenNameSubstrings   []string // case-insensitive
	ForbiddenPlaylistIDs      []string
	ForbiddenDescriptionTerms []string // whole-word, case-insensitive
}

// Client is the contract the sync engine depends on. Every operation maps
// to one or more calls against the streaming SDK plus batching/retry.
type Client interface {
	ListUserPlaylists(ctx context.Context, filter FilterConfig) ([]PlaylistSummary, error)
	ListPlaylistItems(ctx context.Context, playlistID string) ([]Item, error)
	ListPlaylistItemURIs(ctx context.Context, playlistID string) ([]string, error)
	CreatePlaylist(ctx context.Context, name, description string, public bool) (string, error)
	AddItems(ctx context.Context, playlistID string, uris []string) error
	RemoveItems(ctx context.Context, playlistID string, uris []string) error
}

// MaxBatchSize is the largest add/remove batch the remote accepts in one
// call; larger requests are split by the caller.
const MaxBatchSize = 100

// ServiceName identifies the remote service for URI construction
// (models.RemoteURI/LocalURI's leading segment). Catalog entries don't
// otherwise need to know which remote produced them.
const ServiceName = "spotify"

// SplitBatches partitions uris into chunks of at most MaxBatchSize.
func SplitBatches(uris []string) [][]string {
	if len(uris) == 0 {
		return nil
	}
	var out [][]string
	for i := 0; i < len(uris); i += MaxBatchSize {
		end := i + MaxBatchSize
		if end > len(uris) {
			end = len(uris)
		}
		out = append(out, uris[i:end])
	}
	return out
}
