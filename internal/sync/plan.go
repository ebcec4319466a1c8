package sync

import "github.com/desertthunder/shelfsync/internal/models"

// Stats is the add/update/delete/unchanged tally every analyze step
// produces, the shape the orchestrator's response envelope reports under
// "stats".
type Stats struct {
	Added     int `json:"added"`
	Updated   int `json:"updated"`
	Deleted   int `json:"deleted"`
	Unchanged int `json:"unchanged"`
}

// PlaylistRename is one to_update entry for PlaylistPlan: the playlist's
// remote ID, its new (remote) name, and the name currently stored.
type PlaylistRename struct {
	ID      string
	Name    string
	OldName string
}

// PlaylistPlan is PlaylistSync's analysis output.
type PlaylistPlan struct {
	ToAdd    []models.Playlist
	ToUpdate []PlaylistRename
	ToDelete []string
	Stats    Stats
}

// TrackPlan is TrackSync's analysis output. SnapshotToken is the reference
// playlist's remote token observed at the start of analysis; execute
// persists it to master_sync_token once the diff has been applied.
type TrackPlan struct {
	ToAdd         []models.Track
	ToUpdate      []models.Track
	ToDelete      []string
	SnapshotToken string
	Stats         Stats
}

// AssociationPlan is AssociationSync's analysis output: per-track edges to
// add and remove, and the freshly observed token for every dirty playlist
// touched (persisted on successful execute). Warnings records playlists
// that disappeared between analysis and a later read — a soft failure,
// never an abort.
type AssociationPlan struct {
	ToAdd          []models.TrackPlaylistEdge
	ToRemove       []models.TrackPlaylistEdge
	DirtyPlaylists []string
	ObservedTokens map[string]string
	Warnings       []string
}

// Empty reports whether an AssociationPlan has nothing to apply — the
// early exit for "no dirty playlists".
func (p *AssociationPlan) Empty() bool {
	return len(p.ToAdd) == 0 && len(p.ToRemove) == 0 && len(p.DirtyPlaylists) == 0
}
