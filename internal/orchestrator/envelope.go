package orchestrator

// Action names the external "sync action" driving dispatch.
type Action string

const (
	ActionPlaylists    Action = "playlists"
	ActionTracks       Action = "tracks"
	ActionAssociations Action = "associations"
	ActionAll          Action = "all"
	ActionClear        Action = "clear"
)

// Stage names where a multi-step action currently stands.
type Stage string

const (
	StageStart        Stage = "start"
	StagePlaylists     Stage = "playlists"
	StageTracks        Stage = "tracks"
	StageAssociations  Stage = "associations"
	StageComplete      Stage = "complete"
	StageAnalysis      Stage = "analysis"
	StageSyncComplete  Stage = "sync_complete"
)

// PlaylistSettings mirrors the exclusion knobs spec.md §6 names for the
// request envelope's playlistSettings field.
type PlaylistSettings struct {
	ExcludedKeywords    []string `json:"excludedKeywords"`
	ExcludedPlaylistIDs []string `json:"excludedPlaylistIds"`
	ExcludeByDescription []string `json:"excludeByDescription"`
}

// Request is the external request envelope for every sync action.
type Request struct {
	Action                     Action           `json:"action"`
	ForceRefresh               bool             `json:"force_refresh"`
	Confirmed                  bool             `json:"confirmed"`
	Stage                      Stage            `json:"stage"`
	PrecomputedChangesFromAnalysis any          `json:"precomputed_changes_from_analysis,omitempty"`
	PlaylistSettings           PlaylistSettings `json:"playlistSettings"`
}

// Stats is the response envelope's add/update/delete/unchanged tally.
type Stats struct {
	Added     int `json:"added"`
	Updated   int `json:"updated"`
	Deleted   int `json:"deleted"`
	Unchanged int `json:"unchanged"`
}

// Response is the external response envelope for every sync action.
type Response struct {
	Success           bool   `json:"success"`
	Action            string `json:"action"`
	Stage             Stage  `json:"stage"`
	Message           string `json:"message"`
	Stats             Stats  `json:"stats"`
	Details           any    `json:"details,omitempty"`
	NeedsConfirmation bool   `json:"needs_confirmation"`
	NextStage         Stage  `json:"next_stage,omitempty"`
}

// PlaylistItem is one normalized analysis-detail entry for the playlists
// action.
type PlaylistItem struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	OldName    string `json:"old_name,omitempty"`
	SnapshotID string `json:"snapshot_id,omitempty"`
}

// TrackItem is one normalized analysis-detail entry for the tracks action.
type TrackItem struct {
	ID       string   `json:"id"`
	Artists  []string `json:"artists"`
	Title    string   `json:"title"`
	Album    string   `json:"album"`
	IsLocal  bool     `json:"is_local"`
	AddedAt  string   `json:"added_at,omitempty"`
	OldTitle string   `json:"old_title,omitempty"`
	Changes  []string `json:"changes,omitempty"`
}

// AssociationItem is one normalized analysis-detail entry for the
// associations action.
type AssociationItem struct {
	TrackID   string   `json:"track_id"`
	TrackInfo string   `json:"track_info,omitempty"`
	AddTo     []string `json:"add_to"`
	RemoveFrom []string `json:"remove_from"`
}

// AnalysisDetails is the "details" payload for an analysis-stage response:
// the full plan, normalized per spec.md §6.
type AnalysisDetails struct {
	ItemsToAdd    []any `json:"items_to_add"`
	ItemsToUpdate []any `json:"items_to_update"`
	ItemsToDelete []any `json:"items_to_delete"`
}
