package models

// SyncAction is the sum type driving the orchestrator and sync engine:
// {Playlist, Track, Association, All}. Modeled as a string enum with a
// single analyze/execute surface per value, not an inheritance hierarchy.
type SyncAction string

const (
	SyncPlaylists    SyncAction = "playlists"
	SyncTracks       SyncAction = "tracks"
	SyncAssociations SyncAction = "associations"
	SyncAll          SyncAction = "all"
	SyncClear        SyncAction = "clear"
)

// Valid reports whether a is a recognized sync action.
func (a SyncAction) Valid() bool {
	switch a {
	case SyncPlaylists, SyncTracks, SyncAssociations, SyncAll, SyncClear:
		return true
	default:
		return false
	}
}

// Stage mirrors the request/response envelope's stage field: the point in
// the three-stage pipeline a request or response refers to.
type Stage string

const (
	StageStart        Stage = "start"
	StagePlaylists    Stage = "playlists"
	StageTracks       Stage = "tracks"
	StageAssociations Stage = "associations"
	StageComplete     Stage = "complete"
	StageAnalysis     Stage = "analysis"
	StageSyncComplete Stage = "sync_complete"
)

// NextStage returns the stage that follows s in the "all" pipeline
// (playlists -> tracks -> associations -> complete), or "" if s is
// terminal or unrecognized.
func NextStage(s Stage) Stage {
	switch s {
	case StageStart, StagePlaylists:
		return StageTracks
	case StageTracks:
		return StageAssociations
	case StageAssociations:
		return StageComplete
	default:
		return ""
	}
}
