package orchestrator

import (
	"context"
	"fmt"

	"github.com/desertthunder/shelfsync/internal/models"
	"github.com/desertthunder/shelfsync/internal/remote"
	"github.com/desertthunder/shelfsync/internal/sync"
)

// Orchestrator dispatches sync actions to the sync engine. It is
// stateless: every field is a fixed dependency, never per-request state.
type Orchestrator struct {
	Engine *sync.Engine
}

// New builds an Orchestrator bound to a sync engine.
func New(engine *sync.Engine) *Orchestrator {
	return &Orchestrator{Engine: engine}
}

// Handle computes the (component, phase) pair for req.Action and threads
// a precomputed plan through from analysis to execution, per spec.md §4.8.
func (o *Orchestrator) Handle(ctx context.Context, req Request) Response {
	if req.Action == ActionClear {
		return Response{Success: true, Action: string(req.Action), Stage: StageComplete, Message: "cleared"}
	}

	filter := toFilterConfig(req.PlaylistSettings)
	progress := make(chan sync.ProgressUpdate, 16)
	go drain(progress)

	if !req.Confirmed {
		return o.analyze(ctx, req, filter, progress)
	}
	return o.execute(ctx, req, filter, progress)
}

// drain discards progress updates for callers (like Handle's synchronous
// request/response contract) that have no channel of their own to stream
// them to.
func drain(progress <-chan sync.ProgressUpdate) {
	for range progress {
	}
}

func (o *Orchestrator) analyze(ctx context.Context, req Request, filter remote.FilterConfig, progress chan sync.ProgressUpdate) Response {
	defer close(progress)

	switch req.Action {
	case ActionPlaylists:
		plan, err := o.Engine.AnalyzePlaylists(ctx, filter, progress)
		if err != nil {
			return errorResponse(req, err)
		}
		return Response{
			Success:           true,
			Action:            string(req.Action),
			Stage:             StageAnalysis,
			Message:           fmt.Sprintf("%d to add, %d to update, %d to delete", len(plan.ToAdd), len(plan.ToUpdate), len(plan.ToDelete)),
			Stats:             Stats(plan.Stats),
			Details:           playlistAnalysisDetails(plan),
			NeedsConfirmation: true,
			NextStage:         StagePlaylists,
		}

	case ActionTracks:
		plan, err := o.Engine.AnalyzeTracks(ctx, progress)
		if err != nil {
			return errorResponse(req, err)
		}
		return Response{
			Success:           true,
			Action:            string(req.Action),
			Stage:             StageAnalysis,
			Message:           fmt.Sprintf("%d to add, %d to update, %d to delete", len(plan.ToAdd), len(plan.ToUpdate), len(plan.ToDelete)),
			Stats:             Stats(plan.Stats),
			Details:           trackAnalysisDetails(plan),
			NeedsConfirmation: true,
			NextStage:         StageTracks,
		}

	case ActionAssociations:
		plan, err := o.Engine.AnalyzeAssociations(ctx, filter, progress)
		if err != nil {
			return errorResponse(req, err)
		}
		return Response{
			Success:           true,
			Action:            string(req.Action),
			Stage:             StageAnalysis,
			Message:           fmt.Sprintf("%d dirty playlists", len(plan.DirtyPlaylists)),
			Details:           associationAnalysisDetails(plan),
			NeedsConfirmation: true,
			NextStage:         StageAssociations,
		}

	case ActionAll:
		plan, err := o.Engine.AnalyzeAll(ctx, filter, progress)
		if err != nil {
			return errorResponse(req, err)
		}
		return Response{
			Success: true,
			Action:  string(req.Action),
			Stage:   StageAnalysis,
			Message: "analysis complete",
			Stats: Stats{
				Added:   len(plan.Playlists.ToAdd) + len(plan.Tracks.ToAdd),
				Updated: len(plan.Playlists.ToUpdate) + len(plan.Tracks.ToUpdate),
				Deleted: len(plan.Playlists.ToDelete) + len(plan.Tracks.ToDelete),
			},
			Details: map[string]any{
				"playlists":    playlistAnalysisDetails(plan.Playlists),
				"tracks":       trackAnalysisDetails(plan.Tracks),
				"associations": associationAnalysisDetails(plan.Associations),
			},
			NeedsConfirmation: true,
			NextStage:         StagePlaylists,
		}

	default:
		return errorResponse(req, fmt.Errorf("unknown action %q", req.Action))
	}
}

func (o *Orchestrator) execute(ctx context.Context, req Request, filter remote.FilterConfig, progress chan sync.ProgressUpdate) Response {
	defer close(progress)

	switch req.Action {
	case ActionPlaylists:
		plan, err := decodePlan(req, func() (*sync.PlaylistPlan, error) { return o.Engine.AnalyzePlaylists(ctx, filter, progress) })
		if err != nil {
			return errorResponse(req, err)
		}
		if err := o.Engine.ExecutePlaylists(ctx, plan, progress); err != nil {
			return errorResponse(req, err)
		}
		return completeResponse(req, Stats(plan.Stats))

	case ActionTracks:
		plan, err := decodePlan(req, func() (*sync.TrackPlan, error) { return o.Engine.AnalyzeTracks(ctx, progress) })
		if err != nil {
			return errorResponse(req, err)
		}
		if err := o.Engine.ExecuteTracks(ctx, plan, progress); err != nil {
			return errorResponse(req, err)
		}
		return completeResponse(req, Stats(plan.Stats))

	case ActionAssociations:
		plan, err := decodePlan(req, func() (*sync.AssociationPlan, error) { return o.Engine.AnalyzeAssociations(ctx, filter, progress) })
		if err != nil {
			return errorResponse(req, err)
		}
		if err := o.Engine.ExecuteAssociations(ctx, plan, progress); err != nil {
			return errorResponse(req, err)
		}
		return completeResponse(req, Stats{Added: len(plan.ToAdd), Deleted: len(plan.ToRemove)})

	case ActionAll:
		plan, err := decodePlan(req, func() (*sync.AllPlan, error) { return o.Engine.AnalyzeAll(ctx, filter, progress) })
		if err != nil {
			return errorResponse(req, err)
		}
		if err := o.Engine.ExecuteAll(ctx, plan, progress); err != nil {
			return errorResponse(req, err)
		}
		return completeResponse(req, Stats{
			Added:   len(plan.Playlists.ToAdd) + len(plan.Tracks.ToAdd),
			Updated: len(plan.Playlists.ToUpdate) + len(plan.Tracks.ToUpdate),
			Deleted: len(plan.Playlists.ToDelete) + len(plan.Tracks.ToDelete),
		})

	default:
		return errorResponse(req, fmt.Errorf("unknown action %q", req.Action))
	}
}

// decodePlan returns req's precomputed plan if the caller already supplied
// one (the re-analyze-on-confirm contract spec.md §6 allows skipping), else
// falls back to recomputing it via fallback.
func decodePlan[T any](req Request, fallback func() (T, error)) (T, error) {
	if plan, ok := req.PrecomputedChangesFromAnalysis.(T); ok {
		return plan, nil
	}
	return fallback()
}

func completeResponse(req Request, stats Stats) Response {
	return Response{
		Success: true,
		Action:  string(req.Action),
		Stage:   StageSyncComplete,
		Message: "sync complete",
		Stats:   stats,
	}
}

func errorResponse(req Request, err error) Response {
	return Response{
		Success: false,
		Action:  string(req.Action),
		Stage:   req.Stage,
		Message: err.Error(),
	}
}

func toFilterConfig(s PlaylistSettings) remote.FilterConfig {
	return remote.FilterConfig{
		ForbiddenNameSubstrings:   s.ExcludedKeywords,
		ForbiddenPlaylistIDs:      s.ExcludedPlaylistIDs,
		ForbiddenDescriptionTerms: s.ExcludeByDescription,
	}
}

func playlistAnalysisDetails(plan *sync.PlaylistPlan) AnalysisDetails {
	details := AnalysisDetails{}
	for _, p := range plan.ToAdd {
		details.ItemsToAdd = append(details.ItemsToAdd, PlaylistItem{ID: p.ID, Name: p.Name})
	}
	for _, u := range plan.ToUpdate {
		details.ItemsToUpdate = append(details.ItemsToUpdate, PlaylistItem{ID: u.ID, Name: u.Name, OldName: u.OldName})
	}
	for _, id := range plan.ToDelete {
		details.ItemsToDelete = append(details.ItemsToDelete, PlaylistItem{ID: id})
	}
	return details
}

func trackAnalysisDetails(plan *sync.TrackPlan) AnalysisDetails {
	details := AnalysisDetails{}
	for _, t := range plan.ToAdd {
		details.ItemsToAdd = append(details.ItemsToAdd, toTrackItem(t))
	}
	for _, t := range plan.ToUpdate {
		details.ItemsToUpdate = append(details.ItemsToUpdate, toTrackItem(t))
	}
	for _, uri := range plan.ToDelete {
		details.ItemsToDelete = append(details.ItemsToDelete, TrackItem{ID: uri})
	}
	return details
}

func toTrackItem(t models.Track) TrackItem {
	item := TrackItem{ID: t.URI, Artists: t.Artists(), Title: t.Title, Album: t.Album, IsLocal: t.IsLocal}
	if t.AddedAt != nil {
		item.AddedAt = t.AddedAt.UTC().Format("2006-01-02T15:04:05Z07:00")
	}
	return item
}

func associationAnalysisDetails(plan *sync.AssociationPlan) AnalysisDetails {
	details := AnalysisDetails{}
	addBy := make(map[string][]string)
	removeBy := make(map[string][]string)
	for _, e := range plan.ToAdd {
		addBy[e.TrackURI] = append(addBy[e.TrackURI], e.PlaylistID)
	}
	for _, e := range plan.ToRemove {
		removeBy[e.TrackURI] = append(removeBy[e.TrackURI], e.PlaylistID)
	}

	seen := make(map[string]bool)
	order := make([]string, 0)
	for uri := range addBy {
		if !seen[uri] {
			seen[uri] = true
			order = append(order, uri)
		}
	}
	for uri := range removeBy {
		if !seen[uri] {
			seen[uri] = true
			order = append(order, uri)
		}
	}
	for _, uri := range order {
		details.ItemsToUpdate = append(details.ItemsToUpdate, AssociationItem{
			TrackID:    uri,
			AddTo:      addBy[uri],
			RemoveFrom: removeBy[uri],
		})
	}
	return details
}
