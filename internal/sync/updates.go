package sync

import "fmt"

// ProgressUpdate reports one step of a long-running sync stage for
// non-blocking status reporting to a CLI or UI layer.
type ProgressUpdate struct {
	Phase   Phase
	Step    int
	Total   int
	Message string
	Data    any
}

// Phase enumerates the stages a ProgressUpdate can belong to.
type Phase int

const (
	PhasePlaylists Phase = iota
	PhaseTracks
	PhaseAssociations
)

func (p Phase) String() string {
	switch p {
	case PhasePlaylists:
		return "playlists"
	case PhaseTracks:
		return "tracks"
	case PhaseAssociations:
		return "associations"
	default:
		return ""
	}
}

// sendProgress sends update without blocking; a full or nil channel just
// drops the update rather than stalling the sync itself.
func sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

func playlistsUpdate(step, total int, message string) ProgressUpdate {
	return ProgressUpdate{Phase: PhasePlaylists, Step: step, Total: total, Message: message}
}

func tracksUpdate(step, total int, message string) ProgressUpdate {
	return ProgressUpdate{Phase: PhaseTracks, Step: step, Total: total, Message: message}
}

func associationsUpdate(step, total int, message string) ProgressUpdate {
	return ProgressUpdate{Phase: PhaseAssociations, Step: step, Total: total, Message: message}
}

func playlistProgressMessage(id string, step, total int) string {
	return fmt.Sprintf("[%d/%d] syncing associations for playlist %s", step, total, id)
}
