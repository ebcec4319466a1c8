package matcher_test

import (
	"testing"

	"github.com/desertthunder/shelfsync/internal/matcher"
	"github.com/desertthunder/shelfsync/internal/models"
)

func intPtr(v int) *int { return &v }

func TestFindBestMatchExactTitleAndArtist(t *testing.T) {
	tracks := []models.Track{
		{URI: "spotify:track:1", Title: "One More Time", Artist: "Daft Punk", DurationMS: intPtr(320000)},
		{URI: "spotify:track:2", Title: "Harder Better Faster Stronger", Artist: "Daft Punk", DurationMS: intPtr(224000)},
	}
	m := matcher.New(tracks, nil)

	best := m.FindBestMatch("/music/Daft Punk - One More Time.mp3", 0.7, "", intPtr(320500))
	if best == nil {
		t.Fatal("expected a match, got nil")
	}
	if best.Track.URI != "spotify:track:1" {
		t.Errorf("matched URI = %q, want spotify:track:1", best.Track.URI)
	}
	if best.Score <= 1.0 && best.Score < 0.9 {
		t.Errorf("score = %v, want a high-confidence match", best.Score)
	}
}

func TestFindBestMatchNoCandidatesBelowThreshold(t *testing.T) {
	tracks := []models.Track{
		{URI: "spotify:track:1", Title: "Completely Unrelated Song", Artist: "Some Band"},
	}
	m := matcher.New(tracks, nil)

	best := m.FindBestMatch("/music/Nothing Like It.mp3", 0.8, "", nil)
	if best != nil {
		t.Errorf("expected nil, got %+v", best)
	}
}

func TestRemixTitleMatchesRemixCandidate(t *testing.T) {
	tracks := []models.Track{
		{URI: "spotify:track:1", Title: "Blinding Lights (Extended Remix)", Artist: "The Weeknd"},
	}
	m := matcher.New(tracks, nil)

	matches := m.FindMatches("/music/The Weeknd - Blinding Lights (Extended Remix).mp3", 0.5, 5, "", nil)
	if len(matches) != 1 {
		t.Fatalf("len(matches) = %d, want 1", len(matches))
	}
}

func TestMappingPenaltyDiscouragesReassignment(t *testing.T) {
	tracks := []models.Track{
		{URI: "spotify:track:1", Title: "One More Time", Artist: "Daft Punk"},
	}
	mappings := []models.FileMapping{
		{TrackURI: "spotify:track:1", FilePath: "/music/already-bound.mp3", Active: true},
	}
	m := matcher.New(tracks, mappings)

	matches := m.FindMatches("/music/Daft Punk - One More Time.mp3", 0.0, 5, "", nil)
	if len(matches) != 1 {
		t.Fatalf("len(matches) = %d, want 1", len(matches))
	}
	// Different file path, existing mapping target doesn't exist on disk ->
	// penalty falls through to the 0.8 "stale binding" case.
	if matches[0].Score >= 1.0 {
		t.Errorf("score = %v, want penalized below 1.0", matches[0].Score)
	}
}

func TestExcludeURISkipsCandidate(t *testing.T) {
	tracks := []models.Track{
		{URI: "spotify:track:1", Title: "One More Time", Artist: "Daft Punk"},
	}
	m := matcher.New(tracks, nil)

	matches := m.FindMatches("/music/Daft Punk - One More Time.mp3", 0.0, 5, "spotify:track:1", nil)
	if len(matches) != 0 {
		t.Errorf("len(matches) = %d, want 0 (excluded)", len(matches))
	}
}

func TestArtistWordIntersectionFiltersUnrelatedArtists(t *testing.T) {
	tracks := []models.Track{
		{URI: "spotify:track:1", Title: "One More Time", Artist: "Daft Punk"},
		{URI: "spotify:track:2", Title: "One More Time (Live)", Artist: "Some Other Band"},
	}
	m := matcher.New(tracks, nil)

	matches := m.FindMatches("/music/Daft Punk - One More Time.mp3", 0.0, 5, "", nil)
	for _, match := range matches {
		if match.Track.URI == "spotify:track:2" {
			t.Errorf("unrelated artist track admitted as a candidate: %+v", match)
		}
	}
}

func TestNoArtistInFilenameConsidersAllCandidates(t *testing.T) {
	tracks := []models.Track{
		{URI: "spotify:track:1", Title: "One More Time", Artist: "Daft Punk"},
	}
	m := matcher.New(tracks, nil)

	matches := m.FindMatches("/music/One More Time.mp3", 0.5, 5, "", nil)
	if len(matches) != 1 {
		t.Fatalf("len(matches) = %d, want 1", len(matches))
	}
}
