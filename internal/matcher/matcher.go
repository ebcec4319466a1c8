package matcher

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/desertthunder/shelfsync/internal/models"
)

// preprocessedTrack caches the expensive per-track string work so repeated
// FindMatches calls over the same snapshot don't redo it.
type preprocessedTrack struct {
	track            models.Track
	normalizedArtist string
	baseTitle        string
	remixInfo        string
	artistWords      map[string]struct{}
}

// Match is one ranked candidate returned by FindMatches: the track, its
// score, and a short human-readable reason (the match details spec.md's
// §4.3 leaves implementation-defined).
type Match struct {
	Track  models.Track
	Score  float64
	Reason string
}

// Matcher is constructed once over a snapshot of (all Tracks, active
// FileMappings) and serves repeated find_matches/find_best_match queries
// against that fixed snapshot — a new filesystem scan builds a new Matcher.
type Matcher struct {
	preprocessed []preprocessedTrack
	mappedPaths  map[string][]string // track URI -> active file paths
}

// New builds a Matcher over tracks and the file paths they are currently
// (actively) bound to.
func New(tracks []models.Track, activeMappings []models.FileMapping) *Matcher {
	mappedPaths := make(map[string][]string, len(activeMappings))
	for _, fm := range activeMappings {
		mappedPaths[fm.TrackURI] = append(mappedPaths[fm.TrackURI], fm.FilePath)
	}

	preprocessed := make([]preprocessedTrack, 0, len(tracks))
	for _, t := range tracks {
		if strings.TrimSpace(t.Title) == "" {
			continue
		}
		normalizedArtist := normalize(t.Artist)
		normalizedTitle := normalize(t.Title)
		base, remix := extractRemixInfo(normalizedTitle)
		preprocessed = append(preprocessed, preprocessedTrack{
			track:            t,
			normalizedArtist: normalizedArtist,
			baseTitle:        base,
			remixInfo:        remix,
			artistWords:      artistWords(normalizedArtist),
		})
	}

	return &Matcher{preprocessed: preprocessed, mappedPaths: mappedPaths}
}

// FindMatches scores every admissible candidate against filePath (and,
// when known, durationMS) and returns matches at or above threshold, best
// first, capped at maxMatches. excludeURI (if non-empty) is skipped — the
// exclude_uri parameter from spec.md's find_matches contract.
func (m *Matcher) FindMatches(filePath string, threshold float64, maxMatches int, excludeURI string, durationMS *int) []Match {
	filename := filepath.Base(filePath)
	rawArtist, rawTitle := extractArtistTitle(filename)

	normalizedArtist := normalize(rawArtist)
	normalizedTitle := normalize(rawTitle)
	queryBase, queryRemix := extractRemixInfo(normalizedTitle)
	queryArtistWords := artistWords(normalizedArtist)

	candidates := m.admissible(normalizedArtist, queryArtistWords)

	matches := make([]Match, 0, len(candidates))
	for _, pt := range candidates {
		if excludeURI != "" && pt.track.URI == excludeURI {
			continue
		}

		score, reason := m.score(normalizedArtist, queryBase, queryRemix, pt)
		score *= m.mappingPenalty(pt.track.URI, filePath)

		if durationMS != nil && pt.track.DurationMS != nil {
			boost := durationBoost(*durationMS, *pt.track.DurationMS)
			if boost > 1.0 {
				reason += ", duration boost"
			}
			score = clampOne(score * boost)
		}

		if score >= threshold {
			matches = append(matches, Match{Track: pt.track, Score: score, Reason: reason})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool { return matches[i].Score > matches[j].Score })
	if len(matches) > maxMatches {
		matches = matches[:maxMatches]
	}
	return matches
}

// FindBestMatch returns the single highest-scoring match at or above
// threshold, or nil. It evaluates candidates down to a 0.4 floor (per
// spec.md's analyze step) and returns the top one only if it also clears
// threshold; a near-miss below threshold is not returned.
func (m *Matcher) FindBestMatch(filePath string, threshold float64, excludeURI string, durationMS *int) *Match {
	matches := m.FindMatches(filePath, 0.4, 1, excludeURI, durationMS)
	if len(matches) == 0 || matches[0].Score < threshold {
		return nil
	}
	return &matches[0]
}

// admissible restricts candidates to tracks whose artist-word set
// intersects the query's, when the query carries an artist; otherwise all
// candidates are considered (spec.md §4.3 step 9).
func (m *Matcher) admissible(queryArtist string, queryWords map[string]struct{}) []preprocessedTrack {
	if queryArtist == "" {
		return m.preprocessed
	}
	out := make([]preprocessedTrack, 0, len(m.preprocessed))
	for _, pt := range m.preprocessed {
		if wordSetsIntersect(queryWords, pt.artistWords) {
			out = append(out, pt)
		}
	}
	return out
}

func (m *Matcher) score(queryArtist, queryBase, queryRemix string, pt preprocessedTrack) (float64, string) {
	artistScore := m.artistScore(queryArtist, pt.normalizedArtist)
	titleScore := titleScore(queryBase, queryRemix, pt.baseTitle, pt.remixInfo)

	var combined float64
	if queryArtist != "" {
		combined = artistScore*0.6 + titleScore*0.4
	} else {
		combined = titleScore * 0.9
	}

	return combined, "artist+title score"
}

// artistScore is 1.0 if the query artist is a substring of the candidate's
// joined artists; otherwise the best pairwise edit-ratio against each
// candidate artist.
func (m *Matcher) artistScore(queryArtist, candidateArtists string) float64 {
	if queryArtist == "" {
		return 0
	}
	if strings.Contains(candidateArtists, queryArtist) {
		return 1.0
	}

	best := 0.0
	for _, a := range strings.Split(candidateArtists, ",") {
		a = strings.TrimSpace(a)
		if r := editRatio(queryArtist, a); r > best {
			best = r
		}
	}
	return best
}

// titleScore blends base-title similarity with remix-info similarity per
// spec.md §4.3 step 5.
func titleScore(queryBase, queryRemix, candidateBase, candidateRemix string) float64 {
	base := editRatio(queryBase, candidateBase)

	switch {
	case queryRemix != "" && candidateRemix != "":
		return base*0.7 + remixSimilarity(queryRemix, candidateRemix)*0.3
	case queryRemix != "" || candidateRemix != "":
		return base * 0.6
	default:
		return base
	}
}

// mappingPenalty is 1.0 when uri has no active mapping; 0.3 when mapped to
// a different, still-existing file; 0.8 otherwise (a stale or
// self-referential binding).
func (m *Matcher) mappingPenalty(uri, queryFilePath string) float64 {
	paths, ok := m.mappedPaths[uri]
	if !ok || len(paths) == 0 {
		return 1.0
	}

	for _, p := range paths {
		if p == queryFilePath {
			return 0.8
		}
	}
	for _, p := range paths {
		if fileExists(p) {
			return 0.3
		}
	}
	return 0.8
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// durationBoost returns the clamped-to-1.0 multiplier for two durations in
// milliseconds, per spec.md §4.3 step 8.
func durationBoost(fileMS, trackMS int) float64 {
	diff := fileMS - trackMS
	if diff < 0 {
		diff = -diff
	}
	switch {
	case diff <= 1000:
		return 1.25
	case diff <= 3000:
		return 1.20
	case diff <= 10000:
		return 1.15
	case diff <= 30000:
		return 1.10
	default:
		return 1.0
	}
}

func clampOne(v float64) float64 {
	if v > 1.0 {
		return 1.0
	}
	return v
}
