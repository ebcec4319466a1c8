package models

// TrackPlaylistEdge is one membership edge: track t belongs to playlist p.
// The reference playlist is never represented here — its membership is the
// universe of known tracks, not an edge set.
type TrackPlaylistEdge struct {
	PlaylistID string
	TrackURI   string
}

// EdgeSet is a de-duplicated set of (playlist, track) membership edges.
type EdgeSet map[TrackPlaylistEdge]struct{}

// NewEdgeSet builds an EdgeSet from a slice of edges, deduplicating.
func NewEdgeSet(edges ...TrackPlaylistEdge) EdgeSet {
	s := make(EdgeSet, len(edges))
	for _, e := range edges {
		s[e] = struct{}{}
	}
	return s
}

// Add inserts an edge into the set.
func (s EdgeSet) Add(e TrackPlaylistEdge) { s[e] = struct{}{} }

// Has reports whether the set contains e.
func (s EdgeSet) Has(e TrackPlaylistEdge) bool {
	_, ok := s[e]
	return ok
}

// Minus returns the edges present in s but not in other.
func (s EdgeSet) Minus(other EdgeSet) []TrackPlaylistEdge {
	var out []TrackPlaylistEdge
	for e := range s {
		if !other.Has(e) {
			out = append(out, e)
		}
	}
	return out
}
