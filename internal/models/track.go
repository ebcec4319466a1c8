package models

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// Track represents a single recording known to the catalog, identified by a
// resource URI ("service:track:<id>" for remote entries, or
// "service:local:<artist>:<album>:<title>:<duration-seconds>" for
// user-local entries with no remote counterpart).
type Track struct {
	URI        string
	Title      string
	Artist     string // comma-joined; use Artists() to split
	Album      string
	DurationMS *int // nil when unknown (local entries may lack duration)
	AddedAt    *time.Time
	IsLocal    bool

	// SurrogateKey is a deterministic hash of normalized artist+title, set
	// only for local entries so they can be re-identified across re-scans
	// even if their URI changes.
	SurrogateKey string

	// Popularity mirrors optional remote metadata for display only; it
	// never participates in sync diffing, scoring, or dedupe decisions.
	Popularity int
}

// Artists splits the comma-joined Artist field into individual names,
// trimming whitespace. Empty entries are dropped.
func (t Track) Artists() []string {
	return splitArtists(t.Artist)
}

func splitArtists(joined string) []string {
	if joined == "" {
		return nil
	}
	parts := strings.FieldsFunc(joined, func(r rune) bool {
		return r == ',' || r == ';' || r == '&'
	})
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// LocalURI builds the resource URI for a user-local track per spec:
// "service:local:<artist>:<album>:<title>:<duration-seconds>".
func LocalURI(service, artist, album, title string, durationSec int) string {
	return fmt.Sprintf("%s:local:%s:%s:%s:%d", service, artist, album, title, durationSec)
}

// RemoteURI builds the resource URI for a catalog-native track:
// "service:track:<id>".
func RemoteURI(service, id string) string {
	return fmt.Sprintf("%s:track:%s", service, id)
}

// SurrogateKeyFor computes the deterministic surrogate key used to
// re-identify local tracks across re-scans: a SHA-256 hash of the
// normalized artist+title, truncated to 16 hex characters.
func SurrogateKeyFor(artist, title string) string {
	norm := strings.ToLower(strings.TrimSpace(artist)) + "|" + strings.ToLower(strings.TrimSpace(title))
	sum := sha256.Sum256([]byte(norm))
	return hex.EncodeToString(sum[:])[:16]
}
