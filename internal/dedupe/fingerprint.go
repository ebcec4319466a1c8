package dedupe

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"sort"
	"strings"

	"github.com/desertthunder/shelfsync/internal/models"
)

// markers are version/edition qualifiers stripped from a title before
// fingerprinting — they distinguish pressings, not tracks.
var markers = []string{"explicit", "clean", "radio edit", "album version", "remastered", "remaster"}

var bracketed = regexp.MustCompile(`\([^)]*\)|\[[^\]]*\]`)

// fingerprint computes the coarse bucket key for a track: lowercased
// title with bracketed content and version markers removed, concatenated
// with the sorted, lowercased artist set, hashed to its first 8 hex
// characters.
func fingerprint(t models.Track) string {
	title := strings.ToLower(t.Title)
	title = bracketed.ReplaceAllString(title, "")
	for _, m := range markers {
		title = strings.ReplaceAll(title, m, "")
	}
	title = strings.Join(strings.Fields(title), " ")

	artists := t.Artists()
	lowered := make([]string, len(artists))
	for i, a := range artists {
		lowered[i] = strings.ToLower(a)
	}
	sort.Strings(lowered)

	sum := sha256.Sum256([]byte(title + "|" + strings.Join(lowered, ",")))
	return hex.EncodeToString(sum[:])[:8]
}

// lightNormalize is the within-bucket pairwise-verification normalization:
// lowercase, bracketed content removed, whitespace collapsed. Unbracketed
// version markers are left in place.
func lightNormalize(s string) string {
	s = bracketed.ReplaceAllString(strings.ToLower(s), "")
	return strings.Join(strings.Fields(s), " ")
}

func sortedLoweredArtists(t models.Track) string {
	artists := t.Artists()
	lowered := make([]string, len(artists))
	for i, a := range artists {
		lowered[i] = strings.ToLower(a)
	}
	sort.Strings(lowered)
	return strings.Join(lowered, ",")
}
