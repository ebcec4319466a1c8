package matcher

import (
	"path/filepath"
	"strings"
)

// separators are tried in order; the first one present in the filename
// stem splits it into (artist, title).
var separators = []string{" - ", " – ", " — ", " by "}

// extractArtistTitle parses an audio filename (extension stripped) into
// (artist, title). If no known separator is present, artist is empty and
// the whole stem is the title.
func extractArtistTitle(filename string) (artist, title string) {
	stem := strings.TrimSuffix(filename, filepath.Ext(filename))

	for _, sep := range separators {
		if idx := strings.Index(stem, sep); idx >= 0 {
			return strings.TrimSpace(stem[:idx]), strings.TrimSpace(stem[idx+len(sep):])
		}
	}

	return "", strings.TrimSpace(stem)
}
