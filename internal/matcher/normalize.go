package matcher

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var stripAccents transform.Transformer = runes.Remove(runes.In(unicode.Mn))

// normalize lowercases, maps "&" to "and", strips accents, and collapses
// internal whitespace — the preprocessing every title/artist comparison
// runs through before scoring.
func normalize(s string) string {
	if s == "" {
		return ""
	}
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, "&", "and")
	if deaccented, _, err := transform.String(transform.Chain(norm.NFD, stripAccents, norm.NFC), s); err == nil {
		s = deaccented
	}
	return strings.Join(strings.Fields(s), " ")
}

// artistWords splits a normalized, comma/semicolon/ampersand-joined artist
// string into a set of individual words, used for candidate admission and
// fast-path artist scoring.
func artistWords(normalizedArtists string) map[string]struct{} {
	clean := strings.NewReplacer(",", " ", ";", " ", "&", " ").Replace(normalizedArtists)
	words := make(map[string]struct{})
	for _, w := range strings.Fields(clean) {
		words[w] = struct{}{}
	}
	return words
}

func wordSetsIntersect(a, b map[string]struct{}) bool {
	small, big := a, b
	if len(b) < len(a) {
		small, big = b, a
	}
	for w := range small {
		if _, ok := big[w]; ok {
			return true
		}
	}
	return false
}
