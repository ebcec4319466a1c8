package matcher

import (
	"regexp"
	"strings"
)

// remixKeywords is the vocabulary both remix regexes and remix-similarity
// scoring share.
var remixKeywords = map[string]struct{}{
	"remix": {}, "edit": {}, "mix": {}, "version": {}, "vip": {}, "bootleg": {},
	"rework": {}, "flip": {}, "refix": {}, "redo": {}, "extended": {},
	"radio": {}, "club": {}, "dub": {},
}

const keywordAlt = `(?:remix|edit|mix|version|vip|bootleg|rework|flip|refix|redo|extended|radio|club|dub)`

var (
	remixBracketed = regexp.MustCompile(`(?i)\s*[(\[]([^)\]]*` + keywordAlt + `[^)\]]*)\s*[)\]]`)
	remixTrailing  = regexp.MustCompile(`(?i)\s*-\s*([^-]*` + keywordAlt + `[^-]*)\s*$`)
)

// extractRemixInfo splits a normalized title into (baseTitle, remixInfo).
// It tries a parenthesized/bracketed remix group first, then a trailing
// "- ... remix" group; the first that matches wins.
func extractRemixInfo(title string) (base, remix string) {
	for _, re := range []*regexp.Regexp{remixBracketed, remixTrailing} {
		if loc := re.FindStringSubmatchIndex(title); loc != nil {
			remixText := title[loc[2]:loc[3]]
			base := re.ReplaceAllString(title, "")
			return strings.TrimSpace(base), strings.ToLower(strings.TrimSpace(remixText))
		}
	}
	return title, ""
}

// remixSimilarity scores two remix-info strings by the max of direct
// string similarity and keyword-set Jaccard overlap.
func remixSimilarity(a, b string) float64 {
	if a == "" || b == "" {
		return 0.0
	}

	direct := editRatio(a, b)

	wordsA := strings.Fields(a)
	wordsB := strings.Fields(b)
	keywordsA := intersectKeywords(wordsA)
	keywordsB := intersectKeywords(wordsB)

	if len(keywordsA) > 0 && len(keywordsB) > 0 {
		overlap := 0
		for w := range keywordsA {
			if _, ok := keywordsB[w]; ok {
				overlap++
			}
		}
		denom := len(keywordsA)
		if len(keywordsB) > denom {
			denom = len(keywordsB)
		}
		keywordScore := float64(overlap) / float64(denom)
		if keywordScore > direct {
			return keywordScore
		}
	}

	return direct
}

func intersectKeywords(words []string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, w := range words {
		if _, ok := remixKeywords[strings.ToLower(w)]; ok {
			out[strings.ToLower(w)] = struct{}{}
		}
	}
	return out
}
