package dedupe

import (
	"sort"

	"github.com/desertthunder/shelfsync/internal/matcher"
	"github.com/desertthunder/shelfsync/internal/models"
)

// similarityThreshold is the within-bucket pairwise verification bar:
// both title and artist set must clear it.
const similarityThreshold = 0.95

// groupBucket partitions one fingerprint bucket into duplicate
// equivalence groups via union-find over pairwise edit-ratio
// verification.
func groupBucket(tracks []models.Track) [][]models.Track {
	n := len(tracks)
	parent := make([]int, n)
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(i int) int {
		for parent[i] != i {
			parent[i] = parent[parent[i]]
			i = parent[i]
		}
		return i
	}
	union := func(a, b int) {
		ra, rb := find(a), find(b)
		if ra != rb {
			parent[ra] = rb
		}
	}

	titles := make([]string, n)
	artistKeys := make([]string, n)
	for i, t := range tracks {
		titles[i] = lightNormalize(t.Title)
		artistKeys[i] = sortedLoweredArtists(t)
	}

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if matcher.EditRatio(titles[i], titles[j]) >= similarityThreshold &&
				matcher.EditRatio(artistKeys[i], artistKeys[j]) >= similarityThreshold {
				union(i, j)
			}
		}
	}

	groups := make(map[int][]models.Track)
	for i, t := range tracks {
		root := find(i)
		groups[root] = append(groups[root], t)
	}

	out := make([][]models.Track, 0, len(groups))
	for _, g := range groups {
		out = append(out, g)
	}
	return out
}

// selectPrimary picks the surviving track from a duplicate group: the
// lexicographically greatest by (duration ms, non-local-first,
// has-surrogate-key-first, album name length).
func selectPrimary(group []models.Track) (primary models.Track, duplicates []models.Track) {
	ordered := make([]models.Track, len(group))
	copy(ordered, group)

	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		if da, db := durationOf(a), durationOf(b); da != db {
			return da > db
		}
		if a.IsLocal != b.IsLocal {
			return !a.IsLocal
		}
		if ha, hb := a.SurrogateKey != "", b.SurrogateKey != ""; ha != hb {
			return ha
		}
		return len(a.Album) > len(b.Album)
	})

	return ordered[0], ordered[1:]
}

func durationOf(t models.Track) int {
	if t.DurationMS == nil {
		return 0
	}
	return *t.DurationMS
}
