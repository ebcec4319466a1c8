// Package dedupe finds and merges duplicate catalog tracks: a coarse
// fingerprint buckets likely duplicates, pairwise edit-ratio verification
// confirms them, and a deterministic primary-selection rule picks which
// track in each group survives.
package dedupe
