// Package matcher scores local audio files against catalog tracks for the
// binding engine: filename parsing, remix-tag-aware title similarity,
// artist overlap, duration proximity, and an existing-mapping penalty that
// discourages re-matching a file already bound elsewhere.
package matcher
