package models

import "time"

// FileMapping binds one filesystem path to one track URI. At most one
// mapping per path is active at a time; multiple active mappings may share
// a URI (duplicate files of the same track) until resolved by the binding
// or duplicate engine.
type FileMapping struct {
	ID         string
	FilePath   string
	TrackURI   string
	FileHash   string // lowercase hex SHA-256 of file contents
	FileSize   int64
	ModifiedAt time.Time
	CreatedAt  time.Time
	Active     bool
}
