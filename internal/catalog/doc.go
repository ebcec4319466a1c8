// Package catalog is the persistent store for Playlist, Track, TrackPlaylist,
// and FileMapping rows. All access goes through a Pool-issued UnitOfWork: one
// *sql.Tx, committed or rolled back as a whole, never shared across
// goroutines.
package catalog
