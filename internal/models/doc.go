// Package models defines the domain entities shared by every shelfsync
// component: playlists, tracks, their memberships, and filesystem bindings.
//
// Entities here are plain structs, not active records — all persistence goes
// through internal/catalog. A Track's identity is its resource URI; a
// Playlist's identity is its remote ID; TrackPlaylist membership is a set,
// never a bag; a FileMapping binds one filesystem path to one track URI.
package models
