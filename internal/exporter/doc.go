// Package exporter regenerates M3U playlist files from the catalog onto
// disk, tracking their folder layout in a small JSON structure file so
// repeated regenerations land playlists in the same place a user last
// organized them.
package exporter
