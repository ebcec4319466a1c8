package catalog

import (
	"database/sql"
	"fmt"

	"github.com/desertthunder/shelfsync/internal/models"
)

// AssociationRepository persists models.TrackPlaylistEdge rows (the
// track_playlists table) within one UnitOfWork's transaction. Membership is
// a set: Add is idempotent, never producing a duplicate edge.
type AssociationRepository struct {
	tx *sql.Tx
}

// Add inserts an edge if it is not already present.
func (r *AssociationRepository) Add(e models.TrackPlaylistEdge) error {
	_, err := r.tx.Exec(`
		INSERT OR IGNORE INTO track_playlists (playlist_id, track_uri) VALUES (?, ?)
	`, e.PlaylistID, e.TrackURI)
	if err != nil {
		return fmt.Errorf("failed to add edge %s/%s: %w", e.PlaylistID, e.TrackURI, err)
	}
	return nil
}

// Remove deletes an edge if present; removing a nonexistent edge is a
// no-op, not an error (AssociationSync re-execution must be idempotent).
func (r *AssociationRepository) Remove(e models.TrackPlaylistEdge) error {
	_, err := r.tx.Exec(`
		DELETE FROM track_playlists WHERE playlist_id = ? AND track_uri = ?
	`, e.PlaylistID, e.TrackURI)
	if err != nil {
		return fmt.Errorf("failed to remove edge %s/%s: %w", e.PlaylistID, e.TrackURI, err)
	}
	return nil
}

// URIsForPlaylist returns the track URIs currently in playlistID.
func (r *AssociationRepository) URIsForPlaylist(playlistID string) ([]string, error) {
	rows, err := r.tx.Query(`SELECT track_uri FROM track_playlists WHERE playlist_id = ?`, playlistID)
	if err != nil {
		return nil, fmt.Errorf("failed to query edges for playlist %s: %w", playlistID, err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var uri string
		if err := rows.Scan(&uri); err != nil {
			return nil, fmt.Errorf("failed to scan edge row: %w", err)
		}
		out = append(out, uri)
	}
	return out, rows.Err()
}

// PlaylistsForTrack returns the playlist IDs a track URI currently belongs
// to.
func (r *AssociationRepository) PlaylistsForTrack(uri string) ([]string, error) {
	rows, err := r.tx.Query(`SELECT playlist_id FROM track_playlists WHERE track_uri = ?`, uri)
	if err != nil {
		return nil, fmt.Errorf("failed to query playlists for track %s: %w", uri, err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var playlistID string
		if err := rows.Scan(&playlistID); err != nil {
			return nil, fmt.Errorf("failed to scan edge row: %w", err)
		}
		out = append(out, playlistID)
	}
	return out, rows.Err()
}

// ReassignTrack repoints every edge referencing fromURI to toURI, merging
// membership — the duplicate engine's primary-selection step.
func (r *AssociationRepository) ReassignTrack(fromURI, toURI string) error {
	playlists, err := r.PlaylistsForTrack(fromURI)
	if err != nil {
		return err
	}
	for _, playlistID := range playlists {
		if err := r.Add(models.TrackPlaylistEdge{PlaylistID: playlistID, TrackURI: toURI}); err != nil {
			return err
		}
	}
	if _, err := r.tx.Exec(`DELETE FROM track_playlists WHERE track_uri = ?`, fromURI); err != nil {
		return fmt.Errorf("failed to clear edges for %s: %w", fromURI, err)
	}
	return nil
}
