package catalog

import (
	"database/sql"
	"fmt"

	"github.com/desertthunder/shelfsync/internal/models"
	"github.com/desertthunder/shelfsync/internal/shared"
)

// TrackRepository persists models.Track rows within one UnitOfWork's
// transaction.
type TrackRepository struct {
	tx *sql.Tx
}

// Create inserts a track.
func (r *TrackRepository) Create(t models.Track) error {
	if _, err := nextSequence(r.tx, "tracks"); err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	_, err := r.tx.Exec(`
		INSERT INTO tracks (uri, title, artist, album, duration_ms, added_at, is_local, surrogate_key, popularity)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, t.URI, t.Title, t.Artist, t.Album, nullableInt(t.DurationMS), nullableTime(t.AddedAt), boolToInt(t.IsLocal), t.SurrogateKey, t.Popularity)
	if err != nil {
		return fmt.Errorf("failed to insert track %s: %w", t.URI, err)
	}
	return nil
}

// Get retrieves a track by URI, excluding soft-deleted rows.
func (r *TrackRepository) Get(uri string) (models.Track, error) {
	row := r.tx.QueryRow(`
		SELECT uri, title, artist, album, duration_ms, added_at, is_local, surrogate_key, popularity
		FROM tracks WHERE uri = ? AND deleted_at IS NULL
	`, uri)

	t, err := scanTrack(row)
	if err == sql.ErrNoRows {
		return models.Track{}, fmt.Errorf("%w: track %s", shared.ErrNotFound, uri)
	}
	if err != nil {
		return models.Track{}, fmt.Errorf("failed to scan track: %w", err)
	}
	return t, nil
}

// Update overwrites a track's mutable fields (title/artist/album/duration).
// URI, is_local, and surrogate_key are identity and never change.
func (r *TrackRepository) Update(t models.Track) error {
	res, err := r.tx.Exec(`
		UPDATE tracks
		SET title = ?, artist = ?, album = ?, duration_ms = ?, popularity = ?, updated_at = CURRENT_TIMESTAMP
		WHERE uri = ? AND deleted_at IS NULL
	`, t.Title, t.Artist, t.Album, nullableInt(t.DurationMS), t.Popularity, t.URI)
	if err != nil {
		return fmt.Errorf("failed to update track %s: %w", t.URI, err)
	}
	return expectOneRow(res, "track", t.URI)
}

// Delete soft-deletes a track and cascades to its TrackPlaylist edges and
// FileMappings, per the catalog's ownership invariant over all four
// entities.
func (r *TrackRepository) Delete(uri string) error {
	res, err := r.tx.Exec(`
		UPDATE tracks SET deleted_at = CURRENT_TIMESTAMP WHERE uri = ? AND deleted_at IS NULL
	`, uri)
	if err != nil {
		return fmt.Errorf("failed to delete track %s: %w", uri, err)
	}
	if err := expectOneRow(res, "track", uri); err != nil {
		return err
	}

	if _, err := r.tx.Exec(`DELETE FROM track_playlists WHERE track_uri = ?`, uri); err != nil {
		return fmt.Errorf("failed to cascade-delete track_playlists for %s: %w", uri, err)
	}
	if _, err := r.tx.Exec(`
		UPDATE file_mappings SET active = 0 WHERE track_uri = ? AND active = 1
	`, uri); err != nil {
		return fmt.Errorf("failed to cascade-deactivate file_mappings for %s: %w", uri, err)
	}

	return nil
}

// List returns every non-deleted track.
func (r *TrackRepository) List() ([]models.Track, error) {
	rows, err := r.tx.Query(`
		SELECT uri, title, artist, album, duration_ms, added_at, is_local, surrogate_key, popularity
		FROM tracks WHERE deleted_at IS NULL ORDER BY id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list tracks: %w", err)
	}
	defer rows.Close()

	var out []models.Track
	for rows.Next() {
		t, err := scanTrack(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan track row: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
