package catalog

import (
	"database/sql"
	"fmt"

	"github.com/desertthunder/shelfsync/internal/models"
)

// UnitOfWork holds one *sql.Tx and the four entity repositories constructed
// against it. All repositories obtained from the same UnitOfWork share one
// connection and participate in one transaction; commit or rollback acts on
// all of their writes at once.
type UnitOfWork struct {
	tx        *sql.Tx
	release   func()
	committed bool
	done      bool

	Playlists    *PlaylistRepository
	Tracks       *TrackRepository
	Associations *AssociationRepository
	FileMappings *FileMappingRepository
}

// Commit commits the transaction and releases the pool slot.
func (u *UnitOfWork) Commit() error {
	if u.done {
		return nil
	}
	u.done = true
	u.committed = true
	defer u.release()
	return u.tx.Commit()
}

// Rollback rolls back the transaction and releases the pool slot. Safe to
// call after Commit or a prior Rollback (no-op), so callers can always
// `defer uow.Rollback()` right after Acquire.
func (u *UnitOfWork) Rollback() error {
	if u.done {
		return nil
	}
	u.done = true
	defer u.release()
	if err := u.tx.Rollback(); err != nil && err != sql.ErrTxDone {
		return err
	}
	return nil
}

// PlaylistsByIDs loads playlists by remote ID in one query, for C7's
// batch preload path.
func (u *UnitOfWork) PlaylistsByIDs(ids []string) (map[string]models.Playlist, error) {
	out := make(map[string]models.Playlist, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	query, args := inClause(`
		SELECT remote_id, name, master_sync_token, associations_token
		FROM playlists
		WHERE deleted_at IS NULL AND remote_id IN (%s)
	`, ids)

	rows, err := u.tx.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query playlists by ids: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var p models.Playlist
		if err := rows.Scan(&p.ID, &p.Name, &p.MasterSyncToken, &p.AssociationsToken); err != nil {
			return nil, fmt.Errorf("failed to scan playlist: %w", err)
		}
		out[p.ID] = p
	}
	return out, rows.Err()
}

// PlaylistTrackURIsBatch returns, for each requested playlist ID, the set of
// track URIs currently associated with it (non-reference playlists only —
// the reference playlist's membership is the Track table itself).
func (u *UnitOfWork) PlaylistTrackURIsBatch(playlistIDs []string) (map[string][]string, error) {
	out := make(map[string][]string, len(playlistIDs))
	if len(playlistIDs) == 0 {
		return out, nil
	}

	query, args := inClause(`
		SELECT playlist_id, track_uri FROM track_playlists WHERE playlist_id IN (%s)
	`, playlistIDs)

	rows, err := u.tx.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query track_playlists: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var playlistID, uri string
		if err := rows.Scan(&playlistID, &uri); err != nil {
			return nil, fmt.Errorf("failed to scan track_playlists row: %w", err)
		}
		out[playlistID] = append(out[playlistID], uri)
	}
	return out, rows.Err()
}

// TracksByURIs loads tracks by URI in one query.
func (u *UnitOfWork) TracksByURIs(uris []string) (map[string]models.Track, error) {
	out := make(map[string]models.Track, len(uris))
	if len(uris) == 0 {
		return out, nil
	}

	query, args := inClause(`
		SELECT uri, title, artist, album, duration_ms, added_at, is_local, surrogate_key, popularity
		FROM tracks
		WHERE deleted_at IS NULL AND uri IN (%s)
	`, uris)

	rows, err := u.tx.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tracks by uris: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		t, err := scanTrack(rows)
		if err != nil {
			return nil, err
		}
		out[t.URI] = t
	}
	return out, rows.Err()
}

// AllPlaylistTrackMappings returns every non-reference playlist's track URI
// set in one query, for C4's association diff and C6's detection pass.
func (u *UnitOfWork) AllPlaylistTrackMappings() (map[string][]string, error) {
	out := make(map[string][]string)

	rows, err := u.tx.Query(`SELECT playlist_id, track_uri FROM track_playlists`)
	if err != nil {
		return nil, fmt.Errorf("failed to query track_playlists: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var playlistID, uri string
		if err := rows.Scan(&playlistID, &uri); err != nil {
			return nil, fmt.Errorf("failed to scan track_playlists row: %w", err)
		}
		out[playlistID] = append(out[playlistID], uri)
	}
	return out, rows.Err()
}

// AllActiveMappings returns every active FileMapping, for C5/C7's batch
// file_path<->uri index construction.
func (u *UnitOfWork) AllActiveMappings() ([]models.FileMapping, error) {
	rows, err := u.tx.Query(`
		SELECT id, file_path, track_uri, file_hash, file_size, modified_at, created_at, active
		FROM file_mappings
		WHERE active = 1
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query active file_mappings: %w", err)
	}
	defer rows.Close()

	var out []models.FileMapping
	for rows.Next() {
		fm, err := scanFileMapping(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, fm)
	}
	return out, rows.Err()
}

// DeleteAllForPlaylist removes every TrackPlaylist edge for playlistID, the
// mandatory first step of a PlaylistSync deletion.
func (u *UnitOfWork) DeleteAllForPlaylist(playlistID string) error {
	_, err := u.tx.Exec(`DELETE FROM track_playlists WHERE playlist_id = ?`, playlistID)
	if err != nil {
		return fmt.Errorf("failed to delete track_playlists for playlist %s: %w", playlistID, err)
	}
	return nil
}

// inClause builds a query with a "(?,?,...)" placeholder list substituted
// into the %s in query, returning the query and the matching args slice.
func inClause(query string, values []string) (string, []any) {
	placeholders := make([]byte, 0, len(values)*2)
	args := make([]any, len(values))
	for i, v := range values {
		if i > 0 {
			placeholders = append(placeholders, ',')
		}
		placeholders = append(placeholders, '?')
		args[i] = v
	}
	return fmt.Sprintf(query, placeholders), args
}
