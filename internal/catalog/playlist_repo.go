package catalog

import (
	"database/sql"
	"fmt"

	"github.com/desertthunder/shelfsync/internal/models"
	"github.com/desertthunder/shelfsync/internal/shared"
)

// PlaylistRepository persists models.Playlist rows within one UnitOfWork's
// transaction.
type PlaylistRepository struct {
	tx *sql.Tx
}

// Create inserts a playlist, mirrored with its per-table sequence row the
// way the teacher's repository layer numbers every entity.
func (r *PlaylistRepository) Create(p models.Playlist) error {
	if _, err := nextSequence(r.tx, "playlists"); err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	_, err := r.tx.Exec(`
		INSERT INTO playlists (remote_id, name, master_sync_token, associations_token)
		VALUES (?, ?, ?, ?)
	`, p.ID, p.Name, p.MasterSyncToken, p.AssociationsToken)
	if err != nil {
		return fmt.Errorf("failed to insert playlist %s: %w", p.ID, err)
	}
	return nil
}

// Get retrieves a playlist by remote ID, excluding soft-deleted rows.
func (r *PlaylistRepository) Get(id string) (models.Playlist, error) {
	row := r.tx.QueryRow(`
		SELECT remote_id, name, master_sync_token, associations_token
		FROM playlists WHERE remote_id = ? AND deleted_at IS NULL
	`, id)

	p, err := scanPlaylist(row)
	if err == sql.ErrNoRows {
		return models.Playlist{}, fmt.Errorf("%w: playlist %s", shared.ErrNotFound, id)
	}
	if err != nil {
		return models.Playlist{}, fmt.Errorf("failed to scan playlist: %w", err)
	}
	return p, nil
}

// UpdateName renames a playlist, the only field PlaylistSync ever updates.
func (r *PlaylistRepository) UpdateName(id, name string) error {
	res, err := r.tx.Exec(`
		UPDATE playlists SET name = ?, updated_at = CURRENT_TIMESTAMP
		WHERE remote_id = ? AND deleted_at IS NULL
	`, name, id)
	if err != nil {
		return fmt.Errorf("failed to update playlist %s: %w", id, err)
	}
	return expectOneRow(res, "playlist", id)
}

// UpdateMasterSyncToken advances the reference playlist's snapshot token
// after a TrackSync execute.
func (r *PlaylistRepository) UpdateMasterSyncToken(id, token string) error {
	_, err := r.tx.Exec(`
		UPDATE playlists SET master_sync_token = ?, updated_at = CURRENT_TIMESTAMP
		WHERE remote_id = ?
	`, token, id)
	if err != nil {
		return fmt.Errorf("failed to update master_sync_token for %s: %w", id, err)
	}
	return nil
}

// UpdateAssociationsToken advances one playlist's membership snapshot token
// after a successful AssociationSync execute.
func (r *PlaylistRepository) UpdateAssociationsToken(id, token string) error {
	_, err := r.tx.Exec(`
		UPDATE playlists SET associations_token = ?, updated_at = CURRENT_TIMESTAMP
		WHERE remote_id = ?
	`, token, id)
	if err != nil {
		return fmt.Errorf("failed to update associations_token for %s: %w", id, err)
	}
	return nil
}

// Delete soft-deletes a playlist. Callers must remove its TrackPlaylist
// edges first (UnitOfWork.DeleteAllForPlaylist) — PlaylistSync's invariant,
// not enforced here.
func (r *PlaylistRepository) Delete(id string) error {
	res, err := r.tx.Exec(`
		UPDATE playlists SET deleted_at = CURRENT_TIMESTAMP
		WHERE remote_id = ? AND deleted_at IS NULL
	`, id)
	if err != nil {
		return fmt.Errorf("failed to delete playlist %s: %w", id, err)
	}
	return expectOneRow(res, "playlist", id)
}

// List returns every non-deleted playlist.
func (r *PlaylistRepository) List() ([]models.Playlist, error) {
	rows, err := r.tx.Query(`
		SELECT remote_id, name, master_sync_token, associations_token
		FROM playlists WHERE deleted_at IS NULL ORDER BY id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list playlists: %w", err)
	}
	defer rows.Close()

	var out []models.Playlist
	for rows.Next() {
		p, err := scanPlaylist(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan playlist row: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// expectOneRow fails with shared.ErrNotFound if res affected zero rows —
// the shape every soft-delete/update method in this package uses to detect
// a missing or already-deleted target.
func expectOneRow(res sql.Result, kind, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s %s", shared.ErrNotFound, kind, id)
	}
	return nil
}
