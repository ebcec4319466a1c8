package catalog

import (
	"database/sql"
	"fmt"

	"github.com/desertthunder/shelfsync/internal/models"
	"github.com/desertthunder/shelfsync/internal/shared"
)

// FileMappingRepository persists models.FileMapping rows within one
// UnitOfWork's transaction. At most one active mapping per file path is the
// invariant callers (C5, C6) must preserve; this repository enforces
// uniqueness only at the storage layer (a unique index on file_path).
type FileMappingRepository struct {
	tx *sql.Tx
}

// Create inserts a new active file mapping.
func (r *FileMappingRepository) Create(fm models.FileMapping) (models.FileMapping, error) {
	if _, err := nextSequence(r.tx, "file_mappings"); err != nil {
		return models.FileMapping{}, fmt.Errorf("failed to generate sequence: %w", err)
	}

	res, err := r.tx.Exec(`
		INSERT INTO file_mappings (file_path, track_uri, file_hash, file_size, modified_at, active)
		VALUES (?, ?, ?, ?, ?, 1)
	`, fm.FilePath, fm.TrackURI, fm.FileHash, fm.FileSize, fm.ModifiedAt)
	if err != nil {
		return models.FileMapping{}, fmt.Errorf("failed to insert file mapping %s: %w", fm.FilePath, err)
	}

	rowID, err := res.LastInsertId()
	if err != nil {
		return models.FileMapping{}, fmt.Errorf("failed to read inserted id: %w", err)
	}
	fm.ID = idString(rowID)
	fm.Active = true
	return fm, nil
}

// GetByPath retrieves the active mapping for a file path, if any.
func (r *FileMappingRepository) GetByPath(path string) (models.FileMapping, error) {
	row := r.tx.QueryRow(`
		SELECT id, file_path, track_uri, file_hash, file_size, modified_at, created_at, active
		FROM file_mappings WHERE file_path = ? AND active = 1
	`, path)

	fm, err := scanFileMapping(row)
	if err == sql.ErrNoRows {
		return models.FileMapping{}, fmt.Errorf("%w: mapping for %s", shared.ErrNotFound, path)
	}
	if err != nil {
		return models.FileMapping{}, fmt.Errorf("failed to scan file mapping: %w", err)
	}
	return fm, nil
}

// ActiveForURI returns every active mapping bound to uri, used to detect
// and resolve duplicate bindings (more than one active mapping per URI).
func (r *FileMappingRepository) ActiveForURI(uri string) ([]models.FileMapping, error) {
	rows, err := r.tx.Query(`
		SELECT id, file_path, track_uri, file_hash, file_size, modified_at, created_at, active
		FROM file_mappings WHERE track_uri = ? AND active = 1
	`, uri)
	if err != nil {
		return nil, fmt.Errorf("failed to query active mappings for %s: %w", uri, err)
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

// Deactivate soft-deletes a mapping by ID (unmap, or duplicate-resolution
// discard).
func (r *FileMappingRepository) Deactivate(id string) error {
	rowID, err := idInt(id)
	if err != nil {
		return fmt.Errorf("%w: invalid file mapping id %s", shared.ErrInvalidRequest, id)
	}
	res, err := r.tx.Exec(`UPDATE file_mappings SET active = 0 WHERE id = ? AND active = 1`, rowID)
	if err != nil {
		return fmt.Errorf("failed to deactivate file mapping %s: %w", id, err)
	}
	return expectOneRow(res, "file mapping", id)
}

// DeactivateByPath soft-deletes the active mapping at path, if any.
func (r *FileMappingRepository) DeactivateByPath(path string) error {
	_, err := r.tx.Exec(`UPDATE file_mappings SET active = 0 WHERE file_path = ? AND active = 1`, path)
	if err != nil {
		return fmt.Errorf("failed to deactivate mapping for %s: %w", path, err)
	}
	return nil
}
