package catalog

import (
	"database/sql"
	"fmt"
)

// nextSequence atomically increments and returns the next sequence number
// for table, using the UnitOfWork's existing transaction rather than
// opening one of its own. Sequence numbers give entities a stable,
// human-readable ordering; they are never exposed as part of a resource
// URI or remote ID.
func nextSequence(tx *sql.Tx, table string) (int, error) {
	sequenceTable := table + "_sequence"

	if _, err := tx.Exec(fmt.Sprintf("UPDATE %s SET value = value + 1 WHERE id = 1", sequenceTable)); err != nil {
		return 0, fmt.Errorf("failed to increment %s: %w", sequenceTable, err)
	}

	var sequence int
	if err := tx.QueryRow(fmt.Sprintf("SELECT value FROM %s WHERE id = 1", sequenceTable)).Scan(&sequence); err != nil {
		return 0, fmt.Errorf("failed to read %s: %w", sequenceTable, err)
	}

	return sequence, nil
}
