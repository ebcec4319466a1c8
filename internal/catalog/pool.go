package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/shelfsync/internal/shared"
)

// DefaultMaxConns is the fixed upper bound on concurrent units-of-work
// absent an explicit override.
const DefaultMaxConns = 10

// DefaultAcquireTimeout is how long Acquire waits for a free slot before
// failing with shared.ErrTimeout.
const DefaultAcquireTimeout = 30 * time.Second

// Pool is the process-wide connection pool: the only shared mutable
// resource the catalog exposes. It wraps a *sql.DB with a bounded semaphore
// so that no more than maxConns units-of-work run concurrently. Construct
// once at process init; do not build one per request.
type Pool struct {
	db             *sql.DB
	sem            chan struct{}
	acquireTimeout time.Duration
}

// NewPool wraps db with a semaphore of size maxConns (DefaultMaxConns if
// maxConns <= 0).
func NewPool(db *sql.DB, maxConns int) *Pool {
	if maxConns <= 0 {
		maxConns = DefaultMaxConns
	}
	return &Pool{
		db:             db,
		sem:            make(chan struct{}, maxConns),
		acquireTimeout: DefaultAcquireTimeout,
	}
}

// Acquire blocks until a pool slot is free or ctx/the acquire deadline
// expires, then begins a transaction and returns a UnitOfWork holding it.
// The UnitOfWork is the unique holder of that slot until Commit or
// Rollback releases it.
func (p *Pool) Acquire(ctx context.Context) (*UnitOfWork, error) {
	acquireCtx, cancel := context.WithTimeout(ctx, p.acquireTimeout)
	defer cancel()

	select {
	case p.sem <- struct{}{}:
	case <-acquireCtx.Done():
		return nil, fmt.Errorf("%w: connection pool exhausted after %s", shared.ErrTimeout, p.acquireTimeout)
	}

	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		<-p.sem
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}

	return &UnitOfWork{
		tx:           tx,
		release:      func() { p.validate(); <-p.sem },
		Playlists:    &PlaylistRepository{tx: tx},
		Tracks:       &TrackRepository{tx: tx},
		Associations: &AssociationRepository{tx: tx},
		FileMappings: &FileMappingRepository{tx: tx},
	}, nil
}

// validate runs a trivial query against the pool before a slot is returned.
// A connection that fails it is left for database/sql to discard and
// replace on its next use; the pool itself holds no handle to a single
// physical connection to close.
func (p *Pool) validate() {
	_ = p.db.Ping()
}

// Close closes the underlying database, releasing all pooled connections.
func (p *Pool) Close() error {
	return p.db.Close()
}
