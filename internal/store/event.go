package store

import (
	"context"
	"database/sql"
	"sync"

	"github.com/m-mizutani/goerr/v2"
)

const (
	sequenceDDL  = `CREATE TABLE IF NOT EXISTS global_sequence (id INTEGER PRIMARY KEY CHECK (id = 1), next_val INTEGER NOT NULL DEFAULT 1)`
	sequenceSeed = `INSERT OR IGNORE INTO global_sequence (id, next_val) VALUES (1, 1)`
	sequenceBump = `UPDATE global_sequence SET next_val = next_val + 1 WHERE id = 1 RETURNING next_val - 1`
)

// sequenceCounter hands out the sequence numbers that order review events
// and LLM calls against each other. Row IDs only order within one table.
type sequenceCounter struct {
	mu sync.Mutex
	db *sql.DB
}

// queryRower is *sql.DB or *sql.Tx.
type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func newSequenceCounter(db *sql.DB) (*sequenceCounter, error) {
	for _, stmt := range []string{sequenceDDL, sequenceSeed} {
		if _, err := db.Exec(stmt); err != nil {
			return nil, goerr.Wrap(err, "prepare sequence table")
		}
	}
	return &sequenceCounter{db: db}, nil
}

// Next draws a number outside any transaction.
func (sc *sequenceCounter) Next(ctx context.Context) (int64, error) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return bump(ctx, sc.db)
}

// NextIn draws a number inside tx; a rollback returns it.
func (sc *sequenceCounter) NextIn(ctx context.Context, tx *sql.Tx) (int64, error) {
	return bump(ctx, tx)
}

func bump(ctx context.Context, q queryRower) (int64, error) {
	var n int64
	if err := q.QueryRowContext(ctx, sequenceBump).Scan(&n); err != nil {
		return 0, goerr.Wrap(err, "next sequence")
	}
	return n, nil
}
