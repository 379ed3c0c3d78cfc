package store

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	entsql "entgo.io/ent/dialect/sql"
)

// sequenceCounter hands out the global monotonic sequence shared by every
// event table, so events of different kinds can be ordered against each
// other. Per-table auto-increment ids cannot provide that.
//
// The mutex serializes within the process; the UPDATE inside a transaction
// serializes across processes on every supported database.
type sequenceCounter struct {
	mu      sync.Mutex
	db      *sql.DB
	dialect string
}

// newSequenceCounter seeds the single counter row if it is missing.
func newSequenceCounter(ctx context.Context, db *sql.DB, dialect string) (*sequenceCounter, error) {
	b := entsql.Dialect(dialect)

	q, args := b.Select(entsql.Count("*")).
		From(b.Table(GlobalSequenceTable.Name)).
		Where(entsql.EQ("id", 1)).
		Query()
	var n int
	if err := db.QueryRowContext(ctx, q, args...).Scan(&n); err != nil {
		return nil, fmt.Errorf("check sequence: %w", err)
	}
	if n == 0 {
		q, args = b.Insert(GlobalSequenceTable.Name).
			Columns("id", "next_val").
			Values(1, 1).
			Query()
		if _, err := db.ExecContext(ctx, q, args...); err != nil {
			return nil, fmt.Errorf("seed sequence: %w", err)
		}
	}
	return &sequenceCounter{db: db, dialect: dialect}, nil
}

// inTx runs fn in one transaction while holding the counter lock. Every
// event fn appends shares the transaction, so they commit or roll back
// together and take consecutive sequence numbers.
func (sc *sequenceCounter) inTx(ctx context.Context, fn func(*sql.Tx) error) error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	tx, err := sc.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// next returns the next sequence number and advances the counter inside tx.
// The caller holds mu through inTx.
func (sc *sequenceCounter) next(ctx context.Context, tx *sql.Tx) (int64, error) {
	b := entsql.Dialect(sc.dialect)
	q, args := b.Update(GlobalSequenceTable.Name).
		Add("next_val", 1).
		Where(entsql.EQ("id", 1)).
		Query()
	if _, err := tx.ExecContext(ctx, q, args...); err != nil {
		return 0, fmt.Errorf("next sequence: %w", err)
	}

	q, args = b.Select("next_val").
		From(b.Table(GlobalSequenceTable.Name)).
		Where(entsql.EQ("id", 1)).
		Query()
	var next int64
	if err := tx.QueryRowContext(ctx, q, args...).Scan(&next); err != nil {
		return 0, fmt.Errorf("next sequence: %w", err)
	}
	return next - 1, nil
}
