package store

import (
	"context"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

// sequenceCounter manages the global monotonic sequence number shared across
// all event types. Each event type lives in its own table, so per-table
// auto-increment IDs can't establish cross-type ordering. The shared counter
// assigns a single increasing sequence to every event regardless of type.
//
// Next must run on the same transaction as the event insert; the store
// holds a single connection, so a second transaction would block.
type sequenceCounter struct{}

// newSequenceCounter ensures the tracking table exists and is seeded.
func newSequenceCounter(ctx context.Context, eq dialect.ExecQuerier) (*sequenceCounter, error) {
	err := eq.Exec(ctx, `CREATE TABLE IF NOT EXISTS global_sequence (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		next_val INTEGER NOT NULL DEFAULT 1
	)`, []any{}, nil)
	if err != nil {
		return nil, fmt.Errorf("create sequence table: %w", err)
	}

	err = eq.Exec(ctx, `INSERT OR IGNORE INTO global_sequence (id, next_val) VALUES (1, 1)`, []any{}, nil)
	if err != nil {
		return nil, fmt.Errorf("seed sequence: %w", err)
	}
	return &sequenceCounter{}, nil
}

// Next atomically returns the next sequence number and increments the counter.
func (sc *sequenceCounter) Next(ctx context.Context, eq dialect.ExecQuerier) (int64, error) {
	var rows entsql.Rows
	err := eq.Query(ctx,
		`UPDATE global_sequence SET next_val = next_val + 1 WHERE id = 1 RETURNING next_val - 1`,
		[]any{}, &rows)
	if err != nil {
		return 0, fmt.Errorf("next sequence: %w", err)
	}
	defer rows.Close()
	seq, err := entsql.ScanInt64(rows)
	if err != nil {
		return 0, fmt.Errorf("next sequence: %w", err)
	}
	return seq, nil
}

// appendEvent inserts one event row with a fresh sequence number and
// timestamp inside its own transaction.
func (s *Store) appendEvent(ctx context.Context, table string, at time.Time, cols []string, vals []any) (int64, error) {
	var seq int64
	err := s.withTx(ctx, func(tx dialect.Tx) error {
		var err error
		seq, err = s.insertEvent(ctx, tx, table, at, cols, vals)
		return err
	})
	return seq, err
}

func (s *Store) insertEvent(ctx context.Context, eq dialect.ExecQuerier, table string, at time.Time, cols []string, vals []any) (int64, error) {
	seq, err := s.seq.Next(ctx, eq)
	if err != nil {
		return 0, err
	}
	ins := builder().Insert(table).
		Columns(append([]string{"sequence", "timestamp"}, cols...)...).
		Values(append([]any{seq, toUnix(at)}, vals...)...)
	if _, err := exec(ctx, eq, ins); err != nil {
		return 0, fmt.Errorf("insert %s: %w", table, err)
	}
	return seq, nil
}

func toUnix(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

func fromUnix(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
