package store

import (
	"context"
	"fmt"

	"entgo.io/ent/dialect"
)

// Table names.
const (
	tableItems        = "items"
	tableSchedules    = "schedules"
	tableReviewEvents = "review_events"
	tableQuizEvents   = "quiz_events"
	tableRewardEvents = "reward_events"
)

// Timestamps are stored as Unix milliseconds; 0 stands for the zero time.
var schemaDDL = []string{
	`CREATE TABLE IF NOT EXISTS items (
		id TEXT PRIMARY KEY,
		prompt TEXT NOT NULL,
		answer TEXT NOT NULL,
		tags TEXT NOT NULL DEFAULT '[]',
		position INTEGER NOT NULL,
		created_at INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS schedules (
		learner_id TEXT NOT NULL,
		item_id TEXT NOT NULL REFERENCES items(id) ON DELETE CASCADE,
		level INTEGER NOT NULL,
		due_at INTEGER NOT NULL,
		last_reviewed_at INTEGER NOT NULL,
		review_count INTEGER NOT NULL,
		lapse_count INTEGER NOT NULL,
		retired INTEGER NOT NULL,
		PRIMARY KEY (learner_id, item_id)
	)`,
	`CREATE INDEX IF NOT EXISTS schedules_due ON schedules (learner_id, retired, due_at)`,
	`CREATE TABLE IF NOT EXISTS review_events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		sequence INTEGER NOT NULL UNIQUE,
		timestamp INTEGER NOT NULL,
		learner_id TEXT NOT NULL,
		session_id TEXT NOT NULL,
		item_id TEXT NOT NULL,
		rating TEXT NOT NULL,
		prev_level INTEGER NOT NULL,
		new_level INTEGER NOT NULL,
		due_at INTEGER NOT NULL,
		retired INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS review_events_session ON review_events (session_id, sequence)`,
	`CREATE TABLE IF NOT EXISTS quiz_events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		sequence INTEGER NOT NULL UNIQUE,
		timestamp INTEGER NOT NULL,
		learner_id TEXT NOT NULL,
		session_id TEXT NOT NULL,
		item_id TEXT NOT NULL,
		mode TEXT NOT NULL,
		given TEXT NOT NULL,
		expected TEXT NOT NULL,
		correct INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS reward_events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		sequence INTEGER NOT NULL UNIQUE,
		timestamp INTEGER NOT NULL,
		learner_id TEXT NOT NULL,
		session_id TEXT NOT NULL,
		xp INTEGER NOT NULL,
		rarity TEXT NOT NULL,
		correct INTEGER NOT NULL,
		total INTEGER NOT NULL,
		reason TEXT NOT NULL
	)`,
}

func migrate(ctx context.Context, drv dialect.ExecQuerier) error {
	for _, stmt := range schemaDDL {
		if err := drv.Exec(ctx, stmt, []any{}, nil); err != nil {
			return fmt.Errorf("exec %.40q: %w", stmt, err)
		}
	}
	return nil
}
