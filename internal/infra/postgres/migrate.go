package postgres

import (
	"context"
	"fmt"
)

// All event tables draw from event_sequence so that events of different
// kinds share one global order.
var schemaDDL = []string{
	`CREATE SEQUENCE IF NOT EXISTS event_sequence`,
	`CREATE TABLE IF NOT EXISTS items (
		id TEXT PRIMARY KEY,
		prompt TEXT NOT NULL,
		answer TEXT NOT NULL,
		tags TEXT[] NOT NULL DEFAULT '{}',
		position BIGSERIAL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS schedules (
		learner_id TEXT NOT NULL,
		item_id TEXT NOT NULL REFERENCES items(id) ON DELETE CASCADE,
		level INTEGER NOT NULL,
		due_at TIMESTAMPTZ,
		last_reviewed_at TIMESTAMPTZ,
		review_count INTEGER NOT NULL,
		lapse_count INTEGER NOT NULL,
		retired BOOLEAN NOT NULL,
		PRIMARY KEY (learner_id, item_id)
	)`,
	`CREATE INDEX IF NOT EXISTS schedules_due ON schedules (learner_id, retired, due_at)`,
	`CREATE TABLE IF NOT EXISTS review_events (
		sequence BIGINT PRIMARY KEY DEFAULT nextval('event_sequence'),
		timestamp TIMESTAMPTZ NOT NULL,
		learner_id TEXT NOT NULL,
		session_id TEXT NOT NULL,
		item_id TEXT NOT NULL,
		rating TEXT NOT NULL,
		prev_level INTEGER NOT NULL,
		new_level INTEGER NOT NULL,
		due_at TIMESTAMPTZ,
		retired BOOLEAN NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS quiz_events (
		sequence BIGINT PRIMARY KEY DEFAULT nextval('event_sequence'),
		timestamp TIMESTAMPTZ NOT NULL,
		learner_id TEXT NOT NULL,
		session_id TEXT NOT NULL,
		item_id TEXT NOT NULL,
		mode TEXT NOT NULL,
		given TEXT NOT NULL,
		expected TEXT NOT NULL,
		correct BOOLEAN NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS reward_events (
		sequence BIGINT PRIMARY KEY DEFAULT nextval('event_sequence'),
		timestamp TIMESTAMPTZ NOT NULL,
		learner_id TEXT NOT NULL,
		session_id TEXT NOT NULL,
		xp INTEGER NOT NULL,
		rarity TEXT NOT NULL,
		correct INTEGER NOT NULL,
		total INTEGER NOT NULL,
		reason TEXT NOT NULL
	)`,
}

// Migrate creates the schema if it does not exist yet.
func Migrate(ctx context.Context, db DBTX) error {
	for _, stmt := range schemaDDL {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
