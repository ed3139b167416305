package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/Lolmantran/vietlearn/internal/session"
	"github.com/Lolmantran/vietlearn/internal/spacedrep"
)

var ErrScheduleNotFound = errors.New("schedule not found")

type ScheduleRepository struct {
	db DBTX
}

func NewScheduleRepository(db DBTX) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

// Get returns the learner's schedule for an item.
// Returns ErrScheduleNotFound if the item was never reviewed.
func (r *ScheduleRepository) Get(ctx context.Context, learnerID, itemID string) (*spacedrep.Schedule, error) {
	query := `
		SELECT item_id, level, due_at, last_reviewed_at, review_count, lapse_count, retired
		FROM schedules
		WHERE learner_id = $1 AND item_id = $2
	`

	s, err := scanSchedule(r.db.QueryRow(ctx, query, learnerID, itemID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrScheduleNotFound
		}
		return nil, fmt.Errorf("get: %w", err)
	}
	return s, nil
}

// ListByLearner returns every schedule of a learner.
func (r *ScheduleRepository) ListByLearner(ctx context.Context, learnerID string) ([]spacedrep.Schedule, error) {
	query := `
		SELECT item_id, level, due_at, last_reviewed_at, review_count, lapse_count, retired
		FROM schedules
		WHERE learner_id = $1
		ORDER BY item_id
	`

	rows, err := r.db.Query(ctx, query, learnerID)
	if err != nil {
		return nil, fmt.Errorf("list: %w", err)
	}
	defer rows.Close()

	var out []spacedrep.Schedule
	for rows.Next() {
		s, err := scanSchedule(rows)
		if err != nil {
			return nil, fmt.Errorf("scan schedule: %w", err)
		}
		out = append(out, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return out, nil
}

// Upsert writes the schedule produced by a grade.
func (r *ScheduleRepository) Upsert(ctx context.Context, learnerID string, s spacedrep.Schedule) error {
	query := `
		INSERT INTO schedules (learner_id, item_id, level, due_at, last_reviewed_at, review_count, lapse_count, retired)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (learner_id, item_id)
		DO UPDATE SET
			level = excluded.level,
			due_at = excluded.due_at,
			last_reviewed_at = excluded.last_reviewed_at,
			review_count = excluded.review_count,
			lapse_count = excluded.lapse_count,
			retired = excluded.retired
	`

	_, err := r.db.Exec(
		ctx, query,
		learnerID,
		s.ItemID,
		int(s.Level),
		nullTime(s.DueAt),
		nullTime(s.LastReviewedAt),
		s.ReviewCount,
		s.LapseCount,
		s.Retired,
	)
	if err != nil {
		return fmt.Errorf("upsert: %w", err)
	}
	return nil
}

// LevelCounts returns the number of the learner's scheduled items per level.
func (r *ScheduleRepository) LevelCounts(ctx context.Context, learnerID string) (map[spacedrep.Level]int, error) {
	query := `
		SELECT level, COUNT(*)
		FROM schedules
		WHERE learner_id = $1
		GROUP BY level
	`

	rows, err := r.db.Query(ctx, query, learnerID)
	if err != nil {
		return nil, fmt.Errorf("count levels: %w", err)
	}
	defer rows.Close()

	counts := make(map[spacedrep.Level]int)
	for rows.Next() {
		var level, n int
		if err := rows.Scan(&level, &n); err != nil {
			return nil, fmt.Errorf("scan level count: %w", err)
		}
		counts[spacedrep.Level(level)] = n
	}
	return counts, rows.Err()
}

func scanSchedule(row pgx.Row) (*spacedrep.Schedule, error) {
	var (
		s             spacedrep.Schedule
		level         int
		due, reviewed *time.Time
	)
	err := row.Scan(&s.ItemID, &level, &due, &reviewed, &s.ReviewCount, &s.LapseCount, &s.Retired)
	if err != nil {
		return nil, err
	}
	s.Level = spacedrep.Level(level)
	s.DueAt = derefTime(due)
	s.LastReviewedAt = derefTime(reviewed)
	return &s, nil
}

func insertReviewEvent(ctx context.Context, db DBTX, req session.CommitRequest) error {
	query := `
		INSERT INTO review_events (timestamp, learner_id, session_id, item_id, rating, prev_level, new_level, due_at, retired)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	at := req.ReviewedAt
	if at.IsZero() {
		at = time.Now()
	}
	_, err := db.Exec(
		ctx, query,
		at,
		req.LearnerID,
		req.SessionID,
		req.ItemID,
		req.Rating.String(),
		int(req.PrevLevel),
		int(req.Schedule.Level),
		nullTime(req.Schedule.DueAt),
		req.Schedule.Retired,
	)
	if err != nil {
		return fmt.Errorf("insert review event: %w", err)
	}
	return nil
}

func nullTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func derefTime(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return t.UTC()
}
