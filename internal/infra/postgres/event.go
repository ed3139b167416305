package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Lolmantran/vietlearn/internal/rewards"
	"github.com/Lolmantran/vietlearn/internal/spacedrep"
	"github.com/Lolmantran/vietlearn/internal/store"
)

type EventRepository struct {
	db DBTX
}

func NewEventRepository(db DBTX) *EventRepository {
	return &EventRepository{db: db}
}

// AppendQuizEvent records one answered quiz question.
func (r *EventRepository) AppendQuizEvent(ctx context.Context, data store.QuizEventData) error {
	query := `
		INSERT INTO quiz_events (timestamp, learner_id, session_id, item_id, mode, given, expected, correct)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	at := data.At
	if at.IsZero() {
		at = time.Now()
	}
	_, err := r.db.Exec(ctx, query, at, data.LearnerID, data.SessionID, data.ItemID,
		data.Mode, data.Given, data.Expected, data.Correct)
	if err != nil {
		return fmt.Errorf("insert quiz event: %w", err)
	}
	return nil
}

// AppendRewardEvent records one reward grant.
func (r *EventRepository) AppendRewardEvent(ctx context.Context, e rewards.Event) error {
	query := `
		INSERT INTO reward_events (timestamp, learner_id, session_id, xp, rarity, correct, total, reason)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.Exec(ctx, query, time.Now(), e.LearnerID, e.SessionID, e.XP,
		string(e.Rarity), e.Correct, e.Total, e.Reason)
	if err != nil {
		return fmt.Errorf("insert reward event: %w", err)
	}
	return nil
}

// TotalXP returns the sum of all XP ever granted to the learner.
func (r *EventRepository) TotalXP(ctx context.Context, learnerID string) (int, error) {
	var total int
	err := r.db.QueryRow(ctx,
		`SELECT COALESCE(SUM(xp), 0) FROM reward_events WHERE learner_id = $1`,
		learnerID,
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("sum xp: %w", err)
	}
	return total, nil
}

// ReviewEvents returns the learner's review history ordered by sequence.
func (r *EventRepository) ReviewEvents(ctx context.Context, learnerID string, opts store.QueryOpts) ([]store.ReviewEvent, error) {
	conds := []string{"learner_id = $1"}
	args := []any{learnerID}
	where := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if opts.After > 0 {
		where("sequence > $%d", opts.After)
	}
	if opts.Before > 0 {
		where("sequence < $%d", opts.Before)
	}
	if !opts.From.IsZero() {
		where("timestamp >= $%d", opts.From)
	}
	if !opts.To.IsZero() {
		where("timestamp <= $%d", opts.To)
	}
	if opts.SessionID != "" {
		where("session_id = $%d", opts.SessionID)
	}

	query := `
		SELECT sequence, timestamp, learner_id, session_id, item_id, rating, prev_level, new_level, due_at, retired
		FROM review_events
		WHERE ` + strings.Join(conds, " AND ") + `
		ORDER BY sequence`
	if opts.Limit > 0 {
		args = append(args, opts.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query review events: %w", err)
	}
	defer rows.Close()

	var out []store.ReviewEvent
	for rows.Next() {
		var (
			ev                  store.ReviewEvent
			rating              string
			prevLevel, newLevel int
			dueAt               *time.Time
		)
		err := rows.Scan(&ev.Sequence, &ev.Timestamp, &ev.LearnerID, &ev.SessionID, &ev.ItemID,
			&rating, &prevLevel, &newLevel, &dueAt, &ev.Retired)
		if err != nil {
			return nil, fmt.Errorf("scan review event: %w", err)
		}
		if ev.Rating, err = spacedrep.ParseRating(rating); err != nil {
			return nil, fmt.Errorf("review event %d: %w", ev.Sequence, err)
		}
		ev.Timestamp = ev.Timestamp.UTC()
		ev.PrevLevel = spacedrep.Level(prevLevel)
		ev.NewLevel = spacedrep.Level(newLevel)
		ev.DueAt = derefTime(dueAt)
		out = append(out, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return out, nil
}
