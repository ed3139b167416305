package store

import (
	"context"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/Lolmantran/vietlearn/internal/rewards"
	"github.com/Lolmantran/vietlearn/internal/spacedrep"
)

// AppendQuizEvent records one answered quiz question.
func (s *Store) AppendQuizEvent(ctx context.Context, data QuizEventData) error {
	at := data.At
	if at.IsZero() {
		at = time.Now()
	}
	_, err := s.appendEvent(ctx, tableQuizEvents, at,
		[]string{"learner_id", "session_id", "item_id", "mode", "given", "expected", "correct"},
		[]any{data.LearnerID, data.SessionID, data.ItemID, data.Mode, data.Given, data.Expected, boolInt(data.Correct)},
	)
	return err
}

// AppendRewardEvent records one reward grant.
func (s *Store) AppendRewardEvent(ctx context.Context, e rewards.Event) error {
	_, err := s.appendEvent(ctx, tableRewardEvents, time.Now(),
		[]string{"learner_id", "session_id", "xp", "rarity", "correct", "total", "reason"},
		[]any{e.LearnerID, e.SessionID, e.XP, string(e.Rarity), e.Correct, e.Total, e.Reason},
	)
	return err
}

// TotalXP returns the sum of all XP ever granted to the learner.
func (s *Store) TotalXP(ctx context.Context, learnerID string) (int, error) {
	var rows []struct {
		XP int `sql:"xp"`
	}
	sel := builder().Select(entsql.As("COALESCE(SUM(xp), 0)", "xp")).
		From(entsql.Table(tableRewardEvents)).
		Where(entsql.EQ("learner_id", learnerID))
	if err := scan(ctx, s.drv, sel, &rows); err != nil {
		return 0, fmt.Errorf("sum xp: %w", err)
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return rows[0].XP, nil
}

type reviewEventRow struct {
	Sequence  int64  `sql:"sequence"`
	Timestamp int64  `sql:"timestamp"`
	LearnerID string `sql:"learner_id"`
	SessionID string `sql:"session_id"`
	ItemID    string `sql:"item_id"`
	Rating    string `sql:"rating"`
	PrevLevel int    `sql:"prev_level"`
	NewLevel  int    `sql:"new_level"`
	DueAt     int64  `sql:"due_at"`
	Retired   bool   `sql:"retired"`
}

// ReviewEvents returns the learner's review history ordered by sequence.
func (s *Store) ReviewEvents(ctx context.Context, learnerID string, opts QueryOpts) ([]ReviewEvent, error) {
	preds := []*entsql.Predicate{entsql.EQ("learner_id", learnerID)}
	if opts.After > 0 {
		preds = append(preds, entsql.GT("sequence", opts.After))
	}
	if opts.Before > 0 {
		preds = append(preds, entsql.LT("sequence", opts.Before))
	}
	if !opts.From.IsZero() {
		preds = append(preds, entsql.GTE("timestamp", toUnix(opts.From)))
	}
	if !opts.To.IsZero() {
		preds = append(preds, entsql.LTE("timestamp", toUnix(opts.To)))
	}
	if opts.SessionID != "" {
		preds = append(preds, entsql.EQ("session_id", opts.SessionID))
	}

	sel := builder().Select(
		"sequence", "timestamp", "learner_id", "session_id", "item_id",
		"rating", "prev_level", "new_level", "due_at", "retired",
	).
		From(entsql.Table(tableReviewEvents)).
		Where(entsql.And(preds...)).
		OrderBy("sequence")
	if opts.Limit > 0 {
		sel.Limit(opts.Limit)
	}

	var rows []reviewEventRow
	if err := scan(ctx, s.drv, sel, &rows); err != nil {
		return nil, fmt.Errorf("query review events: %w", err)
	}

	out := make([]ReviewEvent, 0, len(rows))
	for _, r := range rows {
		rating, err := spacedrep.ParseRating(r.Rating)
		if err != nil {
			return nil, fmt.Errorf("review event %d: %w", r.Sequence, err)
		}
		out = append(out, ReviewEvent{
			Sequence:  r.Sequence,
			Timestamp: fromUnix(r.Timestamp),
			LearnerID: r.LearnerID,
			SessionID: r.SessionID,
			ItemID:    r.ItemID,
			Rating:    rating,
			PrevLevel: spacedrep.Level(r.PrevLevel),
			NewLevel:  spacedrep.Level(r.NewLevel),
			DueAt:     fromUnix(r.DueAt),
			Retired:   r.Retired,
		})
	}
	return out, nil
}
