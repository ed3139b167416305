package store

import (
	"context"
	"fmt"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"

	"github.com/Lolmantran/vietlearn/internal/session"
	"github.com/Lolmantran/vietlearn/internal/spacedrep"
	"github.com/Lolmantran/vietlearn/internal/vocab"
)

var scheduleColumns = []string{
	"item_id", "level", "due_at", "last_reviewed_at", "review_count", "lapse_count", "retired",
}

type scheduleRow struct {
	ItemID         string `sql:"item_id"`
	Level          int    `sql:"level"`
	DueAt          int64  `sql:"due_at"`
	LastReviewedAt int64  `sql:"last_reviewed_at"`
	ReviewCount    int    `sql:"review_count"`
	LapseCount     int    `sql:"lapse_count"`
	Retired        bool   `sql:"retired"`
}

func (r scheduleRow) schedule() spacedrep.Schedule {
	return spacedrep.Schedule{
		ItemID:         r.ItemID,
		Level:          spacedrep.Level(r.Level),
		DueAt:          fromUnix(r.DueAt),
		LastReviewedAt: fromUnix(r.LastReviewedAt),
		ReviewCount:    r.ReviewCount,
		LapseCount:     r.LapseCount,
		Retired:        r.Retired,
	}
}

// FetchSchedule returns the learner's schedule for an item, or nil if the
// item was never reviewed.
func (s *Store) FetchSchedule(ctx context.Context, learnerID, itemID string) (*spacedrep.Schedule, error) {
	var rows []scheduleRow
	sel := builder().Select(scheduleColumns...).
		From(entsql.Table(tableSchedules)).
		Where(entsql.And(
			entsql.EQ("learner_id", learnerID),
			entsql.EQ("item_id", itemID),
		))
	if err := scan(ctx, s.drv, sel, &rows); err != nil {
		return nil, fmt.Errorf("query schedule %q: %w", itemID, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	sched := rows[0].schedule()
	return &sched, nil
}

// Schedules returns every schedule of a learner.
func (s *Store) Schedules(ctx context.Context, learnerID string) ([]spacedrep.Schedule, error) {
	var rows []scheduleRow
	sel := builder().Select(scheduleColumns...).
		From(entsql.Table(tableSchedules)).
		Where(entsql.EQ("learner_id", learnerID)).
		OrderBy("item_id")
	if err := scan(ctx, s.drv, sel, &rows); err != nil {
		return nil, fmt.Errorf("query schedules: %w", err)
	}
	out := make([]spacedrep.Schedule, len(rows))
	for i, r := range rows {
		out[i] = r.schedule()
	}
	return out, nil
}

// FetchWorkingSet returns the ordered items matching criteria.
func (s *Store) FetchWorkingSet(ctx context.Context, criteria vocab.Criteria) ([]vocab.Item, error) {
	if err := criteria.Validate(); err != nil {
		return nil, err
	}
	items, err := s.Items(ctx)
	if err != nil {
		return nil, err
	}
	scheds, err := s.Schedules(ctx, criteria.LearnerID)
	if err != nil {
		return nil, err
	}
	return session.SelectWorkingSet(items, scheds, criteria), nil
}

// Commit writes the new schedule and its review event in one transaction.
func (s *Store) Commit(ctx context.Context, req session.CommitRequest) error {
	return s.withTx(ctx, func(tx dialect.Tx) error {
		sc := req.Schedule
		ins := builder().Insert(tableSchedules).
			Columns("learner_id", "item_id", "level", "due_at", "last_reviewed_at", "review_count", "lapse_count", "retired").
			Values(req.LearnerID, req.ItemID, int(sc.Level), toUnix(sc.DueAt), toUnix(sc.LastReviewedAt),
				sc.ReviewCount, sc.LapseCount, boolInt(sc.Retired)).
			OnConflict(
				entsql.ConflictColumns("learner_id", "item_id"),
				entsql.ResolveWithNewValues(),
			)
		if _, err := exec(ctx, tx, ins); err != nil {
			return fmt.Errorf("upsert schedule %q: %w", req.ItemID, err)
		}

		_, err := s.insertEvent(ctx, tx, tableReviewEvents, req.ReviewedAt,
			[]string{"learner_id", "session_id", "item_id", "rating", "prev_level", "new_level", "due_at", "retired"},
			[]any{req.LearnerID, req.SessionID, req.ItemID, req.Rating.String(), int(req.PrevLevel),
				int(sc.Level), toUnix(sc.DueAt), boolInt(sc.Retired)},
		)
		return err
	})
}

// LevelCounts returns the number of the learner's scheduled items per level.
func (s *Store) LevelCounts(ctx context.Context, learnerID string) (map[spacedrep.Level]int, error) {
	var rows []struct {
		Level int `sql:"level"`
		N     int `sql:"n"`
	}
	sel := builder().Select("level", entsql.As(entsql.Count("*"), "n")).
		From(entsql.Table(tableSchedules)).
		Where(entsql.EQ("learner_id", learnerID)).
		GroupBy("level")
	if err := scan(ctx, s.drv, sel, &rows); err != nil {
		return nil, fmt.Errorf("count levels: %w", err)
	}
	counts := make(map[spacedrep.Level]int, len(rows))
	for _, r := range rows {
		counts[spacedrep.Level(r.Level)] = r.N
	}
	return counts, nil
}
