package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"

	"github.com/Lolmantran/vietlearn/internal/vocab"
)

type itemRow struct {
	ID       string `sql:"id"`
	Prompt   string `sql:"prompt"`
	Answer   string `sql:"answer"`
	Tags     string `sql:"tags"`
	Position int64  `sql:"position"`
}

func (r itemRow) item() (vocab.Item, error) {
	it := vocab.Item{ID: r.ID, Prompt: r.Prompt, Answer: r.Answer}
	if r.Tags != "" {
		if err := json.Unmarshal([]byte(r.Tags), &it.Tags); err != nil {
			return vocab.Item{}, fmt.Errorf("decode tags of %q: %w", r.ID, err)
		}
	}
	return it, nil
}

// UpsertItems inserts or updates catalog items. New items are appended to
// the end of the catalog; existing items keep their position. Returns the
// number of items written.
func (s *Store) UpsertItems(ctx context.Context, items []vocab.Item) (int, error) {
	for _, it := range items {
		if err := it.Validate(); err != nil {
			return 0, err
		}
	}

	err := s.withTx(ctx, func(tx dialect.Tx) error {
		next, err := nextPosition(ctx, tx)
		if err != nil {
			return err
		}
		now := toUnix(time.Now())
		for i, it := range items {
			tags := it.Tags
			if tags == nil {
				tags = []string{}
			}
			raw, err := json.Marshal(tags)
			if err != nil {
				return fmt.Errorf("encode tags of %q: %w", it.ID, err)
			}
			ins := builder().Insert(tableItems).
				Columns("id", "prompt", "answer", "tags", "position", "created_at").
				Values(it.ID, it.Prompt, it.Answer, string(raw), next+int64(i), now).
				OnConflict(
					entsql.ConflictColumns("id"),
					entsql.ResolveWith(func(u *entsql.UpdateSet) {
						u.SetExcluded("prompt")
						u.SetExcluded("answer")
						u.SetExcluded("tags")
					}),
				)
			if _, err := exec(ctx, tx, ins); err != nil {
				return fmt.Errorf("upsert item %q: %w", it.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(items), nil
}

func nextPosition(ctx context.Context, eq dialect.ExecQuerier) (int64, error) {
	sel := builder().Select("COALESCE(MAX(position), -1) + 1").From(entsql.Table(tableItems))
	query, args := sel.Query()
	var rows entsql.Rows
	if err := eq.Query(ctx, query, args, &rows); err != nil {
		return 0, fmt.Errorf("next position: %w", err)
	}
	defer rows.Close()
	return entsql.ScanInt64(rows)
}

// Items returns the whole catalog in insertion order.
func (s *Store) Items(ctx context.Context) ([]vocab.Item, error) {
	var rows []itemRow
	sel := builder().Select("id", "prompt", "answer", "tags", "position").
		From(entsql.Table(tableItems)).
		OrderBy("position")
	if err := scan(ctx, s.drv, sel, &rows); err != nil {
		return nil, fmt.Errorf("query items: %w", err)
	}

	items := make([]vocab.Item, 0, len(rows))
	for _, r := range rows {
		it, err := r.item()
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, nil
}

// DeleteItem removes an item and, through the foreign key, every schedule
// that references it.
func (s *Store) DeleteItem(ctx context.Context, id string) error {
	del := builder().Delete(tableItems).Where(entsql.EQ("id", id))
	if _, err := exec(ctx, s.drv, del); err != nil {
		return fmt.Errorf("delete item %q: %w", id, err)
	}
	return nil
}
