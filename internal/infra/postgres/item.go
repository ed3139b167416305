package postgres

import (
	"context"
	"fmt"

	"github.com/Lolmantran/vietlearn/internal/vocab"
)

type ItemRepository struct {
	db DBTX
}

func NewItemRepository(db DBTX) *ItemRepository {
	return &ItemRepository{db: db}
}

// Upsert inserts or updates one catalog item. Existing items keep their
// catalog position.
func (r *ItemRepository) Upsert(ctx context.Context, it vocab.Item) error {
	if err := it.Validate(); err != nil {
		return err
	}
	tags := it.Tags
	if tags == nil {
		tags = []string{}
	}

	query := `
		INSERT INTO items (id, prompt, answer, tags)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id)
		DO UPDATE SET
			prompt = excluded.prompt,
			answer = excluded.answer,
			tags = excluded.tags
	`
	if _, err := r.db.Exec(ctx, query, it.ID, it.Prompt, it.Answer, tags); err != nil {
		return fmt.Errorf("upsert item %q: %w", it.ID, err)
	}
	return nil
}

// All returns the catalog in insertion order.
func (r *ItemRepository) All(ctx context.Context) ([]vocab.Item, error) {
	query := `
		SELECT id, prompt, answer, tags
		FROM items
		ORDER BY position
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query items: %w", err)
	}
	defer rows.Close()

	var items []vocab.Item
	for rows.Next() {
		var it vocab.Item
		if err := rows.Scan(&it.ID, &it.Prompt, &it.Answer, &it.Tags); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		if len(it.Tags) == 0 {
			it.Tags = nil
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return items, nil
}

func (r *ItemRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM items WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete item %q: %w", id, err)
	}
	return nil
}
