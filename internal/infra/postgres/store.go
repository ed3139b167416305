package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Lolmantran/vietlearn/internal/session"
	"github.com/Lolmantran/vietlearn/internal/spacedrep"
	"github.com/Lolmantran/vietlearn/internal/vocab"
)

// Store is the Postgres backend. It offers the same operations as the
// SQLite store.
type Store struct {
	pool      *pgxpool.Pool
	tx        *Transactor
	items     *ItemRepository
	schedules *ScheduleRepository
	*EventRepository
}

// Open connects to dsn and migrates the schema.
func Open(ctx context.Context, dsn string, cfg PoolConfig) (*Store, error) {
	pool, err := NewPool(ctx, dsn, cfg)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	if err := Migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	return &Store{
		pool:            pool,
		tx:              NewTransactor(pool),
		items:           NewItemRepository(pool),
		schedules:       NewScheduleRepository(pool),
		EventRepository: NewEventRepository(pool),
	}, nil
}

func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

// UpsertItems writes the items in one transaction and returns how many
// were written.
func (s *Store) UpsertItems(ctx context.Context, items []vocab.Item) (int, error) {
	err := s.tx.WithinTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		repo := NewItemRepository(tx)
		for _, it := range items {
			if err := repo.Upsert(ctx, it); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(items), nil
}

func (s *Store) Items(ctx context.Context) ([]vocab.Item, error) {
	return s.items.All(ctx)
}

// DeleteItem removes an item and, through the foreign key, its schedules.
func (s *Store) DeleteItem(ctx context.Context, id string) error {
	return s.items.Delete(ctx, id)
}

func (s *Store) Schedules(ctx context.Context, learnerID string) ([]spacedrep.Schedule, error) {
	return s.schedules.ListByLearner(ctx, learnerID)
}

func (s *Store) LevelCounts(ctx context.Context, learnerID string) (map[spacedrep.Level]int, error) {
	return s.schedules.LevelCounts(ctx, learnerID)
}

// FetchSchedule returns nil without error for a never-reviewed item.
func (s *Store) FetchSchedule(ctx context.Context, learnerID, itemID string) (*spacedrep.Schedule, error) {
	sched, err := s.schedules.Get(ctx, learnerID, itemID)
	if errors.Is(err, ErrScheduleNotFound) {
		return nil, nil
	}
	return sched, err
}

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
	return s.tx.WithinTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		sched := req.Schedule
		sched.ItemID = req.ItemID
		if err := NewScheduleRepository(tx).Upsert(ctx, req.LearnerID, sched); err != nil {
			return err
		}
		return insertReviewEvent(ctx, tx, req)
	})
}
