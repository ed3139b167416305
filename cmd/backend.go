package cmd

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Lolmantran/vietlearn/internal/config"
	"github.com/Lolmantran/vietlearn/internal/infra/postgres"
	"github.com/Lolmantran/vietlearn/internal/logger"
	"github.com/Lolmantran/vietlearn/internal/rewards"
	"github.com/Lolmantran/vietlearn/internal/session"
	"github.com/Lolmantran/vietlearn/internal/spacedrep"
	"github.com/Lolmantran/vietlearn/internal/store"
	"github.com/Lolmantran/vietlearn/internal/vocab"
)

// backend is the persistence surface shared by the SQLite and Postgres
// stores.
type backend interface {
	session.ContentProvider
	session.ScheduleStore
	rewards.EventRepo
	UpsertItems(ctx context.Context, items []vocab.Item) (int, error)
	Items(ctx context.Context) ([]vocab.Item, error)
	DeleteItem(ctx context.Context, id string) error
	Schedules(ctx context.Context, learnerID string) ([]spacedrep.Schedule, error)
	LevelCounts(ctx context.Context, learnerID string) (map[spacedrep.Level]int, error)
	AppendQuizEvent(ctx context.Context, data store.QuizEventData) error
	ReviewEvents(ctx context.Context, learnerID string, opts store.QueryOpts) ([]store.ReviewEvent, error)
	Close() error
}

var (
	_ backend = (*store.Store)(nil)
	_ backend = (*postgres.Store)(nil)
)

// env bundles the dependencies every command needs.
type env struct {
	cfg     *config.Config
	log     *zap.Logger
	db      backend
	table   spacedrep.Table
	learner string
}

// setup loads configuration, builds the logger and opens the configured
// backend. Callers must Close the result.
func setup(cmd *cobra.Command) (*env, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	log, err := logger.New(cfg.Env)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	table, err := spacedrep.NewTable(cfg.SRS.Intervals)
	if err != nil {
		return nil, fmt.Errorf("srs.intervals: %w", err)
	}

	learner := cfg.Learner
	if l, _ := cmd.Flags().GetString("learner"); l != "" {
		learner = l
	}

	db, err := openBackend(cmd, cfg, log)
	if err != nil {
		return nil, err
	}
	return &env{cfg: cfg, log: log, db: db, table: table, learner: learner}, nil
}

// loadConfig reads the file named by --config when given, otherwise the
// usual .env, config file and environment lookup.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		return config.LoadFile(path)
	}
	return config.Load()
}

func openBackend(cmd *cobra.Command, cfg *config.Config, log *zap.Logger) (backend, error) {
	switch cfg.DB.Driver {
	case config.DriverPostgres:
		dsn, err := cfg.DB.DSN()
		if err != nil {
			return nil, err
		}
		st, err := postgres.Open(cmd.Context(), dsn, postgres.PoolConfig{
			MaxConns:        int32(cfg.DB.MaxConnections),
			MaxConnLifetime: cfg.DB.MaxConnLifetime,
		})
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		log.Debug("opened postgres backend")
		return st, nil
	default:
		dbPath, err := resolveDBPath(cmd, cfg)
		if err != nil {
			return nil, fmt.Errorf("resolve DB path: %w", err)
		}
		st, err := store.Open(dbPath)
		if err != nil {
			return nil, fmt.Errorf("open store: %w", err)
		}
		log.Debug("opened sqlite store", zap.String("path", dbPath))
		return st, nil
	}
}

func (e *env) Close() {
	if err := e.db.Close(); err != nil {
		e.log.Warn("close backend", zap.Error(err))
	}
	_ = e.log.Sync()
}

func (e *env) rewardService() *rewards.Service {
	policy := rewards.XPPolicy{
		PerCorrect:   e.cfg.Rewards.PerCorrect,
		PerfectBonus: e.cfg.Rewards.PerfectBonus,
		PerReview:    e.cfg.Rewards.PerReview,
		PerMastered:  e.cfg.Rewards.PerMastered,
	}
	return rewards.NewService(policy, e.db)
}

// loader builds a session loader over the backend. dispatcher may be nil
// for quizzes.
func (e *env) loader(dispatcher session.Dispatcher) (*session.Loader, error) {
	mode, err := session.ParseQuizMode(e.cfg.Quiz.Mode)
	if err != nil {
		return nil, fmt.Errorf("quiz.mode: %w", err)
	}
	return &session.Loader{
		Content:      e.db,
		Table:        e.table,
		Dispatcher:   dispatcher,
		Policy:       e.rewardService(),
		Shuffler:     rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0)),
		QuizMode:     mode,
		QuizOptions:  e.cfg.Quiz.Options,
		MinQuestions: e.cfg.Quiz.MinQuestions,
		MaxQuestions: e.cfg.Quiz.MaxQuestions,
	}, nil
}

// criteria builds working-set criteria from config defaults and the
// command's flags.
func (e *env) criteria(cmd *cobra.Command, defaultMode string, defaultLimit int) (vocab.Criteria, error) {
	modeName := defaultMode
	if cmd.Flags().Changed("mode") {
		modeName, _ = cmd.Flags().GetString("mode")
	}
	mode, err := vocab.ParseMode(modeName)
	if err != nil {
		return vocab.Criteria{}, err
	}

	limit := defaultLimit
	if cmd.Flags().Changed("limit") {
		limit, _ = cmd.Flags().GetInt("limit")
	}
	newLimit := e.cfg.Review.NewPerSession
	if cmd.Flags().Changed("new") {
		newLimit, _ = cmd.Flags().GetInt("new")
	}
	tags, _ := cmd.Flags().GetStringSlice("tag")

	c := vocab.Criteria{
		LearnerID: e.learner,
		Mode:      mode,
		Tags:      tags,
		Limit:     limit,
		NewLimit:  newLimit,
		Now:       time.Now(),
	}
	return c, c.Validate()
}

func addCriteriaFlags(cmd *cobra.Command) {
	cmd.Flags().String("mode", "", "Working set: due, new, mixed or all")
	cmd.Flags().Int("limit", 0, "Maximum number of items (0 = no cap)")
	cmd.Flags().Int("new", 0, "Maximum number of new items in mixed mode (0 = no cap)")
	cmd.Flags().StringSlice("tag", nil, "Only include items with one of these tags")
}
