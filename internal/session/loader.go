package session

import (
	"context"
	"fmt"
	"time"

	"github.com/Lolmantran/vietlearn/internal/distractor"
	"github.com/Lolmantran/vietlearn/internal/spacedrep"
	"github.com/Lolmantran/vietlearn/internal/vocab"
)

// Quiz size defaults.
const (
	DefaultQuizOptions  = 4
	DefaultMinQuestions = 5
	DefaultMaxQuestions = 50
)

// Loader fetches working sets through a ContentProvider and starts sessions
// over them.
type Loader struct {
	Content    ContentProvider
	Table      spacedrep.Table
	Dispatcher Dispatcher
	Policy     RewardPolicy
	// Shuffler orders quiz questions and options. Nil keeps fetch order.
	Shuffler distractor.Shuffler
	Now      func() time.Time

	QuizMode     QuizMode
	QuizOptions  int
	MinQuestions int
	MaxQuestions int
}

// LoadReview fetches the working set and schedules for criteria and starts a
// review. Fetch failures wrap ErrFetchFailed; an empty result starts an
// empty session.
func (l *Loader) LoadReview(ctx context.Context, sessionID string, criteria vocab.Criteria) (*Review, error) {
	if criteria.Now.IsZero() {
		criteria.Now = l.now()
	}
	criteria.IncludeRetired = false
	items, err := l.Content.FetchWorkingSet(ctx, criteria)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}

	ws := WorkingSet{Items: items, Schedules: make(map[string]spacedrep.Schedule, len(items))}
	for _, it := range items {
		s, err := l.Content.FetchSchedule(ctx, criteria.LearnerID, it.ID)
		if err != nil {
			return nil, fmt.Errorf("%w: schedule for %q: %w", ErrFetchFailed, it.ID, err)
		}
		if s != nil {
			ws.Schedules[it.ID] = *s
		}
	}

	return NewReview(ReviewConfig{
		LearnerID:  criteria.LearnerID,
		SessionID:  sessionID,
		Table:      l.Table,
		Dispatcher: l.Dispatcher,
		Now:        l.Now,
	}, ws)
}

// LoadQuiz fetches the items for criteria and starts a quiz. The number of
// questions is criteria.Limit clamped to [MinQuestions, MaxQuestions], or
// every item when fewer are available. All fetched items serve as the
// distractor pool.
func (l *Loader) LoadQuiz(ctx context.Context, sessionID string, criteria vocab.Criteria) (*Quiz, error) {
	if criteria.Now.IsZero() {
		criteria.Now = l.now()
	}
	want := l.QuizSize(criteria.Limit)
	criteria.Limit = 0

	items, err := l.Content.FetchWorkingSet(ctx, criteria)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}

	pool := append([]vocab.Item(nil), items...)
	if l.Shuffler != nil {
		l.Shuffler.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	}

	mode := l.QuizMode
	if mode == "" {
		mode = MultipleChoice
	}
	options := l.QuizOptions
	if options <= 0 {
		options = DefaultQuizOptions
	}

	questions := BuildQuestions(pool, mode, options, l.Shuffler)
	if len(questions) > want {
		questions = questions[:want]
	}
	return NewQuiz(QuizConfig{
		LearnerID: criteria.LearnerID,
		SessionID: sessionID,
		Policy:    l.Policy,
	}, questions)
}

// QuizSize clamps a requested question count. Zero asks for the maximum.
func (l *Loader) QuizSize(requested int) int {
	lo, hi := l.MinQuestions, l.MaxQuestions
	if lo <= 0 {
		lo = DefaultMinQuestions
	}
	if hi <= 0 {
		hi = DefaultMaxQuestions
	}
	if hi < lo {
		hi = lo
	}
	if requested <= 0 {
		return hi
	}
	return max(lo, min(requested, hi))
}

func (l *Loader) now() time.Time {
	if l.Now != nil {
		return l.Now()
	}
	return time.Now()
}
