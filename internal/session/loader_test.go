package session

import (
	"context"
	"errors"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lolmantran/vietlearn/internal/rewards"
	"github.com/Lolmantran/vietlearn/internal/spacedrep"
	"github.com/Lolmantran/vietlearn/internal/vocab"
)

type fakeContent struct {
	items     []vocab.Item
	schedules map[string]*spacedrep.Schedule
	fetchErr  error
	schedErr  error
	gotLimit  int
}

func (f *fakeContent) FetchWorkingSet(_ context.Context, c vocab.Criteria) ([]vocab.Item, error) {
	f.gotLimit = c.Limit
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return c.Capped(f.items), nil
}

func (f *fakeContent) FetchSchedule(_ context.Context, _, itemID string) (*spacedrep.Schedule, error) {
	if f.schedErr != nil {
		return nil, f.schedErr
	}
	return f.schedules[itemID], nil
}

func TestLoader_LoadReviewResolvesSchedules(t *testing.T) {
	content := &fakeContent{
		items:     testItems("a", "b"),
		schedules: map[string]*spacedrep.Schedule{"a": {ItemID: "a", Level: 4, DueAt: t0}},
	}
	l := &Loader{Content: content, Now: func() time.Time { return t0 }}

	r, err := l.LoadReview(context.Background(), "s1", vocab.Criteria{LearnerID: "learner", Mode: vocab.ModeMixed})
	require.NoError(t, err)
	require.Equal(t, PhaseActive, r.Phase())

	card, err := r.Current()
	require.NoError(t, err)
	assert.Equal(t, spacedrep.Level(4), card.Schedule.Level)

	res, err := r.Grade("a", spacedrep.Good)
	require.NoError(t, err)
	assert.Equal(t, spacedrep.Level(5), res.To)
	assert.Equal(t, t0.AddDate(0, 0, 14), res.DueAt)
}

func TestLoader_FetchFailureIsDistinctFromEmpty(t *testing.T) {
	boom := errors.New("connection refused")
	l := &Loader{Content: &fakeContent{fetchErr: boom}}
	_, err := l.LoadReview(context.Background(), "s1", vocab.Criteria{LearnerID: "learner"})
	assert.ErrorIs(t, err, ErrFetchFailed)
	assert.ErrorIs(t, err, boom)

	l = &Loader{Content: &fakeContent{items: testItems("a"), schedErr: boom}}
	_, err = l.LoadReview(context.Background(), "s1", vocab.Criteria{LearnerID: "learner"})
	assert.ErrorIs(t, err, ErrFetchFailed)

	l = &Loader{Content: &fakeContent{}}
	r, err := l.LoadReview(context.Background(), "s1", vocab.Criteria{LearnerID: "learner"})
	require.NoError(t, err)
	assert.Equal(t, PhaseEmpty, r.Phase())

	_, err = l.LoadQuiz(context.Background(), "q1", vocab.Criteria{LearnerID: "learner"})
	require.NoError(t, err)
	l.Content = &fakeContent{fetchErr: boom}
	_, err = l.LoadQuiz(context.Background(), "q1", vocab.Criteria{LearnerID: "learner"})
	assert.ErrorIs(t, err, ErrFetchFailed)
}

func TestLoader_LoadQuiz(t *testing.T) {
	ids := []string{"a", "b", "c", "d", "e", "f", "g", "h"}
	content := &fakeContent{items: testItems(ids...)}
	l := &Loader{
		Content:      content,
		Policy:       rewards.DefaultPolicy,
		Shuffler:     rand.New(rand.NewPCG(1, 0)),
		QuizOptions:  4,
		MinQuestions: 5,
		MaxQuestions: 6,
	}

	q, err := l.LoadQuiz(context.Background(), "q1", vocab.Criteria{LearnerID: "learner", Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 0, content.gotLimit, "quiz fetches the whole pool for distractors")
	assert.Equal(t, 5, q.Progress().Total, "limit below minimum is raised")

	cur, err := q.Current()
	require.NoError(t, err)
	assert.Len(t, cur.Choices, 4)
	assert.Equal(t, MultipleChoice, cur.Mode)
}

func TestLoader_QuizSize(t *testing.T) {
	l := &Loader{}
	tests := []struct{ requested, want int }{
		{0, DefaultMaxQuestions},
		{1, DefaultMinQuestions},
		{20, 20},
		{500, DefaultMaxQuestions},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, l.QuizSize(tt.requested), "QuizSize(%d)", tt.requested)
	}
}

func TestLoader_QuizFewerItemsThanMinimum(t *testing.T) {
	l := &Loader{Content: &fakeContent{items: testItems("a", "b")}, QuizMode: FreeText}
	q, err := l.LoadQuiz(context.Background(), "q1", vocab.Criteria{LearnerID: "learner"})
	require.NoError(t, err)
	assert.Equal(t, 2, q.Progress().Total)
}
