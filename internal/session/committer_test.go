package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Lolmantran/vietlearn/internal/spacedrep"
)

type fakeStore struct {
	mu      sync.Mutex
	commits []CommitRequest
	failOn  map[string]error
	block   chan struct{}
}

func (s *fakeStore) Commit(_ context.Context, req CommitRequest) error {
	if s.block != nil {
		<-s.block
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failOn[req.ItemID]; err != nil {
		return err
	}
	s.commits = append(s.commits, req)
	return nil
}

func (s *fakeStore) committed() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, len(s.commits))
	for i, c := range s.commits {
		ids[i] = c.ItemID
	}
	return ids
}

func TestAsyncCommitter_CommitsInOrder(t *testing.T) {
	store := &fakeStore{}
	c := NewAsyncCommitter(store, zap.NewNop(), nil)
	defer c.Close()

	for _, id := range []string{"a", "b", "c"} {
		c.Dispatch(CommitRequest{ItemID: id})
	}
	warnings, err := c.Flush(context.Background())
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Equal(t, []string{"a", "b", "c"}, store.committed())
}

func TestAsyncCommitter_FailureIsWarning(t *testing.T) {
	boom := errors.New("database is locked")
	store := &fakeStore{failOn: map[string]error{"b": boom}}
	core, logs := observer.New(zap.WarnLevel)

	var mu sync.Mutex
	var seen []CommitWarning
	c := NewAsyncCommitter(store, zap.New(core), func(w CommitWarning) {
		mu.Lock()
		seen = append(seen, w)
		mu.Unlock()
	})
	defer c.Close()

	for _, id := range []string{"a", "b", "c"} {
		c.Dispatch(CommitRequest{ItemID: id, LearnerID: "learner", SessionID: "s1"})
	}
	warnings, err := c.Flush(context.Background())
	require.NoError(t, err)
	require.Len(t, warnings, 1)
	assert.Equal(t, "b", warnings[0].Request.ItemID)
	assert.ErrorIs(t, warnings[0], boom)
	assert.Equal(t, []string{"a", "c"}, store.committed())

	mu.Lock()
	assert.Len(t, seen, 1)
	mu.Unlock()

	entries := logs.FilterMessage("schedule commit failed").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "b", fields["item_id"])
	assert.Equal(t, "learner", fields["learner_id"])
	assert.Equal(t, "s1", fields["session_id"])

	// Warnings are cleared once returned.
	warnings, err = c.Flush(context.Background())
	require.NoError(t, err)
	assert.Empty(t, warnings)
}

func TestAsyncCommitter_DispatchDoesNotBlock(t *testing.T) {
	store := &fakeStore{block: make(chan struct{})}
	c := NewAsyncCommitter(store, nil, nil)

	d := &recordingDispatcher{}
	r, err := NewReview(ReviewConfig{Dispatcher: multiDispatcher{c, d}}, WorkingSet{Items: testItems("a", "b", "c")})
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for _, id := range []string{"a", "b", "c"} {
			if _, err := r.Grade(id, spacedrep.Good); err != nil {
				t.Errorf("Grade(%s): %v", id, err)
			}
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("grading blocked on the store")
	}
	assert.Equal(t, PhaseComplete, r.Phase())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = c.Flush(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	close(store.block)
	c.Close()
	assert.Equal(t, []string{"a", "b", "c"}, store.committed())
}

func TestAsyncCommitter_DispatchAfterClose(t *testing.T) {
	c := NewAsyncCommitter(&fakeStore{}, nil, nil)
	c.Close()
	c.Dispatch(CommitRequest{ItemID: "late"})

	warnings, err := c.Flush(context.Background())
	require.NoError(t, err)
	require.Len(t, warnings, 1)
	assert.ErrorIs(t, warnings[0], ErrCommitterClosed)
}

type panicStore struct{}

func (panicStore) Commit(context.Context, CommitRequest) error { panic("driver bug") }

func TestAsyncCommitter_RecoversPanic(t *testing.T) {
	c := NewAsyncCommitter(panicStore{}, nil, nil)
	defer c.Close()
	c.Dispatch(CommitRequest{ItemID: "a"})
	warnings, err := c.Flush(context.Background())
	require.NoError(t, err)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0].Error(), "driver bug")
}

type multiDispatcher []Dispatcher

func (m multiDispatcher) Dispatch(req CommitRequest) {
	for _, d := range m {
		d.Dispatch(req)
	}
}
