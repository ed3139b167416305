package store

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lolmantran/vietlearn/internal/rewards"
	"github.com/Lolmantran/vietlearn/internal/session"
	"github.com/Lolmantran/vietlearn/internal/spacedrep"
	"github.com/Lolmantran/vietlearn/internal/vocab"
)

var t0 = time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	s, err := Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func seedItems(t *testing.T, s *Store, ids ...string) []vocab.Item {
	t.Helper()
	items := make([]vocab.Item, len(ids))
	for i, id := range ids {
		items[i] = vocab.Item{ID: id, Prompt: "prompt " + id, Answer: "answer " + id, Tags: []string{"basics"}}
	}
	_, err := s.UpsertItems(context.Background(), items)
	require.NoError(t, err)
	return items
}

func TestOpenClose(t *testing.T) {
	s := openTestStore(t)
	if s.Driver() == nil || s.DB() == nil {
		t.Fatal("expected non-nil driver and db")
	}
}

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	tests := []struct {
		pragma string
		want   string
	}{
		// WAL mode falls back to "memory" for in-memory databases,
		// so we skip journal_mode here. It is tested with file-based DBs.
		{"foreign_keys", "1"},
		{"synchronous", "1"}, // NORMAL = 1
	}

	for _, tt := range tests {
		var got string
		err := db.QueryRow("PRAGMA " + tt.pragma).Scan(&got)
		if err != nil {
			t.Errorf("PRAGMA %s: %v", tt.pragma, err)
			continue
		}
		if got != tt.want {
			t.Errorf("PRAGMA %s = %q, want %q", tt.pragma, got, tt.want)
		}
	}
}

func TestWALMode_FileDB(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	var mode string
	require.NoError(t, s.DB().QueryRow("PRAGMA journal_mode").Scan(&mode))
	assert.Equal(t, "wal", mode)
}

func TestOpen_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	require.NoError(t, err)
	_, err = s.UpsertItems(context.Background(), []vocab.Item{{ID: "chao", Prompt: "hello", Answer: "xin chào"}})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()
	items, err := s.Items(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "xin chào", items[0].Answer)
}

func TestSequenceCounter_Monotonic(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	var prev int64
	for i := 0; i < 5; i++ {
		seq, err := s.appendEvent(ctx, tableRewardEvents, t0,
			[]string{"learner_id", "session_id", "xp", "rarity", "correct", "total", "reason"},
			[]any{"me", "s1", 1, "common", 0, 1, "test"})
		require.NoError(t, err)
		assert.Greater(t, seq, prev)
		prev = seq
	}
}

func TestUpsertItems_KeepsPosition(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	seedItems(t, s, "a", "b", "c")

	n, err := s.UpsertItems(ctx, []vocab.Item{
		{ID: "d", Prompt: "prompt d", Answer: "answer d"},
		{ID: "a", Prompt: "changed", Answer: "new answer", Tags: []string{"food"}},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	items, err := s.Items(ctx)
	require.NoError(t, err)
	var ids []string
	for _, it := range items {
		ids = append(ids, it.ID)
	}
	assert.Equal(t, []string{"a", "b", "c", "d"}, ids)
	assert.Equal(t, "new answer", items[0].Answer)
	assert.Equal(t, []string{"food"}, items[0].Tags)
	assert.Empty(t, items[3].Tags)
}

func TestUpsertItems_RejectsInvalid(t *testing.T) {
	s := openTestStore(t)
	_, err := s.UpsertItems(context.Background(), []vocab.Item{{ID: "", Prompt: "p", Answer: "a"}})
	require.ErrorIs(t, err, vocab.ErrInvalidDeck)

	items, err := s.Items(context.Background())
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestFetchSchedule_Missing(t *testing.T) {
	s := openTestStore(t)
	seedItems(t, s, "a")

	sched, err := s.FetchSchedule(context.Background(), "me", "a")
	require.NoError(t, err)
	assert.Nil(t, sched)
}

func commitGrade(t *testing.T, s *Store, learner, itemID string, prev spacedrep.Schedule, rating spacedrep.Rating, at time.Time) spacedrep.Schedule {
	t.Helper()
	next := prev.Apply(spacedrep.DefaultTable, rating, at)
	err := s.Commit(context.Background(), session.CommitRequest{
		LearnerID:  learner,
		SessionID:  "s1",
		ItemID:     itemID,
		Rating:     rating,
		PrevLevel:  prev.Level,
		Schedule:   next,
		ReviewedAt: at,
	})
	require.NoError(t, err)
	return next
}

func TestCommit_RoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	seedItems(t, s, "a")

	want := commitGrade(t, s, "me", "a", spacedrep.Schedule{ItemID: "a"}, spacedrep.Good, t0)

	got, err := s.FetchSchedule(ctx, "me", "a")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, want.Level, got.Level)
	assert.True(t, want.DueAt.Equal(got.DueAt), "due %v, want %v", got.DueAt, want.DueAt)
	assert.True(t, t0.Equal(got.LastReviewedAt))
	assert.Equal(t, 1, got.ReviewCount)

	other, err := s.FetchSchedule(ctx, "someone else", "a")
	require.NoError(t, err)
	assert.Nil(t, other, "schedules are per learner")
}

func TestCommit_OverwritesAndLogs(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	seedItems(t, s, "a")

	first := commitGrade(t, s, "me", "a", spacedrep.Schedule{ItemID: "a"}, spacedrep.Good, t0)
	second := commitGrade(t, s, "me", "a", first, spacedrep.Again, t0.AddDate(0, 0, 1))

	got, err := s.FetchSchedule(ctx, "me", "a")
	require.NoError(t, err)
	assert.Equal(t, spacedrep.Level(0), got.Level)
	assert.Equal(t, second.LapseCount, got.LapseCount)
	assert.Equal(t, 2, got.ReviewCount)

	events, err := s.ReviewEvents(ctx, "me", QueryOpts{})
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Less(t, events[0].Sequence, events[1].Sequence)
	assert.Equal(t, spacedrep.Good, events[0].Rating)
	assert.Equal(t, spacedrep.Level(1), events[0].NewLevel)
	assert.Equal(t, spacedrep.Again, events[1].Rating)
	assert.Equal(t, spacedrep.Level(1), events[1].PrevLevel)
	assert.Equal(t, spacedrep.Level(0), events[1].NewLevel)

	limited, err := s.ReviewEvents(ctx, "me", QueryOpts{After: events[0].Sequence})
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, events[1].Sequence, limited[0].Sequence)
}

func TestCommit_UnknownItemRollsBack(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	err := s.Commit(ctx, session.CommitRequest{
		LearnerID: "me",
		SessionID: "s1",
		ItemID:    "ghost",
		Rating:    spacedrep.Good,
		Schedule:  spacedrep.Schedule{ItemID: "ghost", Level: 1, DueAt: t0},
	})
	require.Error(t, err)

	events, err := s.ReviewEvents(ctx, "me", QueryOpts{})
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestDeleteItem_CascadesSchedules(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	seedItems(t, s, "a", "b")
	commitGrade(t, s, "me", "a", spacedrep.Schedule{ItemID: "a"}, spacedrep.Good, t0)

	require.NoError(t, s.DeleteItem(ctx, "a"))
	scheds, err := s.Schedules(ctx, "me")
	require.NoError(t, err)
	assert.Empty(t, scheds)
}

func TestFetchWorkingSet(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	seedItems(t, s, "a", "b", "c")

	// a is due, b is learning, c is new.
	commitGrade(t, s, "me", "a", spacedrep.Schedule{ItemID: "a"}, spacedrep.Again, t0)
	commitGrade(t, s, "me", "b", spacedrep.Schedule{ItemID: "b"}, spacedrep.Good, t0)

	tests := []struct {
		mode vocab.Mode
		want []string
	}{
		{vocab.ModeDue, []string{"a"}},
		{vocab.ModeNew, []string{"c"}},
		{vocab.ModeMixed, []string{"a", "c"}},
		{vocab.ModeAll, []string{"a", "c", "b"}},
	}
	for _, tt := range tests {
		items, err := s.FetchWorkingSet(ctx, vocab.Criteria{LearnerID: "me", Mode: tt.mode, Now: t0.Add(time.Hour)})
		require.NoError(t, err)
		var ids []string
		for _, it := range items {
			ids = append(ids, it.ID)
		}
		assert.Equal(t, tt.want, ids, "mode %s", tt.mode)
	}

	_, err := s.FetchWorkingSet(ctx, vocab.Criteria{})
	assert.Error(t, err, "empty learner id")
}

func TestLevelCounts(t *testing.T) {
	s := openTestStore(t)
	seedItems(t, s, "a", "b", "c")
	commitGrade(t, s, "me", "a", spacedrep.Schedule{ItemID: "a"}, spacedrep.Good, t0)
	commitGrade(t, s, "me", "b", spacedrep.Schedule{ItemID: "b"}, spacedrep.Good, t0)
	commitGrade(t, s, "me", "c", spacedrep.Schedule{ItemID: "c"}, spacedrep.Again, t0)

	counts, err := s.LevelCounts(context.Background(), "me")
	require.NoError(t, err)
	assert.Equal(t, map[spacedrep.Level]int{0: 1, 1: 2}, counts)
}

func TestRewardEvents_TotalXP(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	total, err := s.TotalXP(ctx, "me")
	require.NoError(t, err)
	assert.Zero(t, total)

	svc := rewards.NewService(rewards.DefaultPolicy, s)
	amount := svc.RewardFor(4, 4)
	_, err = svc.Award(ctx, "me", "s1", amount, 4, 4)
	require.NoError(t, err)
	require.NoError(t, s.AppendRewardEvent(ctx, rewards.Event{LearnerID: "you", XP: 7, Rarity: rewards.RarityCommon}))

	total, err = s.TotalXP(ctx, "me")
	require.NoError(t, err)
	assert.Equal(t, amount.XP, total)
}

func TestAppendQuizEvent(t *testing.T) {
	s := openTestStore(t)
	err := s.AppendQuizEvent(context.Background(), QuizEventData{
		LearnerID: "me", SessionID: "q1", ItemID: "a",
		Mode: "free_text", Given: "xin chao", Expected: "xin chào", Correct: false,
	})
	require.NoError(t, err)

	var n int
	require.NoError(t, s.DB().QueryRow("SELECT COUNT(*) FROM quiz_events").Scan(&n))
	assert.Equal(t, 1, n)
}

func TestDefaultDBPath_Env(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "custom.db")
	t.Setenv("VIETLEARN_DB", path)
	got, err := DefaultDBPath()
	require.NoError(t, err)
	assert.Equal(t, path, got)
}

func TestDefaultDBPath_XDG(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("VIETLEARN_DB", "")
	t.Setenv("XDG_DATA_HOME", dir)
	got, err := DefaultDBPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "vietlearn", "vietlearn.db"), got)
}
