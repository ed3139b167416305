package session

import (
	"context"
	"time"

	"github.com/Lolmantran/vietlearn/internal/rewards"
	"github.com/Lolmantran/vietlearn/internal/spacedrep"
	"github.com/Lolmantran/vietlearn/internal/vocab"
)

// ContentProvider supplies the items and schedules a session works on.
type ContentProvider interface {
	// FetchWorkingSet returns the ordered items matching criteria.
	FetchWorkingSet(ctx context.Context, criteria vocab.Criteria) ([]vocab.Item, error)

	// FetchSchedule returns the learner's schedule for an item, or nil if
	// the item was never presented.
	FetchSchedule(ctx context.Context, learnerID, itemID string) (*spacedrep.Schedule, error)
}

// CommitRequest carries the outcome of one grade to the schedule store.
type CommitRequest struct {
	LearnerID  string
	SessionID  string
	ItemID     string
	Rating     spacedrep.Rating
	PrevLevel  spacedrep.Level
	Schedule   spacedrep.Schedule
	ReviewedAt time.Time
}

// ScheduleStore persists the schedule produced by a grade.
type ScheduleStore interface {
	Commit(ctx context.Context, req CommitRequest) error
}

// Dispatcher hands commit requests off without blocking the caller.
type Dispatcher interface {
	Dispatch(req CommitRequest)
}

// RewardPolicy decides the reward for a finished quiz.
type RewardPolicy interface {
	RewardFor(correct, total int) rewards.Amount
}
