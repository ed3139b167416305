package rewards

import (
	"context"
	"fmt"
	"time"
)

// Event is the persisted record of one reward.
type Event struct {
	LearnerID string
	SessionID string
	XP        int
	Rarity    Rarity
	Correct   int
	Total     int
	Reason    string
}

// EventRepo persists reward events.
type EventRepo interface {
	AppendRewardEvent(ctx context.Context, e Event) error
	TotalXP(ctx context.Context, learnerID string) (int, error)
}

// Award is a reward granted during the current process.
type Award struct {
	Amount
	LearnerID string
	SessionID string
	Reason    string
	AwardedAt time.Time
}

// Service computes rewards through a policy and records them.
type Service struct {
	policy XPPolicy
	repo   EventRepo

	// SessionAwards accumulates awards granted since the last reset.
	SessionAwards []Award
}

// NewService creates a reward service. repo may be nil, in which case awards
// are only kept in memory.
func NewService(policy XPPolicy, repo EventRepo) *Service {
	return &Service{policy: policy, repo: repo}
}

// RewardFor delegates to the configured policy.
func (s *Service) RewardFor(correct, total int) Amount {
	return s.policy.RewardFor(correct, total)
}

// Award records a quiz reward for the learner.
func (s *Service) Award(ctx context.Context, learnerID, sessionID string, amount Amount, correct, total int) (*Award, error) {
	reason := fmt.Sprintf("Quiz complete (%d/%d correct)", correct, total)
	if amount.Perfect {
		reason = fmt.Sprintf("Perfect quiz (%d/%d correct)", correct, total)
	}
	return s.record(ctx, learnerID, sessionID, reason, amount, correct, total)
}

// AwardReview records the reward for a finished flashcard review. Nothing is
// recorded when no card was graded.
func (s *Service) AwardReview(ctx context.Context, learnerID, sessionID string, recalled, reviewed int) (*Award, error) {
	if reviewed <= 0 {
		return nil, nil
	}
	reason := fmt.Sprintf("Reviewed %d flashcard(s)", reviewed)
	return s.record(ctx, learnerID, sessionID, reason, s.policy.ReviewReward(reviewed), recalled, reviewed)
}

// AwardMastery records the reward for a word that reached the top level.
func (s *Service) AwardMastery(ctx context.Context, learnerID, sessionID, word string) (*Award, error) {
	reason := fmt.Sprintf("Mastered %s", word)
	return s.record(ctx, learnerID, sessionID, reason, s.policy.MasteryReward(), 1, 1)
}

// SessionXP sums the XP of the awards granted since the last reset.
func (s *Service) SessionXP() int {
	total := 0
	for _, a := range s.SessionAwards {
		total += a.XP
	}
	return total
}

func (s *Service) record(ctx context.Context, learnerID, sessionID, reason string, amount Amount, correct, total int) (*Award, error) {
	award := &Award{
		Amount:    amount,
		LearnerID: learnerID,
		SessionID: sessionID,
		Reason:    reason,
		AwardedAt: time.Now(),
	}
	s.SessionAwards = append(s.SessionAwards, *award)

	if s.repo == nil {
		return award, nil
	}
	err := s.repo.AppendRewardEvent(ctx, Event{
		LearnerID: learnerID,
		SessionID: sessionID,
		XP:        amount.XP,
		Rarity:    amount.Rarity,
		Correct:   correct,
		Total:     total,
		Reason:    reason,
	})
	if err != nil {
		return award, fmt.Errorf("record reward: %w", err)
	}
	return award, nil
}

// TotalXP returns the learner's accumulated XP, or 0 without a repo.
func (s *Service) TotalXP(ctx context.Context, learnerID string) (int, error) {
	if s.repo == nil {
		return 0, nil
	}
	return s.repo.TotalXP(ctx, learnerID)
}

// ResetSession clears the award accumulator. Called at session start.
func (s *Service) ResetSession() {
	s.SessionAwards = nil
}
