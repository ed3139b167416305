package spacedrep

import (
	"math"
	"time"
)

// Schedule holds the spaced repetition state of one item for one learner.
type Schedule struct {
	ItemID         string    `json:"item_id"`
	Level          Level     `json:"level"`
	DueAt          time.Time `json:"due_at"`
	LastReviewedAt time.Time `json:"last_reviewed_at"`
	ReviewCount    int       `json:"review_count"`
	LapseCount     int       `json:"lapse_count"`
	Retired        bool      `json:"retired"`
}

// Apply returns the schedule that results from grading the item with rating
// at now. The receiver is not modified.
func (s *Schedule) Apply(t Table, rating Rating, now time.Time) Schedule {
	tr := t.Advance(s.Level, rating.Recalled())

	next := *s
	next.Level = tr.To
	next.DueAt = tr.DueAt(now)
	next.Retired = tr.Retired
	next.LastReviewedAt = now
	next.ReviewCount++
	if !rating.Recalled() {
		next.LapseCount++
	}
	return next
}

// IsDue returns true if the item is not retired and its due time is at or
// before now.
func (s *Schedule) IsDue(now time.Time) bool {
	return !s.Retired && !now.Before(s.DueAt)
}

// Urgency returns the forgetting pressure in [0, 100] using the schedule's
// own last review time. Retired items always report 0.
func (s *Schedule) Urgency(now time.Time) int {
	if s.Retired {
		return 0
	}
	return Urgency(s.DueAt, s.LastReviewedAt, now)
}

// Urgency is a linear ramp from 0 at lastReviewedAt to 100 at dueAt, clamped
// to [0, 100]. A zero-length or inverted interval yields 0 before dueAt and
// 100 at or after it.
func Urgency(dueAt, lastReviewedAt, now time.Time) int {
	if !dueAt.After(lastReviewedAt) {
		if now.Before(dueAt) {
			return 0
		}
		return 100
	}
	if !now.After(lastReviewedAt) {
		return 0
	}
	if !now.Before(dueAt) {
		return 100
	}
	total := dueAt.Sub(lastReviewedAt)
	passed := now.Sub(lastReviewedAt)
	return int(math.Round(float64(passed) / float64(total) * 100))
}

// OverdueDays returns how many days past due the item is. Returns 0 if not
// yet due or retired.
func (s *Schedule) OverdueDays(now time.Time) float64 {
	if !s.IsDue(now) {
		return 0
	}
	return now.Sub(s.DueAt).Hours() / 24.0
}

// IsOverdueThreshold returns true if the item is past its grace period: half
// of its current interval (at least half a day) after the due time.
func (s *Schedule) IsOverdueThreshold(now time.Time) bool {
	if !s.IsDue(now) {
		return false
	}
	interval := s.DueAt.Sub(s.LastReviewedAt)
	if interval < 24*time.Hour {
		interval = 24 * time.Hour
	}
	return now.After(s.DueAt.Add(interval / 2))
}

// ReviewStatus describes a schedule's review status for display.
type ReviewStatus string

const (
	ReviewNew      ReviewStatus = "new"
	ReviewLearning ReviewStatus = "learning"
	ReviewDue      ReviewStatus = "due"
	ReviewOverdue  ReviewStatus = "overdue"
	ReviewRetired  ReviewStatus = "retired"
)

// Status returns the review status for UI display. A nil schedule is new.
func (s *Schedule) Status(now time.Time) ReviewStatus {
	switch {
	case s == nil || s.ReviewCount == 0 && s.DueAt.IsZero() && !s.Retired:
		return ReviewNew
	case s.Retired:
		return ReviewRetired
	case s.IsOverdueThreshold(now):
		return ReviewOverdue
	case s.IsDue(now):
		return ReviewDue
	default:
		return ReviewLearning
	}
}

// DaysUntilReview returns the number of days until the next review.
// Returns 0 if already due and -1 if retired.
func (s *Schedule) DaysUntilReview(now time.Time) int {
	if s.Retired {
		return -1
	}
	if s.IsDue(now) {
		return 0
	}
	return int(math.Ceil(s.DueAt.Sub(now).Hours() / 24.0))
}

// IsDue reports whether s is due at now. A nil schedule belongs to an item
// that was never presented and is not due.
func IsDue(s *Schedule, now time.Time) bool {
	return s != nil && s.IsDue(now)
}
