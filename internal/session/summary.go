package session

import (
	"math"

	"github.com/Lolmantran/vietlearn/internal/rewards"
	"github.com/Lolmantran/vietlearn/internal/spacedrep"
)

// Outcome is one entry of a session summary.
type Outcome struct {
	ItemID  string           `json:"item_id"`
	Correct bool             `json:"correct"`
	Rating  spacedrep.Rating `json:"rating,omitempty"`
}

// Summary is handed back to the caller once a session has ended.
type Summary struct {
	TotalReviewed int       `json:"total_reviewed"`
	CorrectCount  int       `json:"correct_count"`
	Results       []Outcome `json:"results"`
}

// Accuracy returns CorrectCount/TotalReviewed, or 0 for an empty session.
func (s Summary) Accuracy() float64 {
	if s.TotalReviewed == 0 {
		return 0
	}
	return float64(s.CorrectCount) / float64(s.TotalReviewed)
}

// QuizSummary extends Summary with the score and the reward.
type QuizSummary struct {
	Summary
	Percentage int            `json:"percentage"`
	Reward     rewards.Amount `json:"reward"`
}

// Percentage rounds correct/total to a whole percent. Zero questions score 0.
func Percentage(correct, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(correct) / float64(total) * 100))
}
