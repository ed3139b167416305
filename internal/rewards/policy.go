// Package rewards turns quiz results and flashcard reviews into experience
// points and records the awards.
package rewards

const (
	DefaultPerCorrect   = 5
	DefaultPerfectBonus = 50
	DefaultPerReview    = 2
	DefaultPerMastered  = 20
)

// Amount is the reward earned for one quiz.
type Amount struct {
	XP      int    `json:"xp"`
	Rarity  Rarity `json:"rarity"`
	Perfect bool   `json:"perfect"`
}

// XPPolicy grants PerCorrect XP for every correct answer plus PerfectBonus
// when every answer in a non-empty quiz was correct. Flashcard reviews earn
// PerReview per graded card and PerMastered per word that reached the top
// level.
type XPPolicy struct {
	PerCorrect   int
	PerfectBonus int
	PerReview    int
	PerMastered  int
}

// DefaultPolicy is the XP policy used when none is configured.
var DefaultPolicy = XPPolicy{
	PerCorrect:   DefaultPerCorrect,
	PerfectBonus: DefaultPerfectBonus,
	PerReview:    DefaultPerReview,
	PerMastered:  DefaultPerMastered,
}

// RewardFor computes the reward for correct answers out of total.
func (p XPPolicy) RewardFor(correct, total int) Amount {
	if total <= 0 {
		return Amount{Rarity: RarityCommon}
	}
	correct = max(0, min(correct, total))

	a := Amount{
		XP:     correct * p.PerCorrect,
		Rarity: AccuracyRarity(float64(correct) / float64(total)),
	}
	if correct == total {
		a.Perfect = true
		a.XP += p.PerfectBonus
	}
	return a
}

// ReviewReward computes the reward for grading reviewed flashcards.
func (p XPPolicy) ReviewReward(reviewed int) Amount {
	return Amount{XP: max(0, reviewed) * p.PerReview, Rarity: RarityCommon}
}

// MasteryReward computes the reward for one word reaching the top level.
func (p XPPolicy) MasteryReward() Amount {
	return Amount{XP: p.PerMastered, Rarity: RarityLegendary}
}
