package session

import (
	"fmt"
	"slices"
	"strings"

	"github.com/Lolmantran/vietlearn/internal/distractor"
	"github.com/Lolmantran/vietlearn/internal/rewards"
	"github.com/Lolmantran/vietlearn/internal/vocab"
)

// QuizMode selects how quiz answers are given and graded.
type QuizMode string

const (
	// MultipleChoice grades by the canonical ID of the chosen option.
	MultipleChoice QuizMode = "multiple_choice"
	// FreeText grades typed answers after trimming and case folding.
	FreeText QuizMode = "free_text"
)

// ParseQuizMode parses a quiz mode name.
func ParseQuizMode(s string) (QuizMode, error) {
	switch m := QuizMode(strings.ToLower(strings.TrimSpace(s))); m {
	case MultipleChoice, FreeText:
		return m, nil
	case "":
		return MultipleChoice, nil
	default:
		return "", fmt.Errorf("unknown quiz mode %q (want multiple_choice or free_text)", s)
	}
}

// Question is one quiz prompt. Choices is empty in FreeText mode.
type Question struct {
	Item    vocab.Item
	Mode    QuizMode
	Choices []distractor.Choice
}

// ChoiceAt returns the option at a 1-based position, as shown to the learner.
func (q Question) ChoiceAt(n int) (distractor.Choice, bool) {
	if n < 1 || n > len(q.Choices) {
		return distractor.Choice{}, false
	}
	return q.Choices[n-1], true
}

// Response is the learner's answer. OptionID is used in MultipleChoice mode,
// Text in FreeText mode.
type Response struct {
	Text     string
	OptionID string
}

// QuizResult records one answered question.
type QuizResult struct {
	ItemID   string
	Correct  bool
	Given    string
	Expected string
}

// QuizConfig configures a quiz session.
type QuizConfig struct {
	LearnerID string
	SessionID string

	// Policy computes the reward in the summary. Nil yields no reward.
	Policy RewardPolicy
}

// BuildQuestions turns items into questions. In MultipleChoice mode each
// question gets up to options choices with distractors drawn from items.
func BuildQuestions(items []vocab.Item, mode QuizMode, options int, s distractor.Shuffler) []Question {
	qs := make([]Question, len(items))
	for i, it := range items {
		qs[i] = Question{Item: it, Mode: mode}
		if mode == MultipleChoice {
			qs[i].Choices = distractor.Select(it, items, options, s)
		}
	}
	return qs
}

// Quiz is the state machine for one quiz sitting. Answers never touch
// review schedules. It is not safe for concurrent use.
type Quiz struct {
	cfg       QuizConfig
	questions []Question
	index     int
	phase     Phase
	answered  map[string]bool
	results   []QuizResult
}

// NewQuiz starts a quiz over questions. No questions yields a session already
// in PhaseEmpty.
func NewQuiz(cfg QuizConfig, questions []Question) (*Quiz, error) {
	const op = "start quiz"
	items := make([]vocab.Item, len(questions))
	for i, q := range questions {
		items[i] = q.Item
		if strings.TrimSpace(q.Item.Answer) == "" {
			return nil, malformed(op, "question %q has no answer", q.Item.ID)
		}
		switch q.Mode {
		case FreeText:
		case MultipleChoice:
			if !slices.ContainsFunc(q.Choices, func(c distractor.Choice) bool { return c.ID == q.Item.ID }) {
				return nil, malformed(op, "question %q does not offer its own answer", q.Item.ID)
			}
		default:
			return nil, malformed(op, "question %q has unknown mode %q", q.Item.ID, q.Mode)
		}
	}
	if err := validateItems(op, items); err != nil {
		return nil, err
	}

	qz := &Quiz{
		cfg:       cfg,
		questions: append([]Question(nil), questions...),
		answered:  make(map[string]bool, len(questions)),
		results:   make([]QuizResult, 0, len(questions)),
		phase:     PhaseActive,
	}
	if len(questions) == 0 {
		qz.phase = PhaseEmpty
	}
	return qz, nil
}

// Phase returns the current phase.
func (q *Quiz) Phase() Phase {
	return q.phase
}

// Current returns the question awaiting an answer.
func (q *Quiz) Current() (Question, error) {
	if q.phase != PhaseActive {
		return Question{}, &StateError{Op: "current", Phase: q.phase, Reason: ErrNotActive}
	}
	return q.questions[q.index], nil
}

// Answer grades resp against the current question, which must be itemID,
// and advances.
func (q *Quiz) Answer(itemID string, resp Response) (QuizResult, error) {
	if q.answered[itemID] {
		return QuizResult{}, &StateError{Op: "answer", Phase: q.phase, ItemID: itemID, Reason: ErrAlreadyGraded}
	}
	if q.phase != PhaseActive {
		return QuizResult{}, &StateError{Op: "answer", Phase: q.phase, ItemID: itemID, Reason: ErrNotActive}
	}
	cur := q.questions[q.index]
	if cur.Item.ID != itemID {
		return QuizResult{}, &StateError{
			Op: "answer", Phase: q.phase, ItemID: itemID, Reason: ErrNotCurrent,
			Detail: fmt.Sprintf("current item is %q", cur.Item.ID),
		}
	}

	res := QuizResult{ItemID: itemID, Expected: cur.Item.Answer}
	switch cur.Mode {
	case MultipleChoice:
		res.Correct = resp.OptionID == cur.Item.ID
		res.Given = resp.OptionID
		for _, c := range cur.Choices {
			if c.ID == resp.OptionID {
				res.Given = c.Text
				break
			}
		}
	default:
		res.Correct = vocab.AnswersEqual(resp.Text, cur.Item.Answer)
		res.Given = resp.Text
	}

	q.results = append(q.results, res)
	q.answered[itemID] = true
	q.index++
	if q.index == len(q.questions) {
		q.phase = PhaseComplete
	}
	return res, nil
}

// Summary returns the score and reward of an ended quiz.
func (q *Quiz) Summary() (QuizSummary, error) {
	if !q.phase.Terminal() {
		return QuizSummary{}, &StateError{Op: "summary", Phase: q.phase, Reason: ErrSummaryUnavailable}
	}
	var s QuizSummary
	s.TotalReviewed = len(q.results)
	s.Results = make([]Outcome, len(q.results))
	for i, res := range q.results {
		if res.Correct {
			s.CorrectCount++
		}
		s.Results[i] = Outcome{ItemID: res.ItemID, Correct: res.Correct}
	}
	s.Percentage = Percentage(s.CorrectCount, s.TotalReviewed)
	if q.cfg.Policy != nil {
		s.Reward = q.cfg.Policy.RewardFor(s.CorrectCount, s.TotalReviewed)
	} else {
		s.Reward = rewards.Amount{Rarity: rewards.RarityCommon}
	}
	return s, nil
}

// Results returns a copy of the answers graded so far, in order.
func (q *Quiz) Results() []QuizResult {
	return append([]QuizResult(nil), q.results...)
}

// Progress reports answered and total question counts.
func (q *Quiz) Progress() Progress {
	return Progress{Done: len(q.results), Total: len(q.questions)}
}
