package session

import (
	"fmt"
	"time"

	"github.com/Lolmantran/vietlearn/internal/spacedrep"
	"github.com/Lolmantran/vietlearn/internal/vocab"
)

// WorkingSet is the resolved input of a review session: the ordered items
// and the learner's existing schedules keyed by item ID. Items without a
// schedule start at level 0.
type WorkingSet struct {
	Items     []vocab.Item
	Schedules map[string]spacedrep.Schedule
}

// ReviewConfig configures a review session.
type ReviewConfig struct {
	LearnerID string
	SessionID string

	// Table is the interval table. The zero value uses spacedrep.DefaultTable.
	Table spacedrep.Table

	// Dispatcher receives one commit request per grade. Nil disables commits.
	Dispatcher Dispatcher

	// Now returns the grading time. Nil uses time.Now.
	Now func() time.Time
}

// Card is the item currently presented, with its schedule state.
type Card struct {
	Item     vocab.Item
	Schedule spacedrep.Schedule
	Index    int
	Total    int
}

// ReviewResult records one grade and the schedule it produced.
type ReviewResult struct {
	ItemID     string
	Rating     spacedrep.Rating
	Recalled   bool
	From       spacedrep.Level
	To         spacedrep.Level
	DueAt      time.Time
	Retired    bool
	ReviewedAt time.Time
}

// Review is the state machine for one self-graded review sitting. It is not
// safe for concurrent use.
type Review struct {
	cfg     ReviewConfig
	items   []vocab.Item
	queue   *spacedrep.Queue
	index   int
	phase   Phase
	graded  map[string]bool
	results []ReviewResult
}

// NewReview starts a review over ws. An empty working set yields a session
// already in PhaseEmpty. Empty or duplicate item IDs and retired items are
// rejected.
func NewReview(cfg ReviewConfig, ws WorkingSet) (*Review, error) {
	if err := validateItems("start review", ws.Items); err != nil {
		return nil, err
	}
	if cfg.Table.MaxLevel() == 0 {
		cfg.Table = spacedrep.DefaultTable
	}
	for _, it := range ws.Items {
		if s, ok := ws.Schedules[it.ID]; ok && (s.Retired || s.Level >= cfg.Table.MaxLevel()) {
			return nil, malformed("start review", "item %q is retired", it.ID)
		}
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	scheds := make([]spacedrep.Schedule, 0, len(ws.Schedules))
	for id, s := range ws.Schedules {
		s.ItemID = id
		scheds = append(scheds, s)
	}
	r := &Review{
		cfg:     cfg,
		items:   append([]vocab.Item(nil), ws.Items...),
		queue:   spacedrep.NewQueue(cfg.Table, scheds),
		graded:  make(map[string]bool, len(ws.Items)),
		results: make([]ReviewResult, 0, len(ws.Items)),
		phase:   PhaseActive,
	}
	if len(r.items) == 0 {
		r.phase = PhaseEmpty
	}
	return r, nil
}

// Phase returns the current phase.
func (r *Review) Phase() Phase {
	return r.phase
}

// Current returns the item awaiting a grade.
func (r *Review) Current() (Card, error) {
	if r.phase != PhaseActive {
		return Card{}, &StateError{Op: "current", Phase: r.phase, Reason: ErrNotActive}
	}
	it := r.items[r.index]
	return Card{
		Item:     it,
		Schedule: r.scheduleFor(it.ID),
		Index:    r.index,
		Total:    len(r.items),
	}, nil
}

// Grade applies rating to the current item, which must be itemID. The new
// schedule is dispatched for persistence without waiting for the outcome,
// and the session advances. A second grade for the same item is rejected.
func (r *Review) Grade(itemID string, rating spacedrep.Rating) (ReviewResult, error) {
	if !rating.IsValid() {
		return ReviewResult{}, fmt.Errorf("grade %q: %w: %d", itemID, spacedrep.ErrInvalidRating, int(rating))
	}
	if r.graded[itemID] {
		return ReviewResult{}, &StateError{Op: "grade", Phase: r.phase, ItemID: itemID, Reason: ErrAlreadyGraded}
	}
	if r.phase != PhaseActive {
		return ReviewResult{}, &StateError{Op: "grade", Phase: r.phase, ItemID: itemID, Reason: ErrNotActive}
	}
	if cur := r.items[r.index].ID; cur != itemID {
		return ReviewResult{}, &StateError{
			Op: "grade", Phase: r.phase, ItemID: itemID, Reason: ErrNotCurrent,
			Detail: fmt.Sprintf("current item is %q", cur),
		}
	}

	now := r.cfg.Now()
	prev := r.scheduleFor(itemID)
	next := r.queue.Record(itemID, rating, now)

	if r.cfg.Dispatcher != nil {
		r.cfg.Dispatcher.Dispatch(CommitRequest{
			LearnerID:  r.cfg.LearnerID,
			SessionID:  r.cfg.SessionID,
			ItemID:     itemID,
			Rating:     rating,
			PrevLevel:  prev.Level,
			Schedule:   next,
			ReviewedAt: now,
		})
	}

	res := ReviewResult{
		ItemID:     itemID,
		Rating:     rating,
		Recalled:   rating.Recalled(),
		From:       prev.Level,
		To:         next.Level,
		DueAt:      next.DueAt,
		Retired:    next.Retired,
		ReviewedAt: now,
	}
	r.results = append(r.results, res)
	r.graded[itemID] = true
	r.index++
	if r.index == len(r.items) {
		r.phase = PhaseComplete
	}
	return res, nil
}

// Summary returns the totals of an ended session.
func (r *Review) Summary() (Summary, error) {
	if !r.phase.Terminal() {
		return Summary{}, &StateError{Op: "summary", Phase: r.phase, Reason: ErrSummaryUnavailable}
	}
	s := Summary{TotalReviewed: len(r.results), Results: make([]Outcome, len(r.results))}
	for i, res := range r.results {
		if res.Recalled {
			s.CorrectCount++
		}
		s.Results[i] = Outcome{ItemID: res.ItemID, Correct: res.Recalled, Rating: res.Rating}
	}
	return s, nil
}

// Results returns a copy of the grades applied so far, in order.
func (r *Review) Results() []ReviewResult {
	return append([]ReviewResult(nil), r.results...)
}

// Progress reports graded and total item counts.
func (r *Review) Progress() Progress {
	return Progress{Done: len(r.results), Total: len(r.items)}
}

func (r *Review) scheduleFor(itemID string) spacedrep.Schedule {
	if s := r.queue.Get(itemID); s != nil {
		return *s
	}
	return spacedrep.Schedule{ItemID: itemID}
}

func validateItems(op string, items []vocab.Item) error {
	seen := make(map[string]bool, len(items))
	for i, it := range items {
		if it.ID == "" {
			return malformed(op, "item %d has an empty id", i)
		}
		if seen[it.ID] {
			return malformed(op, "duplicate item id %q", it.ID)
		}
		seen[it.ID] = true
	}
	return nil
}
