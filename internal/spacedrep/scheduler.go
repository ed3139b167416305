package spacedrep

import (
	"sort"
	"time"
)

// Queue tracks the schedules of one learner's items and answers due
// queries against them.
type Queue struct {
	table     Table
	schedules map[string]*Schedule
}

// NewQueue creates a queue over the given schedules. Later duplicates of an
// item ID replace earlier ones.
func NewQueue(table Table, schedules []Schedule) *Queue {
	q := &Queue{
		table:     table,
		schedules: make(map[string]*Schedule, len(schedules)),
	}
	for i := range schedules {
		s := schedules[i]
		q.schedules[s.ItemID] = &s
	}
	return q
}

// Due returns the IDs of items due at now, most urgent first. Ties are
// broken by most overdue, then by item ID.
func (q *Queue) Due(now time.Time) []string {
	type dueItem struct {
		id      string
		urgency int
		overdue float64
	}
	var due []dueItem

	for id, s := range q.schedules {
		if !s.IsDue(now) {
			continue
		}
		due = append(due, dueItem{id: id, urgency: s.Urgency(now), overdue: s.OverdueDays(now)})
	}

	sort.Slice(due, func(i, j int) bool {
		if due[i].urgency != due[j].urgency {
			return due[i].urgency > due[j].urgency
		}
		if due[i].overdue != due[j].overdue {
			return due[i].overdue > due[j].overdue
		}
		return due[i].id < due[j].id
	})

	ids := make([]string, len(due))
	for i, d := range due {
		ids[i] = d.id
	}
	return ids
}

// Record applies a grade to the item's schedule and returns the new
// schedule. Items without a schedule start at level 0.
func (q *Queue) Record(itemID string, rating Rating, now time.Time) Schedule {
	cur := q.schedules[itemID]
	if cur == nil {
		cur = &Schedule{ItemID: itemID}
	}
	next := cur.Apply(q.table, rating, now)
	q.schedules[itemID] = &next
	return next
}

// Get returns the schedule for an item, or nil if the item was never
// reviewed.
func (q *Queue) Get(itemID string) *Schedule {
	return q.schedules[itemID]
}
