package session

import (
	"time"

	"github.com/Lolmantran/vietlearn/internal/spacedrep"
	"github.com/Lolmantran/vietlearn/internal/vocab"
)

// SelectWorkingSet applies criteria to an item catalog and the learner's
// schedules. Due items come first, most urgent first; never-reviewed items
// follow in catalog order. Retired items are only selected by ModeAll with
// IncludeRetired set, after everything else.
func SelectWorkingSet(catalog []vocab.Item, schedules []spacedrep.Schedule, c vocab.Criteria) []vocab.Item {
	now := c.Now
	if now.IsZero() {
		now = time.Now()
	}

	byID := make(map[string]vocab.Item, len(catalog))
	for _, it := range catalog {
		if c.MatchesTags(it) {
			byID[it.ID] = it
		}
	}

	q := spacedrep.NewQueue(spacedrep.DefaultTable, schedules)
	var due []vocab.Item
	for _, id := range q.Due(now) {
		if it, ok := byID[id]; ok {
			due = append(due, it)
		}
	}

	var fresh, waiting, retired []vocab.Item
	for _, it := range catalog {
		if _, ok := byID[it.ID]; !ok {
			continue
		}
		switch s := q.Get(it.ID); {
		case s == nil:
			fresh = append(fresh, it)
		case s.Retired:
			retired = append(retired, it)
		case !s.IsDue(now):
			waiting = append(waiting, it)
		}
	}

	var out []vocab.Item
	switch c.Mode {
	case vocab.ModeDue:
		out = due
	case vocab.ModeNew:
		out = fresh
	case vocab.ModeAll:
		out = append(append(due, fresh...), waiting...)
		if c.IncludeRetired {
			out = append(out, retired...)
		}
	default:
		if c.NewLimit > 0 && len(fresh) > c.NewLimit {
			fresh = fresh[:c.NewLimit]
		}
		out = append(due, fresh...)
	}
	return c.Capped(out)
}
