package vocab

import (
	"fmt"
	"strings"
	"time"
)

// Mode selects which items make up a working set.
type Mode string

const (
	// ModeDue picks only items whose schedule is due.
	ModeDue Mode = "due"
	// ModeNew picks only items that were never reviewed.
	ModeNew Mode = "new"
	// ModeMixed picks due items first, then tops up with new items.
	ModeMixed Mode = "mixed"
	// ModeAll picks every non-retired item regardless of due time, plus
	// retired items when Criteria.IncludeRetired is set.
	ModeAll Mode = "all"
)

// ParseMode parses a working-set mode name.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeDue, ModeNew, ModeMixed, ModeAll:
		return m, nil
	case "":
		return ModeMixed, nil
	default:
		return "", fmt.Errorf("unknown mode %q (want due, new, mixed or all)", s)
	}
}

// Criteria describes the working set a session asks the content provider for.
type Criteria struct {
	LearnerID string
	Mode      Mode
	// Tags restricts the set to items carrying at least one of the tags.
	Tags []string
	// Limit caps the working set size. Zero means no cap.
	Limit int
	// NewLimit caps how many never-reviewed items ModeMixed adds.
	NewLimit int
	// IncludeRetired adds retired items to ModeAll. Review sessions must
	// leave it unset.
	IncludeRetired bool
	Now            time.Time
}

// Validate checks the criteria for obvious caller mistakes.
func (c Criteria) Validate() error {
	if c.LearnerID == "" {
		return fmt.Errorf("criteria: empty learner id")
	}
	if _, err := ParseMode(string(c.Mode)); err != nil {
		return fmt.Errorf("criteria: %w", err)
	}
	if c.Limit < 0 || c.NewLimit < 0 {
		return fmt.Errorf("criteria: negative limit")
	}
	return nil
}

// MatchesTags reports whether the item passes the tag filter. An empty
// filter matches everything.
func (c Criteria) MatchesTags(it Item) bool {
	if len(c.Tags) == 0 {
		return true
	}
	for _, t := range c.Tags {
		if it.HasTag(t) {
			return true
		}
	}
	return false
}

// Capped truncates items to the criteria limit.
func (c Criteria) Capped(items []Item) []Item {
	if c.Limit > 0 && len(items) > c.Limit {
		return items[:c.Limit]
	}
	return items
}
