package spacedrep

import (
	"errors"
	"fmt"
	"time"
)

// Level is a discrete mastery stage. Level 0 means never reviewed or just
// failed; a table's MaxLevel means retired.
type Level int

// DefaultIntervals defines the review delay in days for every level below
// retirement. Level 0 is due the same day.
var DefaultIntervals = []int{0, 1, 2, 4, 7, 14, 30, 60, 120}

// RetiredLevel is the terminal level of the default table.
const RetiredLevel Level = 9

// ErrInvalidTable is returned when an interval table is empty, negative or
// decreasing.
var ErrInvalidTable = errors.New("spacedrep: invalid interval table")

// DefaultTable is the interval table used when none is configured.
var DefaultTable = MustTable(DefaultIntervals)

var defaultLevelNames = []string{
	"Apprentice I",
	"Apprentice II",
	"Apprentice III",
	"Apprentice IV",
	"Guru I",
	"Guru II",
	"Master",
	"Enlightened I",
	"Enlightened II",
	"Burned",
}

// Table maps each non-retired level to a review delay in whole days.
// The retired level is implicit: it equals the number of entries.
type Table struct {
	days []int
}

// NewTable validates days and returns a Table. Delays must be non-negative
// and non-decreasing by level.
func NewTable(days []int) (Table, error) {
	if len(days) == 0 {
		return Table{}, fmt.Errorf("%w: no levels", ErrInvalidTable)
	}
	for i, d := range days {
		if d < 0 {
			return Table{}, fmt.Errorf("%w: level %d has negative delay %d", ErrInvalidTable, i, d)
		}
		if i > 0 && d < days[i-1] {
			return Table{}, fmt.Errorf("%w: level %d delay %d is shorter than level %d", ErrInvalidTable, i, d, i-1)
		}
	}
	cp := make([]int, len(days))
	copy(cp, days)
	return Table{days: cp}, nil
}

// MustTable is like NewTable but panics on an invalid table.
func MustTable(days []int) Table {
	t, err := NewTable(days)
	if err != nil {
		panic(err)
	}
	return t
}

// MaxLevel returns the retired level.
func (t Table) MaxLevel() Level {
	return Level(len(t.days))
}

// IntervalDays returns the delay for level. ok is false for the retired level.
func (t Table) IntervalDays(level Level) (days int, ok bool) {
	level = t.clamp(level)
	if level == t.MaxLevel() {
		return 0, false
	}
	return t.days[level], true
}

// Days returns a copy of the configured delays.
func (t Table) Days() []int {
	cp := make([]int, len(t.days))
	copy(cp, t.days)
	return cp
}

// LevelName returns a display name for level.
func (t Table) LevelName(level Level) string {
	level = t.clamp(level)
	if len(t.days)+1 == len(defaultLevelNames) {
		return defaultLevelNames[level]
	}
	if level == t.MaxLevel() {
		return "Retired"
	}
	return fmt.Sprintf("Level %d", level)
}

func (t Table) clamp(level Level) Level {
	if level < 0 {
		return 0
	}
	if level > t.MaxLevel() {
		return t.MaxLevel()
	}
	return level
}

// Transition is the outcome of one grading event.
type Transition struct {
	From    Level
	To      Level
	Days    int // delay until the next review; 0 when retired
	Retired bool
}

// DueAt returns the next due time. Retired transitions have no due time and
// return the zero time.
func (tr Transition) DueAt(now time.Time) time.Time {
	if tr.Retired {
		return time.Time{}
	}
	return now.AddDate(0, 0, tr.Days)
}

// Advance computes the next level for a grade. Success moves one level up,
// capped at MaxLevel; failure resets to 0. Out-of-range input levels are
// clamped first, so the function is total.
func (t Table) Advance(level Level, success bool) Transition {
	level = t.clamp(level)

	next := Level(0)
	if success {
		next = min(level+1, t.MaxLevel())
	}

	tr := Transition{From: level, To: next}
	if next == t.MaxLevel() {
		tr.Retired = true
		return tr
	}
	tr.Days = t.days[next]
	return tr
}

// Advance applies DefaultTable.Advance.
func Advance(level Level, success bool) Transition {
	return DefaultTable.Advance(level, success)
}
