// Package session sequences review and quiz sittings over a fixed working
// set of items.
package session

// Phase represents the lifecycle phase of a session.
type Phase int

const (
	PhaseEmpty    Phase = iota // Started with no items; terminal
	PhaseActive                // Presenting items
	PhaseComplete              // Every item graded; terminal
)

func (p Phase) String() string {
	switch p {
	case PhaseEmpty:
		return "empty"
	case PhaseActive:
		return "active"
	case PhaseComplete:
		return "complete"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further items will be presented.
func (p Phase) Terminal() bool {
	return p == PhaseEmpty || p == PhaseComplete
}

// Progress reports how far a session has advanced.
type Progress struct {
	Done  int
	Total int
}

// Remaining returns the number of items not yet graded.
func (p Progress) Remaining() int {
	return p.Total - p.Done
}
