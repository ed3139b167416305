package store

import (
	"time"

	"github.com/Lolmantran/vietlearn/internal/spacedrep"
)

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit     int       // max results (0 = unlimited)
	After     int64     // sequence > After
	Before    int64     // sequence < Before
	From      time.Time // timestamp >= From
	To        time.Time // timestamp <= To
	SessionID string    // exact match when set
}

// ReviewEvent is one persisted grade.
type ReviewEvent struct {
	Sequence  int64
	Timestamp time.Time
	LearnerID string
	SessionID string
	ItemID    string
	Rating    spacedrep.Rating
	PrevLevel spacedrep.Level
	NewLevel  spacedrep.Level
	DueAt     time.Time
	Retired   bool
}

// QuizEventData captures the data for a single quiz answer event.
type QuizEventData struct {
	LearnerID string
	SessionID string
	ItemID    string
	Mode      string
	Given     string
	Expected  string
	Correct   bool
	At        time.Time
}
