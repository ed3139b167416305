package session

import (
	"testing"

	"github.com/Lolmantran/vietlearn/internal/spacedrep"
	"github.com/Lolmantran/vietlearn/internal/vocab"
)

func workingSetFixture() ([]vocab.Item, []spacedrep.Schedule) {
	catalog := []vocab.Item{
		{ID: "new1", Tags: []string{"food"}},
		{ID: "due-old", Tags: []string{"food"}},
		{ID: "new2"},
		{ID: "waiting"},
		{ID: "due-recent"},
		{ID: "burned"},
		{ID: "new3"},
	}
	schedules := []spacedrep.Schedule{
		{ItemID: "due-old", Level: 2, LastReviewedAt: t0.AddDate(0, 0, -6), DueAt: t0.AddDate(0, 0, -4), ReviewCount: 2},
		{ItemID: "due-recent", Level: 1, LastReviewedAt: t0.AddDate(0, 0, -2), DueAt: t0.AddDate(0, 0, -1), ReviewCount: 1},
		{ItemID: "waiting", Level: 3, LastReviewedAt: t0, DueAt: t0.AddDate(0, 0, 4), ReviewCount: 3},
		{ItemID: "burned", Level: spacedrep.RetiredLevel, Retired: true, ReviewCount: 9},
	}
	return catalog, schedules
}

func itemIDs(items []vocab.Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}

func TestSelectWorkingSet_Modes(t *testing.T) {
	catalog, schedules := workingSetFixture()
	tests := []struct {
		name string
		c    vocab.Criteria
		want []string
	}{
		{"due", vocab.Criteria{Mode: vocab.ModeDue}, []string{"due-old", "due-recent"}},
		{"new", vocab.Criteria{Mode: vocab.ModeNew}, []string{"new1", "new2", "new3"}},
		{"mixed capped new", vocab.Criteria{Mode: vocab.ModeMixed, NewLimit: 1}, []string{"due-old", "due-recent", "new1"}},
		{"all", vocab.Criteria{Mode: vocab.ModeAll}, []string{"due-old", "due-recent", "new1", "new2", "new3", "waiting"}},
		{"all with retired", vocab.Criteria{Mode: vocab.ModeAll, IncludeRetired: true}, []string{"due-old", "due-recent", "new1", "new2", "new3", "waiting", "burned"}},
		{"retired ignored outside all", vocab.Criteria{Mode: vocab.ModeDue, IncludeRetired: true}, []string{"due-old", "due-recent"}},
		{"limit", vocab.Criteria{Mode: vocab.ModeAll, Limit: 3}, []string{"due-old", "due-recent", "new1"}},
		{"tags", vocab.Criteria{Mode: vocab.ModeMixed, Tags: []string{"food"}}, []string{"due-old", "new1"}},
	}
	for _, tt := range tests {
		tt.c.Now = t0
		got := itemIDs(SelectWorkingSet(catalog, schedules, tt.c))
		if len(got) != len(tt.want) {
			t.Errorf("%s: got %v, want %v", tt.name, got, tt.want)
			continue
		}
		for i := range tt.want {
			if got[i] != tt.want[i] {
				t.Errorf("%s: got %v, want %v", tt.name, got, tt.want)
				break
			}
		}
	}
}
