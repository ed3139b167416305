package vocab

import (
	"testing"
)

func TestAnswersEqual(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{"Hello", "hello", true},
		{"  thank you ", "Thank You", true},
		{"hello", "hallo", false},
		{"", "  ", true},
	}
	for _, tt := range tests {
		if got := AnswersEqual(tt.a, tt.b); got != tt.want {
			t.Errorf("AnswersEqual(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestItem_SharesTag(t *testing.T) {
	a := Item{ID: "a", Tags: []string{"Food", "noun"}}
	b := Item{ID: "b", Tags: []string{"food"}}
	c := Item{ID: "c", Tags: []string{"verb"}}
	if !a.SharesTag(b) {
		t.Error("expected a and b to share a tag")
	}
	if a.SharesTag(c) {
		t.Error("expected a and c to share no tag")
	}
	if a.SharesTag(Item{}) {
		t.Error("untagged item shares no tag")
	}
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"due", ModeDue, false},
		{" NEW ", ModeNew, false},
		{"", ModeMixed, false},
		{"all", ModeAll, false},
		{"random", "", true},
	}
	for _, tt := range tests {
		got, err := ParseMode(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseMode(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseMode(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCriteria_MatchesTagsAndCap(t *testing.T) {
	c := Criteria{LearnerID: "me", Mode: ModeAll, Tags: []string{"food"}, Limit: 1}
	if err := c.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if !c.MatchesTags(Item{Tags: []string{"FOOD"}}) {
		t.Error("expected tag match")
	}
	if c.MatchesTags(Item{}) {
		t.Error("untagged item should not match a tag filter")
	}
	if got := c.Capped([]Item{{ID: "a"}, {ID: "b"}}); len(got) != 1 {
		t.Errorf("Capped len = %d, want 1", len(got))
	}

	if err := (Criteria{Mode: ModeDue}).Validate(); err == nil {
		t.Error("expected error for missing learner")
	}
}
