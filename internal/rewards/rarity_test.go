package rewards

import "testing"

func TestAccuracyRarity(t *testing.T) {
	tests := []struct {
		accuracy float64
		want     Rarity
	}{
		{0.0, RarityCommon},
		{0.3, RarityCommon},
		{0.49, RarityCommon},
		{0.50, RarityRare},
		{0.74, RarityRare},
		{0.75, RarityEpic},
		{0.89, RarityEpic},
		{0.90, RarityLegendary},
		{1.0, RarityLegendary},
	}

	for _, tt := range tests {
		got := AccuracyRarity(tt.accuracy)
		if got != tt.want {
			t.Errorf("AccuracyRarity(%.2f) = %q, want %q", tt.accuracy, got, tt.want)
		}
	}
}

func TestRarityDisplayName(t *testing.T) {
	for _, r := range []Rarity{RarityCommon, RarityRare, RarityEpic, RarityLegendary} {
		if r.DisplayName() == string(r) {
			t.Errorf("DisplayName(%q) should be capitalized", r)
		}
	}
}
