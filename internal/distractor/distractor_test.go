package distractor

import (
	"math/rand/v2"
	"testing"

	"github.com/Lolmantran/vietlearn/internal/vocab"
)

// noShuffle leaves the choices in selection order.
type noShuffle struct{}

func (noShuffle) Shuffle(int, func(i, j int)) {}

func item(id, answer string, tags ...string) vocab.Item {
	return vocab.Item{ID: id, Prompt: "p-" + id, Answer: answer, Tags: tags}
}

func ids(choices []Choice) []string {
	out := make([]string, len(choices))
	for i, c := range choices {
		out[i] = c.ID
	}
	return out
}

func assertExclusive(t *testing.T, correct vocab.Item, choices []Choice) {
	t.Helper()
	seen := map[string]bool{}
	found := 0
	for _, c := range choices {
		key := vocab.NormalizeAnswer(c.Text)
		if seen[key] {
			t.Errorf("duplicate answer %q in %v", c.Text, choices)
		}
		seen[key] = true
		if c.ID == correct.ID {
			found++
		}
	}
	if found != 1 {
		t.Errorf("correct answer appears %d times, want 1", found)
	}
}

func TestSelect_PoolOfFive(t *testing.T) {
	pool := []vocab.Item{
		item("a", "one"), item("b", "two"), item("c", "three"), item("d", "four"), item("e", "five"),
	}
	got := Select(pool[2], pool, 4, rand.New(rand.NewPCG(1, 0)))
	if len(got) != 4 {
		t.Fatalf("len = %d, want 4", len(got))
	}
	assertExclusive(t, pool[2], got)
}

func TestSelect_NearestNeighborOrder(t *testing.T) {
	pool := []vocab.Item{
		item("a", "one"), item("b", "two"), item("c", "three"), item("d", "four"), item("e", "five"),
	}
	got := ids(Select(pool[2], pool, 3, noShuffle{}))
	want := []string{"c", "b", "d"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got %v, want %v", got, want)
			break
		}
	}
}

func TestSelect_PrefersSharedTags(t *testing.T) {
	pool := []vocab.Item{
		item("a", "apple", "food"),
		item("b", "run", "verb"),
		item("c", "rice", "food"),
		item("d", "walk", "verb"),
		item("e", "noodle", "food"),
	}
	got := ids(Select(pool[2], pool, 3, noShuffle{}))
	want := []string{"c", "a", "e"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestSelect_FallsBackBeyondNeighborhood(t *testing.T) {
	pool := []vocab.Item{item("x", "same")}
	for i := 0; i < 6; i++ {
		pool = append(pool, item(string(rune('a'+i)), "same"))
	}
	pool = append(pool, item("far", "different"))

	// Radius for count 2 is 2; "far" sits 7 positions away.
	got := Select(pool[0], pool, 2, noShuffle{})
	if len(got) != 2 || got[1].ID != "far" {
		t.Errorf("got %v, want fallback to far", got)
	}
}

func TestSelect_ExcludesEqualAnswers(t *testing.T) {
	pool := []vocab.Item{
		item("a", "Hello"),
		item("b", " hello "),
		item("c", "hi"),
		item("d", "HI"),
		item("e", "hey"),
	}
	got := Select(pool[0], pool, 4, noShuffle{})
	assertExclusive(t, pool[0], got)
	if len(got) != 3 {
		t.Errorf("len = %d, want 3 (only hi and hey are distinct)", len(got))
	}
}

func TestSelect_ShortPool(t *testing.T) {
	pool := []vocab.Item{item("a", "one"), item("b", "two")}
	got := Select(pool[0], pool, 4, rand.New(rand.NewPCG(7, 0)))
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	assertExclusive(t, pool[0], got)

	got = Select(pool[0], pool[:1], 4, nil)
	if len(got) != 1 || got[0].ID != "a" {
		t.Errorf("got %v, want only the correct choice", got)
	}
}

func TestSelect_CorrectNotInPool(t *testing.T) {
	correct := item("z", "zero")
	pool := []vocab.Item{item("a", "one"), item("b", "two"), item("c", "three")}
	got := ids(Select(correct, pool, 3, noShuffle{}))
	want := []string{"z", "a", "b"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestSelect_Deterministic(t *testing.T) {
	pool := []vocab.Item{
		item("a", "one"), item("b", "two"), item("c", "three"), item("d", "four"), item("e", "five"),
	}
	first := ids(Select(pool[1], pool, 4, rand.New(rand.NewPCG(42, 0))))
	second := ids(Select(pool[1], pool, 4, rand.New(rand.NewPCG(42, 0))))
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("same seed gave %v and %v", first, second)
		}
	}
}

func TestSelect_ExclusiveForAnyPool(t *testing.T) {
	r := rand.New(rand.NewPCG(3, 0))
	answers := []string{"a", "b", "c", "A", "b ", "d"}
	for trial := 0; trial < 200; trial++ {
		n := r.IntN(8) + 1
		pool := make([]vocab.Item, n)
		for i := range pool {
			pool[i] = item(string(rune('a'+i)), answers[r.IntN(len(answers))])
		}
		correct := pool[r.IntN(n)]
		got := Select(correct, pool, r.IntN(5)+1, r)
		assertExclusive(t, correct, got)
	}
}
