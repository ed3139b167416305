// Package distractor picks plausible wrong options for multiple-choice
// questions.
package distractor

import (
	"github.com/Lolmantran/vietlearn/internal/vocab"
)

// Shuffler permutes n elements through swap. *rand.Rand satisfies it.
type Shuffler interface {
	Shuffle(n int, swap func(i, j int))
}

// Choice is one option shown to the learner. ID is the canonical identifier
// of the item the option text was taken from.
type Choice struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// Select returns up to count choices: the correct item's answer plus
// count-1 distractors taken from pool, shuffled by s.
//
// Distractors are searched outward from the correct item's position in pool,
// alternating backward and forward. Within that neighborhood, items sharing a
// tag with the correct item come first. Remaining pool members fill any gap
// in pool order. Answers equal to the correct answer or to an already chosen
// answer are skipped. If the pool runs out the result is shorter than count.
func Select(correct vocab.Item, pool []vocab.Item, count int, s Shuffler) []Choice {
	if count <= 0 {
		return nil
	}

	choices := make([]Choice, 0, count)
	choices = append(choices, Choice{ID: correct.ID, Text: correct.Answer})
	seen := map[string]bool{vocab.NormalizeAnswer(correct.Answer): true}
	used := map[int]bool{}

	take := func(i int) bool {
		if len(choices) >= count || used[i] {
			return false
		}
		it := pool[i]
		used[i] = true
		if it.ID == correct.ID {
			return false
		}
		key := vocab.NormalizeAnswer(it.Answer)
		if key == "" || seen[key] {
			return false
		}
		seen[key] = true
		choices = append(choices, Choice{ID: it.ID, Text: it.Answer})
		return true
	}

	neighbors := neighborhood(pool, correct.ID, 2*(count-1))

	for _, i := range neighbors {
		if correct.SharesTag(pool[i]) {
			take(i)
		}
	}
	for _, i := range neighbors {
		take(i)
	}
	for i := range pool {
		take(i)
	}

	if s != nil {
		s.Shuffle(len(choices), func(i, j int) {
			choices[i], choices[j] = choices[j], choices[i]
		})
	}
	return choices
}

// neighborhood returns pool indexes ordered by distance from the item with
// the given ID, backward before forward, up to radius positions away on each
// side. It is empty when the item is not in the pool.
func neighborhood(pool []vocab.Item, id string, radius int) []int {
	pos := -1
	for i, it := range pool {
		if it.ID == id {
			pos = i
			break
		}
	}
	if pos < 0 {
		return nil
	}

	var out []int
	for d := 1; d <= radius; d++ {
		if b := pos - d; b >= 0 {
			out = append(out, b)
		}
		if f := pos + d; f < len(pool) {
			out = append(out, f)
		}
		if pos-d < 0 && pos+d >= len(pool) {
			break
		}
	}
	return out
}
