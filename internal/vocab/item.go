// Package vocab defines the learnable items studied in review and quiz
// sessions and the criteria used to pick them.
package vocab

import (
	"fmt"
	"slices"
	"strings"
)

// Item is one unit of study content, typically a vocabulary entry.
type Item struct {
	ID     string   `json:"id" yaml:"id"`
	Prompt string   `json:"prompt" yaml:"prompt"`
	Answer string   `json:"answer" yaml:"answer"`
	Tags   []string `json:"tags,omitempty" yaml:"tags,omitempty"`
}

// Validate checks that the item can take part in a session.
func (it Item) Validate() error {
	if strings.TrimSpace(it.ID) == "" {
		return fmt.Errorf("%w: item has empty id", ErrInvalidDeck)
	}
	if strings.TrimSpace(it.Prompt) == "" {
		return fmt.Errorf("%w: item %q has empty prompt", ErrInvalidDeck, it.ID)
	}
	if strings.TrimSpace(it.Answer) == "" {
		return fmt.Errorf("%w: item %q has empty answer", ErrInvalidDeck, it.ID)
	}
	return nil
}

// HasTag reports whether the item carries tag (case-insensitive).
func (it Item) HasTag(tag string) bool {
	return slices.ContainsFunc(it.Tags, func(t string) bool {
		return strings.EqualFold(t, tag)
	})
}

// SharesTag reports whether the two items have at least one tag in common.
func (it Item) SharesTag(other Item) bool {
	for _, t := range it.Tags {
		if other.HasTag(t) {
			return true
		}
	}
	return false
}

// NormalizeAnswer folds an answer to the form used for equality checks:
// surrounding whitespace removed, lower-cased.
func NormalizeAnswer(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// AnswersEqual reports whether two answers are equal after normalization.
func AnswersEqual(a, b string) bool {
	return NormalizeAnswer(a) == NormalizeAnswer(b)
}
