package theme

import (
	"charm.land/lipgloss/v2"

	"github.com/Lolmantran/vietlearn/internal/rewards"
	"github.com/Lolmantran/vietlearn/internal/spacedrep"
)

// Color palette
var (
	Primary   = lipgloss.Color("#8B5CF6") // Vivid Purple
	Secondary = lipgloss.Color("#14B8A6") // Teal
	Accent    = lipgloss.Color("#F97316") // Orange
	Success   = lipgloss.Color("#22C55E") // Green
	Error     = lipgloss.Color("#F43F5E") // Rose
	Warning   = lipgloss.Color("#EAB308") // Amber
	Text      = lipgloss.Color("#F8FAFC") // White
	TextDim   = lipgloss.Color("#94A3B8") // Slate
	Border    = lipgloss.Color("#334155") // Slate
)

// Typography
var (
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary)

	Prompt = lipgloss.NewStyle().
		Bold(true).
		Foreground(Text)

	Hint = lipgloss.NewStyle().
		Foreground(TextDim).
		Italic(true)
)

// Layout
var (
	Card = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Border).
		Padding(0, 2)
)

// States
var (
	Correct = lipgloss.NewStyle().
		Foreground(Success).
		Bold(true)

	Incorrect = lipgloss.NewStyle().
			Foreground(Error).
			Bold(true)

	Warn = lipgloss.NewStyle().
		Foreground(Warning)

	Option = lipgloss.NewStyle().
		Foreground(Secondary)
)

// Components
var (
	ProgressFilled = lipgloss.NewStyle().
			Foreground(Secondary)

	ProgressEmpty = lipgloss.NewStyle().
			Foreground(Border)
)

// Status returns the style for a schedule status.
func Status(s spacedrep.ReviewStatus) lipgloss.Style {
	switch s {
	case spacedrep.ReviewOverdue:
		return Incorrect
	case spacedrep.ReviewDue:
		return Warn
	case spacedrep.ReviewRetired:
		return Hint
	case spacedrep.ReviewNew:
		return Option
	default:
		return lipgloss.NewStyle().Foreground(Text)
	}
}

// Rarity returns the style for a reward rarity.
func Rarity(r rewards.Rarity) lipgloss.Style {
	switch r {
	case rewards.RarityLegendary:
		return lipgloss.NewStyle().Foreground(Accent).Bold(true)
	case rewards.RarityEpic:
		return lipgloss.NewStyle().Foreground(Primary).Bold(true)
	case rewards.RarityRare:
		return lipgloss.NewStyle().Foreground(Secondary)
	default:
		return lipgloss.NewStyle().Foreground(TextDim)
	}
}

// Bar renders a width-cell progress bar filled to pct percent.
func Bar(pct, width int) string {
	if width <= 0 {
		return ""
	}
	pct = max(0, min(pct, 100))
	filled := pct * width / 100
	bar := ""
	for i := 0; i < width; i++ {
		if i < filled {
			bar += ProgressFilled.Render("█")
		} else {
			bar += ProgressEmpty.Render("░")
		}
	}
	return bar
}
