package badge

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// TerminalStyle is the badge style for a level label in terminal output.
func TerminalStyle(label string) lipgloss.Style {
	c := LevelClass(label)
	return lipgloss.NewStyle().
		Bold(true).
		Padding(0, 1).
		Foreground(lipgloss.Color(c.Foreground)).
		Background(lipgloss.Color(c.Hex))
}

// ScoreStyle colors a score by its alert band.
func ScoreStyle(score int) lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ScoreClass(score).Hex()))
}

// GaugeCells is how many of width cells a score fills.
func GaugeCells(score, width int) int {
	if width <= 0 {
		return 0
	}
	return int(math.Round(Gauge(score).Fraction * float64(width)))
}

// TerminalGauge renders the score as a horizontal bar of width cells.
func TerminalGauge(score, width int) string {
	filled := GaugeCells(score, width)
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	bar := ScoreStyle(score).Render(strings.Repeat("█", filled)) +
		lipgloss.NewStyle().Foreground(lipgloss.Color("238")).Render(strings.Repeat("░", width-filled))
	return "[" + bar + "]"
}
