package report

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"auditor/internal/badge"
	"auditor/internal/sanitize"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	fixStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
)

func renderText(d document, opts Options) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(sanitize.Inline(d.Title)) + "\n")
	if d.ID != "" || d.Date != "" {
		b.WriteString(mutedStyle.Render(fmt.Sprintf("#%s  %s", sanitize.Inline(d.ID), d.Date)) + "\n")
	}
	if strings.TrimSpace(d.Description) != "" {
		b.WriteString(mutedStyle.Render(sanitize.Terminal(d.Description)) + "\n")
	}
	b.WriteString("\n")

	level := badge.LevelClass(d.Level)
	b.WriteString(fmt.Sprintf("Risk level  %s %s\n",
		badge.TerminalStyle(d.Level).Render(strings.ToUpper(level.Name)),
		sanitize.Inline(d.Level),
	))
	b.WriteString(fmt.Sprintf("Risk score  %s %s\n",
		badge.ScoreStyle(d.Score).Render(fmt.Sprintf("%d/100", d.Score)),
		badge.TerminalGauge(d.Score, opts.gaugeWidth()),
	))
	b.WriteString("\n")

	if strings.TrimSpace(d.Summary) != "" {
		b.WriteString(sanitize.Terminal(d.Summary) + "\n\n")
	}

	if len(d.Risks) == 0 {
		b.WriteString("No risks were reported.\n")
		return b.String()
	}
	b.WriteString(fmt.Sprintf("Risks (%d)\n", len(d.Risks)))
	for i, r := range d.Risks {
		b.WriteString(fmt.Sprintf("\n%d. %s %s\n", i+1,
			badge.TerminalStyle(r.Severity).Render(strings.ToUpper(badge.LevelClass(r.Severity).Name)),
			sanitize.Inline(r.RiskType),
		))
		if strings.TrimSpace(r.Description) != "" {
			b.WriteString(indent(sanitize.Terminal(r.Description), "   ") + "\n")
		}
		if strings.TrimSpace(r.Recommendation) != "" {
			b.WriteString(indent(fixStyle.Render("-> "+sanitize.Terminal(r.Recommendation)), "   ") + "\n")
		}
	}
	return b.String()
}

func indent(s, prefix string) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	for i, line := range lines {
		lines[i] = prefix + line
	}
	return strings.Join(lines, "\n")
}
