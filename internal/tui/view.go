package tui

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"auditor/internal/audit"
	"auditor/internal/badge"
	"auditor/internal/report"
	"auditor/internal/sanitize"
	"auditor/internal/session"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	labelStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252"))
	focusStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("45"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	mutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229"))
	buttonStyle   = lipgloss.NewStyle().Bold(true).Padding(0, 2).
			Foreground(lipgloss.Color("#ffffff")).Background(lipgloss.Color("#2563eb"))
	disabledButtonStyle = lipgloss.NewStyle().Padding(0, 2).
				Foreground(lipgloss.Color("244")).Background(lipgloss.Color("236"))
)

func (m uiModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("AI Ethics Auditor"))
	b.WriteString(mutedStyle.Render("  " + string(m.screen)))
	b.WriteString("\n\n")

	switch m.screen {
	case screenHistory:
		b.WriteString(m.historyView())
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("up/down move | enter open | r reload | esc back | q quit"))
	case screenDetail:
		b.WriteString(m.detailView())
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("up/down scroll | esc back to list | q quit"))
	default:
		b.WriteString(m.submitView())
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("tab next field | ctrl+s analyze | ctrl+o history | ctrl+c quit"))
	}
	b.WriteString("\n")
	return b.String()
}

func (m uiModel) submitView() string {
	v := m.sub.View()
	var b strings.Builder

	b.WriteString(m.label("Project name", fieldName) + "\n" + m.name.View() + "\n\n")
	b.WriteString(m.label("Industry", fieldIndustry) + "\n" + m.industry.View() + "\n\n")
	b.WriteString(m.label("Description", fieldDescription) + "\n" + m.desc.View() + "\n\n")

	switch {
	case v.Busy:
		b.WriteString(m.spinner.View() + " Analyzing...")
	case v.CanSubmit:
		b.WriteString(buttonStyle.Render("Analyze (ctrl+s)"))
	default:
		b.WriteString(disabledButtonStyle.Render("Analyze (ctrl+s)"))
	}
	b.WriteString("\n\n")

	switch v.Panel {
	case session.PanelError:
		b.WriteString(errorStyle.Render(v.Error) + "\n")
	case session.PanelResult:
		b.WriteString(m.renderReport(v.Report))
	default:
		if !v.Busy {
			b.WriteString(mutedStyle.Render("Fill in the form and run an analysis to see the report here.") + "\n")
		}
	}
	return b.String()
}

func (m uiModel) label(text string, field int) string {
	if m.focus == field {
		return focusStyle.Render("> " + text)
	}
	return labelStyle.Render("  " + text)
}

func (m uiModel) renderReport(r audit.AuditReport) string {
	var buf bytes.Buffer
	if err := report.Render(&buf, report.FormatText, r, m.reportOpt); err != nil {
		return errorStyle.Render("render report: "+err.Error()) + "\n"
	}
	return buf.String()
}

func (m uiModel) historyView() string {
	v := m.list.View()
	switch v.Display {
	case session.DisplayLoading:
		return mutedStyle.Render("Loading...") + "\n"
	case session.DisplayEmpty:
		return mutedStyle.Render(session.EmptyHistoryMessage) + "\n"
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("%d audits\n\n", len(v.Projects)))
	for i, p := range v.Projects {
		cursor := "  "
		name := sanitize.Inline(p.Name)
		if name == "" {
			name = "Untitled project"
		}
		if i == m.cursor {
			cursor = "> "
			name = selectedStyle.Render(name)
		}
		b.WriteString(fmt.Sprintf("%s%s %s %s  %s\n",
			cursor,
			badge.TerminalStyle(p.RiskLevel).Render(strings.ToUpper(badge.LevelClass(p.RiskLevel).Name)),
			badge.ScoreStyle(p.RiskScore).Render(fmt.Sprintf("%3d", p.RiskScore)),
			name,
			mutedStyle.Render(audit.FormatDate(p.CreatedAt, m.reportOpt.Locale)),
		))
	}
	return b.String()
}

func (m uiModel) detailView() string {
	v := m.detail.View()
	switch v.State {
	case session.DetailLoading:
		return mutedStyle.Render("Loading...") + "\n"
	case session.DetailNotFound:
		return errorStyle.Render(session.NotFoundMessage) + "\n"
	}
	return m.viewport.View() + "\n"
}

func (m uiModel) detailContent() string {
	v := m.detail.View()
	var buf bytes.Buffer
	if err := report.RenderProject(&buf, report.FormatText, v.Project, m.reportOpt); err != nil {
		return errorStyle.Render("render report: " + err.Error())
	}
	return buf.String()
}
