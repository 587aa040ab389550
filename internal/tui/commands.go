package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"auditor/internal/audit"
	"auditor/internal/session"
)

// Each message carries the machine it was issued for. A machine that has been
// closed in the meantime rejects the result.

type analyzeDoneMsg struct {
	sub    *session.Submission
	ticket session.Ticket
	report audit.AuditReport
	err    error
}

type listLoadedMsg struct {
	list     *session.HistoryList
	projects []audit.StoredProject
	err      error
}

type detailLoadedMsg struct {
	detail  *session.HistoryDetail
	project audit.StoredProject
	err     error
}

func analyzeCmd(ctx context.Context, a session.Analyzer, sub *session.Submission, d session.Dispatch) tea.Cmd {
	return func() tea.Msg {
		report, err := a.Analyze(ctx, d.Request)
		return analyzeDoneMsg{sub: sub, ticket: d.Ticket, report: report, err: err}
	}
}

func listCmd(ctx context.Context, l session.Lister, list *session.HistoryList) tea.Cmd {
	return func() tea.Msg {
		projects, err := l.ListProjects(ctx)
		return listLoadedMsg{list: list, projects: projects, err: err}
	}
}

func detailCmd(ctx context.Context, g session.Getter, detail *session.HistoryDetail) tea.Cmd {
	return func() tea.Msg {
		project, err := g.GetProject(ctx, detail.ID())
		return detailLoadedMsg{detail: detail, project: project, err: err}
	}
}
