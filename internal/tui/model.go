package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"auditor/internal/audit"
	"auditor/internal/report"
	"auditor/internal/session"
)

type screen string

const (
	screenSubmit  screen = "submit"
	screenHistory screen = "history"
	screenDetail  screen = "detail"
)

const (
	fieldName = iota
	fieldIndustry
	fieldDescription
	fieldCount
)

// Backend is everything the three screens fetch from.
type Backend interface {
	session.Analyzer
	session.Lister
	session.Getter
}

// uiModel owns one view machine for the current screen. Leaving a screen closes
// its machine, so responses that arrive afterwards are dropped.
type uiModel struct {
	ctx       context.Context
	backend   Backend
	session   session.Options
	reportOpt report.Options

	screen screen

	sub      *session.Submission
	name     textinput.Model
	industry textinput.Model
	desc     textarea.Model
	focus    int
	spinner  spinner.Model

	list   *session.HistoryList
	cursor int

	detail   *session.HistoryDetail
	viewport viewport.Model

	width  int
	height int
}

func newModel(opts Options) uiModel {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	name := textinput.New()
	name.Placeholder = "e.g. Customer face analysis"
	name.CharLimit = 200
	name.Prompt = ""
	name.Focus()

	industry := textinput.New()
	industry.Placeholder = "e.g. Retail, Healthcare, Finance"
	industry.CharLimit = 120
	industry.Prompt = ""

	desc := textarea.New()
	desc.Placeholder = "Describe what the system does, which data it collects and how it is used."
	desc.ShowLineNumbers = false
	desc.CharLimit = 0
	desc.SetWidth(72)
	desc.SetHeight(6)

	m := uiModel{
		ctx:       ctx,
		backend:   opts.Backend,
		session:   opts.Session,
		reportOpt: report.Options{Locale: opts.Locale, GaugeWidth: 24, Unredacted: true},
		screen:    screenSubmit,
		sub:       session.NewSubmission(opts.Session),
		name:      name,
		industry:  industry,
		desc:      desc,
		spinner:   spinner.New(spinner.WithSpinner(spinner.Dot)),
		viewport:  viewport.New(80, 20),
		width:     80,
		height:    24,
	}
	return m
}

func (m uiModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m uiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		if msg.Width > 20 {
			m.width = msg.Width
			m.desc.SetWidth(min(msg.Width-4, 100))
			m.viewport.Width = msg.Width
		}
		if msg.Height > 10 {
			m.height = msg.Height
			m.viewport.Height = msg.Height - 4
		}
		return m, nil
	case analyzeDoneMsg:
		msg.sub.Resolve(msg.ticket, msg.report, msg.err)
		return m, nil
	case listLoadedMsg:
		if msg.list.Resolve(msg.projects, msg.err) && msg.list == m.list {
			m.cursor = 0
		}
		return m, nil
	case detailLoadedMsg:
		if msg.detail.Resolve(msg.project, msg.err) && msg.detail == m.detail {
			m.viewport.SetContent(m.detailContent())
			m.viewport.GotoTop()
		}
		return m, nil
	case spinner.TickMsg:
		if m.screen != screenSubmit || !m.sub.View().Busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.screen {
		case screenHistory:
			return m.updateHistory(msg)
		case screenDetail:
			return m.updateDetail(msg)
		default:
			return m.updateSubmit(msg)
		}
	}
	if m.screen == screenSubmit {
		return m.updateInputs(msg)
	}
	return m, nil
}

func (m uiModel) updateSubmit(msg tea.KeyMsg) (uiModel, tea.Cmd) {
	switch msg.String() {
	case "tab":
		cmd := m.setFocus((m.focus + 1) % fieldCount)
		return m, cmd
	case "shift+tab":
		cmd := m.setFocus((m.focus + fieldCount - 1) % fieldCount)
		return m, cmd
	case "enter":
		if m.focus != fieldDescription {
			cmd := m.setFocus(m.focus + 1)
			return m, cmd
		}
	case "ctrl+s":
		return m.submit()
	case "ctrl+o", "f2":
		return m.openHistory()
	}
	return m.updateInputs(msg)
}

func (m uiModel) updateInputs(msg tea.Msg) (uiModel, tea.Cmd) {
	var cmd tea.Cmd
	switch m.focus {
	case fieldName:
		m.name, cmd = m.name.Update(msg)
	case fieldIndustry:
		m.industry, cmd = m.industry.Update(msg)
	default:
		m.desc, cmd = m.desc.Update(msg)
	}
	m.sub.SetRequest(m.request())
	return m, cmd
}

func (m uiModel) updateHistory(msg tea.KeyMsg) (uiModel, tea.Cmd) {
	v := m.list.View()
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "esc", "b":
		return m.openSubmit()
	case "r":
		return m.openHistory()
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(v.Projects)-1 {
			m.cursor++
		}
	case "enter":
		if v.Display == session.DisplayList && m.cursor < len(v.Projects) {
			return m.openDetail(v.Projects[m.cursor].ID)
		}
	}
	return m, nil
}

func (m uiModel) updateDetail(msg tea.KeyMsg) (uiModel, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "esc", "b", "backspace":
		return m.openHistory()
	}
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m uiModel) request() audit.AuditRequest {
	return audit.AuditRequest{
		ProjectName: m.name.Value(),
		Industry:    m.industry.Value(),
		Description: m.desc.Value(),
	}
}

func (m *uiModel) setFocus(field int) tea.Cmd {
	m.focus = field
	m.name.Blur()
	m.industry.Blur()
	m.desc.Blur()
	switch field {
	case fieldName:
		return m.name.Focus()
	case fieldIndustry:
		return m.industry.Focus()
	default:
		return m.desc.Focus()
	}
}

func (m uiModel) submit() (uiModel, tea.Cmd) {
	m.sub.SetRequest(m.request())
	d, ok := m.sub.Begin()
	if !ok {
		return m, nil
	}
	return m, tea.Batch(m.spinner.Tick, analyzeCmd(m.ctx, m.backend, m.sub, d))
}

// leave closes the machine of the current screen.
func (m *uiModel) leave() {
	switch m.screen {
	case screenSubmit:
		m.sub.Close()
	case screenHistory:
		m.list.Close()
	case screenDetail:
		m.detail.Close()
	}
}

func (m uiModel) openSubmit() (uiModel, tea.Cmd) {
	m.leave()
	m.screen = screenSubmit
	m.sub = session.NewSubmission(m.session)
	m.sub.SetRequest(m.request())
	cmd := m.setFocus(m.focus)
	return m, cmd
}

func (m uiModel) openHistory() (uiModel, tea.Cmd) {
	m.leave()
	m.screen = screenHistory
	m.list = session.NewHistoryList(m.session)
	m.cursor = 0
	return m, listCmd(m.ctx, m.backend, m.list)
}

func (m uiModel) openDetail(id string) (uiModel, tea.Cmd) {
	m.leave()
	m.screen = screenDetail
	m.detail = session.NewHistoryDetail(id, m.session)
	m.viewport.SetContent("")
	return m, detailCmd(m.ctx, m.backend, m.detail)
}
