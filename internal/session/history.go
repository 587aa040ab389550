package session

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"auditor/internal/audit"
)

const (
	historyListView   = "history_list"
	historyDetailView = "history_detail"
)

type ListState string

const (
	ListLoading ListState = "loading"
	ListLoaded  ListState = "loaded"
	ListErrored ListState = "errored"
)

// ListDisplay is what the history list shows. An errored load displays as empty.
type ListDisplay string

const (
	DisplayLoading ListDisplay = "loading"
	DisplayEmpty   ListDisplay = "empty"
	DisplayList    ListDisplay = "list"
)

type HistoryListView struct {
	State    ListState
	Display  ListDisplay
	Projects []audit.StoredProject
	Outcome  Outcome
}

// HistoryList is a single-shot loader: loading -> loaded|errored.
type HistoryList struct {
	mu       sync.Mutex
	opts     Options
	state    ListState
	projects []audit.StoredProject
	outcome  Outcome
	closed   bool
}

func NewHistoryList(opts Options) *HistoryList {
	opts.observe(historyListView, string(ListLoading))
	return &HistoryList{opts: opts, state: ListLoading}
}

// Resolve applies the fetch result once. Later calls, and calls after Close, return false.
func (h *HistoryList) Resolve(projects []audit.StoredProject, err error) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed || h.state != ListLoading {
		h.opts.logger().Debug("dropping stale history list response")
		return false
	}
	h.outcome = Classify(err)
	if err != nil {
		h.opts.logger().Warn("history list fetch failed", zap.Error(err))
		h.projects = []audit.StoredProject{}
		h.state = ListErrored
	} else {
		if projects == nil {
			projects = []audit.StoredProject{}
		}
		h.projects = projects
		h.state = ListLoaded
	}
	h.opts.observe(historyListView, string(h.state))
	return true
}

func (h *HistoryList) Close() {
	h.mu.Lock()
	h.closed = true
	h.mu.Unlock()
}

func (h *HistoryList) View() HistoryListView {
	h.mu.Lock()
	defer h.mu.Unlock()
	v := HistoryListView{State: h.state, Projects: h.projects, Outcome: h.outcome}
	switch {
	case h.state == ListLoading:
		v.Display = DisplayLoading
	case len(h.projects) == 0:
		v.Display = DisplayEmpty
	default:
		v.Display = DisplayList
	}
	return v
}

// Load fetches and resolves synchronously.
func (h *HistoryList) Load(ctx context.Context, l Lister) HistoryListView {
	projects, err := l.ListProjects(ctx)
	h.Resolve(projects, err)
	return h.View()
}

type DetailState string

const (
	DetailLoading  DetailState = "loading"
	DetailLoaded   DetailState = "loaded"
	DetailNotFound DetailState = "not_found"
)

type HistoryDetailView struct {
	ID      string
	State   DetailState
	Project audit.StoredProject
	// Report is the embedded report with the record's name, score and level filled in.
	Report  audit.AuditReport
	Outcome Outcome
}

// HistoryDetail is a single-shot loader keyed by id: loading -> loaded|not_found.
// Backend absence and any other failure both end in not_found.
type HistoryDetail struct {
	mu      sync.Mutex
	opts    Options
	id      string
	state   DetailState
	project audit.StoredProject
	outcome Outcome
	closed  bool
}

func NewHistoryDetail(id string, opts Options) *HistoryDetail {
	opts.observe(historyDetailView, string(DetailLoading))
	return &HistoryDetail{opts: opts, id: id, state: DetailLoading}
}

func (d *HistoryDetail) ID() string {
	return d.id
}

func (d *HistoryDetail) Resolve(project audit.StoredProject, err error) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed || d.state != DetailLoading {
		d.opts.logger().Debug("dropping stale history detail response", zap.String("id", d.id))
		return false
	}
	d.outcome = Classify(err)
	if err != nil {
		d.opts.logger().Warn("history detail fetch failed",
			zap.String("id", d.id),
			zap.String("outcome", string(d.outcome)),
			zap.Error(err),
		)
		d.state = DetailNotFound
	} else {
		d.project = project
		d.state = DetailLoaded
	}
	d.opts.observe(historyDetailView, string(d.state))
	return true
}

func (d *HistoryDetail) Close() {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()
}

func (d *HistoryDetail) View() HistoryDetailView {
	d.mu.Lock()
	defer d.mu.Unlock()
	v := HistoryDetailView{ID: d.id, State: d.state, Outcome: d.outcome}
	if d.state == DetailLoaded {
		v.Project = d.project
		v.Report = d.project.Report()
	}
	return v
}

func (d *HistoryDetail) Load(ctx context.Context, g Getter) HistoryDetailView {
	project, err := g.GetProject(ctx, d.id)
	d.Resolve(project, err)
	return d.View()
}
