package session

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"auditor/internal/audit"
)

const submissionView = "submission"

type SubmitState string

const (
	SubmitIdle       SubmitState = "idle"
	SubmitSubmitting SubmitState = "submitting"
	SubmitSucceeded  SubmitState = "succeeded"
	SubmitFailed     SubmitState = "failed"
)

// Panel is the single result area of the submission view.
type Panel string

const (
	PanelEmpty  Panel = "empty"
	PanelResult Panel = "result"
	PanelError  Panel = "error"
)

// Ticket identifies one dispatch. A response carrying an older ticket is stale.
type Ticket uint64

// Dispatch is the snapshot handed to the backend when a submission starts.
type Dispatch struct {
	Ticket  Ticket
	Request audit.AuditRequest
}

// SubmissionView is a read-only copy of the machine for rendering.
type SubmissionView struct {
	Request   audit.AuditRequest
	State     SubmitState
	Panel     Panel
	Busy      bool
	CanSubmit bool
	Report    audit.AuditReport
	Error     string
	Outcome   Outcome
}

// Submission is the audit form state machine:
//
//	idle|succeeded|failed -> submitting -> succeeded|failed
//
// At most one request is in flight. Edits rebuild the request value, so a
// dispatched snapshot never sees later typing.
type Submission struct {
	mu      sync.Mutex
	opts    Options
	request audit.AuditRequest
	state   SubmitState
	report  audit.AuditReport
	errMsg  string
	outcome Outcome
	ticket  Ticket
	closed  bool
}

func NewSubmission(opts Options) *Submission {
	return &Submission{opts: opts, state: SubmitIdle}
}

func (s *Submission) SetProjectName(v string) {
	s.mu.Lock()
	s.request = s.request.WithProjectName(v)
	s.mu.Unlock()
}

func (s *Submission) SetIndustry(v string) {
	s.mu.Lock()
	s.request = s.request.WithIndustry(v)
	s.mu.Unlock()
}

func (s *Submission) SetDescription(v string) {
	s.mu.Lock()
	s.request = s.request.WithDescription(v)
	s.mu.Unlock()
}

// SetRequest replaces all three fields at once.
func (s *Submission) SetRequest(req audit.AuditRequest) {
	s.mu.Lock()
	s.request = req
	s.mu.Unlock()
}

func (s *Submission) CanSubmit() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.canSubmitLocked()
}

func (s *Submission) canSubmitLocked() bool {
	return !s.closed && s.state != SubmitSubmitting && s.request.Validate() == nil
}

// Begin moves to submitting and returns the request snapshot to send. It
// returns false, and changes nothing, when submission is not allowed.
func (s *Submission) Begin() (Dispatch, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.canSubmitLocked() {
		return Dispatch{}, false
	}
	s.ticket++
	s.report = audit.AuditReport{}
	s.errMsg = ""
	s.outcome = OutcomeNone
	s.setStateLocked(SubmitSubmitting)
	return Dispatch{Ticket: s.ticket, Request: s.request}, true
}

// Resolve applies the response for ticket t. Responses for an older ticket, or
// arriving after Close, are dropped and Resolve returns false.
func (s *Submission) Resolve(t Ticket, report audit.AuditReport, err error) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || t != s.ticket || s.state != SubmitSubmitting {
		s.opts.logger().Debug("dropping stale analysis response", zap.Uint64("ticket", uint64(t)))
		return false
	}
	s.outcome = Classify(err)
	if err != nil {
		s.opts.logger().Warn("analysis failed", zap.Uint64("ticket", uint64(t)), zap.Error(err))
		s.errMsg = SubmitFailedMessage
		s.setStateLocked(SubmitFailed)
		return true
	}
	if report.Risks == nil {
		report.Risks = []audit.RiskItem{}
	}
	s.report = report
	s.setStateLocked(SubmitSucceeded)
	return true
}

// Close tears the view down. Any response still in flight is ignored.
func (s *Submission) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
}

func (s *Submission) View() SubmissionView {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := SubmissionView{
		Request:   s.request,
		State:     s.state,
		Busy:      s.state == SubmitSubmitting,
		CanSubmit: s.canSubmitLocked(),
		Outcome:   s.outcome,
		Panel:     PanelEmpty,
	}
	switch s.state {
	case SubmitSucceeded:
		v.Panel = PanelResult
		v.Report = s.report
	case SubmitFailed:
		v.Panel = PanelError
		v.Error = s.errMsg
	}
	return v
}

// Run performs one full submission synchronously. ok is false when the
// submission was not allowed and no request was made.
func (s *Submission) Run(ctx context.Context, a Analyzer) (view SubmissionView, ok bool) {
	d, ok := s.Begin()
	if !ok {
		return s.View(), false
	}
	report, err := a.Analyze(ctx, d.Request)
	s.Resolve(d.Ticket, report, err)
	return s.View(), true
}

func (s *Submission) setStateLocked(state SubmitState) {
	s.state = state
	s.opts.observe(submissionView, string(state))
}
