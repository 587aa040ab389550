// Package session holds the view state machines shared by the terminal and web
// front ends: one submission, one history list, one history detail. Each machine
// owns its fetched data; nothing is shared between them.
package session

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"auditor/internal/audit"
	"auditor/internal/logging"
)

// User-facing text. Raw causes go to the log, never to the screen.
const (
	SubmitFailedMessage = "Could not get an analysis from the audit server. Make sure the backend is running and try again."
	NotFoundMessage     = "Project not found."
	EmptyHistoryMessage = "No audits yet."
)

// Outcome is the tagged result of a backend call. Views may render some variants
// identically; the distinction is kept for logs and metrics.
type Outcome string

const (
	OutcomeNone           Outcome = ""
	OutcomeOK             Outcome = "ok"
	OutcomeNotFound       Outcome = "not_found"
	OutcomeTransportError Outcome = "transport_error"
)

// Classify maps a backend error to its Outcome.
func Classify(err error) Outcome {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, audit.ErrNotFound):
		return OutcomeNotFound
	default:
		return OutcomeTransportError
	}
}

// Analyzer runs one analysis.
type Analyzer interface {
	Analyze(ctx context.Context, req audit.AuditRequest) (audit.AuditReport, error)
}

// Lister fetches the stored history.
type Lister interface {
	ListProjects(ctx context.Context) ([]audit.StoredProject, error)
}

// Getter fetches one stored project.
type Getter interface {
	GetProject(ctx context.Context, id string) (audit.StoredProject, error)
}

// Observer receives every state change. *metrics.Metrics satisfies it.
type Observer interface {
	ObserveTransition(view, state string)
}

type Options struct {
	Logger   *zap.Logger
	Observer Observer
}

func (o Options) logger() *zap.Logger {
	return logging.OrNop(o.Logger)
}

func (o Options) observe(view, state string) {
	if o.Observer != nil {
		o.Observer.ObserveTransition(view, state)
	}
}
