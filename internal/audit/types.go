package audit

import (
	"errors"
	"time"
)

var (
	// ErrEmptyDescription is the only client-side validation failure for a request.
	ErrEmptyDescription = errors.New("description is required")
	// ErrNotFound reports that a stored project does not exist on the backend.
	ErrNotFound = errors.New("project not found")
)

// AuditRequest is an immutable snapshot of the submission form.
// The With* helpers return a copy so an in-flight request never observes later edits.
type AuditRequest struct {
	ProjectName string `json:"project_name" yaml:"project_name"`
	Industry    string `json:"industry" yaml:"industry"`
	Description string `json:"description" yaml:"description"`
}

func (r AuditRequest) WithProjectName(v string) AuditRequest {
	r.ProjectName = v
	return r
}

func (r AuditRequest) WithIndustry(v string) AuditRequest {
	r.Industry = v
	return r
}

func (r AuditRequest) WithDescription(v string) AuditRequest {
	r.Description = v
	return r
}

// Validate only checks that a description is present; the other fields are free text.
func (r AuditRequest) Validate() error {
	if r.Description == "" {
		return ErrEmptyDescription
	}
	return nil
}

type RiskItem struct {
	RiskType       string `json:"risk_type" yaml:"risk_type"`
	Severity       string `json:"severity" yaml:"severity"`
	Description    string `json:"description" yaml:"description"`
	Recommendation string `json:"recommendation" yaml:"recommendation"`
}

// Level parses the item severity against the canonical set.
func (r RiskItem) Level() Level {
	return ParseLevel(r.Severity)
}

// AuditReport is a fresh analysis result. Risks are kept in the order the backend sent them.
type AuditReport struct {
	ProjectName      string     `json:"project_name" yaml:"project_name"`
	OverallRiskScore int        `json:"overall_risk_score" yaml:"overall_risk_score"`
	RiskLevel        string     `json:"risk_level" yaml:"risk_level"`
	Summary          string     `json:"summary" yaml:"summary"`
	Risks            []RiskItem `json:"risks" yaml:"risks"`
}

func (r AuditReport) Level() Level {
	return ParseLevel(r.RiskLevel)
}

// StoredProject is one history record. AuditReport holds the embedded report; its
// Risks slice is never nil after decoding but may be empty.
type StoredProject struct {
	ID          string      `json:"id" yaml:"id"`
	Name        string      `json:"name" yaml:"name"`
	Description string      `json:"description" yaml:"description"`
	Status      string      `json:"status,omitempty" yaml:"status,omitempty"`
	RiskLevel   string      `json:"risk_level" yaml:"risk_level"`
	RiskScore   int         `json:"risk_score" yaml:"risk_score"`
	CreatedAt   time.Time   `json:"created_at" yaml:"created_at"`
	AuditReport AuditReport `json:"audit_report" yaml:"audit_report"`
}

func (p StoredProject) Level() Level {
	return ParseLevel(p.RiskLevel)
}

// Report returns the embedded report under the record's own level and score,
// which are what the history list showed. The embedded name and level are
// used only when the record left them blank.
func (p StoredProject) Report() AuditReport {
	r := p.AuditReport
	if p.Name != "" {
		r.ProjectName = p.Name
	}
	if p.RiskLevel != "" {
		r.RiskLevel = p.RiskLevel
	}
	r.OverallRiskScore = p.RiskScore
	if r.Risks == nil {
		r.Risks = []RiskItem{}
	}
	return r
}
