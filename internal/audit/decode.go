package audit

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	MinScore = 0
	MaxScore = 100
)

// DecodeError reports a backend payload that does not fit the expected shape.
type DecodeError struct {
	Shape  string
	Field  string
	Reason string
	Err    error
}

func (e *DecodeError) Error() string {
	var b strings.Builder
	b.WriteString("decode ")
	b.WriteString(e.Shape)
	if e.Field != "" {
		b.WriteString(": ")
		b.WriteString(e.Field)
	}
	if e.Reason != "" {
		b.WriteString(": ")
		b.WriteString(e.Reason)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

type reportWire struct {
	ProjectName      string     `json:"project_name"`
	OverallRiskScore *int       `json:"overall_risk_score"`
	RiskLevel        string     `json:"risk_level"`
	Summary          string     `json:"summary"`
	Risks            []RiskItem `json:"risks"`
}

type projectWire struct {
	ID          json.RawMessage `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Status      string          `json:"status"`
	RiskLevel   string          `json:"risk_level"`
	RiskScore   *int            `json:"risk_score"`
	CreatedAt   string          `json:"created_at"`
	AuditReport *reportWire     `json:"audit_report"`
}

// DecodeReport decodes an analysis response. A missing score or one outside
// [0,100] is rejected; absent or null risks decode to an empty slice.
func DecodeReport(data []byte) (AuditReport, error) {
	var w reportWire
	if err := unmarshal(data, &w); err != nil {
		return AuditReport{}, &DecodeError{Shape: "audit report", Err: err}
	}
	if w.OverallRiskScore == nil {
		return AuditReport{}, &DecodeError{Shape: "audit report", Field: "overall_risk_score", Reason: "missing"}
	}
	return w.toReport("audit report")
}

// DecodeProject decodes one stored project.
func DecodeProject(data []byte) (StoredProject, error) {
	var w projectWire
	if err := unmarshal(data, &w); err != nil {
		return StoredProject{}, &DecodeError{Shape: "stored project", Err: err}
	}
	return w.toProject()
}

// DecodeProjects decodes the history list. A null body decodes to an empty list.
// Only a body that is not a JSON array fails; a record that does not decode is
// left out and reported in skipped so the rest of the history stays browsable.
func DecodeProjects(data []byte) (projects []StoredProject, skipped []*DecodeError, err error) {
	var raws []json.RawMessage
	if err := unmarshal(data, &raws); err != nil {
		return nil, nil, &DecodeError{Shape: "project list", Err: err}
	}
	projects = make([]StoredProject, 0, len(raws))
	for i, raw := range raws {
		shape := fmt.Sprintf("project list[%d]", i)
		var w projectWire
		if err := json.Unmarshal(raw, &w); err != nil {
			skipped = append(skipped, &DecodeError{Shape: shape, Err: err})
			continue
		}
		p, err := w.toProject()
		if err != nil {
			var de *DecodeError
			if !errors.As(err, &de) {
				de = &DecodeError{Err: err}
			}
			de.Shape = shape
			skipped = append(skipped, de)
			continue
		}
		projects = append(projects, p)
	}
	return projects, skipped, nil
}

func unmarshal(data []byte, v any) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return errors.New("empty body")
	}
	return json.Unmarshal(data, v)
}

func (w reportWire) toReport(shape string) (AuditReport, error) {
	score := 0
	if w.OverallRiskScore != nil {
		score = *w.OverallRiskScore
	}
	if err := checkScore(shape, "overall_risk_score", score); err != nil {
		return AuditReport{}, err
	}
	risks := w.Risks
	if risks == nil {
		risks = []RiskItem{}
	}
	return AuditReport{
		ProjectName:      w.ProjectName,
		OverallRiskScore: score,
		RiskLevel:        w.RiskLevel,
		Summary:          w.Summary,
		Risks:            risks,
	}, nil
}

func (w projectWire) toProject() (StoredProject, error) {
	const shape = "stored project"
	id, err := decodeID(w.ID)
	if err != nil {
		return StoredProject{}, &DecodeError{Shape: shape, Field: "id", Err: err}
	}
	score := 0
	if w.RiskScore != nil {
		score = *w.RiskScore
	}
	if err := checkScore(shape, "risk_score", score); err != nil {
		return StoredProject{}, err
	}
	var created time.Time
	if strings.TrimSpace(w.CreatedAt) != "" {
		created, err = ParseTimestamp(w.CreatedAt)
		if err != nil {
			return StoredProject{}, &DecodeError{Shape: shape, Field: "created_at", Err: err}
		}
	}
	report := AuditReport{Risks: []RiskItem{}}
	if w.AuditReport != nil {
		report, err = w.AuditReport.toReport(shape + ".audit_report")
		if err != nil {
			return StoredProject{}, err
		}
	}
	return StoredProject{
		ID:          id,
		Name:        w.Name,
		Description: w.Description,
		Status:      w.Status,
		RiskLevel:   w.RiskLevel,
		RiskScore:   score,
		CreatedAt:   created,
		AuditReport: report,
	}, nil
}

func checkScore(shape, field string, score int) error {
	if score < MinScore || score > MaxScore {
		return &DecodeError{
			Shape:  shape,
			Field:  field,
			Reason: fmt.Sprintf("%d outside [%d,%d]", score, MinScore, MaxScore),
		}
	}
	return nil
}

// decodeID accepts a JSON number or string identifier.
func decodeID(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", errors.New("missing")
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", err
		}
		if strings.TrimSpace(s) == "" {
			return "", errors.New("empty")
		}
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", err
	}
	if _, err := strconv.ParseInt(n.String(), 10, 64); err != nil {
		return "", fmt.Errorf("not an integer: %s", n)
	}
	return n.String(), nil
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

// ParseTimestamp accepts RFC3339 and the naive ISO form (no zone, read as UTC).
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}
