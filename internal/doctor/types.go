package doctor

type Status string

const (
	StatusPass Status = "pass"
	StatusWarn Status = "warning"
	StatusFail Status = "fail"
)

// CheckResult is one self-check. IDs are dotted: config.load, api.url, api.reachable, locale, log.writable.
type CheckResult struct {
	ID       string            `json:"id"`
	Status   Status            `json:"status"`
	Message  string            `json:"message"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

type Summary struct {
	Pass    int `json:"pass"`
	Warning int `json:"warning"`
	Fail    int `json:"fail"`
}

type Report struct {
	Checks   []CheckResult `json:"checks"`
	Warnings []string      `json:"warnings,omitempty"`
	Errors   []string      `json:"errors,omitempty"`
	Summary  Summary       `json:"summary"`
}

// Check returns the result with the given id.
func (r Report) Check(id string) (CheckResult, bool) {
	for _, chk := range r.Checks {
		if chk.ID == id {
			return chk, true
		}
	}
	return CheckResult{}, false
}

// Failed reports whether any check failed, or, when strict, whether any warned.
func (r Report) Failed(strict bool) bool {
	if r.Summary.Fail > 0 {
		return true
	}
	return strict && r.Summary.Warning > 0
}
