package client

import (
	"fmt"
	"net/http"

	"auditor/internal/audit"
)

// StatusError is a non-2xx backend response. Body is kept for logs only.
type StatusError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: backend returned HTTP %d", e.Op, e.StatusCode)
}

// Is makes a 404 match audit.ErrNotFound.
func (e *StatusError) Is(target error) bool {
	return target == audit.ErrNotFound && e.StatusCode == http.StatusNotFound
}
