// Package client talks to the audit backend over HTTP/JSON.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"auditor/internal/audit"
	"auditor/internal/logging"
	"auditor/internal/metrics"
	"auditor/internal/redact"
	"auditor/internal/version"
)

// MaxBodyBytes caps every response body read from the backend.
const MaxBodyBytes = 4 << 20

const (
	OpAnalyze = "analyze"
	OpList    = "list_projects"
	OpGet     = "get_project"
	OpPing    = "ping"
)

type Options struct {
	BaseURL string
	// Timeout bounds each call. Zero means no client-side timeout.
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *zap.Logger
	Metrics    *metrics.Metrics
	UserAgent  string
}

// Client implements the three backend operations plus a root ping.
// It is safe for concurrent use.
type Client struct {
	baseURL   string
	timeout   time.Duration
	http      *http.Client
	logger    *zap.Logger
	metrics   *metrics.Metrics
	userAgent string
}

func New(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)}
	}
	userAgent := strings.TrimSpace(opts.UserAgent)
	if userAgent == "" {
		userAgent = "auditor/" + version.Version
	}
	return &Client{
		baseURL:   strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/"),
		timeout:   opts.Timeout,
		http:      httpClient,
		logger:    logging.OrNop(opts.Logger),
		metrics:   opts.Metrics,
		userAgent: userAgent,
	}
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// Analyze posts req to /audit/analyze. An empty description fails before any request is made.
func (c *Client) Analyze(ctx context.Context, req audit.AuditRequest) (report audit.AuditReport, err error) {
	if err := req.Validate(); err != nil {
		return audit.AuditReport{}, err
	}
	defer c.observe(OpAnalyze, time.Now(), &err)

	body, err := json.Marshal(req)
	if err != nil {
		return audit.AuditReport{}, fmt.Errorf("marshal audit request: %w", err)
	}
	data, err := c.do(ctx, OpAnalyze, http.MethodPost, "/audit/analyze", body)
	if err != nil {
		return audit.AuditReport{}, err
	}
	return audit.DecodeReport(data)
}

// ListProjects fetches the stored audit history in backend order. Records that
// fail to decode are logged and left out.
func (c *Client) ListProjects(ctx context.Context) (projects []audit.StoredProject, err error) {
	defer c.observe(OpList, time.Now(), &err)

	data, err := c.do(ctx, OpList, http.MethodGet, "/projects/", nil)
	if err != nil {
		return nil, err
	}
	projects, skipped, err := audit.DecodeProjects(data)
	if err != nil {
		return nil, err
	}
	for _, de := range skipped {
		c.logger.Warn("skipping undecodable project record", zap.String("op", OpList), zap.Error(de))
	}
	return projects, nil
}

// GetProject fetches one stored project. A blank id or a 404 yields an error
// matching audit.ErrNotFound.
func (c *Client) GetProject(ctx context.Context, id string) (project audit.StoredProject, err error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return audit.StoredProject{}, fmt.Errorf("get project: empty id: %w", audit.ErrNotFound)
	}
	defer c.observe(OpGet, time.Now(), &err)

	data, err := c.do(ctx, OpGet, http.MethodGet, "/projects/"+url.PathEscape(id), nil)
	if err != nil {
		return audit.StoredProject{}, err
	}
	return audit.DecodeProject(data)
}

// Ping calls the backend root and returns its greeting message.
func (c *Client) Ping(ctx context.Context) (msg string, err error) {
	defer c.observe(OpPing, time.Now(), &err)

	data, err := c.do(ctx, OpPing, http.MethodGet, "/", nil)
	if err != nil {
		return "", err
	}
	var out struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return "", &audit.DecodeError{Shape: "ping response", Err: err}
	}
	return out.Message, nil
}

func (c *Client) do(ctx context.Context, op, method, path string, body []byte) ([]byte, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", op, err)
	}
	requestID := uuid.NewString()
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", c.userAgent)
	httpReq.Header.Set("X-Request-ID", requestID)
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		c.logger.Warn("backend request failed",
			zap.String("op", op),
			zap.String("method", method),
			zap.String("path", path),
			zap.String("request_id", requestID),
			zap.Duration("duration", time.Since(start)),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%s request: %w", op, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxBodyBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", op, err)
	}
	if len(data) > MaxBodyBytes {
		return nil, fmt.Errorf("%s response exceeds %d bytes", op, MaxBodyBytes)
	}

	c.logger.Debug("backend request",
		zap.String("op", op),
		zap.String("method", method),
		zap.String("path", path),
		zap.String("request_id", requestID),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		statusErr := &StatusError{Op: op, StatusCode: resp.StatusCode, Body: truncate(redact.Text(string(data)), 1000)}
		c.logger.Warn("backend returned error status",
			zap.String("op", op),
			zap.String("request_id", requestID),
			zap.Int("status", resp.StatusCode),
			zap.String("body", statusErr.Body),
		)
		return nil, statusErr
	}
	return data, nil
}

func (c *Client) observe(op string, start time.Time, errp *error) {
	c.metrics.ObserveRequest(op, Outcome(*errp), time.Since(start))
}

// Outcome labels err for metrics: ok, not_found, http_error, decode_error or transport_error.
func Outcome(err error) string {
	if err == nil {
		return "ok"
	}
	if errors.Is(err, audit.ErrNotFound) {
		return "not_found"
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return "http_error"
	}
	var decodeErr *audit.DecodeError
	if errors.As(err, &decodeErr) {
		return "decode_error"
	}
	return "transport_error"
}

// truncate keeps at most n runes of s.
func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n]) + "..."
}
