package web

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"auditor/internal/audit"
	"auditor/internal/metrics"
	"auditor/internal/session"
)

type fakeBackend struct {
	analyzeCalls int
	analyze      func(audit.AuditRequest) (audit.AuditReport, error)
	projects     []audit.StoredProject
	listErr      error
	byID         map[string]audit.StoredProject
	getErr       error
}

func (f *fakeBackend) Analyze(_ context.Context, req audit.AuditRequest) (audit.AuditReport, error) {
	f.analyzeCalls++
	if f.analyze == nil {
		return audit.AuditReport{}, errors.New("no analyzer")
	}
	return f.analyze(req)
}

func (f *fakeBackend) ListProjects(context.Context) ([]audit.StoredProject, error) {
	return f.projects, f.listErr
}

func (f *fakeBackend) GetProject(_ context.Context, id string) (audit.StoredProject, error) {
	if f.getErr != nil {
		return audit.StoredProject{}, f.getErr
	}
	p, ok := f.byID[id]
	if !ok {
		return audit.StoredProject{}, fmt.Errorf("get %s: %w", id, audit.ErrNotFound)
	}
	return p, nil
}

func faceIDReport() audit.AuditReport {
	return audit.AuditReport{
		ProjectName:      "Face ID Kiosk",
		OverallRiskScore: 82,
		RiskLevel:        "kritik",
		Summary:          "Biometric data is collected without consent.",
		Risks: []audit.RiskItem{{
			RiskType:       "Privacy",
			Severity:       "Kritik",
			Description:    "Faces are stored indefinitely.",
			Recommendation: "Define a retention policy.",
		}},
	}
}

func newTestServer(t *testing.T, backend *fakeBackend) *httptest.Server {
	t.Helper()
	s, err := New(Options{Backend: backend, Gatherer: prometheus.NewRegistry()})
	require.NoError(t, err)
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)
	return srv
}

func get(t *testing.T, srv *httptest.Server, path string) (*http.Response, string) {
	t.Helper()
	resp, err := srv.Client().Get(srv.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func postForm(t *testing.T, srv *httptest.Server, form url.Values) (*http.Response, string) {
	t.Helper()
	resp, err := srv.Client().PostForm(srv.URL+"/analyze", form)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func TestNewRequiresBackend(t *testing.T) {
	_, err := New(Options{})
	require.Error(t, err)
}

func TestIndexRendersEmptyForm(t *testing.T) {
	srv := newTestServer(t, &fakeBackend{})
	resp, body := get(t, srv, "/")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
	assert.Contains(t, body, `action="/analyze"`)
	assert.Contains(t, body, "Start analysis")
	assert.NotContains(t, body, `class="card report"`)
	assert.NotContains(t, body, `class="risk-card"`)
}

func TestAnalyzeShowsReport(t *testing.T) {
	backend := &fakeBackend{analyze: func(req audit.AuditRequest) (audit.AuditReport, error) {
		assert.Equal(t, "Face ID Kiosk", req.ProjectName)
		assert.Equal(t, "Retail", req.Industry)
		return faceIDReport(), nil
	}}
	srv := newTestServer(t, backend)

	resp, body := postForm(t, srv, url.Values{
		"project_name": {"Face ID Kiosk"},
		"industry":     {"Retail"},
		"description":  {"Kiosk that identifies shoppers by face."},
	})

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, backend.analyzeCalls)
	assert.Contains(t, body, "bg-red-600 text-white")
	assert.Contains(t, body, "82/100")
	assert.Contains(t, body, `stroke-dashoffset="56.52"`)
	assert.Contains(t, body, "text-red-600")
	assert.Equal(t, 1, strings.Count(body, `class="risk-card"`))
	assert.Contains(t, body, "Define a retention policy.")
	// form values survive the round trip
	assert.Contains(t, body, `value="Face ID Kiosk"`)
	assert.Contains(t, body, "Kiosk that identifies shoppers by face.")
}

func TestAnalyzeEmptyDescriptionNeverCallsBackend(t *testing.T) {
	backend := &fakeBackend{}
	srv := newTestServer(t, backend)

	resp, body := postForm(t, srv, url.Values{"project_name": {"Nameless"}})

	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Zero(t, backend.analyzeCalls)
	assert.Contains(t, body, "A description is required.")
	assert.Contains(t, body, `value="Nameless"`)
}

func TestAnalyzeFailureShowsGenericMessage(t *testing.T) {
	backend := &fakeBackend{analyze: func(audit.AuditRequest) (audit.AuditReport, error) {
		return audit.AuditReport{}, errors.New("dial tcp 127.0.0.1:8000: connection refused")
	}}
	srv := newTestServer(t, backend)

	resp, body := postForm(t, srv, url.Values{"description": {"anything"}})

	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Contains(t, body, session.SubmitFailedMessage)
	assert.NotContains(t, body, "connection refused")
	assert.NotContains(t, body, `class="card report"`)
	assert.NotContains(t, body, `class="risk-card"`)
}

func TestAnalyzeEscapesBackendContent(t *testing.T) {
	backend := &fakeBackend{analyze: func(audit.AuditRequest) (audit.AuditReport, error) {
		r := faceIDReport()
		r.Summary = "<script>alert(1)</script>"
		return r, nil
	}}
	srv := newTestServer(t, backend)

	_, body := postForm(t, srv, url.Values{"description": {"x"}})
	assert.NotContains(t, body, "<script>alert(1)</script>")
	assert.Contains(t, body, "&lt;script&gt;")
}

func TestHistoryEmptyAndErrorLookTheSame(t *testing.T) {
	empty := newTestServer(t, &fakeBackend{projects: []audit.StoredProject{}})
	failing := newTestServer(t, &fakeBackend{listErr: errors.New("backend down")})

	respEmpty, bodyEmpty := get(t, empty, "/history")
	respFail, bodyFail := get(t, failing, "/history")

	assert.Equal(t, http.StatusOK, respEmpty.StatusCode)
	assert.Equal(t, http.StatusOK, respFail.StatusCode)
	assert.Contains(t, bodyEmpty, session.EmptyHistoryMessage)
	assert.Equal(t, bodyEmpty, bodyFail)
}

func TestHistoryListKeepsOrder(t *testing.T) {
	created := time.Date(2025, 3, 9, 12, 5, 0, 0, time.UTC)
	backend := &fakeBackend{projects: []audit.StoredProject{
		{ID: "7", Name: "Loan Scorer", RiskLevel: "yüksek", RiskScore: 65, CreatedAt: created},
		{ID: "3", Name: "Chat Helper", RiskLevel: "düşük", RiskScore: 12, CreatedAt: created},
	}}
	srv := newTestServer(t, backend)

	_, body := get(t, srv, "/history")

	assert.Equal(t, 2, strings.Count(body, `class="project-row"`))
	assert.Less(t, strings.Index(body, "Loan Scorer"), strings.Index(body, "Chat Helper"))
	assert.Contains(t, body, `href="/history/7"`)
	assert.Contains(t, body, "bg-orange-500 text-white")
	assert.Contains(t, body, "bg-green-600 text-white")
	assert.Contains(t, body, "09.03.2025")
}

func TestEnglishLabelsRenderAsUnknown(t *testing.T) {
	backend := &fakeBackend{analyze: func(audit.AuditRequest) (audit.AuditReport, error) {
		r := faceIDReport()
		r.RiskLevel = "Critical"
		r.Risks[0].Severity = "High"
		return r, nil
	}}
	srv := newTestServer(t, backend)

	_, body := postForm(t, srv, url.Values{"description": {"x"}})

	assert.Contains(t, body, `badge bg-gray-500">Critical`)
	assert.Contains(t, body, `badge bg-gray-500">High`)
	assert.NotContains(t, body, "bg-red-600 text-white")
	assert.NotContains(t, body, "bg-orange-500 text-white")
}

func TestDetailLoaded(t *testing.T) {
	report := faceIDReport()
	// the record's own level and score win over the embedded report's
	report.RiskLevel = "orta"
	report.OverallRiskScore = 30
	backend := &fakeBackend{byID: map[string]audit.StoredProject{
		"42": {ID: "42", Name: "Face ID Kiosk", Description: "Kiosk", RiskLevel: "Kritik", RiskScore: 82, AuditReport: report},
	}}
	srv := newTestServer(t, backend)

	resp, body := get(t, srv, "/history/42")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "#42")
	assert.Contains(t, body, "Faces are stored indefinitely.")
	assert.Equal(t, 1, strings.Count(body, `class="risk-card"`))
	assert.Contains(t, body, `badge bg-red-600 text-white">Kritik`)
	assert.Contains(t, body, `stroke-dashoffset="56.52"`)
	assert.NotContains(t, body, "bg-yellow-500 text-black")
}

func TestDetailNotFoundAndErrorBothShowNotFound(t *testing.T) {
	missing := newTestServer(t, &fakeBackend{})
	failing := newTestServer(t, &fakeBackend{getErr: errors.New("timeout")})

	resp, body := get(t, missing, "/history/999")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, body, session.NotFoundMessage)

	resp, body = get(t, failing, "/history/1")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, body, session.NotFoundMessage)
	assert.NotContains(t, body, "timeout")
}

func TestGauge(t *testing.T) {
	srv := newTestServer(t, &fakeBackend{})

	resp, body := get(t, srv, "/gauge/82.svg")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/svg+xml", resp.Header.Get("Content-Type"))
	assert.Contains(t, body, `stroke-dashoffset="56.52"`)

	resp, _ = get(t, srv, "/gauge/140.svg")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = get(t, srv, "/gauge/abc.svg")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t, &fakeBackend{})
	resp, body := get(t, srv, "/healthz")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok","version":"dev"}`, body)
}

func TestMetricsExposeViewTransitions(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	s, err := New(Options{
		Backend:  &fakeBackend{projects: []audit.StoredProject{}},
		Session:  session.Options{Observer: m},
		Gatherer: reg,
	})
	require.NoError(t, err)
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)

	get(t, srv, "/history")
	_, body := get(t, srv, "/metrics")
	assert.Contains(t, body, `auditor_view_transitions_total{state="loaded",view="history_list"}`)
}

func TestMethodNotAllowed(t *testing.T) {
	srv := newTestServer(t, &fakeBackend{})
	resp, err := srv.Client().Post(srv.URL+"/history", "text/plain", strings.NewReader("x"))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestListenAndServeStopsOnCancel(t *testing.T) {
	s, err := New(Options{Backend: &fakeBackend{}, Gatherer: prometheus.NewRegistry()})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.ListenAndServe(ctx, "127.0.0.1:0") }()
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
