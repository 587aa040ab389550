package web

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"auditor/internal/audit"
	"auditor/internal/badge"
	"auditor/internal/session"
	"auditor/internal/version"
)

type submitPage struct {
	View    session.SubmissionView
	Invalid bool
}

type historyPage struct {
	View    session.HistoryListView
	Message string
}

type detailPage struct {
	View    session.HistoryDetailView
	Message string
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	sub := session.NewSubmission(s.session)
	defer sub.Close()
	s.render(w, http.StatusOK, "submit", submitPage{View: sub.View()})
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxFormBytes)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	sub := session.NewSubmission(s.session)
	defer sub.Close()
	sub.SetRequest(audit.AuditRequest{
		ProjectName: r.PostForm.Get("project_name"),
		Industry:    r.PostForm.Get("industry"),
		Description: r.PostForm.Get("description"),
	})

	view, ok := sub.Run(r.Context(), s.backend)
	recordOutcome(r, view.Outcome)
	switch {
	case !ok:
		s.render(w, http.StatusUnprocessableEntity, "submit", submitPage{View: view, Invalid: true})
	case view.State == session.SubmitFailed:
		s.render(w, http.StatusBadGateway, "submit", submitPage{View: view})
	default:
		s.render(w, http.StatusOK, "submit", submitPage{View: view})
	}
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	list := session.NewHistoryList(s.session)
	defer list.Close()
	view := list.Load(r.Context(), s.backend)
	recordOutcome(r, view.Outcome)
	s.render(w, http.StatusOK, "history", historyPage{View: view, Message: session.EmptyHistoryMessage})
}

func (s *Server) handleDetail(w http.ResponseWriter, r *http.Request) {
	detail := session.NewHistoryDetail(mux.Vars(r)["id"], s.session)
	defer detail.Close()
	view := detail.Load(r.Context(), s.backend)
	recordOutcome(r, view.Outcome)
	status := http.StatusOK
	if view.State == session.DetailNotFound {
		status = http.StatusNotFound
	}
	s.render(w, status, "detail", detailPage{View: view, Message: session.NotFoundMessage})
}

func (s *Server) handleGauge(w http.ResponseWriter, r *http.Request) {
	score, err := strconv.Atoi(mux.Vars(r)["score"])
	if err != nil || score < audit.MinScore || score > audit.MaxScore {
		http.Error(w, "score must be between 0 and 100", http.StatusBadRequest)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	_, _ = w.Write([]byte(badge.RenderGaugeSVG(score)))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{
		"status":  "ok",
		"version": version.Version,
	})
}

func (s *Server) render(w http.ResponseWriter, status int, page string, data any) {
	var buf bytes.Buffer
	if err := s.pages[page].ExecuteTemplate(&buf, "layout", data); err != nil {
		s.logger.Error("render page", zap.String("page", page), zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

// TraceIDHeader echoes the request's trace id.
const TraceIDHeader = "X-Trace-ID"

func traceIDHeader(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if sc := trace.SpanFromContext(r.Context()).SpanContext(); sc.HasTraceID() {
			w.Header().Set(TraceIDHeader, sc.TraceID().String())
		}
		next.ServeHTTP(w, r)
	})
}

// recordOutcome tags the request span with the view outcome so traces keep the
// not-found vs transport-error distinction the pages collapse.
func recordOutcome(r *http.Request, outcome session.Outcome) {
	trace.SpanFromContext(r.Context()).SetAttributes(attribute.String("auditor.outcome", string(outcome)))
}

func secureHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		if !strings.HasPrefix(r.URL.Path, "/gauge/") {
			w.Header().Set("Content-Security-Policy", "default-src 'self'; style-src 'self' 'unsafe-inline'; frame-ancestors 'none'")
		}
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Debug("web request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)),
		)
	})
}
