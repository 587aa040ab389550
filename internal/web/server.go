// Package web serves the submission, history list and history detail views as
// server-rendered HTML. Each request builds its own view machine and closes it
// when the handler returns.
package web

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/Masterminds/sprig/v3"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"auditor/internal/audit"
	"auditor/internal/badge"
	"auditor/internal/logging"
	"auditor/internal/session"
)

//go:embed templates/*.html
var templateFS embed.FS

// MaxFormBytes caps the submitted form body.
const MaxFormBytes = 64 << 10

// Backend is everything the three views fetch from.
type Backend interface {
	session.Analyzer
	session.Lister
	session.Getter
}

type Options struct {
	Backend Backend
	Session session.Options
	Locale  string
	Logger  *zap.Logger
	// Gatherer backs /metrics. Nil uses the default prometheus registry.
	Gatherer prometheus.Gatherer
}

type Server struct {
	backend  Backend
	session  session.Options
	locale   string
	logger   *zap.Logger
	gatherer prometheus.Gatherer
	pages    map[string]*template.Template
	router   *mux.Router
}

func New(opts Options) (*Server, error) {
	if opts.Backend == nil {
		return nil, errors.New("web backend is required")
	}
	s := &Server{
		backend:  opts.Backend,
		session:  opts.Session,
		locale:   opts.Locale,
		logger:   logging.OrNop(opts.Logger),
		gatherer: opts.Gatherer,
	}
	if s.gatherer == nil {
		s.gatherer = prometheus.DefaultGatherer
	}
	if s.locale == "" {
		s.locale = audit.DefaultLocale
	}
	pages, err := parsePages(s.funcs())
	if err != nil {
		return nil, err
	}
	s.pages = pages
	s.router = s.routes()
	return s, nil
}

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/", s.handleIndex).Methods(http.MethodGet)
	r.HandleFunc("/analyze", s.handleAnalyze).Methods(http.MethodPost)
	r.HandleFunc("/history", s.handleHistory).Methods(http.MethodGet)
	r.HandleFunc("/history/{id}", s.handleDetail).Methods(http.MethodGet)
	r.HandleFunc("/gauge/{score:[0-9]+}.svg", s.handleGauge).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.Use(secureHeaders)
	r.Use(s.logRequests)
	return r
}

// Handler returns the instrumented root handler. Responses carry X-Trace-ID
// when a span is recording.
func (s *Server) Handler() http.Handler {
	return otelhttp.NewHandler(traceIDHeader(s.router), "auditor.web",
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return fmt.Sprintf("%s %s", r.Method, r.URL.Path)
		}),
		otelhttp.WithPropagators(otel.GetTextMapPropagator()),
	)
}

// ListenAndServe serves on addr until ctx is canceled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("web front end listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown web server: %w", err)
	}
	s.logger.Info("web front end stopped")
	return nil
}

func (s *Server) funcs() template.FuncMap {
	fm := sprig.FuncMap()
	fm["levelCSS"] = func(label string) string { return badge.LevelClass(label).CSS }
	fm["levelName"] = func(label string) string { return badge.LevelClass(label).Name }
	fm["alertCSS"] = func(score int) string { return badge.ScoreClass(score).CSS() }
	fm["gaugeSVG"] = func(score int) template.HTML { return template.HTML(badge.RenderGaugeSVG(score)) }
	fm["formatDate"] = func(t time.Time) string { return audit.FormatDate(t, s.locale) }
	return fm
}

func parsePages(funcs template.FuncMap) (map[string]*template.Template, error) {
	pages := map[string]*template.Template{}
	for _, page := range []string{"submit", "history", "detail"} {
		t, err := template.New(page).Funcs(funcs).ParseFS(templateFS,
			"templates/layout.html",
			"templates/report.html",
			"templates/"+page+".html",
		)
		if err != nil {
			return nil, fmt.Errorf("parse %s page: %w", page, err)
		}
		pages[page] = t
	}
	return pages, nil
}
