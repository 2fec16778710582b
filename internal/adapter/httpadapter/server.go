package httpadapter

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/bike-rental-report/internal/observability"
	"github.com/couchcryptid/bike-rental-report/internal/report"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// DatasetProvider returns the loaded dataset, or nil before the first load.
type DatasetProvider interface {
	Dataset() *report.Dataset
}

// Summarizer computes the four summary tables for a filter.
type Summarizer interface {
	Summarize(spec report.FilterSpec) report.Summary
}

// Server exposes the report API plus health, readiness, and metrics endpoints.
type Server struct {
	httpServer *http.Server
	data       DatasetProvider
	summarizer Summarizer
	pageSize   int
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// Options groups the collaborators the report routes need.
type Options struct {
	Addr       string
	Ready      sharedobs.ReadinessChecker
	Data       DatasetProvider
	Summarizer Summarizer
	PageSize   int
	Metrics    *observability.Metrics
	Logger     *slog.Logger

	// RateLimitRPS caps /api requests per second. Zero disables limiting.
	RateLimitRPS   float64
	RateLimitBurst int
}

// NewServer creates an HTTP server with the /api report routes and the
// /healthz, /readyz, and /metrics operational routes.
func NewServer(opts Options) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         opts.Addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		data:       opts.Data,
		summarizer: opts.Summarizer,
		pageSize:   opts.PageSize,
		metrics:    opts.Metrics,
		logger:     opts.Logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(opts.Ready))
	mux.Handle("GET /metrics", promhttp.Handler())

	api := http.NewServeMux()
	api.HandleFunc("GET /api/records", s.handleRecords)
	api.HandleFunc("GET /api/filters", s.handleFilters)
	api.HandleFunc("GET /api/summary", s.handleSummary)
	api.HandleFunc("GET /api/summary/{table}", s.handleSummaryTable)
	api.HandleFunc("GET /api/describe", s.handleDescribe)

	var apiHandler http.Handler = api
	if opts.RateLimitRPS > 0 {
		apiHandler = newRateLimiter(opts.RateLimitRPS, opts.RateLimitBurst, opts.Metrics, opts.Logger).handler(api)
	}
	mux.Handle("/api/", apiHandler)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}
