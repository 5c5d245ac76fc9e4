// Package server is the HTTP surface of the status service: the report
// endpoint, listing pass-through, health, metrics and the static pages.
//
// Usage:
//
//	srv := server.New(svc, status, server.Options{AllowedOrigins: []string{"*"}},
//		server.WithMetrics(m), server.WithLogger(logging.New("http")))
//	http.ListenAndServe(":3000", srv.Handler())
package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"voxlis/internal/logging"
	"voxlis/internal/metrics"
	"voxlis/internal/pipeline"
)

// StatusSource serves the single-entry and version pass-through endpoints.
// *upstream.StatusClient satisfies it.
type StatusSource interface {
	Exploit(ctx context.Context, name string) (json.RawMessage, error)
	RobloxVersion(ctx context.Context) (json.RawMessage, error)
}

// Options are the HTTP-level settings taken from configuration.
type Options struct {
	AllowedOrigins  []string
	PublicDir       string
	APIPerMinute    int
	StrictPerMinute int
}

// Option configures a Server.
type Option func(*Server)

// WithMetrics records every request and serves /metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Server) { s.metrics = m }
}

// WithLogger sets the request logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithClock overrides time.Now for health timestamps and rate limiting.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// Server holds the handlers and their dependencies.
type Server struct {
	svc     *pipeline.Service
	status  StatusSource
	opts    Options
	metrics *metrics.Metrics
	logger  *slog.Logger
	now     func() time.Time

	api    *limiter
	strict *limiter
}

// New builds a Server. Zero rate limits fall back to 30 and 10 per minute.
func New(svc *pipeline.Service, status StatusSource, opts Options, options ...Option) *Server {
	if opts.APIPerMinute <= 0 {
		opts.APIPerMinute = 30
	}
	if opts.StrictPerMinute <= 0 {
		opts.StrictPerMinute = 10
	}
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"*"}
	}
	s := &Server{
		svc:    svc,
		status: status,
		opts:   opts,
		logger: logging.Discard(),
		now:    time.Now,
	}
	for _, o := range options {
		o(s)
	}
	s.api = newLimiter(opts.APIPerMinute, "Too many requests", s.now)
	s.strict = newLimiter(opts.StrictPerMinute, "Rate limit exceeded", s.now)
	return s
}

// Handler returns the full middleware-wrapped router.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	uncTest := getOnly(s.strict.wrap(http.HandlerFunc(s.handleUncTest)))
	exploit := getOnly(s.strict.wrap(http.HandlerFunc(s.handleExploit)))
	mux.Handle("/api/unc-test/{name}", uncTest)
	mux.Handle("/api/unc-test/{$}", uncTest)
	mux.Handle("/api/exploits", getOnly(s.api.wrap(http.HandlerFunc(s.handleExploits))))
	mux.Handle("/api/exploit/{name}", exploit)
	mux.Handle("/api/exploit/{$}", exploit)
	mux.Handle("/api/roblox/version", getOnly(s.api.wrap(http.HandlerFunc(s.handleRobloxVersion))))
	mux.Handle("/api/health", getOnly(http.HandlerFunc(s.handleHealth)))
	if s.metrics != nil {
		mux.Handle("GET /metrics", s.metrics.Handler())
	}
	mux.Handle("/api/", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "Not found")
	}))
	mux.Handle("/", newStatic(s.opts.PublicDir))

	return s.observe(securityHeaders(s.cors(mux)))
}

type errorBody struct {
	Error string `json:"error"`
	Hint  string `json:"hint,omitempty"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeRawJSON(w http.ResponseWriter, code int, body []byte) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_, _ = w.Write(body)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, errorBody{Error: msg})
}

func getOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.Header().Set("Allow", "GET, OPTIONS")
			writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		next.ServeHTTP(w, r)
	})
}
