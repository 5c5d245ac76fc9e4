package server

import (
	"context"
	"net"
	"net/http"
	"runtime/debug"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

type ctxKey struct{}

// RequestID returns the id assigned to the request carrying ctx.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

type statusRecorder struct {
	http.ResponseWriter
	code  int
	wrote bool
}

func (r *statusRecorder) WriteHeader(code int) {
	if !r.wrote {
		r.code = code
		r.wrote = true
	}
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	r.wrote = true
	return r.ResponseWriter.Write(b)
}

// observe assigns a request id, logs the request and records metrics. It
// must be outermost: the mux sets Pattern on the request it receives.
// A panicking handler is answered with a 500 JSON error.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		id := r.Header.Get("X-Request-ID")
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		r = r.WithContext(context.WithValue(r.Context(), ctxKey{}, id))

		rec := &statusRecorder{ResponseWriter: w, code: http.StatusOK}
		s.serveRecovered(rec, r, next)

		elapsed := time.Since(start)
		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		s.logger.InfoContext(r.Context(), "request",
			"method", r.Method, "path", r.URL.Path, "status", rec.code,
			"duration", elapsed, "request_id", id)
		if s.metrics != nil {
			s.metrics.ObserveRequest(route, rec.code, elapsed)
		}
	})
}

func (s *Server) serveRecovered(rec *statusRecorder, r *http.Request, next http.Handler) {
	defer func() {
		v := recover()
		if v == nil {
			return
		}
		if v == http.ErrAbortHandler {
			panic(v)
		}
		s.logger.ErrorContext(r.Context(), "handler panic",
			"path", r.URL.Path, "request_id", RequestID(r.Context()),
			"panic", v, "stack", string(debug.Stack()))
		if rec.wrote {
			rec.code = http.StatusInternalServerError
			return
		}
		writeError(rec, http.StatusInternalServerError, "Internal server error")
	}()
	next.ServeHTTP(rec, r)
}

// securityHeaders sets hardening headers and forbids caching by default.
// Handlers override Cache-Control on cacheable responses.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "SAMEORIGIN")
		h.Set("Referrer-Policy", "no-referrer")
		h.Set("Cache-Control", "no-store, no-cache, must-revalidate, proxy-revalidate")
		h.Set("Pragma", "no-cache")
		h.Set("Expires", "0")
		next.ServeHTTP(w, r)
	})
}

// cors answers preflights with 200 and an empty body.
func (s *Server) cors(next http.Handler) http.Handler {
	allowAll := slices.Contains(s.opts.AllowedOrigins, "*")
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		origin := r.Header.Get("Origin")
		switch {
		case allowAll:
			h.Set("Access-Control-Allow-Origin", "*")
		case origin != "" && slices.Contains(s.opts.AllowedOrigins, origin):
			h.Set("Access-Control-Allow-Origin", origin)
			h.Add("Vary", "Origin")
		}
		h.Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

const (
	limitWindow    = time.Minute
	retryAfterSecs = 60
)

// limiter is a per-client token bucket refilled at perMinute per minute.
type limiter struct {
	perMinute int
	message   string
	now       func() time.Time

	mu        sync.Mutex
	clients   map[string]*limitedClient
	lastSweep time.Time
}

type limitedClient struct {
	lim  *rate.Limiter
	seen time.Time
}

func newLimiter(perMinute int, message string, now func() time.Time) *limiter {
	return &limiter{
		perMinute: perMinute,
		message:   message,
		now:       now,
		clients:   make(map[string]*limitedClient),
	}
}

func (l *limiter) allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastSweep) > limitWindow {
		for k, c := range l.clients {
			if now.Sub(c.seen) > limitWindow {
				delete(l.clients, k)
			}
		}
		l.lastSweep = now
	}

	c, ok := l.clients[key]
	if !ok {
		every := rate.Every(limitWindow / time.Duration(l.perMinute))
		c = &limitedClient{lim: rate.NewLimiter(every, l.perMinute)}
		l.clients[key] = c
	}
	c.seen = now
	return c.lim.AllowN(now, 1)
}

func (l *limiter) wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.allow(clientAddr(r)) {
			w.Header().Set("Retry-After", strconv.Itoa(retryAfterSecs))
			writeJSON(w, http.StatusTooManyRequests, struct {
				Error      string `json:"error"`
				RetryAfter int    `json:"retryAfter"`
			}{l.message, retryAfterSecs})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientAddr keys rate limits on the connection's remote host.
// Forwarding headers are not consulted.
func clientAddr(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
