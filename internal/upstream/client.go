// Package upstream talks to the three outside services the status pipeline
// depends on: the executor status listing (served from several mirrors),
// the deep per-executor report service, and the static text reports.
//
// Usage:
//
//	status, _ := upstream.NewStatusClient(cfg.StatusMirrors, upstream.WithTimeout(10*time.Second))
//	list, err := status.Exploits(ctx)
//	deep, _ := upstream.NewDeepClient(cfg.DeepReportBase)
//	payload, err := deep.Fetch(ctx, entry.Sunc.Scrap, entry.Sunc.Key)
package upstream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/hashicorp/go-cleanhttp"

	"voxlis/internal/logging"
)

// maxBody caps how much of an upstream response is read.
const maxBody = 8 << 20

// Observer receives one call per upstream request. The metrics package
// implements it; nil disables observation.
type Observer interface {
	ObserveUpstream(source, outcome string, elapsed time.Duration)
}

// Option configures a client during construction.
type Option func(*clientConfig) error

type clientConfig struct {
	httpClient *http.Client
	logger     *slog.Logger
	timeout    time.Duration
	userAgent  string
	observer   Observer
}

// WithHTTPClient overrides the default pooled HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(cfg *clientConfig) error {
		cfg.httpClient = c
		return nil
	}
}

// WithLogger configures structured logging.
func WithLogger(l *slog.Logger) Option {
	return func(cfg *clientConfig) error {
		cfg.logger = l
		return nil
	}
}

// WithTimeout sets a timeout on the HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(cfg *clientConfig) error {
		if d < 0 {
			return fmt.Errorf("upstream: negative timeout %s", d)
		}
		cfg.timeout = d
		return nil
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(cfg *clientConfig) error {
		cfg.userAgent = ua
		return nil
	}
}

// WithObserver reports every request outcome to o.
func WithObserver(o Observer) Option {
	return func(cfg *clientConfig) error {
		cfg.observer = o
		return nil
	}
}

// transport is the request plumbing shared by every client in this package.
type transport struct {
	source     string
	httpClient *http.Client
	logger     *slog.Logger
	userAgent  string
	observer   Observer
}

func newTransport(source, defaultUA string, opts []Option) (*transport, error) {
	cfg := &clientConfig{userAgent: defaultUA}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	httpClient := cfg.httpClient
	if httpClient == nil {
		httpClient = cleanhttp.DefaultPooledClient()
	}
	if cfg.timeout > 0 {
		httpClient.Timeout = cfg.timeout
	}

	logger := cfg.logger
	if logger == nil {
		logger = logging.Discard()
	}

	return &transport{
		source:     source,
		httpClient: httpClient,
		logger:     logger,
		userAgent:  cfg.userAgent,
		observer:   cfg.observer,
	}, nil
}

// get executes a GET and returns the body. Non-2xx responses become *APIError.
func (t *transport) get(ctx context.Context, url, operation, accept string) ([]byte, error) {
	start := time.Now()
	body, err := t.do(ctx, url, operation, accept)
	if t.observer != nil {
		t.observer.ObserveUpstream(t.source, outcome(err), time.Since(start))
	}
	return body, err
}

func (t *transport) do(ctx context.Context, url, operation, accept string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: create request: %w", operation, err)
	}
	if t.userAgent != "" {
		req.Header.Set("User-Agent", t.userAgent)
	}
	if accept != "" {
		req.Header.Set("Accept", accept)
	}

	t.logger.DebugContext(ctx, "upstream request", "source", t.source, "operation", operation, "url", redact(url))

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: do request: %w", operation, err)
	}
	defer resp.Body.Close()

	t.logger.DebugContext(ctx, "upstream response", "source", t.source, "operation", operation, "status", resp.StatusCode)

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("%s: read body: %w", operation, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := string(body)
		if len(msg) > 200 {
			msg = msg[:200]
		}
		if msg == "" {
			msg = resp.Status
		}
		return nil, newAPIError(operation, resp.StatusCode, msg)
	}
	return body, nil
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case IsNotFound(err):
		return "not_found"
	default:
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			return "http_error"
		}
		return "error"
	}
}
