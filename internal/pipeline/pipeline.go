// Package pipeline is the one path from an executor name to a normalized
// report: resolve the payload, parse it with the matching parser, stamp
// the source, and cache the result. The HTTP handler, the MCP tools and
// the CLI all go through Service.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"strings"
	"time"

	"voxlis/internal/cache"
	"voxlis/internal/logging"
	"voxlis/internal/report"
	"voxlis/internal/resolve"
	"voxlis/internal/structreport"
	"voxlis/internal/textreport"
	"voxlis/internal/upstream"
)

// Report sources, as they appear in the source field.
const (
	SourceDeepReport  = "weao.xyz/rubis.app"
	SourceStaticText  = "voxlis.NET"
	SourcePlaceholder = "weao.xyz (rubis unavailable)"
)

// DefaultReportTTL is how long a built report is served from cache.
const DefaultReportTTL = 5 * time.Minute

// NewReportCache returns a report cache that never serves a stale copy
// for a not-found result.
func NewReportCache(opts ...cache.Option) *cache.Cache[*report.Report] {
	opts = append(opts, cache.WithSurface(func(err error) bool {
		return errors.Is(err, resolve.ErrNotFound)
	}))
	return cache.New[*report.Report]("reports", opts...)
}

// Key is the report cache key for an executor and kind.
func Key(name string, kind report.Kind) string {
	return strings.ToLower(strings.TrimSpace(name)) + "_" + string(kind)
}

// Option configures a Service.
type Option func(*Service)

// WithReportCache injects the report cache and its TTL. Build it with
// NewReportCache.
func WithReportCache(c *cache.Cache[*report.Report], ttl time.Duration) Option {
	return func(s *Service) {
		s.reports = c
		s.ttl = ttl
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// Service builds and caches reports.
type Service struct {
	resolver *resolve.Resolver
	reports  *cache.Cache[*report.Report]
	ttl      time.Duration
	logger   *slog.Logger
}

// New returns a Service over resolver.
func New(resolver *resolve.Resolver, opts ...Option) *Service {
	s := &Service{resolver: resolver, ttl: DefaultReportTTL, logger: logging.Discard()}
	for _, o := range opts {
		o(s)
	}
	if s.reports == nil {
		s.reports = NewReportCache(cache.WithLogger(s.logger))
	}
	return s
}

// Resolver exposes the underlying resolver for listing pass-through.
func (s *Service) Resolver() *resolve.Resolver { return s.resolver }

// placeholderError carries a listing-only report out of a cache fetch so
// it is returned to the caller without being stored.
type placeholderError struct {
	report *report.Report
}

func (e *placeholderError) Error() string {
	return "deep report unavailable for " + e.report.ExecutorName + ", listing placeholder only"
}

// Report returns the report for name and kind. A cached report older than
// the TTL is served with status Stale when every source fails. When no
// cached copy exists and only the listing entry is reachable, a
// placeholder with zero counts is returned and not cached.
func (s *Service) Report(ctx context.Context, name string, kind report.Kind) (*report.Report, cache.Status, error) {
	r, status, err := s.reports.GetOrFetch(ctx, Key(name, kind), s.ttl, func(ctx context.Context) (*report.Report, error) {
		return s.build(ctx, name, kind)
	})
	var ph *placeholderError
	if errors.As(err, &ph) {
		return ph.report, cache.Miss, nil
	}
	return r, status, err
}

func (s *Service) build(ctx context.Context, name string, kind report.Kind) (*report.Report, error) {
	p, err := s.resolver.Resolve(ctx, name, kind)
	if err != nil {
		return nil, err
	}

	if p.Origin == resolve.OriginDeepReport {
		r, err := structreport.Parse(p.JSON, name, p.Entry)
		if err == nil && r != nil {
			r.Source = SourceDeepReport
			return r, nil
		}
		s.logger.WarnContext(ctx, "deep report unusable, falling back", "executor", name, "error", err)
		if p, err = s.resolver.Fallback(ctx, name, kind, p.Entry); err != nil {
			return nil, err
		}
	}

	switch p.Origin {
	case resolve.OriginStaticText:
		r := textreport.Parse(p.Text, kind)
		r.ExecutorName = name
		r.Source = SourceStaticText
		return r, nil
	case resolve.OriginListing:
		return nil, &placeholderError{report: Placeholder(name, p.Entry)}
	}
	return nil, errors.New("pipeline: unexpected payload origin " + string(p.Origin))
}

// Placeholder builds the zero-count report served when only the listing
// entry is known. The percentage is the listing's own figure.
func Placeholder(name string, entry *upstream.Exploit) *report.Report {
	if entry == nil {
		return report.New(name, report.KindSecure, SourcePlaceholder)
	}
	r := report.New(entry.Title, report.KindSecure, SourcePlaceholder)
	if entry.SuncPercentage != nil {
		r.Percentage = int(math.Round(*entry.SuncPercentage))
	}
	r.TestDate = entry.UpdatedDate
	r.ExecutorVersion = entry.Version
	return r
}
