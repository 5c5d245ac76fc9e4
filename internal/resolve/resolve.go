// Package resolve decides which upstream supplies the report for an
// executor and fetches the raw payload. It does not parse; the pipeline
// hands the payload to the parser matching its Origin.
//
// Order of preference for the secure kind: the deep report (when the
// listing entry carries credentials), then the static text document, then
// a placeholder built from the listing entry alone. The basic kind only
// ever uses the static text.
package resolve

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"voxlis/internal/cache"
	"voxlis/internal/logging"
	"voxlis/internal/report"
	"voxlis/internal/textreport"
	"voxlis/internal/upstream"
)

// Origin tags which integration produced a Payload.
type Origin string

const (
	OriginDeepReport Origin = "deep-report"
	OriginStaticText Origin = "static-text"
	OriginListing    Origin = "listing"
)

// DefaultListingTTL is how long a fetched listing is served without refetching.
const DefaultListingTTL = 15 * time.Second

const listingKey = "listing"

// Payload is an unparsed report plus what is known about where it came from.
type Payload struct {
	Origin Origin
	// Name is the executor name as requested.
	Name  string
	Kind  report.Kind
	Entry *upstream.Exploit
	JSON  []byte
	Text  string
}

// Lister fetches the status listing.
type Lister interface {
	Exploits(ctx context.Context) (*upstream.Listing, error)
}

// DeepFetcher fetches a deep report by its credentials.
type DeepFetcher interface {
	Fetch(ctx context.Context, scrapID, accessKey string) ([]byte, error)
}

// TextFetcher fetches a static text document by slug.
type TextFetcher interface {
	Fetch(ctx context.Context, slug string) (string, error)
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Resolver) { r.logger = l }
}

// WithListingCache injects the listing cache and its TTL.
func WithListingCache(c *cache.Cache[*upstream.Listing], ttl time.Duration) Option {
	return func(r *Resolver) {
		r.listings = c
		r.listingTTL = ttl
	}
}

// Resolver locates report payloads.
type Resolver struct {
	lister     Lister
	deep       DeepFetcher
	text       TextFetcher
	slugs      map[string]string
	listings   *cache.Cache[*upstream.Listing]
	listingTTL time.Duration
	logger     *slog.Logger
}

// New builds a Resolver. slugs maps lower-case executor names to static
// text document names.
func New(lister Lister, deep DeepFetcher, text TextFetcher, slugs map[string]string, opts ...Option) *Resolver {
	r := &Resolver{
		lister:     lister,
		deep:       deep,
		text:       text,
		slugs:      make(map[string]string, len(slugs)),
		listingTTL: DefaultListingTTL,
		logger:     logging.Discard(),
	}
	for k, v := range slugs {
		r.slugs[strings.ToLower(strings.TrimSpace(k))] = v
	}
	for _, o := range opts {
		o(r)
	}
	if r.listings == nil {
		r.listings = cache.New[*upstream.Listing]("listing", cache.WithLogger(r.logger))
	}
	return r
}

// Listing returns the cached listing, refetching it once the TTL passes.
// A failed refetch serves the last good copy; the error is returned only
// when no copy was ever fetched.
func (r *Resolver) Listing(ctx context.Context) (*upstream.Listing, cache.Status, error) {
	return r.listings.GetOrFetch(ctx, listingKey, r.listingTTL, r.lister.Exploits)
}

// Lookup returns the listing entry for name, or nil. An unreachable
// listing counts as empty.
func (r *Resolver) Lookup(ctx context.Context, name string) *upstream.Exploit {
	list, _, err := r.Listing(ctx)
	if err != nil {
		r.logger.WarnContext(ctx, "listing unavailable, continuing without it", "error", err)
		return nil
	}
	return Match(list.Exploits, name)
}

// Slug returns the static text document name for an executor.
func (r *Resolver) Slug(name string) (string, bool) {
	slug, ok := r.slugs[strings.ToLower(strings.TrimSpace(name))]
	return slug, ok
}

// Executors returns the names in the slug table.
func (r *Resolver) Executors() []string {
	out := make([]string, 0, len(r.slugs))
	for k := range r.slugs {
		out = append(out, k)
	}
	return out
}

// Resolve fetches the payload for name and kind. Errors are either a
// *NotFoundError or an upstream failure with nothing to fall back on.
func (r *Resolver) Resolve(ctx context.Context, name string, kind report.Kind) (*Payload, error) {
	entry := r.Lookup(ctx, name)

	if kind == report.KindSecure && entry.HasDeepReport() {
		data, err := r.deep.Fetch(ctx, entry.Sunc.Scrap, entry.Sunc.Key)
		if err == nil && !json.Valid(data) {
			err = errors.New("deep report is not JSON")
		}
		if err == nil {
			return &Payload{Origin: OriginDeepReport, Name: name, Kind: kind, Entry: entry, JSON: data}, nil
		}
		r.logger.WarnContext(ctx, "deep report unavailable, falling back", "executor", name, "error", err)
	}
	return r.Fallback(ctx, name, kind, entry)
}

// Fallback resolves without the deep report: the static text document,
// then, for entries that advertise a deep report, a listing placeholder.
func (r *Resolver) Fallback(ctx context.Context, name string, kind report.Kind, entry *upstream.Exploit) (*Payload, error) {
	text, err := r.staticText(ctx, name, kind, entry)
	if err == nil {
		return &Payload{Origin: OriginStaticText, Name: name, Kind: kind, Entry: entry, Text: text}, nil
	}
	if kind == report.KindSecure && entry.HasDeepReport() {
		r.logger.WarnContext(ctx, "serving listing placeholder", "executor", name, "error", err)
		return &Payload{Origin: OriginListing, Name: name, Kind: kind, Entry: entry}, nil
	}
	return nil, err
}

func (r *Resolver) staticText(ctx context.Context, name string, kind report.Kind, entry *upstream.Exploit) (string, error) {
	slug, ok := r.Slug(name)
	if !ok && entry != nil {
		slug, ok = r.Slug(entry.Title)
	}
	if !ok {
		if entry != nil {
			return "", notFound(name, kind, ReasonKindUnavailable)
		}
		return "", notFound(name, kind, ReasonUnknownExecutor)
	}

	text, err := r.text.Fetch(ctx, slug)
	if err != nil {
		var apiErr *upstream.APIError
		if errors.As(err, &apiErr) {
			r.logger.DebugContext(ctx, "static text rejected", "slug", slug,
				"operation", apiErr.Operation(), "status", apiErr.StatusCode(), "message", apiErr.Message())
		}
		// Only a missing document is final; other statuses are outages.
		if upstream.IsNotFound(err) {
			return "", notFound(name, kind, ReasonKindUnavailable)
		}
		return "", fmt.Errorf("static text %s: %w", slug, err)
	}
	if utf8.RuneCountInString(strings.TrimSpace(text)) < textreport.MinReportLength {
		return "", notFound(name, kind, ReasonKindUnavailable)
	}
	return text, nil
}
