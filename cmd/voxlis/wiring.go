package main

import (
	"fmt"

	"voxlis/internal/cache"
	"voxlis/internal/config"
	"voxlis/internal/logging"
	"voxlis/internal/metrics"
	"voxlis/internal/pipeline"
	"voxlis/internal/resolve"
	"voxlis/internal/upstream"
)

// app is the wired object graph shared by every subcommand.
type app struct {
	metrics *metrics.Metrics
	status  *upstream.StatusClient
	svc     *pipeline.Service
}

func buildApp(c *config.Config) (*app, error) {
	m := metrics.New()
	opts := []upstream.Option{
		upstream.WithTimeout(c.Upstream.Timeout),
		upstream.WithObserver(m),
		upstream.WithLogger(logging.New("upstream")),
	}
	if c.Upstream.UserAgent != "" {
		opts = append(opts, upstream.WithUserAgent(c.Upstream.UserAgent))
	}

	status, err := upstream.NewStatusClient(c.Upstream.StatusMirrors, opts...)
	if err != nil {
		return nil, fmt.Errorf("status client: %w", err)
	}
	deep, err := upstream.NewDeepClient(c.Upstream.DeepReportBase, opts...)
	if err != nil {
		return nil, fmt.Errorf("deep client: %w", err)
	}
	text, err := upstream.NewTextClient(c.Upstream.TextReportBase, opts...)
	if err != nil {
		return nil, fmt.Errorf("text client: %w", err)
	}

	cacheLog := logging.New("cache")
	listings := cache.New[*upstream.Listing]("listing", cache.WithObserver(m), cache.WithLogger(cacheLog))
	res := resolve.New(status, deep, text, c.TextReports,
		resolve.WithListingCache(listings, c.Cache.ListingTTL),
		resolve.WithLogger(logging.New("resolve")),
	)

	reports := pipeline.NewReportCache(cache.WithObserver(m), cache.WithLogger(cacheLog))
	svc := pipeline.New(res,
		pipeline.WithReportCache(reports, c.Cache.ReportTTL),
		pipeline.WithLogger(logging.New("pipeline")),
	)
	return &app{metrics: m, status: status, svc: svc}, nil
}
