package upstream

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

// DefaultBrowserAgent is sent to services that reject non-browser agents.
const DefaultBrowserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

// DeepClient fetches per-executor structured reports.
type DeepClient struct {
	baseURL string
	t       *transport
}

// NewDeepClient creates a client for the deep report service rooted at
// baseURL (e.g. "https://api.rubis.app/v2/scrap").
func NewDeepClient(baseURL string, opts ...Option) (*DeepClient, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("upstream: deep report baseURL is required")
	}
	t, err := newTransport("deep", DefaultBrowserAgent, opts)
	if err != nil {
		return nil, err
	}
	return &DeepClient{baseURL: strings.TrimSuffix(baseURL, "/"), t: t}, nil
}

// Fetch returns the raw JSON report for a scrape id.
func (c *DeepClient) Fetch(ctx context.Context, scrapID, accessKey string) ([]byte, error) {
	if scrapID == "" || accessKey == "" {
		return nil, fmt.Errorf("deep report: scrape id and access key are required")
	}
	u := fmt.Sprintf("%s/%s/raw?%s", c.baseURL, url.PathEscape(scrapID),
		url.Values{"accessKey": {accessKey}}.Encode())
	return c.t.get(ctx, u, "deep report", "application/json")
}
