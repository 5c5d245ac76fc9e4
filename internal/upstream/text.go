package upstream

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

// TextClient fetches the static per-executor text reports.
type TextClient struct {
	baseURL string
	t       *transport
}

// NewTextClient creates a client for documents stored at {baseURL}/{slug}.json.
func NewTextClient(baseURL string, opts ...Option) (*TextClient, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("upstream: text report baseURL is required")
	}
	t, err := newTransport("text", "Mozilla/5.0", opts)
	if err != nil {
		return nil, err
	}
	return &TextClient{baseURL: strings.TrimSuffix(baseURL, "/"), t: t}, nil
}

// Fetch returns the document for slug as text. The files carry a .json
// extension but hold plain text.
func (c *TextClient) Fetch(ctx context.Context, slug string) (string, error) {
	if slug == "" {
		return "", fmt.Errorf("text report: slug is required")
	}
	body, err := c.t.get(ctx, c.baseURL+"/"+url.PathEscape(slug)+".json", "text report", "")
	if err != nil {
		return "", err
	}
	return string(body), nil
}
