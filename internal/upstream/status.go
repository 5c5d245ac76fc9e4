package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Status listing paths, relative to each mirror.
const (
	ExploitsPath       = "/api/status/exploits"
	RobloxVersionPath  = "/api/versions/current"
	DefaultStatusAgent = "WEAO-3PService"
)

// StatusClient reads the executor status listing. Every call walks the
// mirror list in order and returns the first successful response.
type StatusClient struct {
	mirrors []string
	t       *transport
}

// NewStatusClient creates a client over one or more mirror base URLs
// (e.g. "https://weao.xyz").
func NewStatusClient(mirrors []string, opts ...Option) (*StatusClient, error) {
	var clean []string
	for _, m := range mirrors {
		m = strings.TrimSuffix(strings.TrimSpace(m), "/")
		if m != "" {
			clean = append(clean, m)
		}
	}
	if len(clean) == 0 {
		return nil, fmt.Errorf("upstream: at least one status mirror is required")
	}
	t, err := newTransport("status", DefaultStatusAgent, opts)
	if err != nil {
		return nil, err
	}
	return &StatusClient{mirrors: clean, t: t}, nil
}

// Mirrors returns the configured mirror base URLs in try order.
func (c *StatusClient) Mirrors() []string {
	out := make([]string, len(c.mirrors))
	copy(out, c.mirrors)
	return out
}

// Get fetches path from the first mirror that answers with 2xx. When every
// mirror fails the individual errors are joined, so IsNotFound still sees
// a 404 from any of them.
func (c *StatusClient) Get(ctx context.Context, path string) ([]byte, string, error) {
	var errs []error
	for _, mirror := range c.mirrors {
		body, err := c.t.get(ctx, mirror+path, "status "+path, "application/json")
		if err == nil {
			return body, mirror, nil
		}
		c.t.logger.WarnContext(ctx, "status mirror failed", "mirror", mirror, "error", err)
		errs = append(errs, fmt.Errorf("%s: %w", mirror, err))
		if ctx.Err() != nil {
			break
		}
	}
	return nil, "", errors.Join(errs...)
}

// Exploits fetches and decodes the full listing. Entries that do not decode
// are skipped so one malformed item cannot hide the rest.
func (c *StatusClient) Exploits(ctx context.Context) (*Listing, error) {
	body, mirror, err := c.Get(ctx, ExploitsPath)
	if err != nil {
		return nil, err
	}
	exploits, err := DecodeListing(body)
	if err != nil {
		return nil, fmt.Errorf("decode listing from %s: %w", mirror, err)
	}
	if skipped := countItems(body) - len(exploits); skipped > 0 {
		c.t.logger.WarnContext(ctx, "skipped malformed listing entries", "mirror", mirror, "skipped", skipped)
	}
	return &Listing{Raw: body, Exploits: exploits, Mirror: mirror}, nil
}

// Exploit fetches the status of a single executor. name is lower-cased and
// path-escaped.
func (c *StatusClient) Exploit(ctx context.Context, name string) (json.RawMessage, error) {
	body, _, err := c.Get(ctx, ExploitsPath+"/"+url.PathEscape(strings.ToLower(name)))
	if err != nil {
		return nil, err
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("status exploit %q: response is not JSON", name)
	}
	return body, nil
}

// RobloxVersion fetches the current client version document.
func (c *StatusClient) RobloxVersion(ctx context.Context) (json.RawMessage, error) {
	body, _, err := c.Get(ctx, RobloxVersionPath)
	if err != nil {
		return nil, err
	}
	if !json.Valid(body) {
		return nil, errors.New("roblox version: response is not JSON")
	}
	return body, nil
}

// DecodeListing decodes a listing array entry by entry.
func DecodeListing(body []byte) ([]Exploit, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(body, &items); err != nil {
		return nil, err
	}
	out := make([]Exploit, 0, len(items))
	for _, item := range items {
		var e Exploit
		if err := json.Unmarshal(item, &e); err != nil {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func countItems(body []byte) int {
	var items []json.RawMessage
	if json.Unmarshal(body, &items) != nil {
		return 0
	}
	return len(items)
}
