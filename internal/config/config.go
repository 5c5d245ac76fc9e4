// Package config loads the service configuration: built-in defaults,
// optionally overlaid by a YAML (or JSON) file, then by environment variables.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"voxlis/internal/logging"
)

// Config is the full service configuration.
type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Logging     LoggingConfig     `yaml:"logging"`
	Upstream    UpstreamConfig    `yaml:"upstream"`
	Cache       CacheConfig       `yaml:"cache"`
	RateLimit   RateLimitConfig   `yaml:"rate_limit"`
	TextReports map[string]string `yaml:"text_reports"`
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	PublicDir       string        `yaml:"public_dir"`
	AllowedOrigins  []string      `yaml:"allowed_origins"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// LoggingConfig selects the slog level and handler.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// UpstreamConfig holds every outside endpoint in plain text.
type UpstreamConfig struct {
	StatusMirrors  []string      `yaml:"status_mirrors"`
	DeepReportBase string        `yaml:"deep_report_base"`
	TextReportBase string        `yaml:"text_report_base"`
	Timeout        time.Duration `yaml:"timeout"`
	UserAgent      string        `yaml:"user_agent,omitempty"`
}

// CacheConfig holds the two cache lifetimes.
type CacheConfig struct {
	ReportTTL  time.Duration `yaml:"report_ttl"`
	ListingTTL time.Duration `yaml:"listing_ttl"`
}

// RateLimitConfig is requests per minute per client address.
type RateLimitConfig struct {
	APIPerMinute    int `yaml:"api_per_minute"`
	StrictPerMinute int `yaml:"strict_per_minute"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":3000",
			PublicDir:       "public",
			AllowedOrigins:  []string{"*"},
			ShutdownTimeout: 10 * time.Second,
		},
		Logging: LoggingConfig{Level: "info", Format: "text"},
		Upstream: UpstreamConfig{
			StatusMirrors:  []string{"https://weao.xyz", "https://weao.gg", "https://whatexpsare.online"},
			DeepReportBase: "https://api.rubis.app/v2/scrap",
			TextReportBase: "https://raw.githubusercontent.com/localscripts/voxlis.NET/main/assets/unc",
			Timeout:        10 * time.Second,
		},
		Cache: CacheConfig{
			ReportTTL:  5 * time.Minute,
			ListingTTL: 15 * time.Second,
		},
		RateLimit: RateLimitConfig{APIPerMinute: 30, StrictPerMinute: 10},
		TextReports: map[string]string{
			"wave":       "wave",
			"seliware":   "seliware",
			"delta":      "delta",
			"codex":      "codex",
			"velocity":   "Velocity",
			"awp":        "awp",
			"cryptic":    "cryptic",
			"ember":      "ember",
			"krnl":       "krnl",
			"macsploit":  "macsploit",
			"nihon":      "nihon",
			"nksoftware": "nksoftware",
			"ronix":      "ronix",
			"sirhurt":    "sirhurt",
			"solara":     "solara",
			"swift":      "swift",
			"synapsez":   "synapsez",
			"vegax":      "vegax",
			"xeno":       "xeno",
			"zenith":     "zenith",
		},
	}
}

// LoadFromPath reads a config file over the defaults. An empty path
// returns the defaults unchanged.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := cfg.Overlay(data); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Overlay decodes data over c. JSON documents are accepted since they are
// valid YAML. Unknown keys are rejected. Keys under text_reports are merged
// into the existing table.
func (c *Config) Overlay(data []byte) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}

// ApplyEnv overrides fields from the environment. lookup is os.LookupEnv
// outside tests.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup("PORT"); ok && v != "" {
		c.Server.Addr = ":" + strings.TrimPrefix(v, ":")
	}
	if v, ok := lookup("ALLOWED_ORIGINS"); ok && v != "" {
		var origins []string
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		c.Server.AllowedOrigins = origins
	}
	if v, ok := lookup("LOG_LEVEL"); ok && v != "" {
		c.Logging.Level = v
	}
	if v, ok := lookup("LOG_FORMAT"); ok && v != "" {
		c.Logging.Format = v
	}
}

// Validate reports every invalid field at once.
func (c *Config) Validate() error {
	var errs []error
	if c.Server.Addr == "" {
		errs = append(errs, errors.New("server.addr is required"))
	}
	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		errs = append(errs, fmt.Errorf("logging.level: %w", err))
	}
	if f := c.Logging.Format; f != "text" && f != "json" {
		errs = append(errs, fmt.Errorf("logging.format must be text or json, got %q", f))
	}
	if len(c.Upstream.StatusMirrors) == 0 {
		errs = append(errs, errors.New("upstream.status_mirrors needs at least one mirror"))
	}
	if c.Upstream.DeepReportBase == "" {
		errs = append(errs, errors.New("upstream.deep_report_base is required"))
	}
	if c.Upstream.TextReportBase == "" {
		errs = append(errs, errors.New("upstream.text_report_base is required"))
	}
	if c.Upstream.Timeout < 0 {
		errs = append(errs, errors.New("upstream.timeout must not be negative"))
	}
	if c.Cache.ReportTTL <= 0 || c.Cache.ListingTTL <= 0 {
		errs = append(errs, errors.New("cache TTLs must be positive"))
	}
	if c.RateLimit.APIPerMinute <= 0 || c.RateLimit.StrictPerMinute <= 0 {
		errs = append(errs, errors.New("rate limits must be positive"))
	}
	return errors.Join(errs...)
}

// Marshal renders the effective configuration as YAML.
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}
