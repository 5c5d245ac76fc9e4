package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestDefault_IsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestLoadFromPath_YAMLOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "voxlis.yaml")
	data := `
server:
  addr: ":8080"
cache:
  report_ttl: 1m
upstream:
  status_mirrors: ["https://mirror.test"]
text_reports:
  newexec: NewExec
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("Addr = %q", cfg.Server.Addr)
	}
	if cfg.Cache.ReportTTL != time.Minute {
		t.Errorf("ReportTTL = %v", cfg.Cache.ReportTTL)
	}
	if cfg.Cache.ListingTTL != 15*time.Second {
		t.Errorf("unset ListingTTL should keep default, got %v", cfg.Cache.ListingTTL)
	}
	if diff := cmp.Diff([]string{"https://mirror.test"}, cfg.Upstream.StatusMirrors); diff != "" {
		t.Errorf("mirrors mismatch:\n%s", diff)
	}
	if slug := cfg.TextReports["newexec"]; slug != "NewExec" {
		t.Errorf("text_reports[newexec] = %q", slug)
	}
	if slug := cfg.TextReports["velocity"]; slug != "Velocity" {
		t.Errorf("default slugs should survive the overlay, got %q", slug)
	}
}

func TestOverlay_JSON(t *testing.T) {
	cfg := Default()
	if err := cfg.Overlay([]byte(`{"logging": {"level": "debug", "format": "json"}}`)); err != nil {
		t.Fatal(err)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "json" {
		t.Errorf("logging = %+v", cfg.Logging)
	}
}

func TestOverlay_RejectsUnknownKeys(t *testing.T) {
	err := Default().Overlay([]byte("serverr:\n  addr: x\n"))
	if err == nil {
		t.Fatal("expected error for unknown key")
	}
}

func TestOverlay_Empty(t *testing.T) {
	cfg := Default()
	if err := cfg.Overlay([]byte("  \n")); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Errorf("empty overlay changed config:\n%s", diff)
	}
}

func TestLoadFromPath_Missing(t *testing.T) {
	if _, err := LoadFromPath(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
	cfg, err := LoadFromPath("")
	if err != nil || cfg == nil {
		t.Errorf("empty path should yield defaults, got %v", err)
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"PORT":            "4000",
		"ALLOWED_ORIGINS": "https://a.test, https://b.test,,",
		"LOG_LEVEL":       "warn",
	}
	cfg := Default()
	cfg.ApplyEnv(func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	})
	if cfg.Server.Addr != ":4000" {
		t.Errorf("Addr = %q", cfg.Server.Addr)
	}
	if diff := cmp.Diff([]string{"https://a.test", "https://b.test"}, cfg.Server.AllowedOrigins); diff != "" {
		t.Errorf("origins mismatch:\n%s", diff)
	}
	if cfg.Logging.Level != "warn" || cfg.Logging.Format != "text" {
		t.Errorf("logging = %+v", cfg.Logging)
	}
}

func TestValidate_CollectsErrors(t *testing.T) {
	cfg := Default()
	cfg.Logging.Format = "xml"
	cfg.Upstream.StatusMirrors = nil
	cfg.Cache.ReportTTL = 0

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation errors")
	}
	for _, frag := range []string{"logging.format", "status_mirrors", "TTLs"} {
		if !strings.Contains(err.Error(), frag) {
			t.Errorf("expected %q in %v", frag, err)
		}
	}
}

func TestMarshal_RoundTrip(t *testing.T) {
	cfg := Default()
	data, err := cfg.Marshal()
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "report_ttl: 5m0s") {
		t.Errorf("durations should render as strings:\n%s", data)
	}
	back := &Config{}
	if err := back.Overlay(data); err != nil {
		t.Fatalf("re-read: %v", err)
	}
	if diff := cmp.Diff(cfg, back); diff != "" {
		t.Errorf("round trip mismatch:\n%s", diff)
	}
}
