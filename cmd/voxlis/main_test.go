package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"voxlis/internal/config"
	"voxlis/internal/report"
)

const deepDoc = `{"__SUNC": true, "executor": "Wave", "tests": {"passed": ["readfile"], "failed": {"hookfunction": "nope"}}}`

func TestParseFile_DeepDocument(t *testing.T) {
	r, err := parseFile([]byte(deepDoc), "wave-dump", false, true, report.KindBasic)
	if err != nil {
		t.Fatalf("parseFile: %v", err)
	}
	if r.TestType != report.KindSecure || r.Passed != 1 || r.Total != 2 {
		t.Errorf("got kind %q %d/%d", r.TestType, r.Passed, r.Total)
	}
	if r.Source != "file" {
		t.Errorf("Source = %q", r.Source)
	}
}

func TestParseFile_UnmarkedJSONFallsBackToText(t *testing.T) {
	r, err := parseFile([]byte(`{"hello": "world"}`), "dump", false, true, report.KindBasic)
	if err != nil {
		t.Fatalf("parseFile: %v", err)
	}
	if r.ExecutorName != "dump" || r.TestType != report.KindBasic {
		t.Errorf("got %q %q", r.ExecutorName, r.TestType)
	}
}

func TestParseFile_ExplicitDeepRejectsGarbage(t *testing.T) {
	if _, err := parseFile([]byte("not json"), "x", true, false, report.KindSecure); err == nil {
		t.Fatal("expected an error for a non-JSON deep document")
	}
}

func TestWriteReport(t *testing.T) {
	r := report.New("Wave", report.KindSecure, "file")

	var buf bytes.Buffer
	if err := writeReport(&buf, r, "json"); err != nil {
		t.Fatalf("json: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if decoded["executorName"] != "Wave" {
		t.Errorf("executorName = %v", decoded["executorName"])
	}

	if err := writeReport(&buf, r, "xml"); err == nil {
		t.Error("expected an error for an unknown format")
	}
}

func TestTableNames(t *testing.T) {
	got := tableNames(map[string]string{"xeno": "Xeno", "awp": "AWP", "velocity": "Velocity"})
	if diff := cmp.Diff([]string{"awp", "velocity", "xeno"}, got); diff != "" {
		t.Errorf("names mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildApp_UpstreamSettings(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Write([]byte(`{"Windows": "version-abc"}`))
	}))
	defer srv.Close()

	c := config.Default()
	c.Upstream.StatusMirrors = []string{srv.URL}
	c.Upstream.UserAgent = "voxlis-test/1.0"
	a, err := buildApp(c)
	if err != nil {
		t.Fatalf("buildApp: %v", err)
	}
	if diff := cmp.Diff([]string{srv.URL}, a.status.Mirrors()); diff != "" {
		t.Errorf("mirrors mismatch (-want +got):\n%s", diff)
	}
	if _, err := a.status.RobloxVersion(context.Background()); err != nil {
		t.Fatalf("RobloxVersion: %v", err)
	}
	if gotUA != "voxlis-test/1.0" {
		t.Errorf("User-Agent = %q", gotUA)
	}
}

func TestConfigCommand(t *testing.T) {
	t.Setenv("PORT", "8081")
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs([]string{"config"})
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("config: %v", err)
	}
	if !strings.Contains(out.String(), ":8081") {
		t.Errorf("effective config does not reflect PORT:\n%s", out.String())
	}
}
