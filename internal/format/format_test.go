package format_test

import (
	"errors"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"voxlis/internal/cache"
	"voxlis/internal/category"
	"voxlis/internal/format"
	"voxlis/internal/pipeline"
	"voxlis/internal/report"
)

func TestTable_ASCII(t *testing.T) {
	tb := format.NewTable(format.ASCII, format.CategoryColumns...)
	tb.Row("filesystem", 12, 1, 0)
	tb.Row("closures", 9)
	out := tb.String()

	for _, want := range []string{"Category", "Other", "filesystem", "12", "───"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
	if tb.Rows() != 2 {
		t.Errorf("Rows = %d, want 2", tb.Rows())
	}
}

func TestTable_MarkdownWithFooter(t *testing.T) {
	tb := format.NewTable(format.Markdown, format.CategoryColumns...)
	tb.Row("cache", 4, 0, 0)
	tb.Footer("total", 4, 0, 0)
	out := tb.String()

	for _, want := range []string{"| Category", "---", "total"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestParseMode(t *testing.T) {
	if format.ParseMode("md") != format.Markdown || format.ParseMode("markdown") != format.Markdown {
		t.Error("md/markdown should select Markdown")
	}
	if format.ParseMode("table") != format.ASCII {
		t.Error("default should be ASCII")
	}
}

func sampleReport() *report.Report {
	r := report.New("Wave", report.KindBasic, "voxlis.NET")
	r.Results = []report.Record{
		{Name: "readfile", Status: report.StatusPass},
		{Name: "writefile", Status: report.StatusFail, Reason: "permission denied"},
		{Name: "hookfunction", Status: report.StatusWarn},
	}
	r.Categorize(category.Classify)
	r.SetSummary(1, 2)
	r.TestDate = "2024-05-01 12:00"
	return r
}

func TestReport(t *testing.T) {
	now := time.Date(2024, 5, 4, 12, 0, 0, 0, time.UTC)
	out := format.Report(sampleReport(), format.ASCII, now)

	for _, want := range []string{
		"Wave (unc): 50%, 1/2 passed, 1 failed",
		"3 days ago",
		"source: voxlis.NET",
		"filesystem",
		"writefile",
		"permission denied",
		"hookfunction",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestNonPassing(t *testing.T) {
	got := format.NonPassing(sampleReport())
	if len(got) != 2 || got[0].Name != "writefile" || got[1].Name != "hookfunction" {
		t.Errorf("NonPassing = %+v", got)
	}
}

func TestWarm(t *testing.T) {
	results := []pipeline.WarmResult{
		{WarmJob: pipeline.WarmJob{Name: "wave", Kind: report.KindSecure}, Status: cache.Miss, Passed: 90, Total: 100, Source: pipeline.SourceDeepReport, Elapsed: 1500 * time.Millisecond},
		{WarmJob: pipeline.WarmJob{Name: "ghost", Kind: report.KindBasic}, Status: cache.Miss, Err: errors.New("not found")},
	}
	out := format.Warm(results, format.Markdown)
	for _, want := range []string{"wave", "90", "1s", "not found", "2 jobs", "1 failed"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestAge(t *testing.T) {
	now := time.Date(2024, 5, 4, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"2024-05-04T11:00:00Z", "1 hour ago"},
		{"2024-05-01", "3 days ago"},
		{"sometime last week", "sometime last week"},
	}
	for _, tc := range tests {
		if got := format.Age(tc.in, now); got != tc.want {
			t.Errorf("Age(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestSize(t *testing.T) {
	if got := format.Size(1500); got != "1.5 kB" {
		t.Errorf("Size(1500) = %q", got)
	}
	if got := format.Size(-1); got != "0 B" {
		t.Errorf("Size(-1) = %q", got)
	}
}

func TestFmtDuration(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{250 * time.Millisecond, "250ms"},
		{30 * time.Second, "30s"},
		{90 * time.Second, "1m 30s"},
	}
	for _, tc := range tests {
		if got := format.FmtDuration(tc.in); got != tc.want {
			t.Errorf("FmtDuration(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in     string
		maxLen int
		want   string
	}{
		{"hello", 10, "hello"},
		{"hello world", 8, "hello..."},
		{"abcdef", 3, "abc"},
		{"ошибка вызова", 6, "оши..."},
		{"✗✗✗✗", 2, "✗✗"},
	}
	for _, tc := range tests {
		got := format.Truncate(tc.in, tc.maxLen)
		if got != tc.want {
			t.Errorf("Truncate(%q, %d) = %q, want %q", tc.in, tc.maxLen, got, tc.want)
		}
		if !utf8.ValidString(got) {
			t.Errorf("Truncate(%q, %d) produced invalid UTF-8", tc.in, tc.maxLen)
		}
	}
}

func TestStatusMark(t *testing.T) {
	if format.StatusMark(report.StatusPass) != "✓" || format.StatusMark(report.StatusFail) != "✗" {
		t.Error("unexpected pass/fail marks")
	}
}
