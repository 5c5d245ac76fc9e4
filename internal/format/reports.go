package format

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"voxlis/internal/category"
	"voxlis/internal/pipeline"
	"voxlis/internal/report"
)

// Report renders a summary block, a per-category table and the list of
// non-passing tests.
func Report(r *report.Report, m Mode, now time.Time) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s (%s): %d%%, %d/%d passed, %d failed\n",
		r.ExecutorName, r.TestType, r.Percentage, r.Passed, r.Total, r.Failed)
	if r.TestDate != "" {
		fmt.Fprintf(&b, "tested: %s (%s)\n", r.TestDate, Age(r.TestDate, now))
	}
	if r.ExecutorVersion != "" {
		fmt.Fprintf(&b, "version: %s\n", r.ExecutorVersion)
	}
	fmt.Fprintf(&b, "source: %s\n\n", r.Source)

	if len(r.Categories) > 0 {
		b.WriteString(categoryTable(r, m))
		b.WriteString("\n")
	}

	failing := NonPassing(r)
	if len(failing) > 0 {
		tb := NewTable(m, NonPassingColumns...)
		for _, rec := range failing {
			tb.Row(StatusMark(rec.Status), rec.Name, category.Classify(rec.Name), Truncate(rec.Reason, 60))
		}
		b.WriteString("\n")
		b.WriteString(tb.String())
		b.WriteString("\n")
	}
	return b.String()
}

func categoryTable(r *report.Report, m Mode) string {
	tb := NewTable(m, CategoryColumns...)
	var pass, fail, other int
	for _, name := range categoryOrder(r) {
		var p, f, o int
		for _, rec := range r.Categories[name] {
			switch rec.Status {
			case report.StatusPass:
				p++
			case report.StatusFail:
				f++
			default:
				o++
			}
		}
		tb.Row(name, p, f, o)
		pass, fail, other = pass+p, fail+f, other+o
	}
	tb.Footer("total", pass, fail, other)
	return tb.String()
}

// categoryOrder lists the report's categories in classifier priority
// order, then any unknown names alphabetically.
func categoryOrder(r *report.Report) []string {
	seen := map[string]bool{}
	var out []string
	for _, name := range category.Names() {
		if _, ok := r.Categories[name]; ok && !seen[name] {
			out = append(out, name)
			seen[name] = true
		}
	}
	var rest []string
	for name := range r.Categories {
		if !seen[name] {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	return append(out, rest...)
}

// NonPassing returns every record whose status is not pass, in report order.
func NonPassing(r *report.Report) []report.Record {
	var out []report.Record
	for _, rec := range r.Results {
		if rec.Status != report.StatusPass {
			out = append(out, rec)
		}
	}
	return out
}

// Warm renders warm-up results, one row per job.
func Warm(results []pipeline.WarmResult, m Mode) string {
	tb := NewTable(m, WarmColumns...)
	failed := 0
	for _, res := range results {
		errText := ""
		if res.Err != nil {
			errText = res.Err.Error()
			failed++
		}
		tb.Row(res.Name, res.Kind, res.Status, res.Passed, res.Total, res.Source, FmtDuration(res.Elapsed), errText)
	}
	tb.Footer(fmt.Sprintf("%d jobs", tb.Rows()), "", "", "", "", "", "", fmt.Sprintf("%d failed", failed))
	return tb.String()
}
