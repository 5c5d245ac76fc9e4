// Package textreport extracts test records and summary counts from the
// plain-text environment-check dumps hosted per executor.
//
// The document interleaves prose with glyph-prefixed result lines:
//
//	Testing Date and Time: 2025-03-01 12:00
//	✅ Drawing.Fonts
//	❌ gethiddenproperty
//	⚠️ getscriptbytecode
//	...
//	UNC Environment Check
//	Tested with a 82% success rate (41 out of 50)
//	+ ⛔ getscriptclosure failed: ...
//
// Everything before the "UNC Environment Check" marker belongs to the secure
// suite, everything after it to the basic suite.
package textreport

import (
	"regexp"
	"strings"
	"unicode"

	"voxlis/internal/category"
	"voxlis/internal/report"
)

// Delimiter separates the secure-suite zone from the basic-suite zone.
const Delimiter = "UNC Environment Check"

// MinReportLength is the shortest document callers should hand to Parse.
// Anything shorter is treated as "report not available".
const MinReportLength = 100

const variationSelector = "\uFE0F"

var (
	dateLine   = regexp.MustCompile(`Testing Date and Time:\s*(.+)`)
	identifier = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_.]*`)
)

// glyphs maps each status glyph to its outcome. Order matters only for
// readability; no glyph is a prefix of another.
var glyphs = []struct {
	glyph  string
	status report.Status
}{
	{"✅", report.StatusPass},
	{"❌", report.StatusFail},
	{"⛔", report.StatusFail},
	{"⚠", report.StatusWarn},
	{"⏺", report.StatusSkip},
}

// Parse builds a report for kind from raw. It never fails: a document with
// no qualifying lines yields an empty, zero-count report. ExecutorName and
// Source are left for the caller.
func Parse(raw string, kind report.Kind) *report.Report {
	r := report.New("", kind, "")
	r.TestDate = TestDate(raw)

	secure, basic := Zones(raw)
	zone := secure
	if kind == report.KindBasic {
		zone = basic
	}

	summary, found := FindSummary(raw, kind)

	idx := report.NewDedupIndex()
	for _, line := range strings.Split(zone, "\n") {
		rec, ok := ParseLine(line)
		if !ok {
			continue
		}
		idx.Add(rec)
	}
	r.Results = idx.Records()
	r.Categorize(category.Classify)

	if found {
		r.SetSummary(summary.Passed, summary.Total)
	}
	if !r.HasSummary() && len(r.Results) > 0 {
		r.CountRecords()
	}
	return r
}

// TestDate returns the trimmed value of the "Testing Date and Time:" line,
// or "" when the document has none.
func TestDate(raw string) string {
	m := dateLine.FindStringSubmatch(raw)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

// Zones splits raw at the first Delimiter. Without a delimiter both zones
// are the whole document.
func Zones(raw string) (secure, basic string) {
	before, after, found := strings.Cut(raw, Delimiter)
	if !found {
		return raw, raw
	}
	return before, after
}

// FindSummary runs the summary cascade for kind. Secure patterns only see
// the secure zone; the basic phrase is unambiguous and searched everywhere.
func FindSummary(raw string, kind report.Kind) (Summary, bool) {
	if kind == report.KindBasic {
		return MatchFirst(BasicPatterns, raw)
	}
	secure, _ := Zones(raw)
	return MatchFirst(SecurePatterns, secure)
}

// ParseLine recognizes one result line such as "✅ getgenv" or
// "+ ⛔ getscriptclosure failed: ...". Lines whose identifier is rejected
// by Reject are not results.
func ParseLine(line string) (report.Record, bool) {
	s := strings.TrimLeftFunc(strings.TrimSpace(line), func(r rune) bool {
		return r == '+' || r == '-' || unicode.IsSpace(r)
	})

	status, rest, ok := cutGlyph(s)
	if !ok {
		return report.Record{}, false
	}
	rest = strings.TrimLeftFunc(rest, unicode.IsSpace)

	name := identifier.FindString(rest)
	if name == "" {
		return report.Record{}, false
	}
	if _, rejected := Reject(name); rejected {
		return report.Record{}, false
	}
	return report.Record{Name: name, Status: status}, true
}

func cutGlyph(s string) (report.Status, string, bool) {
	for _, g := range glyphs {
		if rest, ok := strings.CutPrefix(s, g.glyph); ok {
			rest = strings.TrimPrefix(rest, variationSelector)
			return g.status, rest, true
		}
	}
	return "", s, false
}
