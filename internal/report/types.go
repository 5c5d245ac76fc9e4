// Package report holds the normalized test-report model shared by both
// parsers, the resolver pipeline and every outward surface (HTTP, MCP, CLI).
package report

import (
	"math"
	"strings"
)

// Kind selects which of the two compatibility suites a report covers.
type Kind string

const (
	// KindSecure is the stricter superset suite ("sUNC").
	KindSecure Kind = "sunc"
	// KindBasic is the original suite ("UNC").
	KindBasic Kind = "unc"
)

// ParseKind maps a query value to a Kind. Anything other than an explicit
// "unc" selects the secure suite.
func ParseKind(s string) Kind {
	if strings.EqualFold(strings.TrimSpace(s), string(KindBasic)) {
		return KindBasic
	}
	return KindSecure
}

// Status is the outcome of a single test.
type Status string

const (
	StatusPass Status = "pass"
	StatusFail Status = "fail"
	StatusSkip Status = "skip"
	StatusWarn Status = "warn"
)

// Record is one tested capability.
type Record struct {
	Name   string `json:"name"`
	Status Status `json:"status"`
	Reason string `json:"reason,omitempty"`
}

// Report is a normalized test report for one executor and one Kind.
type Report struct {
	ExecutorName string              `json:"executorName"`
	TestType     Kind                `json:"testType"`
	Percentage   int                 `json:"percentage"`
	Passed       int                 `json:"passed"`
	Total        int                 `json:"total"`
	Failed       int                 `json:"failed"`
	TestDate     string              `json:"testDate,omitempty"`
	Source       string              `json:"source"`
	Results      []Record            `json:"results"`
	Categories   map[string][]Record `json:"categories"`

	// Presentational extras. Only the structured path and the listing
	// placeholder fill these.
	ScannedVersion  string   `json:"scannedVersion,omitempty"`
	ExecutorVersion string   `json:"executorVersion,omitempty"`
	SuncTestVersion string   `json:"suncTestVersion,omitempty"`
	TimeTaken       *float64 `json:"timeTaken,omitempty"`
	UpdateStatus    *bool    `json:"updateStatus,omitempty"`
	RbxVersion      string   `json:"rbxVersion,omitempty"`
}

// New returns an empty report with non-nil collections so it encodes as
// [] and {} rather than null.
func New(executorName string, kind Kind, source string) *Report {
	return &Report{
		ExecutorName: executorName,
		TestType:     kind,
		Source:       source,
		Results:      []Record{},
		Categories:   map[string][]Record{},
	}
}

// Percentage returns round(100*passed/total), or 0 when total is not positive.
func Percentage(passed, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(100 * float64(passed) / float64(total)))
}

// SetSummary applies counts taken from an upstream summary line.
// failed is total-passed; a passed count above total raises total to match
// so the counts never go negative.
func (r *Report) SetSummary(passed, total int) {
	if passed < 0 {
		passed = 0
	}
	if total < passed {
		total = passed
	}
	r.Passed = passed
	r.Total = total
	r.Failed = total - passed
	r.Percentage = Percentage(passed, total)
}

// CountRecords derives the counts from Results: failed is the number of
// fail records and total is passed+failed. Skips and warnings count for neither.
func (r *Report) CountRecords() {
	passed, failed := 0, 0
	for _, rec := range r.Results {
		switch rec.Status {
		case StatusPass:
			passed++
		case StatusFail:
			failed++
		}
	}
	r.Passed = passed
	r.Failed = failed
	r.Total = passed + failed
	r.Percentage = Percentage(passed, r.Total)
}

// HasSummary reports whether any count has been set.
func (r *Report) HasSummary() bool {
	return r.Passed != 0 || r.Total != 0 || r.Failed != 0
}

// Categorize rebuilds Categories from Results using classify. Every record
// lands in exactly one bucket and bucket order follows Results.
func (r *Report) Categorize(classify func(name string) string) {
	cats := make(map[string][]Record)
	for _, rec := range r.Results {
		c := classify(rec.Name)
		cats[c] = append(cats[c], rec)
	}
	r.Categories = cats
}
