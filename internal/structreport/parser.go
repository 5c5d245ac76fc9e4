// Package structreport normalizes the JSON deep report published for
// executors that carry deep-report credentials in the status listing.
package structreport

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"voxlis/internal/category"
	"voxlis/internal/report"
	"voxlis/internal/upstream"
)

// DefaultSuiteVersion is reported when the payload does not name its suite version.
const DefaultSuiteVersion = "2.1.0"

// maxSecondsTimestamp is the bound above which a timestamp is taken to be
// in milliseconds rather than seconds (roughly year 33658).
const maxSecondsTimestamp = 1e12

type payload struct {
	Marker    bool     `json:"__SUNC"`
	Executor  string   `json:"executor"`
	Version   string   `json:"version"`
	Timestamp *float64 `json:"timestamp"`
	TimeTaken *float64 `json:"timeTaken"`
	Tests     struct {
		Passed []string        `json:"passed"`
		Failed json.RawMessage `json:"failed"`
	} `json:"tests"`
}

// Parse normalizes a deep report. It returns (nil, nil) when the payload
// lacks the secure-suite marker: that is "not this kind of payload", not a
// failure. An error means the bytes are not a JSON object at all.
//
// fallbackName is used when the payload does not name its executor. entry,
// when non-nil, contributes presentational fields only.
func Parse(data []byte, fallbackName string, entry *upstream.Exploit) (*report.Report, error) {
	var p payload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decode deep report: %w", err)
	}
	if !p.Marker {
		return nil, nil
	}

	failed, err := decodeFailed(p.Tests.Failed)
	if err != nil {
		return nil, fmt.Errorf("decode deep report failures: %w", err)
	}

	idx := report.NewDedupIndex()
	for _, name := range p.Tests.Passed {
		idx.Add(report.Record{Name: name, Status: report.StatusPass})
	}
	for _, rec := range failed {
		idx.Add(rec)
	}

	r := report.New(ExecutorName(p.Executor, fallbackName), report.KindSecure, "")
	r.Results = idx.Records()
	r.CountRecords()
	r.Categorize(category.Classify)

	if p.Timestamp != nil {
		r.TestDate = FormatTimestamp(*p.Timestamp)
	}
	r.ScannedVersion = p.Version
	r.SuncTestVersion = p.Version
	if r.SuncTestVersion == "" {
		r.SuncTestVersion = DefaultSuiteVersion
	}
	r.TimeTaken = p.TimeTaken

	if entry != nil {
		r.ExecutorVersion = entry.Version
		status := entry.UpdateStatus
		r.UpdateStatus = &status
		r.RbxVersion = entry.RbxVersion
	}
	return r, nil
}

// ExecutorName returns the part of the payload's executor field before any
// "/", falling back when that is empty.
func ExecutorName(embedded, fallback string) string {
	name, _, _ := strings.Cut(embedded, "/")
	if name = strings.TrimSpace(name); name != "" {
		return name
	}
	return fallback
}

// FormatTimestamp renders an epoch timestamp as RFC 3339 in UTC.
func FormatTimestamp(ts float64) string {
	var t time.Time
	if ts >= maxSecondsTimestamp {
		t = time.UnixMilli(int64(ts))
	} else {
		t = time.Unix(int64(ts), 0)
	}
	return t.UTC().Format(time.RFC3339)
}

// decodeFailed accepts either a list of names or an object mapping names to
// reasons. Object keys keep their document order.
func decodeFailed(raw json.RawMessage) ([]report.Record, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}

	switch raw[0] {
	case '[':
		var names []string
		if err := json.Unmarshal(raw, &names); err != nil {
			return nil, err
		}
		out := make([]report.Record, 0, len(names))
		for _, n := range names {
			out = append(out, report.Record{Name: n, Status: report.StatusFail})
		}
		return out, nil
	case '{':
		return decodeReasons(raw)
	}
	return nil, errors.New("failed must be a list or an object")
}

func decodeReasons(raw json.RawMessage) ([]report.Record, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	var out []report.Record
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		name, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected key %v", tok)
		}
		var val json.RawMessage
		if err := dec.Decode(&val); err != nil {
			return nil, err
		}
		out = append(out, report.Record{Name: name, Status: report.StatusFail, Reason: reason(val)})
	}
	return out, nil
}

func reason(val json.RawMessage) string {
	var s string
	if json.Unmarshal(val, &s) == nil {
		return s
	}
	if bytes.Equal(bytes.TrimSpace(val), []byte("null")) {
		return ""
	}
	var buf bytes.Buffer
	if json.Compact(&buf, val) != nil {
		return string(val)
	}
	return buf.String()
}
