package report

import "strings"

// DedupIndex collects records in first-seen order and drops later records
// whose name matches an earlier one case-insensitively.
type DedupIndex struct {
	known   map[string]bool
	records []Record
}

// NewDedupIndex creates an empty dedup index.
func NewDedupIndex() *DedupIndex {
	return &DedupIndex{known: make(map[string]bool)}
}

// Key returns the dedup key for a test name. Whitespace is kept as-is.
func Key(name string) string {
	return strings.ToLower(name)
}

// Add keeps rec unless its name was seen before. It reports whether rec was kept.
func (d *DedupIndex) Add(rec Record) bool {
	k := Key(rec.Name)
	if d.known[k] {
		return false
	}
	d.known[k] = true
	d.records = append(d.records, rec)
	return true
}

// Records returns the kept records in first-seen order. Never nil.
func (d *DedupIndex) Records() []Record {
	out := make([]Record, len(d.records))
	copy(out, d.records)
	return out
}
