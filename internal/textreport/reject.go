package textreport

import (
	"regexp"
	"strings"
)

// Rejection reasons returned by Reject.
const (
	RejectLength   = "length"
	RejectShape    = "shape"
	RejectStopWord = "stop-word"
	RejectProse    = "prose"
)

// stopWords are words the report's narrative sentences start with after a
// status glyph. They are never test names.
var stopWords = map[string]bool{
	"passed": true, "total": true, "failed": true, "error": true, "success": true,
	"test": true, "tests": true, "testing": true, "tested": true,
	"unc": true, "sunc": true, "version": true, "date": true, "time": true,
	"check": true, "checking": true, "results": true, "result": true,
	"out": true, "loading": true, "grabbing": true, "finished": true, "starting": true,
	"environment": true, "executor": true, "info": true, "unknown": true,
}

var (
	validName = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_.]*$`)
	prose     = regexp.MustCompile(`(?i)tests?\s*(failed|passed)|success\s*rate|out\s*of|version|discord`)
)

// Reject reports whether name must not become a test record, and why.
func Reject(name string) (string, bool) {
	if len(name) < 3 || len(name) > 50 {
		return RejectLength, true
	}
	if !validName.MatchString(name) {
		return RejectShape, true
	}
	if stopWords[strings.ToLower(name)] {
		return RejectStopWord, true
	}
	if prose.MatchString(name) {
		return RejectProse, true
	}
	return "", false
}
