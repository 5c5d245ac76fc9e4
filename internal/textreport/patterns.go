package textreport

import (
	"math"
	"regexp"
	"strconv"
)

// SummaryPattern is one alternative of the summary-line cascade. Group
// indexes are 1-based; a zero Total means the pattern does not capture one.
type SummaryPattern struct {
	Name   string
	Reason string
	Re     *regexp.Regexp
	Pct    int
	Passed int
	Total  int
}

// SecurePatterns are tried in order against the secure zone; first match wins.
var SecurePatterns = []SummaryPattern{
	{
		Name:   "rate-out-of",
		Reason: "canonical summary with noise tolerated between the words",
		Re:     regexp.MustCompile(`(?i)(\d+)%\s*.{0,20}?rate\s*\((\d+)\s*.{0,10}?out.{0,10}?of.{0,10}?(\d+)\)`),
		Pct:    1,
		Passed: 2,
		Total:  3,
	},
	{
		// Upstream has emitted "success" with a look-alike character in the
		// fifth position. Only that position is a wildcard.
		Name:   "success-quirk",
		Reason: "substituted character in the word success",
		Re:     regexp.MustCompile(`(?i)(\d+)%\s*succ.ss\s*rate\s*\((\d+)`),
		Pct:    1,
		Passed: 2,
	},
	{
		Name:   "loose-out-of",
		Reason: "last resort: a percentage followed by N out of M on the same line",
		Re:     regexp.MustCompile(`(\d+)%.*?(\d+)\s*out\s*of\s*(\d+)`),
		Pct:    1,
		Passed: 2,
		Total:  3,
	},
}

// BasicPatterns are tried against the whole document for the basic suite.
var BasicPatterns = []SummaryPattern{
	{
		Name:   "tested-with",
		Reason: "fixed phrase printed by the basic environment check",
		Re:     regexp.MustCompile(`(?i)Tested with a (\d+)% success rate \((\d+) out of (\d+)\)`),
		Pct:    1,
		Passed: 2,
		Total:  3,
	},
}

// Summary is the outcome of a summary-line match.
type Summary struct {
	Pattern string
	Pct     int
	Passed  int
	Total   int
}

// Match runs the pattern against text.
func (p SummaryPattern) Match(text string) (Summary, bool) {
	m := p.Re.FindStringSubmatch(text)
	if m == nil {
		return Summary{}, false
	}
	s := Summary{
		Pattern: p.Name,
		Pct:     atoi(m[p.Pct]),
		Passed:  atoi(m[p.Passed]),
	}
	if p.Total > 0 {
		s.Total = atoi(m[p.Total])
	} else {
		s.Total = impliedTotal(s.Passed, s.Pct)
	}
	return s, true
}

// MatchFirst returns the first pattern in the list that matches text.
func MatchFirst(patterns []SummaryPattern, text string) (Summary, bool) {
	for _, p := range patterns {
		if s, ok := p.Match(text); ok {
			return s, true
		}
	}
	return Summary{}, false
}

// impliedTotal reconstructs the total from the upstream percentage when the
// matched line does not carry it. This is the only place the upstream
// percentage is used.
func impliedTotal(passed, pct int) int {
	if pct <= 0 {
		return passed
	}
	t := int(math.Round(float64(passed) * 100 / float64(pct)))
	if t < passed {
		return passed
	}
	return t
}

func atoi(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
