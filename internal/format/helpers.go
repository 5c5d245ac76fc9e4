package format

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"

	"voxlis/internal/report"
)

// dateLayouts are the testDate forms seen in practice, tried in order.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"01/02/2006 15:04:05",
	"01/02/2006",
}

// Age renders testDate relative to now ("3 days ago"). Unparseable dates
// are returned unchanged; empty stays empty.
func Age(testDate string, now time.Time) string {
	if testDate == "" {
		return ""
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, testDate); err == nil {
			return humanize.RelTime(t, now, "ago", "from now")
		}
	}
	return testDate
}

// Size renders a byte count ("1.2 kB").
func Size(n int) string {
	if n < 0 {
		n = 0
	}
	return humanize.Bytes(uint64(n))
}

// FmtDuration formats a duration as "Xm Ys", "Ys", or "Nms" below a second.
func FmtDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	s := int(d.Seconds())
	if s >= 60 {
		return fmt.Sprintf("%dm %ds", s/60, s%60)
	}
	return fmt.Sprintf("%ds", s)
}

// Truncate shortens s to maxLen runes, appending "..." if truncated.
func Truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}

// StatusMark returns the glyph used for a test status.
func StatusMark(s report.Status) string {
	switch s {
	case report.StatusPass:
		return "✓"
	case report.StatusFail:
		return "✗"
	case report.StatusWarn:
		return "!"
	case report.StatusSkip:
		return "-"
	}
	return "?"
}
