package resolve

import (
	"strings"
	"unicode"

	"voxlis/internal/upstream"
)

// Normalize lower-cases name and drops everything that is not a letter or
// digit, so "Synapse Z" and "synapse-z" compare equal.
func Normalize(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Match finds the listing entry for name. Tiers are tried in order: exact
// case-insensitive title, equal normalized forms, then normalized
// containment in either direction. Within a tier the first entry wins.
func Match(exploits []upstream.Exploit, name string) *upstream.Exploit {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}
	for i := range exploits {
		if strings.EqualFold(strings.TrimSpace(exploits[i].Title), name) {
			return &exploits[i]
		}
	}

	want := Normalize(name)
	if want == "" {
		return nil
	}
	for i := range exploits {
		if Normalize(exploits[i].Title) == want {
			return &exploits[i]
		}
	}
	for i := range exploits {
		got := Normalize(exploits[i].Title)
		if got == "" {
			continue
		}
		if strings.Contains(got, want) || strings.Contains(want, got) {
			return &exploits[i]
		}
	}
	return nil
}
