package domain

import (
	"strings"
	"time"
	"unicode"
)

// MonthLayout is the canonical month token shape, e.g. "Jan2026".
const MonthLayout = "Jan2006"

// NormalizeMonth canonicalizes a free-form month token: the first three
// characters are title-cased and the rest is passed through untouched.
// It never validates; ParseMonth is the gate for that.
func NormalizeMonth(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}

	runes := []rune(raw)
	for i := 0; i < len(runes) && i < 3; i++ {
		if i == 0 {
			runes[i] = unicode.ToUpper(runes[i])
		} else {
			runes[i] = unicode.ToLower(runes[i])
		}
	}
	return string(runes)
}

// CurrentMonth returns the canonical token of the month containing now.
func CurrentMonth(now time.Time) string {
	return now.Format(MonthLayout)
}

// ParseMonth parses a canonical token into the first day of that month,
// expressed as a civil date (midnight UTC). ok is false when the token is
// not a real month.
func ParseMonth(token string) (first time.Time, ok bool) {
	t, err := time.Parse(MonthLayout, token)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// ResolveMonth normalizes raw and falls back to the current month when it is empty.
func ResolveMonth(raw string, now time.Time) string {
	if token := NormalizeMonth(raw); token != "" {
		return token
	}
	return CurrentMonth(now)
}
