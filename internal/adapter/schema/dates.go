package schema

import (
	"strings"
	"time"
)

// CanonicalDateLayout renders dates as 17-May-2018.
const CanonicalDateLayout = "02-Jan-2006"

// Tried in order; the first layout that parses the whole string wins. The last
// two are not statement formats but keep the normalizer idempotent and accept
// ISO dates from structured exports.
var dateLayouts = []string{
	"2-1-06",
	"2 Jan 2006",
	"2/1/2006",
	"2/1/06",
	"2-Jan-2006",
	"2006-01-02",
}

// DateResult is the outcome of normalizing one date string.
type DateResult struct {
	Value  string
	Parsed bool
}

// ParseDate normalizes a date string. Embedded newlines (common when a PDF cell
// wraps) are treated as spaces. When no layout matches, the input is returned
// unchanged with Parsed set to false.
func ParseDate(raw string) DateResult {
	s := strings.TrimSpace(strings.ReplaceAll(raw, "\n", " "))
	s = strings.ReplaceAll(s, "\r", "")
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		return DateResult{Value: t.Format(CanonicalDateLayout), Parsed: true}
	}
	return DateResult{Value: raw}
}

// NormalizeDate returns the canonical form of raw, or raw itself when it is not
// a recognized date.
func NormalizeDate(raw string) string {
	return ParseDate(raw).Value
}
