package normalize

import (
	"strings"
	"time"

	"github.com/foxseedlab/voicecap/internal/temporal"
)

// Offset-carrying layouts: RFC 3339 and RFC 2822 variants.
var zonedLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"Mon, 2 Jan 2006 15:04:05 -0700",
	"Mon, 2 Jan 2006 15:04 -0700",
	"2 Jan 2006 15:04:05 -0700",
	"2 Jan 2006 15:04 -0700",
	"Mon, 2 Jan 2006 15:04:05 MST",
	"2 Jan 2006 15:04:05 MST",
}

// Zone-less layouts are read in the caller's timezone.
var localLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseDate reads s under the fixed, locale-independent allowlist. Zone
// abbreviations and zone-less values resolve against loc.
func ParseDate(s string, loc *time.Location) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.UTC
	}
	for _, layout := range zonedLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// resolveDate applies the closed fallback chain shared by task due dates
// and reminder times:
//  1. an ISO value that is already a UTC RFC 3339 timestamp is kept
//     unchanged; any other parseable ISO value is rewritten to UTC ISO;
//  2. a parseable free-text value becomes UTC ISO and the text is dropped;
//  3. otherwise the trimmed text is kept and ISO is null.
//
// An ISO value that does not parse is treated as free text when no other
// free text was given.
func resolveDate(isoValue, naturalValue string, loc *time.Location) (natural, iso *string) {
	if trimmed := strings.TrimSpace(isoValue); trimmed != "" {
		if isUTCTimestamp(trimmed) {
			return optional(naturalValue), &isoValue
		}
		if t, ok := ParseDate(trimmed, loc); ok {
			out := temporal.FormatISO(t)
			return optional(naturalValue), &out
		}
		if strings.TrimSpace(naturalValue) == "" {
			naturalValue = trimmed
		}
	}
	if t, ok := ParseDate(naturalValue, loc); ok {
		out := temporal.FormatISO(t)
		return nil, &out
	}
	return optional(naturalValue), nil
}

func isUTCTimestamp(s string) bool {
	if !strings.HasSuffix(s, "Z") {
		return false
	}
	_, err := time.Parse(time.RFC3339Nano, s)
	return err == nil
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
