// Package temporal anchors relative date expressions to the speaker's
// local calendar day.
package temporal

import (
	"fmt"
	"strings"
	"time"
)

const (
	// ISOLayout matches the millisecond UTC form emitted by browsers.
	ISOLayout     = "2006-01-02T15:04:05.000Z"
	DisplayLayout = "Monday, January 2, 2006 3:04 PM MST"
	YMDLayout     = "2006-01-02"
)

type Context struct {
	Timezone        string
	NowUTCISO       string
	NowLocalDisplay string
	TodayLocalYMD   string
	Location        *time.Location
}

// Build computes the context for tz at instant now. The local day comes
// from the IANA zone, never from the process timezone.
func Build(tz string, now time.Time) (Context, error) {
	tz = strings.TrimSpace(tz)
	loc, err := LoadLocation(tz)
	if err != nil {
		return Context{}, err
	}
	local := now.In(loc)
	return Context{
		Timezone:        tz,
		NowUTCISO:       FormatISO(now),
		NowLocalDisplay: local.Format(DisplayLayout),
		TodayLocalYMD:   local.Format(YMDLayout),
		Location:        loc,
	}, nil
}

// LoadLocation resolves an IANA zone name. "Local" is rejected because it
// names the process zone rather than the caller's.
func LoadLocation(tz string) (*time.Location, error) {
	if tz == "" {
		return nil, fmt.Errorf("timezone is required")
	}
	if tz == "Local" {
		return nil, fmt.Errorf("timezone %q is not an IANA zone", tz)
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", tz, err)
	}
	return loc, nil
}

func FormatISO(t time.Time) string {
	return t.UTC().Format(ISOLayout)
}

// Tomorrow returns the caller's next local calendar day.
func (c Context) Tomorrow() string {
	day, err := time.ParseInLocation(YMDLayout, c.TodayLocalYMD, c.location())
	if err != nil {
		return ""
	}
	return day.AddDate(0, 0, 1).Format(YMDLayout)
}

func (c Context) location() *time.Location {
	if c.Location == nil {
		return time.UTC
	}
	return c.Location
}
