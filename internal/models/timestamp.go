package models

import (
	"fmt"
	"time"
	_ "time/tzdata" // zone database for hosts without one
)

// TimestampLayout renders record dates as "DD-MM-YYYY Time: h:mm:ss AM/PM".
const TimestampLayout = "02-01-2006 Time: 3:04:05 PM"

// DefaultTimeZone is the zone ledger dates are rendered in unless configured.
const DefaultTimeZone = "Asia/Kolkata"

// fallback layouts accepted when reading dates written by other tools
var timestampReadLayouts = []string{
	TimestampLayout,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Clock stamps records in a fixed, configured time zone
type Clock struct {
	loc *time.Location
	now func() time.Time
}

// NewClock creates a clock for the given location
func NewClock(loc *time.Location) *Clock {
	return NewClockWithSource(loc, time.Now)
}

// NewClockWithSource creates a clock with a custom time source
func NewClockWithSource(loc *time.Location, now func() time.Time) *Clock {
	if loc == nil {
		loc = time.UTC
	}
	if now == nil {
		now = time.Now
	}
	return &Clock{loc: loc, now: now}
}

// LoadClock creates a clock for a named IANA zone
func LoadClock(zone string) (*Clock, error) {
	if zone == "" {
		zone = DefaultTimeZone
	}
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return nil, fmt.Errorf("unknown time zone %q: %w", zone, err)
	}
	return NewClock(loc), nil
}

// Location returns the clock's zone
func (c *Clock) Location() *time.Location {
	return c.loc
}

// Now returns the current instant in the clock's zone
func (c *Clock) Now() time.Time {
	return c.now().In(c.loc)
}

// Stamp returns the current instant formatted for a record
func (c *Clock) Stamp() string {
	return FormatTimestamp(c.Now())
}

// FormatTimestamp formats t in its own location using TimestampLayout
func FormatTimestamp(t time.Time) string {
	return t.Format(TimestampLayout)
}

// ParseTimestamp parses a record date in the given location
func ParseTimestamp(value string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	for _, layout := range timestampReadLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", value)
}
