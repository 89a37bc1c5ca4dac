// Package attendance implements the attendance decision engine: turning
// recognized-identity observations into deduplicated Clock In / Clock Out
// events, and consolidating a month's raw events into a per-person timeline.
package attendance

import (
	"fmt"
	"time"
)

// Status marks an event as a clock-in or clock-out. The string values are
// stored verbatim and must not change.
type Status string

const (
	StatusClockIn  Status = "Clock In"
	StatusClockOut Status = "Clock Out"
)

// TimestampLayout is the exact stored timestamp format (two-digit year).
// The consolidation reader and the cooldown comparison both parse this
// layout, so writer and readers must agree byte for byte.
const TimestampLayout = "06/01/02 15:04:05"

// Event is one raw attendance record. Immutable once written.
type Event struct {
	Date   string `json:"date"`
	Name   string `json:"name"`
	Status Status `json:"status"`
}

// NewEvent builds an event with the timestamp rendered at second precision.
func NewEvent(name string, status Status, at time.Time) Event {
	return Event{
		Date:   at.Format(TimestampLayout),
		Name:   name,
		Status: status,
	}
}

// Timestamp parses the stored date back into a time in the local zone.
func (e Event) Timestamp() (time.Time, error) {
	ts, err := time.ParseInLocation(TimestampLayout, e.Date, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("malformed stored event date %q: %w", e.Date, err)
	}
	return ts, nil
}

// DayKey renders the cache key for a calendar day, e.g. "24_01_31".
func DayKey(t time.Time) string {
	return t.Format("06_01_02")
}
