// Package store defines the hierarchical document store contract used for
// attendance data, plus the available backends (Firebase RTDB, MySQL,
// in-memory). Paths address JSON subtrees; appends generate chronologically
// sortable child keys.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrUnavailable indicates the backing store could not be reached. Callers
// drop the current operation and carry on; they never crash on it.
var ErrUnavailable = errors.New("store unavailable")

// Store is a path-addressed hierarchical document store.
type Store interface {
	// Exists reports whether any data is present at path.
	Exists(ctx context.Context, path string) (bool, error)

	// Read returns the JSON document rooted at path, or nil if absent.
	Read(ctx context.Context, path string) (json.RawMessage, error)

	// Write replaces the document at path wholesale.
	Write(ctx context.Context, path string, doc any) error

	// Append adds doc as a child of path under a store-generated key and
	// returns that key. Keys sort lexicographically in insertion order.
	Append(ctx context.Context, path string, doc any) (string, error)
}

// MonthPath returns the raw attendance node for a month, e.g.
// /attendance/2024/January. English month names match the data layout the
// mobile clients already read.
func MonthPath(year int, month time.Month) string {
	return fmt.Sprintf("/attendance/%d/%s", year, month)
}

// DayPath returns the day node under a month, with a zero-padded day.
func DayPath(year int, month time.Month, day int) string {
	return fmt.Sprintf("%s/%02d", MonthPath(year, month), day)
}

// PersonPath returns the per-identity day bucket holding raw events.
func PersonPath(year int, month time.Month, day int, identity string) string {
	return fmt.Sprintf("%s/%s", DayPath(year, month, day), identity)
}

// ConsolidatedPath returns the node holding a month's consolidated timeline.
func ConsolidatedPath(year int, month time.Month) string {
	return fmt.Sprintf("/consolidated_attendance/%d/%s", year, month)
}
