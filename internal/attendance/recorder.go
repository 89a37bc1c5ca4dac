package attendance

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/kozaktomas/face-attendance/internal/store"
)

// Recorder converts recognized-identity observations into persisted
// attendance events. One Recorder owns one DayCache; state beyond the cache
// lives in the store.
type Recorder struct {
	store    store.Store
	cache    *DayCache
	cooldown time.Duration

	// strictAlternation switches from the historical rule (any prior event
	// today means Clock Out) to true Clock In / Clock Out alternation.
	strictAlternation bool

	// mu serializes read-decide-append sequences. This closes the
	// intra-process race between concurrent observations; cross-process
	// races against the remote store remain possible.
	mu sync.Mutex
}

// NewRecorder creates a Recorder writing to st.
func NewRecorder(st store.Store, cooldown time.Duration, strictAlternation bool) *Recorder {
	return &Recorder{
		store:             st,
		cache:             NewDayCache(),
		cooldown:          cooldown,
		strictAlternation: strictAlternation,
	}
}

// Cache exposes the recorder's day cache for read-only reporting.
func (r *Recorder) Cache() *DayCache {
	return r.cache
}

// RecordObservation records one observation of identity at observedAt.
// It returns the persisted event, or nil when the observation was suppressed
// by the cooldown window. Store failures abort only this observation.
func (r *Recorder) RecordObservation(ctx context.Context, identity string, observedAt time.Time) (*Event, error) {
	if identity == "" {
		return nil, fmt.Errorf("identity must not be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	year, month, day := observedAt.Date()

	if err := r.ensureNode(ctx, store.MonthPath(year, month)); err != nil {
		return nil, fmt.Errorf("ensuring month node: %w", err)
	}
	if err := r.ensureNode(ctx, store.DayPath(year, month, day)); err != nil {
		return nil, fmt.Errorf("ensuring day node: %w", err)
	}

	personPath := store.PersonPath(year, month, day, identity)
	events, keys, err := r.readBucket(ctx, personPath)
	if err != nil {
		return nil, fmt.Errorf("reading day bucket: %w", err)
	}

	status := StatusClockIn
	if len(keys) > 0 {
		// Prior events exist today. Walk backwards from the newest record
		// to find a parseable timestamp for the cooldown comparison;
		// malformed records are logged and skipped, never fatal.
		for i := len(keys) - 1; i >= 0; i-- {
			last := events[keys[i]]
			ts, err := last.Timestamp()
			if err != nil {
				log.Printf("attendance: skipping malformed event at %s[%s]: %v", personPath, keys[i], err)
				continue
			}
			if observedAt.Sub(ts) < r.cooldown {
				return nil, nil // suppressed
			}
			break
		}

		status = StatusClockOut
		if r.strictAlternation && events[keys[len(keys)-1]].Status == StatusClockOut {
			status = StatusClockIn
		}
	}

	event := NewEvent(identity, status, observedAt)
	if _, err := r.store.Append(ctx, personPath, event); err != nil {
		return nil, fmt.Errorf("appending event: %w", err)
	}

	r.cache.Mark(identity, DayKey(observedAt))
	return &event, nil
}

// ensureNode creates an empty container node when none exists yet. This is a
// read-modify-write against a remote store and is not atomic.
func (r *Recorder) ensureNode(ctx context.Context, path string) error {
	exists, err := r.store.Exists(ctx, path)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	return r.store.Write(ctx, path, map[string]any{})
}

// readBucket loads a day bucket and returns its events plus the sorted push
// keys. Push keys sort lexicographically in insertion order.
func (r *Recorder) readBucket(ctx context.Context, path string) (map[string]Event, []string, error) {
	raw, err := r.store.Read(ctx, path)
	if err != nil {
		return nil, nil, err
	}
	if raw == nil {
		return nil, nil, nil
	}

	var events map[string]Event
	if err := json.Unmarshal(raw, &events); err != nil {
		return nil, nil, fmt.Errorf("decoding day bucket at %s: %w", path, err)
	}

	keys := make([]string, 0, len(events))
	for key := range events {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return events, keys, nil
}
