package attendance

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/kozaktomas/face-attendance/internal/store"
)

// Consolidator batch-transforms a month's raw per-day attendance data into
// one identity-grouped timeline for reporting.
type Consolidator struct {
	store store.Store

	// OnProgress, when set, is called after each processed day.
	OnProgress func(current, total int)
}

// NewConsolidator creates a Consolidator reading and writing st.
func NewConsolidator(st store.Store) *Consolidator {
	return &Consolidator{store: st}
}

// ConsolidateResult summarizes one consolidation run.
type ConsolidateResult struct {
	Days       int  `json:"days"`
	Identities int  `json:"identities"`
	Events     int  `json:"events"`
	Written    bool `json:"written"`
}

// Consolidate reads all day buckets for the month, groups events by identity
// preserving insertion order, and atomically replaces the consolidated
// timeline node. A month with no day nodes is a no-op, not an error; day
// nodes with zero identity records still produce (and write) an empty list.
func (c *Consolidator) Consolidate(ctx context.Context, year int, month time.Month) (*ConsolidateResult, error) {
	raw, err := c.store.Read(ctx, store.MonthPath(year, month))
	if err != nil {
		return nil, fmt.Errorf("reading month: %w", err)
	}
	if raw == nil {
		return &ConsolidateResult{}, nil
	}

	// day -> identity -> push key -> event
	var monthData map[string]map[string]map[string]Event
	if err := json.Unmarshal(raw, &monthData); err != nil {
		return nil, fmt.Errorf("decoding month at %s: %w", store.MonthPath(year, month), err)
	}
	if len(monthData) == 0 {
		return &ConsolidateResult{}, nil
	}

	// Iteration is fully sorted (days, then identities, then push keys) so
	// repeated runs over unchanged data produce byte-identical output.
	days := sortedKeys(monthData)

	grouped := make(map[string][]Event)
	for i, day := range days {
		for _, identity := range sortedKeys(monthData[day]) {
			bucket := monthData[day][identity]
			for _, key := range sortedKeys(bucket) {
				grouped[identity] = append(grouped[identity], bucket[key])
			}
		}
		if c.OnProgress != nil {
			c.OnProgress(i+1, len(days))
		}
	}

	// Flatten grouped-by-identity. The first record per identity is the
	// clock-in anchor, taken positionally; the rest follow in original order.
	timeline := make([]Event, 0)
	for _, identity := range sortedKeys(grouped) {
		records := grouped[identity]
		timeline = append(timeline, records[0])
		timeline = append(timeline, records[1:]...)
	}

	if err := c.store.Write(ctx, store.ConsolidatedPath(year, month), timeline); err != nil {
		return nil, fmt.Errorf("writing consolidated timeline: %w", err)
	}

	return &ConsolidateResult{
		Days:       len(days),
		Identities: len(grouped),
		Events:     len(timeline),
		Written:    true,
	}, nil
}

// ReadTimeline returns the stored consolidated timeline for a month, or nil
// when none has been written yet.
func (c *Consolidator) ReadTimeline(ctx context.Context, year int, month time.Month) ([]Event, error) {
	raw, err := c.store.Read(ctx, store.ConsolidatedPath(year, month))
	if err != nil {
		return nil, fmt.Errorf("reading consolidated timeline: %w", err)
	}
	if raw == nil {
		return nil, nil
	}

	var timeline []Event
	if err := json.Unmarshal(raw, &timeline); err != nil {
		return nil, fmt.Errorf("decoding consolidated timeline: %w", err)
	}
	return timeline, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
