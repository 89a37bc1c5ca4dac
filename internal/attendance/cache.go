package attendance

import (
	"sort"
	"sync"
)

// DayCache tracks which calendar days each identity already has a recorded
// event on. It is a process-local optimization only: never authoritative,
// rebuilt empty on restart.
type DayCache struct {
	mu   sync.RWMutex
	days map[string]map[string]struct{} // identity -> set of day keys
}

// NewDayCache creates an empty cache.
func NewDayCache() *DayCache {
	return &DayCache{days: make(map[string]map[string]struct{})}
}

// Mark records that identity has at least one event on the given day.
func (c *DayCache) Mark(identity, day string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	set, ok := c.days[identity]
	if !ok {
		set = make(map[string]struct{})
		c.days[identity] = set
	}
	set[day] = struct{}{}
}

// Seen reports whether identity already has a recorded event on the day.
func (c *DayCache) Seen(identity, day string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	_, ok := c.days[identity][day]
	return ok
}

// Days returns the sorted day keys recorded for an identity.
func (c *DayCache) Days(identity string) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]string, 0, len(c.days[identity]))
	for day := range c.days[identity] {
		out = append(out, day)
	}
	sort.Strings(out)
	return out
}

// Identities returns the sorted identities present in the cache.
func (c *DayCache) Identities() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]string, 0, len(c.days))
	for identity := range c.days {
		out = append(out, identity)
	}
	sort.Strings(out)
	return out
}
