package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
)

// Memory is an in-memory Store used by tests and offline runs. Documents are
// kept as a nested map tree; appends generate push IDs so iteration order
// matches the networked backends.
type Memory struct {
	mu   sync.RWMutex
	root map[string]any
	ids  *PushIDGenerator
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		root: make(map[string]any),
		ids:  NewPushIDGenerator(),
	}
}

// splitPath breaks "/a/b/c" into ["a","b","c"].
func splitPath(path string) []string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}

// node returns the subtree at path, or nil if absent.
func (m *Memory) node(path string) any {
	var cur any = m.root
	for _, seg := range splitPath(path) {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		cur, ok = obj[seg]
		if !ok {
			return nil
		}
	}
	return cur
}

// ensureParents walks the path creating intermediate maps and returns the
// final parent map plus the leaf segment name.
func (m *Memory) ensureParents(path string) (map[string]any, string) {
	segs := splitPath(path)
	if len(segs) == 0 {
		return nil, ""
	}
	cur := m.root
	for _, seg := range segs[:len(segs)-1] {
		next, ok := cur[seg].(map[string]any)
		if !ok {
			next = make(map[string]any)
			cur[seg] = next
		}
		cur = next
	}
	return cur, segs[len(segs)-1]
}

func (m *Memory) Exists(ctx context.Context, path string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.node(path) != nil, nil
}

func (m *Memory) Read(ctx context.Context, path string) (json.RawMessage, error) {
	m.mu.RLock()
	n := m.node(path)
	m.mu.RUnlock()

	if n == nil {
		return nil, nil
	}

	raw, err := json.Marshal(n)
	if err != nil {
		return nil, fmt.Errorf("marshaling subtree at %s: %w", path, err)
	}
	return raw, nil
}

func (m *Memory) Write(ctx context.Context, path string, doc any) error {
	// Round-trip through JSON so stored values are plain maps/slices,
	// independent of the caller's types.
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshaling document for %s: %w", path, err)
	}
	var plain any
	if err := json.Unmarshal(raw, &plain); err != nil {
		return fmt.Errorf("normalizing document for %s: %w", path, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	parent, leaf := m.ensureParents(path)
	if parent == nil {
		return fmt.Errorf("invalid path %q", path)
	}
	parent[leaf] = plain
	return nil
}

func (m *Memory) Append(ctx context.Context, path string, doc any) (string, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("marshaling document for %s: %w", path, err)
	}
	var plain any
	if err := json.Unmarshal(raw, &plain); err != nil {
		return "", fmt.Errorf("normalizing document for %s: %w", path, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	parent, leaf := m.ensureParents(path)
	if parent == nil {
		return "", fmt.Errorf("invalid path %q", path)
	}

	bucket, ok := parent[leaf].(map[string]any)
	if !ok {
		bucket = make(map[string]any)
		parent[leaf] = bucket
	}

	key := m.ids.Next()
	bucket[key] = plain
	return key, nil
}
