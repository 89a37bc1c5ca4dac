// Package gallery manages the enrolled reference faces: identity names and
// their embedding vectors. The gallery is read-only to the recognition path;
// enrollment happens through the CLI.
package gallery

import (
	"encoding/gob"
	"errors"
	"fmt"
	"os"
	"sort"
)

// Entry pairs an enrolled identity with one reference embedding. An identity
// may have several entries (multiple reference photos).
type Entry struct {
	Name      string
	Embedding []float32
}

// LoadFile reads a gob-encoded gallery file. A missing file yields an empty
// gallery rather than an error so a fresh deployment can start enrolling.
func LoadFile(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening gallery file: %w", err)
	}
	defer f.Close()

	var entries []Entry
	if err := gob.NewDecoder(f).Decode(&entries); err != nil {
		return nil, fmt.Errorf("decoding gallery file %s: %w", path, err)
	}
	return entries, nil
}

// SaveFile writes the gallery to path atomically (write temp, rename).
func SaveFile(path string, entries []Entry) error {
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("creating gallery file: %w", err)
	}

	if err := gob.NewEncoder(f).Encode(entries); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("encoding gallery: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("closing gallery file: %w", err)
	}

	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replacing gallery file: %w", err)
	}
	return nil
}

// Names returns the distinct enrolled identity names, sorted.
func Names(entries []Entry) []string {
	seen := make(map[string]struct{})
	var names []string
	for _, e := range entries {
		if _, ok := seen[e.Name]; ok {
			continue
		}
		seen[e.Name] = struct{}{}
		names = append(names, e.Name)
	}
	sort.Strings(names)
	return names
}

// FindByName returns the entries whose normalized name matches the query.
func FindByName(entries []Entry, query string) []Entry {
	normalized := NormalizeName(query)
	var out []Entry
	for _, e := range entries {
		if NormalizeName(e.Name) == normalized {
			out = append(out, e)
		}
	}
	return out
}
