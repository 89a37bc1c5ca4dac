package recognize

import (
	"math"
	"testing"

	"github.com/kozaktomas/face-attendance/internal/gallery"
)

func TestCosineDistance(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 0, 0}, []float32{1, 0, 0}, 0},
		{"orthogonal", []float32{1, 0, 0}, []float32{0, 1, 0}, 1},
		{"opposite", []float32{1, 0, 0}, []float32{-1, 0, 0}, 2},
		{"length mismatch", []float32{1, 0}, []float32{1, 0, 0}, 2},
		{"zero vector", []float32{0, 0, 0}, []float32{1, 0, 0}, 2},
		{"empty", nil, nil, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CosineDistance(tt.a, tt.b)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("CosineDistance() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMatcher_MatchKnownIdentity(t *testing.T) {
	m := NewMatcher(0.5)
	err := m.BuildFromGallery([]gallery.Entry{
		{Name: "Alice", Embedding: []float32{1, 0, 0}},
		{Name: "Bob", Embedding: []float32{0, 1, 0}},
	})
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}

	identity, dist, err := m.Match([]float32{0.99, 0.05, 0})
	if err != nil {
		t.Fatalf("match failed: %v", err)
	}
	if identity != "Alice" {
		t.Errorf("expected Alice, got %q", identity)
	}
	if dist > 0.1 {
		t.Errorf("expected small distance, got %v", dist)
	}
}

func TestMatcher_FarQueryIsUnknown(t *testing.T) {
	m := NewMatcher(0.3)
	err := m.BuildFromGallery([]gallery.Entry{
		{Name: "Alice", Embedding: []float32{1, 0, 0}},
	})
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}

	identity, _, err := m.Match([]float32{0, 0, 1})
	if err != nil {
		t.Fatalf("match failed: %v", err)
	}
	if identity != "Unknown" {
		t.Errorf("expected Unknown, got %q", identity)
	}
}

func TestMatcher_EmptyIndexErrors(t *testing.T) {
	m := NewMatcher(0.5)
	if _, _, err := m.Match([]float32{1, 0, 0}); err == nil {
		t.Error("expected error for uninitialized index")
	}
}

func TestMatcher_SkipsEmptyEmbeddings(t *testing.T) {
	m := NewMatcher(0.5)
	err := m.BuildFromGallery([]gallery.Entry{
		{Name: "Alice", Embedding: []float32{1, 0, 0}},
		{Name: "Broken", Embedding: nil},
	})
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	if m.Count() != 1 {
		t.Errorf("expected 1 indexed entry, got %d", m.Count())
	}
}

func TestMatcher_RebuildReplacesIndex(t *testing.T) {
	m := NewMatcher(0.5)
	if err := m.BuildFromGallery([]gallery.Entry{
		{Name: "Alice", Embedding: []float32{1, 0, 0}},
	}); err != nil {
		t.Fatalf("build failed: %v", err)
	}
	if err := m.BuildFromGallery([]gallery.Entry{
		{Name: "Bob", Embedding: []float32{1, 0, 0}},
	}); err != nil {
		t.Fatalf("rebuild failed: %v", err)
	}

	identity, _, err := m.Match([]float32{1, 0, 0})
	if err != nil {
		t.Fatalf("match failed: %v", err)
	}
	if identity != "Bob" {
		t.Errorf("expected Bob after rebuild, got %q", identity)
	}
}
