package recognize

import (
	"errors"
	"sync"

	"github.com/coder/hnsw"

	"github.com/kozaktomas/face-attendance/internal/constants"
	"github.com/kozaktomas/face-attendance/internal/gallery"
)

// hnswMaxNeighbors is the M parameter of the HNSW graph.
const hnswMaxNeighbors = 16

// Matcher answers nearest-neighbor queries over the enrolled gallery.
type Matcher struct {
	graph     *hnsw.Graph[int64]
	idToName  map[int64]string
	threshold float64
	mu        sync.RWMutex
}

// NewMatcher creates an empty matcher with the given distance threshold.
// Queries whose best match is farther than the threshold resolve to
// the unknown identity.
func NewMatcher(threshold float64) *Matcher {
	if threshold <= 0 {
		threshold = constants.DefaultDistanceThreshold
	}
	return &Matcher{
		idToName:  make(map[int64]string),
		threshold: threshold,
	}
}

// BuildFromGallery builds the index from enrolled gallery entries.
func (m *Matcher) BuildFromGallery(entries []gallery.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(entries) == 0 {
		m.graph = nil
		m.idToName = make(map[int64]string)
		return nil
	}

	g := hnsw.NewGraph[int64]()
	g.M = hnswMaxNeighbors
	g.Ml = 1.0 / float64(hnswMaxNeighbors) // Standard HNSW formula
	g.Distance = hnsw.CosineDistance

	m.idToName = make(map[int64]string, len(entries))

	for i := range entries {
		entry := &entries[i]
		if len(entry.Embedding) == 0 {
			continue
		}
		id := int64(i)
		g.Add(hnsw.MakeNode(id, entry.Embedding))
		m.idToName[id] = entry.Name
	}

	m.graph = g
	return nil
}

// Count returns the number of indexed embeddings.
func (m *Matcher) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.idToName)
}

// Match resolves a query embedding to an enrolled identity. Queries with no
// neighbor within the distance threshold resolve to the unknown identity.
// The returned distance is the cosine distance to the nearest neighbor.
func (m *Matcher) Match(query []float32) (string, float64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.graph == nil {
		return "", 0, errors.New("index not initialized")
	}

	neighbors := m.graph.Search(query, 1)
	if len(neighbors) == 0 {
		return constants.UnknownIdentity, 2.0, nil
	}

	n := neighbors[0]
	dist := CosineDistance(query, n.Value)
	if dist > m.threshold {
		return constants.UnknownIdentity, dist, nil
	}

	name, ok := m.idToName[n.Key]
	if !ok {
		return constants.UnknownIdentity, dist, nil
	}
	return name, dist, nil
}
