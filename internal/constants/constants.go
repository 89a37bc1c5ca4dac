// Package constants provides shared constants used across the codebase.
// Centralizing these values ensures consistency and makes them easier to modify.
package constants

import "time"

// Attendance constants
const (
	// CooldownWindow is the minimum elapsed time between consecutive stored
	// events for the same identity before a new event is allowed
	CooldownWindow = 60 * time.Second

	// UnknownIdentity is the label assigned to faces that match no gallery entry
	UnknownIdentity = "Unknown"
)

// Face matching constants
const (
	// DefaultDistanceThreshold is the default maximum cosine distance for face matching
	// Lower values = stricter matching
	DefaultDistanceThreshold = 0.5

	// DefaultEmbeddingDim is the embedding dimensionality produced by the
	// face embedding service (InsightFace buffalo_l)
	DefaultEmbeddingDim = 512
)

// Processing constants
const (
	// MaxFrameSize is the maximum dimension (width or height) for frames
	// sent to the face embedding service
	MaxFrameSize = 1920

	// DefaultStoreTimeout bounds a single store round trip
	DefaultStoreTimeout = 10 * time.Second
)
