package recognize

import (
	"context"
	"fmt"

	"github.com/kozaktomas/face-attendance/internal/constants"
)

// Match is a recognized face in a frame. Identity is the enrolled name or
// the unknown identity when no gallery entry is close enough.
type Match struct {
	Identity string    `json:"identity"`
	BBox     []float64 `json:"bbox"`
	Distance float64   `json:"distance"`
}

// Recognizer combines the detector service with the local gallery matcher.
type Recognizer struct {
	detector *Detector
	matcher  *Matcher
	maxSize  int
}

// NewRecognizer creates a recognizer backed by the given detector and matcher.
func NewRecognizer(detector *Detector, matcher *Matcher) *Recognizer {
	return &Recognizer{
		detector: detector,
		matcher:  matcher,
		maxSize:  constants.MaxFrameSize,
	}
}

// Recognize detects all faces in a JPEG frame and resolves each to an
// enrolled identity. Frames larger than the frame size limit are downscaled
// before being sent to the detector.
func (r *Recognizer) Recognize(ctx context.Context, frame []byte) ([]Match, error) {
	resized, err := ResizeImage(frame, r.maxSize)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare frame: %w", err)
	}

	detections, err := r.detector.DetectFaces(ctx, resized)
	if err != nil {
		return nil, fmt.Errorf("face detection failed: %w", err)
	}

	matches := make([]Match, 0, len(detections))
	for _, det := range detections {
		if len(det.Embedding) == 0 {
			continue
		}

		identity := constants.UnknownIdentity
		dist := 2.0
		if r.matcher.Count() > 0 {
			identity, dist, err = r.matcher.Match(det.Embedding)
			if err != nil {
				return nil, fmt.Errorf("gallery lookup failed: %w", err)
			}
		}

		matches = append(matches, Match{
			Identity: identity,
			BBox:     det.BBox,
			Distance: dist,
		})
	}

	return matches, nil
}
