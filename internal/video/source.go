// Package video provides frame sources for the attendance watch loop.
package video

import (
	"context"
	"errors"
	"time"
)

// ErrEndOfStream is returned by a Source when no further frames will arrive.
var ErrEndOfStream = errors.New("end of video stream")

// Frame is a single captured frame encoded as JPEG.
type Frame struct {
	Data       []byte
	Width      int
	Height     int
	CapturedAt time.Time
}

// Source produces frames one at a time. NextFrame blocks until a frame is
// available, the context is canceled, or the stream ends with ErrEndOfStream.
type Source interface {
	NextFrame(ctx context.Context) (*Frame, error)
	Close() error
}
