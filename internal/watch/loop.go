// Package watch runs the live attendance loop: capture a frame, recognize
// faces, record attendance events.
package watch

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/kozaktomas/face-attendance/internal/attendance"
	"github.com/kozaktomas/face-attendance/internal/constants"
	"github.com/kozaktomas/face-attendance/internal/recognize"
	"github.com/kozaktomas/face-attendance/internal/store"
	"github.com/kozaktomas/face-attendance/internal/video"
)

// FrameRecognizer resolves a JPEG frame to identity matches.
type FrameRecognizer interface {
	Recognize(ctx context.Context, frame []byte) ([]recognize.Match, error)
}

// EventRecorder persists a single identity observation.
type EventRecorder interface {
	RecordObservation(ctx context.Context, identity string, observedAt time.Time) (*attendance.Event, error)
}

// Loop drives frame capture through recognition into the event recorder.
// Frames are processed sequentially. A failure on one frame is logged and
// the loop moves on to the next; only end of stream or context cancellation
// stops it.
type Loop struct {
	source     video.Source
	recognizer FrameRecognizer
	recorder   EventRecorder

	// OnFrame, when set, receives every captured frame with its matches.
	// Used by the web feed to mirror the stream.
	OnFrame func(frame *video.Frame, matches []recognize.Match)

	now func() time.Time
}

// NewLoop creates a watch loop over the given source.
func NewLoop(source video.Source, recognizer FrameRecognizer, recorder EventRecorder) *Loop {
	return &Loop{
		source:     source,
		recognizer: recognizer,
		recorder:   recorder,
		now:        time.Now,
	}
}

// Run processes frames until the source ends or the context is canceled.
// Context cancellation is a clean shutdown and returns nil; a terminated
// stream returns video.ErrEndOfStream.
func (l *Loop) Run(ctx context.Context) error {
	for {
		frame, err := l.source.NextFrame(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			if errors.Is(err, video.ErrEndOfStream) {
				return video.ErrEndOfStream
			}
			return err
		}

		l.processFrame(ctx, frame)

		if err := ctx.Err(); err != nil {
			return nil
		}
	}
}

func (l *Loop) processFrame(ctx context.Context, frame *video.Frame) {
	matches, err := l.recognizer.Recognize(ctx, frame.Data)
	if err != nil {
		log.Printf("recognition failed, skipping frame: %v", err)
		return
	}

	if l.OnFrame != nil {
		l.OnFrame(frame, matches)
	}

	for _, match := range matches {
		if match.Identity == constants.UnknownIdentity {
			continue
		}

		event, err := l.recorder.RecordObservation(ctx, match.Identity, l.now())
		if err != nil {
			if errors.Is(err, store.ErrUnavailable) {
				log.Printf("store unavailable, dropping observation for %s: %v", match.Identity, err)
				continue
			}
			log.Printf("failed to record observation for %s: %v", match.Identity, err)
			continue
		}
		if event != nil {
			log.Printf("recorded %s for %s at %s", event.Status, event.Name, event.Date)
		}
	}
}
