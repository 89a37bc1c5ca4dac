package video

import (
	"context"
	"fmt"
	"time"

	"gocv.io/x/gocv"
)

// Camera captures frames from a local video device through OpenCV.
type Camera struct {
	capture *gocv.VideoCapture
	mat     gocv.Mat
}

// OpenCamera opens the video device by its V4L2 index, usually 0 for the
// default webcam.
func OpenCamera(device int) (*Camera, error) {
	capture, err := gocv.OpenVideoCapture(device)
	if err != nil {
		return nil, fmt.Errorf("failed to open video device %d: %w", device, err)
	}
	return &Camera{
		capture: capture,
		mat:     gocv.NewMat(),
	}, nil
}

// NextFrame reads and JPEG-encodes the next frame from the device.
func (c *Camera) NextFrame(ctx context.Context) (*Frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if ok := c.capture.Read(&c.mat); !ok {
		return nil, ErrEndOfStream
	}
	if c.mat.Empty() {
		return nil, ErrEndOfStream
	}

	buf, err := gocv.IMEncode(gocv.JPEGFileExt, c.mat)
	if err != nil {
		return nil, fmt.Errorf("failed to encode frame: %w", err)
	}
	defer buf.Close()

	data := make([]byte, len(buf.GetBytes()))
	copy(data, buf.GetBytes())

	return &Frame{
		Data:       data,
		Width:      c.mat.Cols(),
		Height:     c.mat.Rows(),
		CapturedAt: time.Now(),
	}, nil
}

// Close releases the device and frame buffer.
func (c *Camera) Close() error {
	if err := c.mat.Close(); err != nil {
		return fmt.Errorf("failed to release frame buffer: %w", err)
	}
	if err := c.capture.Close(); err != nil {
		return fmt.Errorf("failed to release video device: %w", err)
	}
	return nil
}
