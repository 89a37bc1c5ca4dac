package handlers

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/kozaktomas/face-attendance/internal/recognize"
	"github.com/kozaktomas/face-attendance/internal/video"
)

// frameChannelBuffer bounds the per-viewer frame queue. Slow viewers drop
// frames instead of stalling the watch loop.
const frameChannelBuffer = 4

// FeedHub mirrors the watch loop's frames to connected HTTP viewers as an
// MJPEG stream.
type FeedHub struct {
	viewers []chan []byte
	mu      sync.RWMutex
}

// NewFeedHub creates an empty feed hub.
func NewFeedHub() *FeedHub {
	return &FeedHub{}
}

// Publish hands a frame to all connected viewers. Intended to be wired as the
// watch loop's OnFrame hook; recognition matches are currently unused here.
func (h *FeedHub) Publish(frame *video.Frame, matches []recognize.Match) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, viewer := range h.viewers {
		select {
		case viewer <- frame.Data:
		default:
			// Viewer buffer full, skip.
		}
	}
}

func (h *FeedHub) addViewer() chan []byte {
	h.mu.Lock()
	defer h.mu.Unlock()
	ch := make(chan []byte, frameChannelBuffer)
	h.viewers = append(h.viewers, ch)
	return ch
}

func (h *FeedHub) removeViewer(ch chan []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for i, viewer := range h.viewers {
		if viewer == ch {
			h.viewers = append(h.viewers[:i], h.viewers[i+1:]...)
			close(ch)
			return
		}
	}
}

// ViewerCount returns the number of connected viewers.
func (h *FeedHub) ViewerCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.viewers)
}

// ServeHTTP streams frames as multipart/x-mixed-replace MJPEG until the
// client disconnects.
func (h *FeedHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		respondError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	const boundary = "frame"
	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary="+boundary)
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)

	ch := h.addViewer()
	defer h.removeViewer(ch)

	for {
		select {
		case <-r.Context().Done():
			return
		case frame, ok := <-ch:
			if !ok {
				return
			}
			if _, err := fmt.Fprintf(w, "--%s\r\nContent-Type: image/jpeg\r\nContent-Length: %d\r\n\r\n", boundary, len(frame)); err != nil {
				return
			}
			if _, err := w.Write(frame); err != nil {
				return
			}
			if _, err := fmt.Fprint(w, "\r\n"); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
