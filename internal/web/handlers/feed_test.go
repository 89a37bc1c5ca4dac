package handlers

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/kozaktomas/face-attendance/internal/video"
)

func TestFeedHub_StreamsFramesToViewer(t *testing.T) {
	hub := NewFeedHub()
	server := httptest.NewServer(hub)
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, server.URL, nil)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if !strings.HasPrefix(resp.Header.Get("Content-Type"), "multipart/x-mixed-replace") {
		t.Fatalf("unexpected content type %q", resp.Header.Get("Content-Type"))
	}

	// Wait for the viewer to register, then publish a frame.
	deadline := time.Now().Add(2 * time.Second)
	for hub.ViewerCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if hub.ViewerCount() != 1 {
		t.Fatal("viewer did not register")
	}

	frame := []byte{0xFF, 0xD8, 0xFF, 0xAA, 0xBB}
	hub.Publish(&video.Frame{Data: frame}, nil)

	reader := bufio.NewReader(resp.Body)
	boundary, err := reader.ReadString('\n')
	if err != nil {
		t.Fatalf("failed to read boundary: %v", err)
	}
	if !strings.HasPrefix(boundary, "--frame") {
		t.Errorf("unexpected boundary line %q", boundary)
	}

	// Skip part headers up to the blank line.
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			t.Fatalf("failed to read headers: %v", err)
		}
		if line == "\r\n" {
			break
		}
	}

	payload := make([]byte, len(frame))
	if _, err := io.ReadFull(reader, payload); err != nil {
		t.Fatalf("failed to read frame payload: %v", err)
	}
	if !bytes.Equal(payload, frame) {
		t.Errorf("payload mismatch: got %v want %v", payload, frame)
	}
}

func TestFeedHub_ViewerRemovedOnDisconnect(t *testing.T) {
	hub := NewFeedHub()
	server := httptest.NewServer(hub)
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, server.URL, nil)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for hub.ViewerCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}

	cancel()
	resp.Body.Close()

	deadline = time.Now().Add(2 * time.Second)
	for hub.ViewerCount() != 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if hub.ViewerCount() != 0 {
		t.Error("viewer was not removed after disconnect")
	}
}

func TestFeedHub_PublishWithoutViewersDoesNotBlock(t *testing.T) {
	hub := NewFeedHub()

	done := make(chan struct{})
	go func() {
		hub.Publish(&video.Frame{Data: []byte{1, 2, 3}}, nil)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked with no viewers")
	}
}
