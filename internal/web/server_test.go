package web

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kozaktomas/face-attendance/internal/store"
)

func TestServer_HealthRoute(t *testing.T) {
	server := NewServer(store.NewMemory(), 8080, "localhost", nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	recorder := httptest.NewRecorder()
	server.Router().ServeHTTP(recorder, req)

	if recorder.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", recorder.Code)
	}
}

func TestServer_VideoFeedWithoutCamera(t *testing.T) {
	server := NewServer(store.NewMemory(), 8080, "localhost", nil)

	req := httptest.NewRequest(http.MethodGet, "/video_feed", nil)
	recorder := httptest.NewRecorder()
	server.Router().ServeHTTP(recorder, req)

	if recorder.Code != http.StatusNotFound {
		t.Errorf("expected 404 without a camera feed, got %d", recorder.Code)
	}
}
