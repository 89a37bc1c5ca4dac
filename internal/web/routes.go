package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kozaktomas/face-attendance/internal/web/handlers"
)

func (s *Server) setupRoutes() {
	attendanceHandler := handlers.NewAttendanceHandler(s.store)
	consolidateHandler := handlers.NewConsolidateHandler(s.store, s.jobManager)

	// Health check
	s.router.Get("/api/v1/health", handlers.HealthCheck)

	// API routes
	s.router.Route("/api/v1", func(r chi.Router) {
		// Raw attendance records
		r.Get("/attendance/{year}/{month}", attendanceHandler.GetMonth)
		r.Get("/attendance/{year}/{month}/{day}", attendanceHandler.GetDay)

		// Consolidated timelines
		r.Get("/consolidated/{year}/{month}", attendanceHandler.GetConsolidated)

		// Consolidation (long-running operations)
		r.Post("/consolidate", consolidateHandler.Start)
		r.Get("/consolidate", consolidateHandler.List)
		r.Get("/consolidate/{jobId}", consolidateHandler.Status)
	})

	// Live camera feed
	s.router.Get("/video_feed", func(w http.ResponseWriter, r *http.Request) {
		if s.feed == nil {
			http.NotFound(w, r)
			return
		}
		s.feed.ServeHTTP(w, r)
	})
}
