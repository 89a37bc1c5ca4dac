package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kozaktomas/face-attendance/internal/attendance"
	"github.com/kozaktomas/face-attendance/internal/store"
)

// AttendanceHandler serves raw and consolidated attendance records.
type AttendanceHandler struct {
	store store.Store
}

// NewAttendanceHandler creates a new attendance handler.
func NewAttendanceHandler(st store.Store) *AttendanceHandler {
	return &AttendanceHandler{store: st}
}

// GetMonth returns the raw attendance tree for one month.
func (h *AttendanceHandler) GetMonth(w http.ResponseWriter, r *http.Request) {
	year, ok := parseYear(chi.URLParam(r, "year"))
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid year")
		return
	}
	month, ok := parseMonth(chi.URLParam(r, "month"))
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid month name")
		return
	}

	raw, err := h.store.Read(r.Context(), store.MonthPath(year, month))
	if err != nil {
		log.Printf("failed to read month %d/%s: %v", year, sanitizeForLog(month.String()), err)
		respondError(w, http.StatusBadGateway, "attendance store unavailable")
		return
	}
	if raw == nil {
		raw = json.RawMessage("{}")
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(raw)
}

// GetDay returns the raw attendance tree for one day.
func (h *AttendanceHandler) GetDay(w http.ResponseWriter, r *http.Request) {
	year, ok := parseYear(chi.URLParam(r, "year"))
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid year")
		return
	}
	month, ok := parseMonth(chi.URLParam(r, "month"))
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid month name")
		return
	}
	day, ok := parseDay(chi.URLParam(r, "day"))
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid day")
		return
	}

	raw, err := h.store.Read(r.Context(), store.DayPath(year, month, day))
	if err != nil {
		log.Printf("failed to read day %d/%s/%d: %v", year, sanitizeForLog(month.String()), day, err)
		respondError(w, http.StatusBadGateway, "attendance store unavailable")
		return
	}
	if raw == nil {
		raw = json.RawMessage("{}")
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(raw)
}

// GetConsolidated returns the consolidated timeline for one month.
func (h *AttendanceHandler) GetConsolidated(w http.ResponseWriter, r *http.Request) {
	year, ok := parseYear(chi.URLParam(r, "year"))
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid year")
		return
	}
	month, ok := parseMonth(chi.URLParam(r, "month"))
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid month name")
		return
	}

	consolidator := attendance.NewConsolidator(h.store)
	timeline, err := consolidator.ReadTimeline(r.Context(), year, month)
	if err != nil {
		log.Printf("failed to read consolidated %d/%s: %v", year, sanitizeForLog(month.String()), err)
		respondError(w, http.StatusBadGateway, "attendance store unavailable")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"year":   year,
		"month":  month.String(),
		"events": timeline,
	})
}
