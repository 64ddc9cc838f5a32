package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/vayungodara/lockin-sub000/internal/activity"
	"github.com/vayungodara/lockin-sub000/middleware"
	"github.com/vayungodara/lockin-sub000/services"
)

type ActivityHandler struct {
	eventService  *services.EventService
	streakService *services.StreakService
}

func NewActivityHandler(eventService *services.EventService, streakService *services.StreakService) *ActivityHandler {
	return &ActivityHandler{
		eventService:  eventService,
		streakService: streakService,
	}
}

// CompletePact records a pact completion and returns the updated cached
// streak row. The streak advance and the event insert happen in one
// transaction inside the service.
func (h *ActivityHandler) CompletePact(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req activity.CompleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.PactName == "" {
		respondWithError(w, http.StatusBadRequest, "pact_name is required")
		return
	}

	completedAt := time.Now()
	if req.CompletedAt != "" {
		parsed, err := time.Parse(time.RFC3339, req.CompletedAt)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "completed_at must be RFC3339")
			return
		}
		completedAt = parsed
	}

	state, err := h.streakService.RecordCompletion(ctx, userID, req.PactName, completedAt)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to record completion")
		return
	}

	respondWithJSON(w, http.StatusCreated, state)
}

// RecordFocusSession logs a finished block of focused work. Focus time
// colors the heatmap but never extends a streak.
func (h *ActivityHandler) RecordFocusSession(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req activity.FocusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.DurationMinutes <= 0 {
		respondWithError(w, http.StatusBadRequest, "duration_minutes must be positive")
		return
	}

	startedAt := time.Now()
	if req.StartedAt != "" {
		parsed, err := time.Parse(time.RFC3339, req.StartedAt)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "started_at must be RFC3339")
			return
		}
		startedAt = parsed
	}

	session, err := h.eventService.RecordFocusSession(ctx, userID, startedAt, req.DurationMinutes)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to record focus session")
		return
	}

	respondWithJSON(w, http.StatusCreated, session)
}

func (h *ActivityHandler) GetFocusSessions(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	sessions, err := h.eventService.ListFocusSessions(ctx, userID, time.Time{})
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to fetch focus sessions")
		return
	}

	respondWithJSON(w, http.StatusOK, sessions)
}
