package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/vayungodara/lockin-sub000/internal/streak"
	"github.com/vayungodara/lockin-sub000/middleware"
	"github.com/vayungodara/lockin-sub000/services"
)

type StreakHandler struct {
	streakService *services.StreakService
	statsService  *services.StatsService
}

func NewStreakHandler(streakService *services.StreakService, statsService *services.StatsService) *StreakHandler {
	return &StreakHandler{
		streakService: streakService,
		statsService:  statsService,
	}
}

// GetStreak returns the streak recomputed from the raw event history, in
// the timezone the client displays its day boundary in.
func (h *StreakHandler) GetStreak(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	loc, err := clientLocation(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Unknown timezone")
		return
	}

	result, err := h.streakService.GetStreak(ctx, userID, time.Now(), loc)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to compute streak")
		return
	}

	respondWithJSON(w, http.StatusOK, result)
}

func (h *StreakHandler) GetHeatmap(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	days := 14
	if raw := r.URL.Query().Get("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "days must be an integer")
			return
		}
		days = parsed
	}

	loc, err := clientLocation(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Unknown timezone")
		return
	}

	series, err := h.streakService.GetHeatmap(ctx, userID, days, time.Now(), loc)
	if err != nil {
		var invalid *streak.InvalidInputError
		if errors.As(err, &invalid) {
			respondWithError(w, http.StatusBadRequest, invalid.Error())
			return
		}
		respondWithError(w, http.StatusInternalServerError, "Failed to build heatmap")
		return
	}

	respondWithJSON(w, http.StatusOK, series)
}

func (h *StreakHandler) CheckAtRisk(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	loc, err := clientLocation(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Unknown timezone")
		return
	}

	result, err := h.streakService.CheckAtRisk(ctx, userID, time.Now(), loc)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to check streak risk")
		return
	}

	respondWithJSON(w, http.StatusOK, result)
}

// UseFreeze spends the weekly freeze. Both failure modes are the user's
// situation, not a server fault, and map to client errors.
func (h *StreakHandler) UseFreeze(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	state, err := h.streakService.UseFreeze(ctx, userID, time.Now())
	if err != nil {
		switch {
		case errors.Is(err, streak.ErrFreezeQuotaExceeded):
			respondWithError(w, http.StatusConflict, "Freeze already used this week")
		case errors.Is(err, streak.ErrNoActiveStreak):
			respondWithError(w, http.StatusBadRequest, "No active streak to freeze")
		default:
			log.Printf("UseFreeze: unexpected error for user %s: %v", userID, err)
			respondWithError(w, http.StatusInternalServerError, "Failed to use freeze")
		}
		return
	}

	respondWithJSON(w, http.StatusOK, state)
}

func (h *StreakHandler) GetUserStats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	loc, err := clientLocation(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Unknown timezone")
		return
	}

	userStats, err := h.statsService.GetUserStats(ctx, userID, time.Now(), loc)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to get user stats")
		return
	}

	respondWithJSON(w, http.StatusOK, userStats)
}

// clientLocation reads the client's IANA timezone from the tz query
// parameter, defaulting to UTC.
func clientLocation(r *http.Request) (*time.Location, error) {
	tz := r.URL.Query().Get("tz")
	if tz == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(tz)
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error": "Failed to marshal response"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}
