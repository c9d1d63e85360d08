package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"questForgeAPI/internal/clock"
	"questForgeAPI/internal/types/timeblock"
	"questForgeAPI/middleware"
	"questForgeAPI/services"
)

type TimeBlockHandler struct {
	timeblockService *services.TimeBlockService
}

func NewTimeBlockHandler(timeblockService *services.TimeBlockService) *TimeBlockHandler {
	return &TimeBlockHandler{
		timeblockService: timeblockService,
	}
}

func (h *TimeBlockHandler) CreateTimeBlock(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req timeblock.CreateTimeBlockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	created, err := h.timeblockService.CreateTimeBlock(ctx, userID, &req)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, created)
}

func (h *TimeBlockHandler) DeleteTimeBlock(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	blockID, ok := pathUUID(r, "id")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid time block id")
		return
	}

	if err := h.timeblockService.DeleteTimeBlock(ctx, userID, blockID); err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "time block deleted"})
}

// ListForDay serves the schedule for ?date=YYYY-MM-DD, defaulting to today.
func (h *TimeBlockHandler) ListForDay(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	day := clock.Today()
	if raw := r.URL.Query().Get("date"); raw != "" {
		parsed, err := time.ParseInLocation("2006-01-02", raw, clock.Location)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
			return
		}
		day = parsed
	}

	blocks, err := h.timeblockService.BlocksForDay(ctx, userID, day)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, blocks)
}
