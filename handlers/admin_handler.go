package handlers

import (
	"context"
	"net/http"
	"time"

	"questForgeAPI/services"
)

// AdminHandler exposes the operational endpoints: the nightly streak sweep
// and the badge catalog seeder. Both sit behind basic auth in the router.
type AdminHandler struct {
	streakService *services.StreakService
	badgeService  *services.BadgeService
}

func NewAdminHandler(streakService *services.StreakService, badgeService *services.BadgeService) *AdminHandler {
	return &AdminHandler{
		streakService: streakService,
		badgeService:  badgeService,
	}
}

// SweepStreaks walks every ledger and settles yesterday's missed days. Meant
// to be hit by a scheduler shortly after the reference-timezone midnight; it
// is idempotent, so an extra run or a retry is harmless.
func (h *AdminHandler) SweepStreaks(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Minute)
	defer cancel()

	updated, err := h.streakService.SweepLedgers(ctx)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]int{"ledgers_updated": updated})
}

func (h *AdminHandler) SeedBadges(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	if err := h.badgeService.SeedBadges(ctx); err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "badge catalog seeded"})
}
