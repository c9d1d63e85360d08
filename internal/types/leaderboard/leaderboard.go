package leaderboard

import (
	"time"

	"github.com/google/uuid"

	"questForgeAPI/internal/types/badge"
)

// RowUser is the minimal identity shown on a board row.
type RowUser struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// Row is one formatted leaderboard row as returned to the presentation layer.
type Row struct {
	Rank             int         `json:"rank"`
	User             RowUser     `json:"user"`
	Status           string      `json:"status"`
	StreakCurrent    int         `json:"streak_current"` // effective streak
	StreakBest       int         `json:"streak_best"`
	ActiveDaysLast7d int         `json:"active_days_last_7d"`
	LastActiveAt     *time.Time  `json:"last_active_at"`
	BadgeTop         *badge.Info `json:"badge_top"`
}

// Leaderboard is the full response: the visible board plus the viewer's own
// row, which is present even when they are off the board.
type Leaderboard struct {
	Items []Row `json:"items"`
	Me    Row   `json:"me"`
}

// Snippet is the dashboard's compact view of the viewer's standing, computed
// from the cached roster only.
type Snippet struct {
	Rank    string `json:"rank"`
	Rival   *Rival `json:"rival"`
	Message string `json:"message"`
}

type Rival struct {
	Name   string `json:"name"`
	Gap    int    `json:"gap"`
	IsKing bool   `json:"is_king,omitempty"`
}
