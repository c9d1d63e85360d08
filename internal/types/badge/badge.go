package badge

import (
	"time"

	"github.com/google/uuid"
)

type Category string

const (
	CategoryStreak   Category = "streak"
	CategoryRecovery Category = "recovery"
)

// Badge is a static catalog entry, seeded at boot.
type Badge struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Key         string    `json:"key" db:"key"`
	Name        string    `json:"name" db:"name"`
	Category    Category  `json:"category" db:"category"`
	Description string    `json:"description" db:"description"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// UserBadge joins a user to an earned badge. At most one row per
// (user, badge) pair; awards are idempotent and never revoked.
type UserBadge struct {
	ID       uuid.UUID `json:"id" db:"id"`
	UserID   uuid.UUID `json:"user_id" db:"user_id"`
	BadgeID  uuid.UUID `json:"badge_id" db:"badge_id"`
	EarnedAt time.Time `json:"earned_at" db:"earned_at"`
}

// Info is the display shape attached to leaderboard rows and the dashboard.
type Info struct {
	Key         string   `json:"key" db:"key"`
	Name        string   `json:"name" db:"name"`
	Category    Category `json:"category" db:"category"`
	Description string   `json:"description" db:"description"`
}
