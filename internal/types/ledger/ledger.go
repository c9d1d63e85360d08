package ledger

import (
	"time"

	"github.com/google/uuid"
)

// WeeklyFreezeQuota is how many missed days a Monday-aligned week can absorb
// before the streak breaks. Credits never roll over into the next week.
const WeeklyFreezeQuota = 2

// Ledger is one user's accumulated progress: economy totals, the streak
// counters, and the freeze-credit window. One row per user, mutated only
// under a row lock.
type Ledger struct {
	ID                      uuid.UUID  `json:"id" db:"id"`
	UserID                  uuid.UUID  `json:"user_id" db:"user_id"`
	XPTotal                 int        `json:"xp_total" db:"xp_total"`
	CoinBalance             int        `json:"coin_balance" db:"coin_balance"`
	StreakCurrent           int        `json:"streak_current" db:"streak_current"`
	StreakBest              int        `json:"streak_best" db:"streak_best"`
	LastActiveDate          *time.Time `json:"last_active_date" db:"last_active_date"`
	FreezeWindowStart       *time.Time `json:"freeze_window_start" db:"freeze_window_start"`
	FreezesUsedInWindow     int        `json:"freezes_used_in_window" db:"freezes_used_in_window"`
	FreezesUsedTotal        int        `json:"freezes_used_total" db:"freezes_used_total"`
	StreakResetsTotal       int        `json:"streak_resets_total" db:"streak_resets_total"`
	StreakMaintainedThrough *time.Time `json:"streak_maintained_through" db:"streak_maintained_through"`
	CreatedAt               time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt               time.Time  `json:"updated_at" db:"updated_at"`
}

// FreezesLeftInWindow is the remaining quota for the tracked week.
func (l *Ledger) FreezesLeftInWindow() int {
	left := WeeklyFreezeQuota - l.FreezesUsedInWindow
	if left < 0 {
		return 0
	}
	return left
}
