package completion

import (
	"time"

	"github.com/google/uuid"
)

// Completion is an append-only activity record. Rows are never mutated or
// deleted once written; the leaderboard derives 7-day activity and the
// last-active timestamp from them.
type Completion struct {
	ID          uuid.UUID `json:"id" db:"id"`
	UserID      uuid.UUID `json:"user_id" db:"user_id"`
	QuestID     uuid.UUID `json:"quest_id" db:"quest_id"`
	XPAwarded   int       `json:"xp_awarded" db:"xp_awarded"`
	CoinAwarded int       `json:"coin_awarded" db:"coin_awarded"`
	Note        *string   `json:"note" db:"note"`
	CompletedAt time.Time `json:"completed_at" db:"completed_at"`
}

// Result is what the completion trigger reports back to the caller.
type Result struct {
	AlreadyDone   bool   `json:"already_done"`
	StreakCurrent int    `json:"streak_current"`
	StreakBest    int    `json:"streak_best"`
	StreakResult  string `json:"streak_result"`
	FreezesSpent  int    `json:"freezes_spent"`
	XPAwarded     int    `json:"xp_awarded"`
	CoinAwarded   int    `json:"coin_awarded"`
	LeveledUp     bool   `json:"leveled_up"`
	Level         int    `json:"level"`
}
