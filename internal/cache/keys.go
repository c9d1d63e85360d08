package cache

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"questForgeAPI/internal/clock"
)

// Key builders. Every caller that reads, writes, or forgets a cache entry
// goes through these, so a writer and its invalidator can never disagree on
// the key. Daily-derived state embeds the reference-timezone day, which makes
// rollover expire it even without an explicit forget.

// Key is a fully-built cache key.
type Key string

func RosterKey(day time.Time) Key {
	return Key(fmt.Sprintf("leaderboard:global_roster:%s", clock.DayKey(day)))
}

func RosterBadgesKey(day time.Time) Key {
	return Key(fmt.Sprintf("leaderboard:global_badges:%s", clock.DayKey(day)))
}

func TopBadgeKey(userID uuid.UUID) Key {
	return Key(fmt.Sprintf("dashboard:top_badge:%s", userID))
}

func NavProfileKey(userID uuid.UUID) Key {
	return Key(fmt.Sprintf("nav_profile:%s", userID))
}

func DashboardHabitsKey(userID uuid.UUID, day time.Time) Key {
	return Key(fmt.Sprintf("dashboard:habits:%s:%s", userID, clock.DayKey(day)))
}

func DashboardQuestsKey(userID uuid.UUID, day time.Time) Key {
	return Key(fmt.Sprintf("dashboard:active_quests:%s:%s", userID, clock.DayKey(day)))
}

func DashboardTimeblocksKey(userID uuid.UUID, day time.Time) Key {
	return Key(fmt.Sprintf("dashboard:timeblocks:%s:%s", userID, clock.DayKey(day)))
}

func DashboardJournalDoneKey(userID uuid.UUID, day time.Time) Key {
	return Key(fmt.Sprintf("dashboard:journal_done:%s:%s", userID, clock.DayKey(day)))
}
