package dashboard

import (
	"questForgeAPI/internal/types/badge"
	"questForgeAPI/internal/types/habit"
	"questForgeAPI/internal/types/leaderboard"
	"questForgeAPI/internal/types/quest"
	"questForgeAPI/internal/types/timeblock"
	"questForgeAPI/utils"
)

type Profile struct {
	XPTotal       int             `json:"xp_total"`
	CoinBalance   int             `json:"coin_balance"`
	StreakCurrent int             `json:"streak_current"`
	StreakBest    int             `json:"streak_best"`
	Level         utils.LevelData `json:"level_data"`
}

type HabitSummary struct {
	DoneToday int `json:"done_today"`
	Total     int `json:"total"`
}

// Summary is everything the dashboard page needs in one call. The habit,
// quest, timeblock, and journal sections come from per-user per-day cache
// entries; the leaderboard snippet reads the cached roster only.
type Summary struct {
	Profile            Profile               `json:"profile"`
	Today              string                `json:"today"`
	JournalTodayExists bool                  `json:"journal_today_exists"`
	Habits             []habit.DayStatus     `json:"habits"`
	HabitSummary       HabitSummary          `json:"habit_summary"`
	ActiveQuests       []quest.Quest         `json:"active_quests"`
	TodayBlocks        []timeblock.TimeBlock `json:"today_blocks"`
	Leaderboard        leaderboard.Snippet   `json:"leaderboard"`
	TopBadge           *badge.Info           `json:"top_badge"`
}
