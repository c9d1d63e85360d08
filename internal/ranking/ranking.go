package ranking

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"questForgeAPI/internal/clock"
)

// GhostThresholdDays is how many days of silence zero a streak on the board.
// The stored streak is untouched; only the displayed value goes cold.
const GhostThresholdDays = 4

const (
	StatusOnFire  = "On Fire"
	StatusPending = "Pending"
	StatusCold    = "Cold"
)

// RosterEntry is one ranked row of the leaderboard. Derived, never persisted:
// rows are computed on cache refresh and thrown away on the next one.
type RosterEntry struct {
	UserID           uuid.UUID  `json:"user_id" db:"user_id"`
	Name             string     `json:"name" db:"name"`
	EffectiveStreak  int        `json:"effective_streak" db:"effective_streak"`
	StreakBest       int        `json:"streak_best" db:"streak_best"`
	ActiveDaysLast7d int        `json:"active_days_last_7d" db:"active_days_last_7d"`
	LastActiveDate   *time.Time `json:"last_active_date" db:"last_active_date"`
	LastActiveAt     *time.Time `json:"last_active_at" db:"last_active_at"`
	Status           string     `json:"status"`
	Rank             int        `json:"rank"`
}

// EffectiveStreak zeroes a stored streak once the user has been silent past
// the ghost threshold.
func EffectiveStreak(streakCurrent int, lastActiveDate *time.Time, now time.Time) int {
	if lastActiveDate == nil {
		return 0
	}
	threshold := clock.DateOf(now).AddDate(0, 0, -GhostThresholdDays)
	if clock.DateOf(*lastActiveDate).Before(threshold) {
		return 0
	}
	return streakCurrent
}

// StatusFor labels activity recency: today, yesterday, or anything older.
func StatusFor(lastActiveDate *time.Time, now time.Time) string {
	if lastActiveDate == nil {
		return StatusCold
	}
	today := clock.DateOf(now)
	last := clock.DateOf(*lastActiveDate)
	switch {
	case last.Equal(today):
		return StatusOnFire
	case last.Equal(today.AddDate(0, 0, -1)):
		return StatusPending
	default:
		return StatusCold
	}
}

// Less is the canonical roster ordering: effective streak, then best streak,
// then 7-day activity, then most recent completion (nulls last), then user id
// ascending as the final stable tie-break. It is a strict total order for
// distinct users.
func Less(a, b *RosterEntry) bool {
	if a.EffectiveStreak != b.EffectiveStreak {
		return a.EffectiveStreak > b.EffectiveStreak
	}
	if a.StreakBest != b.StreakBest {
		return a.StreakBest > b.StreakBest
	}
	if a.ActiveDaysLast7d != b.ActiveDaysLast7d {
		return a.ActiveDaysLast7d > b.ActiveDaysLast7d
	}
	switch {
	case a.LastActiveAt != nil && b.LastActiveAt == nil:
		return true
	case a.LastActiveAt == nil && b.LastActiveAt != nil:
		return false
	case a.LastActiveAt != nil && b.LastActiveAt != nil &&
		!a.LastActiveAt.Equal(*b.LastActiveAt):
		return a.LastActiveAt.After(*b.LastActiveAt)
	}
	return a.UserID.String() < b.UserID.String()
}

// Sort orders entries in place and assigns 1-based ranks.
func Sort(entries []*RosterEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return Less(entries[i], entries[j])
	})
	for i, e := range entries {
		e.Rank = i + 1
	}
}

// MergeViewer splices a fresh row for the viewer into a cached roster: any
// stale cached row for the same user is dropped, the realtime row goes in,
// and the merged set is re-sorted and re-ranked. The viewer always sees their
// true current position even when the roster itself is minutes stale.
func MergeViewer(roster []*RosterEntry, viewer *RosterEntry) []*RosterEntry {
	merged := make([]*RosterEntry, 0, len(roster)+1)
	for _, e := range roster {
		if e.UserID == viewer.UserID {
			continue
		}
		merged = append(merged, e)
	}
	merged = append(merged, viewer)
	Sort(merged)
	return merged
}

// Standing is the viewer's position relative to the board: their rank, and
// the rival directly above them when they are on the board but not first.
type Standing struct {
	Rank     int          `json:"rank"`
	OnBoard  bool         `json:"on_board"`
	IsKing   bool         `json:"is_king"`
	Rival    *RosterEntry `json:"rival,omitempty"`
	RivalGap int          `json:"rival_gap,omitempty"`
}

// StandingFor locates the viewer in a sorted, ranked roster. topN bounds the
// visible board; a viewer ranked past it is reported as off-board. The rival
// gap is the streak points needed to overtake the row above.
func StandingFor(sorted []*RosterEntry, viewerID uuid.UUID, topN int) Standing {
	for i, e := range sorted {
		if e.UserID != viewerID {
			continue
		}
		if i >= topN {
			break
		}
		if i == 0 {
			return Standing{Rank: 1, OnBoard: true, IsKing: true}
		}
		rival := sorted[i-1]
		return Standing{
			Rank:     e.Rank,
			OnBoard:  true,
			Rival:    rival,
			RivalGap: rival.EffectiveStreak - e.EffectiveStreak + 1,
		}
	}
	return Standing{OnBoard: false}
}
