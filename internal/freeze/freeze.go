package freeze

import (
	"time"

	"questForgeAPI/internal/clock"
	"questForgeAPI/internal/types/ledger"
)

// Result classifies what happened to the streak when a day of activity
// was recorded.
type Result string

const (
	// ResultFirstActivity is the user's first ever recorded activity.
	ResultFirstActivity Result = "first_activity"
	// ResultSameDay means the user was already active today; nothing changed.
	ResultSameDay Result = "same_day"
	// ResultExtended is a perfect next-day continuation.
	ResultExtended Result = "extended"
	// ResultFrozen means the gap was fully covered by freeze credits.
	ResultFrozen Result = "frozen"
	// ResultReset means some week in the gap ran out of credits.
	ResultReset Result = "reset"
)

// Outcome reports what Apply did, for the completion response.
type Outcome struct {
	Result       Result
	FreezesSpent int
}

// Apply records that the user was active on today's date and updates the
// ledger's streak state in place. today must be a calendar day (midnight in
// the reference timezone) not earlier than the ledger's last active date;
// violating that is a caller bug, not a runtime condition, so Apply has no
// error path.
//
// A gap of more than one day is walked week by week: each Monday-aligned week
// has its own quota of ledger.WeeklyFreezeQuota credits, and missed days in a
// week must fit in that week's remaining credits. Credits are not shared
// across weeks, so a long gap can fail in its second week even if the first
// week had credits to spare.
func Apply(led *ledger.Ledger, today time.Time) Outcome {
	today = clock.DateOf(today)
	out := Outcome{}

	if led.LastActiveDate == nil {
		led.StreakCurrent = 1
		out.Result = ResultFirstActivity
	} else {
		lastActive := clock.DateOf(*led.LastActiveDate)
		gap := clock.DaysBetween(lastActive, today)

		switch {
		case gap == 0:
			// Re-entry for the same day must never double-increment.
			out.Result = ResultSameDay
		case gap == 1:
			led.StreakCurrent++
			out.Result = ResultExtended
		default:
			spent, covered := coverGap(led, lastActive.AddDate(0, 0, 1), today.AddDate(0, 0, -1))
			out.FreezesSpent = spent
			if covered {
				led.StreakCurrent++
				mt := today
				led.StreakMaintainedThrough = &mt
				out.Result = ResultFrozen
			} else {
				// Today's activity still counts, so restart at 1 rather than 0.
				led.StreakCurrent = 1
				led.StreakResetsTotal++
				out.Result = ResultReset
			}
		}
	}

	// Unused credits are lost at the week boundary: whatever happened above,
	// the tracked window must now be the week containing today.
	normalizeWindow(led, clock.WeekStart(today))

	la := today
	led.LastActiveDate = &la
	if led.StreakCurrent > led.StreakBest {
		led.StreakBest = led.StreakCurrent
	}
	return out
}

// coverGap walks the missed range [missStart, missEnd] segmented by
// Monday-aligned week and tries to pay for every missed day with that week's
// freeze credits. It mutates the ledger's window fields as it walks and
// reports the credits spent plus whether the whole range was covered.
func coverGap(led *ledger.Ledger, missStart, missEnd time.Time) (spent int, covered bool) {
	if missStart.After(missEnd) {
		return 0, true
	}

	// A null window means freezes were never tracked for this user; anchor it
	// to the week of the first missed day so the first segment resets cleanly.
	if led.FreezeWindowStart == nil {
		ws := clock.WeekStart(missStart)
		led.FreezeWindowStart = &ws
	}

	cursor := missStart
	for !cursor.After(missEnd) {
		weekStart := clock.WeekStart(cursor)
		weekEnd := weekStart.AddDate(0, 0, 6)

		segEnd := missEnd
		if weekEnd.Before(missEnd) {
			segEnd = weekEnd
		}
		daysInWeek := clock.DaysBetween(cursor, segEnd) + 1

		if !clock.SameDay(*led.FreezeWindowStart, weekStart) {
			led.FreezeWindowStart = &weekStart
			led.FreezesUsedInWindow = 0
		}

		if daysInWeek > led.FreezesLeftInWindow() {
			return spent, false
		}

		led.FreezesUsedInWindow += daysInWeek
		led.FreezesUsedTotal += daysInWeek
		spent += daysInWeek

		cursor = segEnd.AddDate(0, 0, 1)
	}
	return spent, true
}

func normalizeWindow(led *ledger.Ledger, weekStart time.Time) {
	if led.FreezeWindowStart == nil || !clock.SameDay(*led.FreezeWindowStart, weekStart) {
		led.FreezeWindowStart = &weekStart
		led.FreezesUsedInWindow = 0
	}
}

// Sweep applies end-of-day bookkeeping to a ledger without any new activity,
// as run by the nightly maintenance pass. The window is normalized to the
// current week, and if the user has been silent longer than yesterday their
// pending missed days are either absorbed by the current window's credits or
// the streak is reset to zero. It returns true when the ledger changed.
func Sweep(led *ledger.Ledger, today time.Time) bool {
	today = clock.DateOf(today)
	dirty := false

	weekStart := clock.WeekStart(today)
	if led.FreezeWindowStart == nil || !clock.SameDay(*led.FreezeWindowStart, weekStart) {
		led.FreezeWindowStart = &weekStart
		led.FreezesUsedInWindow = 0
		dirty = true
	}

	if led.LastActiveDate == nil {
		return dirty
	}

	lastActive := clock.DateOf(*led.LastActiveDate)
	gap := clock.DaysBetween(lastActive, today)
	if gap <= 1 {
		// Active today or yesterday: streak is safe as-is.
		return dirty
	}

	daysMissed := gap - 1
	if daysMissed <= led.FreezesLeftInWindow() {
		led.FreezesUsedInWindow += daysMissed
		led.FreezesUsedTotal += daysMissed
		mt := today
		led.StreakMaintainedThrough = &mt
	} else {
		led.StreakCurrent = 0
		led.StreakResetsTotal++
		mt := lastActive
		led.StreakMaintainedThrough = &mt
	}
	return true
}
