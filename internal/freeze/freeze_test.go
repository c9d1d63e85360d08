package freeze

import (
	"testing"
	"time"

	"questForgeAPI/internal/clock"
	"questForgeAPI/internal/types/ledger"
)

func day(s string) time.Time {
	t, err := time.ParseInLocation("2006-01-02", s, clock.Location)
	if err != nil {
		panic(err)
	}
	return t
}

func datePtr(s string) *time.Time {
	d := day(s)
	return &d
}

func TestApplyFirstActivity(t *testing.T) {
	led := &ledger.Ledger{}
	out := Apply(led, day("2024-01-10"))

	if out.Result != ResultFirstActivity {
		t.Fatalf("result = %s, want %s", out.Result, ResultFirstActivity)
	}
	if led.StreakCurrent != 1 || led.StreakBest != 1 {
		t.Fatalf("streak = %d best = %d, want 1/1", led.StreakCurrent, led.StreakBest)
	}
	if led.LastActiveDate == nil || !clock.SameDay(*led.LastActiveDate, day("2024-01-10")) {
		t.Fatalf("last_active_date = %v, want 2024-01-10", led.LastActiveDate)
	}
	if led.FreezesUsedTotal != 0 {
		t.Fatalf("freezes_used_total = %d, want 0", led.FreezesUsedTotal)
	}
}

func TestApplySameDayIsIdempotent(t *testing.T) {
	led := &ledger.Ledger{
		StreakCurrent:       5,
		StreakBest:          8,
		LastActiveDate:      datePtr("2024-01-10"),
		FreezeWindowStart:   datePtr("2024-01-08"),
		FreezesUsedInWindow: 1,
		FreezesUsedTotal:    3,
	}

	out := Apply(led, day("2024-01-10"))
	if out.Result != ResultSameDay {
		t.Fatalf("result = %s, want %s", out.Result, ResultSameDay)
	}
	if led.StreakCurrent != 5 || led.StreakBest != 8 {
		t.Fatalf("streak changed on same-day re-entry: %d/%d", led.StreakCurrent, led.StreakBest)
	}
	if led.FreezesUsedInWindow != 1 || led.FreezesUsedTotal != 3 {
		t.Fatalf("freeze counters changed on same-day re-entry: %d/%d",
			led.FreezesUsedInWindow, led.FreezesUsedTotal)
	}

	// Second pass must change nothing either.
	out = Apply(led, day("2024-01-10"))
	if out.Result != ResultSameDay || led.StreakCurrent != 5 {
		t.Fatalf("second same-day re-entry mutated streak: %d", led.StreakCurrent)
	}
}

func TestApplyNextDayExtends(t *testing.T) {
	led := &ledger.Ledger{
		StreakCurrent:     3,
		StreakBest:        3,
		LastActiveDate:    datePtr("2024-01-10"),
		FreezeWindowStart: datePtr("2024-01-08"),
	}

	out := Apply(led, day("2024-01-11"))
	if out.Result != ResultExtended {
		t.Fatalf("result = %s, want %s", out.Result, ResultExtended)
	}
	if led.StreakCurrent != 4 || led.StreakBest != 4 {
		t.Fatalf("streak = %d best = %d, want 4/4", led.StreakCurrent, led.StreakBest)
	}
	if out.FreezesSpent != 0 || led.FreezesUsedTotal != 0 {
		t.Fatalf("perfect continuation touched freeze counters")
	}
}

// Last active Wed Jan 10, window Mon Jan 8 with 0 used,
// completion on Sat Jan 13. Missed Jan 11-12 fit the week's two credits.
func TestApplyGapCoveredByFreezes(t *testing.T) {
	led := &ledger.Ledger{
		StreakCurrent:     6,
		StreakBest:        6,
		LastActiveDate:    datePtr("2024-01-10"),
		FreezeWindowStart: datePtr("2024-01-08"),
	}

	out := Apply(led, day("2024-01-13"))
	if out.Result != ResultFrozen {
		t.Fatalf("result = %s, want %s", out.Result, ResultFrozen)
	}
	if led.StreakCurrent != 7 {
		t.Fatalf("streak = %d, want 7", led.StreakCurrent)
	}
	if led.FreezesUsedInWindow != 2 || led.FreezesUsedTotal != 2 || out.FreezesSpent != 2 {
		t.Fatalf("freezes in-window/total/spent = %d/%d/%d, want 2/2/2",
			led.FreezesUsedInWindow, led.FreezesUsedTotal, out.FreezesSpent)
	}
	if !clock.SameDay(*led.LastActiveDate, day("2024-01-13")) {
		t.Fatalf("last_active_date = %v, want 2024-01-13", led.LastActiveDate)
	}
	if led.StreakMaintainedThrough == nil || !clock.SameDay(*led.StreakMaintainedThrough, day("2024-01-13")) {
		t.Fatalf("streak_maintained_through = %v, want 2024-01-13", led.StreakMaintainedThrough)
	}
	if led.StreakResetsTotal != 0 {
		t.Fatalf("streak_resets_total = %d, want 0", led.StreakResetsTotal)
	}
}

// Same starting ledger but the completion lands on the next Saturday. The
// four missed days still inside the week of Jan 8 already exceed that week's
// two credits, so the walk fails without reaching the following week.
func TestApplyLongGapExhaustsWeekQuota(t *testing.T) {
	led := &ledger.Ledger{
		StreakCurrent:     6,
		StreakBest:        6,
		LastActiveDate:    datePtr("2024-01-10"),
		FreezeWindowStart: datePtr("2024-01-08"),
	}

	out := Apply(led, day("2024-01-20"))
	if out.Result != ResultReset {
		t.Fatalf("result = %s, want %s", out.Result, ResultReset)
	}
	if led.StreakCurrent != 1 {
		t.Fatalf("streak = %d, want 1", led.StreakCurrent)
	}
	if led.StreakResetsTotal != 1 {
		t.Fatalf("streak_resets_total = %d, want 1", led.StreakResetsTotal)
	}
	if led.StreakBest != 6 {
		t.Fatalf("streak_best = %d, want 6 (reset must not touch best)", led.StreakBest)
	}
}

// A miss straddling the Monday boundary pays one credit out of each week's
// own quota: Sun Jan 14 from the week of Jan 8, Mon Jan 15 from the week of
// Jan 15.
func TestApplyGapSpansWeekBoundary(t *testing.T) {
	led := &ledger.Ledger{
		StreakCurrent:     4,
		StreakBest:        4,
		LastActiveDate:    datePtr("2024-01-13"), // Saturday
		FreezeWindowStart: datePtr("2024-01-08"),
	}

	out := Apply(led, day("2024-01-16")) // missed Jan 14 and Jan 15
	if out.Result != ResultFrozen || out.FreezesSpent != 2 {
		t.Fatalf("result/spent = %s/%d, want frozen/2", out.Result, out.FreezesSpent)
	}
	if led.StreakCurrent != 5 || led.FreezesUsedTotal != 2 {
		t.Fatalf("streak/total = %d/%d, want 5/2", led.StreakCurrent, led.FreezesUsedTotal)
	}
	// Today's week is the second segment's week, so its single consumed
	// credit survives the final normalization.
	if !clock.SameDay(*led.FreezeWindowStart, day("2024-01-15")) || led.FreezesUsedInWindow != 1 {
		t.Fatalf("window = %v used = %d, want 2024-01-15 / 1",
			led.FreezeWindowStart, led.FreezesUsedInWindow)
	}
}

// When a later week runs out of credits, the weeks already covered keep their
// consumed credits: they did hold the streak through those days. Here the week
// of Jan 8 absorbs Sun Jan 14, then the week of Jan 15 needs 5 days and fails.
func TestApplyLaterWeekFailureKeepsEarlierCredits(t *testing.T) {
	led := &ledger.Ledger{
		StreakCurrent:     4,
		StreakBest:        4,
		LastActiveDate:    datePtr("2024-01-13"), // Saturday
		FreezeWindowStart: datePtr("2024-01-08"),
	}

	out := Apply(led, day("2024-01-20")) // missed Jan 14 through Jan 19
	if out.Result != ResultReset {
		t.Fatalf("result = %s, want %s", out.Result, ResultReset)
	}
	if led.StreakCurrent != 1 || led.StreakResetsTotal != 1 {
		t.Fatalf("streak/resets = %d/%d, want 1/1", led.StreakCurrent, led.StreakResetsTotal)
	}
	if out.FreezesSpent != 1 || led.FreezesUsedTotal != 1 {
		t.Fatalf("spent/total = %d/%d, want 1/1 (first week's credit stays consumed)",
			out.FreezesSpent, led.FreezesUsedTotal)
	}
	// The failing segment consumed nothing, and its week is today's week.
	if !clock.SameDay(*led.FreezeWindowStart, day("2024-01-15")) || led.FreezesUsedInWindow != 0 {
		t.Fatalf("window = %v used = %d, want 2024-01-15 / 0",
			led.FreezeWindowStart, led.FreezesUsedInWindow)
	}
}

func TestApplyCreditsDoNotCarryOver(t *testing.T) {
	// Zero credits used in week of Jan 8; a one-day miss in the week of
	// Jan 15 must still only have 2 credits available, and the window after
	// the call is the week of today with zero usage... unless today is in
	// the consumed week.
	led := &ledger.Ledger{
		StreakCurrent:     4,
		StreakBest:        4,
		LastActiveDate:    datePtr("2024-01-14"), // Sunday
		FreezeWindowStart: datePtr("2024-01-08"),
	}

	// Missed Mon Jan 15 only; completed Tue Jan 16.
	out := Apply(led, day("2024-01-16"))
	if out.Result != ResultFrozen || out.FreezesSpent != 1 {
		t.Fatalf("result/spent = %s/%d, want frozen/1", out.Result, out.FreezesSpent)
	}
	if led.FreezeWindowStart == nil || !clock.SameDay(*led.FreezeWindowStart, day("2024-01-15")) {
		t.Fatalf("window = %v, want 2024-01-15", led.FreezeWindowStart)
	}
	// The consumed week is also today's week, so usage survives normalization.
	if led.FreezesUsedInWindow != 1 {
		t.Fatalf("freezes_used_in_window = %d, want 1", led.FreezesUsedInWindow)
	}
}

func TestApplyWindowResetsWhenTodayInNewWeek(t *testing.T) {
	led := &ledger.Ledger{
		StreakCurrent:       2,
		StreakBest:          2,
		LastActiveDate:      datePtr("2024-01-14"), // Sunday
		FreezeWindowStart:   datePtr("2024-01-08"),
		FreezesUsedInWindow: 2,
	}

	// Perfect continuation Monday Jan 15: no freezes needed, but the window
	// must roll to the new week with usage zeroed.
	out := Apply(led, day("2024-01-15"))
	if out.Result != ResultExtended {
		t.Fatalf("result = %s, want %s", out.Result, ResultExtended)
	}
	if !clock.SameDay(*led.FreezeWindowStart, day("2024-01-15")) || led.FreezesUsedInWindow != 0 {
		t.Fatalf("window = %v used = %d, want 2024-01-15 / 0",
			led.FreezeWindowStart, led.FreezesUsedInWindow)
	}
}

func TestApplyGapWithPartiallyUsedWindow(t *testing.T) {
	// One credit already burned this week; a two-day miss in the same week
	// exceeds the single remaining credit.
	led := &ledger.Ledger{
		StreakCurrent:       9,
		StreakBest:          9,
		LastActiveDate:      datePtr("2024-01-09"), // Tuesday
		FreezeWindowStart:   datePtr("2024-01-08"),
		FreezesUsedInWindow: 1,
		FreezesUsedTotal:    1,
	}

	out := Apply(led, day("2024-01-12")) // missed Jan 10-11
	if out.Result != ResultReset {
		t.Fatalf("result = %s, want %s", out.Result, ResultReset)
	}
	if led.StreakCurrent != 1 || led.StreakResetsTotal != 1 {
		t.Fatalf("streak/resets = %d/%d, want 1/1", led.StreakCurrent, led.StreakResetsTotal)
	}
	// Failed walk must not have consumed the remaining credit's total.
	if led.FreezesUsedTotal != 1 {
		t.Fatalf("freezes_used_total = %d, want 1", led.FreezesUsedTotal)
	}
}

func TestApplyNilWindowAnchorsToMissedWeek(t *testing.T) {
	led := &ledger.Ledger{
		StreakCurrent:  1,
		StreakBest:     1,
		LastActiveDate: datePtr("2024-01-10"),
		// FreezeWindowStart never set: pre-freeze-system ledger.
	}

	out := Apply(led, day("2024-01-12")) // missed Jan 11 only
	if out.Result != ResultFrozen || out.FreezesSpent != 1 {
		t.Fatalf("result/spent = %s/%d, want frozen/1", out.Result, out.FreezesSpent)
	}
	if led.StreakCurrent != 2 {
		t.Fatalf("streak = %d, want 2", led.StreakCurrent)
	}
}

func TestApplyInvariants(t *testing.T) {
	// Drive one ledger through a mixed sequence and check the standing
	// invariants after every step.
	led := &ledger.Ledger{}
	days := []string{
		"2024-01-01", "2024-01-02", "2024-01-02", "2024-01-04",
		"2024-01-09", "2024-01-10", "2024-01-25", "2024-01-26",
		"2024-02-05", "2024-02-06",
	}
	for _, d := range days {
		Apply(led, day(d))
		if led.StreakBest < led.StreakCurrent {
			t.Fatalf("after %s: best %d < current %d", d, led.StreakBest, led.StreakCurrent)
		}
		if led.FreezesUsedInWindow < 0 || led.FreezesUsedInWindow > ledger.WeeklyFreezeQuota {
			t.Fatalf("after %s: freezes_used_in_window = %d out of range", d, led.FreezesUsedInWindow)
		}
	}
}

func TestSweepNormalizesWindow(t *testing.T) {
	led := &ledger.Ledger{
		StreakCurrent:       3,
		StreakBest:          3,
		LastActiveDate:      datePtr("2024-01-15"), // Monday, active today
		FreezeWindowStart:   datePtr("2024-01-08"),
		FreezesUsedInWindow: 2,
	}

	dirty := Sweep(led, day("2024-01-15"))
	if !dirty {
		t.Fatalf("sweep should report a change")
	}
	if !clock.SameDay(*led.FreezeWindowStart, day("2024-01-15")) || led.FreezesUsedInWindow != 0 {
		t.Fatalf("window = %v used = %d, want 2024-01-15 / 0",
			led.FreezeWindowStart, led.FreezesUsedInWindow)
	}
	if led.StreakCurrent != 3 {
		t.Fatalf("active-today sweep must not touch streak, got %d", led.StreakCurrent)
	}
}

func TestSweepConsumesOrResets(t *testing.T) {
	// Missed two days, two credits left: consumed, streak survives.
	led := &ledger.Ledger{
		StreakCurrent:     5,
		StreakBest:        5,
		LastActiveDate:    datePtr("2024-01-15"), // Monday
		FreezeWindowStart: datePtr("2024-01-15"),
	}
	if !Sweep(led, day("2024-01-18")) {
		t.Fatalf("sweep should report a change")
	}
	if led.StreakCurrent != 5 || led.FreezesUsedInWindow != 2 || led.FreezesUsedTotal != 2 {
		t.Fatalf("got streak=%d used=%d total=%d, want 5/2/2",
			led.StreakCurrent, led.FreezesUsedInWindow, led.FreezesUsedTotal)
	}

	// One more silent day: out of credits, streak resets to zero.
	if !Sweep(led, day("2024-01-19")) {
		t.Fatalf("sweep should report a change")
	}
	if led.StreakCurrent != 0 || led.StreakResetsTotal != 1 {
		t.Fatalf("got streak=%d resets=%d, want 0/1", led.StreakCurrent, led.StreakResetsTotal)
	}
}

func TestSweepNeverActiveUser(t *testing.T) {
	led := &ledger.Ledger{}
	Sweep(led, day("2024-01-18"))
	if led.StreakCurrent != 0 || led.StreakResetsTotal != 0 {
		t.Fatalf("sweep of never-active ledger mutated streak state")
	}
	if led.FreezeWindowStart == nil {
		t.Fatalf("sweep should still anchor the window")
	}
}
