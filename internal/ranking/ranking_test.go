package ranking

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"questForgeAPI/internal/clock"
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

func fixedUUID(b byte) uuid.UUID {
	var id uuid.UUID
	id[15] = b
	return id
}

func TestEffectiveStreakGhosting(t *testing.T) {
	now := day("2024-01-20")

	if got := EffectiveStreak(10, datePtr("2024-01-19"), now); got != 10 {
		t.Fatalf("recent user: effective = %d, want 10", got)
	}
	// Exactly at the threshold boundary is still visible.
	if got := EffectiveStreak(10, datePtr("2024-01-16"), now); got != 10 {
		t.Fatalf("threshold-day user: effective = %d, want 10", got)
	}
	if got := EffectiveStreak(10, datePtr("2024-01-15"), now); got != 0 {
		t.Fatalf("ghost user: effective = %d, want 0", got)
	}
	if got := EffectiveStreak(10, nil, now); got != 0 {
		t.Fatalf("never-active user: effective = %d, want 0", got)
	}
}

func TestStatusFor(t *testing.T) {
	now := day("2024-01-20")
	cases := []struct {
		last *time.Time
		want string
	}{
		{datePtr("2024-01-20"), StatusOnFire},
		{datePtr("2024-01-19"), StatusPending},
		{datePtr("2024-01-18"), StatusCold},
		{nil, StatusCold},
	}
	for _, c := range cases {
		if got := StatusFor(c.last, now); got != c.want {
			t.Errorf("StatusFor(%v) = %s, want %s", c.last, got, c.want)
		}
	}
}

// Equal effective streaks rank by best streak.
func TestSortTieBreakByBestStreak(t *testing.T) {
	a := &RosterEntry{UserID: fixedUUID(1), Name: "A", EffectiveStreak: 10, StreakBest: 10}
	b := &RosterEntry{UserID: fixedUUID(2), Name: "B", EffectiveStreak: 10, StreakBest: 15}

	entries := []*RosterEntry{a, b}
	Sort(entries)

	if entries[0] != b || entries[1] != a {
		t.Fatalf("want B above A via streak_best tie-break, got %s first", entries[0].Name)
	}
	if b.Rank != 1 || a.Rank != 2 {
		t.Fatalf("ranks = %d/%d, want 1/2", b.Rank, a.Rank)
	}
}

func TestLessFullPrecedenceChain(t *testing.T) {
	ts := day("2024-01-20")
	base := func(b byte) *RosterEntry {
		return &RosterEntry{
			UserID: fixedUUID(b), EffectiveStreak: 5, StreakBest: 5,
			ActiveDaysLast7d: 3, LastActiveAt: &ts,
		}
	}

	higher := base(1)
	lower := base(2)

	// active_days_last_7d breaks the tie after streaks.
	higher.ActiveDaysLast7d = 4
	if !Less(higher, lower) || Less(lower, higher) {
		t.Fatalf("active_days_last_7d tie-break violated")
	}
	higher.ActiveDaysLast7d = 3

	// last_active_at desc, nulls last.
	later := ts.Add(time.Hour)
	higher.LastActiveAt = &later
	if !Less(higher, lower) {
		t.Fatalf("later last_active_at should rank higher")
	}
	lower.LastActiveAt = nil
	higher.LastActiveAt = &ts
	if !Less(higher, lower) {
		t.Fatalf("null last_active_at should rank last")
	}

	// Identical stats fall through to user id ascending: a strict order.
	lower.LastActiveAt = &ts
	if !Less(higher, lower) || Less(lower, higher) {
		t.Fatalf("user id tie-break must give a strict total order")
	}
}

func TestLessConsistentUnderSwap(t *testing.T) {
	a := &RosterEntry{UserID: fixedUUID(1), EffectiveStreak: 12, StreakBest: 12}
	b := &RosterEntry{UserID: fixedUUID(2), EffectiveStreak: 7, StreakBest: 20}

	if !Less(a, b) {
		t.Fatalf("higher effective streak must rank first")
	}
	a.EffectiveStreak, b.EffectiveStreak = b.EffectiveStreak, a.EffectiveStreak
	if Less(a, b) {
		t.Fatalf("swapping effective streaks must reorder consistently")
	}
}

func TestMergeViewerReplacesStaleRow(t *testing.T) {
	viewerID := fixedUUID(9)
	roster := []*RosterEntry{
		{UserID: fixedUUID(1), Name: "top", EffectiveStreak: 20},
		{UserID: viewerID, Name: "me-stale", EffectiveStreak: 5},
		{UserID: fixedUUID(2), Name: "other", EffectiveStreak: 3},
	}
	fresh := &RosterEntry{UserID: viewerID, Name: "me", EffectiveStreak: 30}

	merged := MergeViewer(roster, fresh)
	if len(merged) != 3 {
		t.Fatalf("merged size = %d, want 3 (stale row replaced)", len(merged))
	}
	if merged[0].UserID != viewerID || merged[0].Name != "me" {
		t.Fatalf("fresh viewer row should now lead the board, got %s", merged[0].Name)
	}
	if merged[0].Rank != 1 {
		t.Fatalf("re-rank after merge failed: rank = %d", merged[0].Rank)
	}
}

func TestStandingFor(t *testing.T) {
	viewerID := fixedUUID(9)
	sorted := []*RosterEntry{
		{UserID: fixedUUID(1), Name: "leader", EffectiveStreak: 20, Rank: 1},
		{UserID: viewerID, Name: "me", EffectiveStreak: 15, Rank: 2},
		{UserID: fixedUUID(2), Name: "third", EffectiveStreak: 10, Rank: 3},
	}

	st := StandingFor(sorted, viewerID, 50)
	if !st.OnBoard || st.Rank != 2 || st.IsKing {
		t.Fatalf("standing = %+v, want on-board rank 2", st)
	}
	if st.Rival == nil || st.Rival.Name != "leader" {
		t.Fatalf("rival should be the row directly above")
	}
	if st.RivalGap != 6 {
		t.Fatalf("rival gap = %d, want 6 (20-15+1)", st.RivalGap)
	}

	st = StandingFor(sorted, fixedUUID(1), 50)
	if !st.IsKing || st.Rival != nil || st.Rank != 1 {
		t.Fatalf("rank-1 viewer should be king with no rival, got %+v", st)
	}

	st = StandingFor(sorted, viewerID, 1)
	if st.OnBoard {
		t.Fatalf("viewer past topN must be off-board")
	}

	st = StandingFor(sorted, fixedUUID(7), 50)
	if st.OnBoard {
		t.Fatalf("absent viewer must be off-board")
	}
}
