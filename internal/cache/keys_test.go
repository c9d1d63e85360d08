package cache

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"questForgeAPI/internal/clock"
)

func TestKeyFormats(t *testing.T) {
	day, err := time.ParseInLocation("2006-01-02", "2024-01-13", clock.Location)
	if err != nil {
		t.Fatal(err)
	}
	id := uuid.MustParse("573024d8-c5a4-40a5-8e35-2f0f11339bc7")

	cases := []struct {
		got  Key
		want string
	}{
		{RosterKey(day), "leaderboard:global_roster:2024-01-13"},
		{RosterBadgesKey(day), "leaderboard:global_badges:2024-01-13"},
		{TopBadgeKey(id), "dashboard:top_badge:573024d8-c5a4-40a5-8e35-2f0f11339bc7"},
		{NavProfileKey(id), "nav_profile:573024d8-c5a4-40a5-8e35-2f0f11339bc7"},
		{DashboardHabitsKey(id, day), "dashboard:habits:573024d8-c5a4-40a5-8e35-2f0f11339bc7:2024-01-13"},
		{DashboardQuestsKey(id, day), "dashboard:active_quests:573024d8-c5a4-40a5-8e35-2f0f11339bc7:2024-01-13"},
		{DashboardTimeblocksKey(id, day), "dashboard:timeblocks:573024d8-c5a4-40a5-8e35-2f0f11339bc7:2024-01-13"},
		{DashboardJournalDoneKey(id, day), "dashboard:journal_done:573024d8-c5a4-40a5-8e35-2f0f11339bc7:2024-01-13"},
	}
	for _, c := range cases {
		if string(c.got) != c.want {
			t.Errorf("key = %q, want %q", c.got, c.want)
		}
	}
}

func TestRosterKeyUsesReferenceDay(t *testing.T) {
	// 23:30 UTC on the 12th is already the 13th in the reference timezone;
	// the cache day must follow the reference timezone, not the server's.
	ts := time.Date(2024, 1, 12, 23, 30, 0, 0, time.UTC)
	if got := RosterKey(ts); string(got) != "leaderboard:global_roster:2024-01-13" {
		t.Fatalf("roster key = %q, want the reference-timezone day", got)
	}
}
