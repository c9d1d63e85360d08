package services

import (
	"testing"
	"time"

	"questForgeAPI/internal/clock"
)

func day(s string) time.Time {
	d, err := time.ParseInLocation("2006-01-02", s, clock.Location)
	if err != nil {
		panic(err)
	}
	return d
}

func daySet(dates ...string) map[string]bool {
	m := make(map[string]bool, len(dates))
	for _, d := range dates {
		m[d] = true
	}
	return m
}

func TestBackCountStreak(t *testing.T) {
	tests := []struct {
		name string
		days map[string]bool
		day  string
		want int
	}{
		{"no entries", daySet(), "2024-01-10", 0},
		{"only today", daySet("2024-01-10"), "2024-01-10", 1},
		{"run ending today", daySet("2024-01-08", "2024-01-09", "2024-01-10"), "2024-01-10", 3},
		{"not done today keeps yesterdays run", daySet("2024-01-08", "2024-01-09"), "2024-01-10", 2},
		{"gap breaks the run", daySet("2024-01-06", "2024-01-08", "2024-01-09", "2024-01-10"), "2024-01-10", 3},
		{"stale entries far back", daySet("2023-12-01"), "2024-01-10", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := backCountStreak(tt.days, day(tt.day)); got != tt.want {
				t.Errorf("backCountStreak = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestBackCountStreakMonthBoundary(t *testing.T) {
	days := daySet("2024-01-30", "2024-01-31", "2024-02-01")
	if got := backCountStreak(days, day("2024-02-01")); got != 3 {
		t.Errorf("backCountStreak = %d, want 3", got)
	}
}
