package services

import (
	"testing"

	"questForgeAPI/internal/types/badge"
)

func TestQualifiedBadgeKeys(t *testing.T) {
	tests := []struct {
		name              string
		streakBest        int
		freezesUsedTotal  int
		streakResetsTotal int
		want              []string
	}{
		{"fresh user", 0, 0, 0, nil},
		{"first milestone", 3, 0, 0, []string{"streak_3"}},
		{"between milestones", 5, 0, 0, []string{"streak_3"}},
		{"all milestones", 100, 0, 0, []string{"streak_3", "streak_7", "streak_14", "streak_30", "streak_60", "streak_100"}},
		{"freeze earns second wind", 0, 1, 0, []string{"second_wind"}},
		{"reset alone is not a comeback", 0, 0, 1, nil},
		{"comeback needs seven again", 7, 0, 1, []string{"streak_3", "streak_7", "comeback_kid"}},
		{"mixed", 7, 3, 2, []string{"streak_3", "streak_7", "second_wind", "comeback_kid"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := qualifiedBadgeKeys(tt.streakBest, tt.freezesUsedTotal, tt.streakResetsTotal)
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("key[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestTopBadgePrefersStreakCategory(t *testing.T) {
	badges := []badge.Info{
		{Key: "second_wind", Name: "Second Wind", Category: badge.CategoryRecovery},
		{Key: "streak_7", Name: "Consistent", Category: badge.CategoryStreak},
		{Key: "streak_3", Name: "Warm-up", Category: badge.CategoryStreak},
	}

	top := TopBadge(badges)
	if top == nil {
		t.Fatal("expected a badge")
	}
	if top.Key != "streak_7" {
		t.Errorf("top badge = %q, want streak_7", top.Key)
	}
}

func TestTopBadgeFallsBackToRecovery(t *testing.T) {
	badges := []badge.Info{
		{Key: "comeback_kid", Name: "Comeback Kid", Category: badge.CategoryRecovery},
	}

	top := TopBadge(badges)
	if top == nil || top.Key != "comeback_kid" {
		t.Errorf("top badge = %v, want comeback_kid", top)
	}
}

func TestTopBadgeEmpty(t *testing.T) {
	if got := TopBadge(nil); got != nil {
		t.Errorf("expected nil for no badges, got %v", got)
	}
}
