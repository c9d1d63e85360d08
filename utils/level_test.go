package utils

import "testing"

func TestXPToNextLevel(t *testing.T) {
	cases := []struct {
		level, want int
	}{
		{1, 100},
		{2, 282},  // floor(2^1.5 * 100)
		{4, 800},  // 4^1.5 = 8
		{9, 2700}, // 9^1.5 = 27
	}
	for _, c := range cases {
		if got := XPToNextLevel(c.level); got != c.want {
			t.Errorf("XPToNextLevel(%d) = %d, want %d", c.level, got, c.want)
		}
	}
}

func TestCalculateLevelBoundaries(t *testing.T) {
	zero := CalculateLevel(0)
	if zero.CurrentLevel != 1 || zero.XPCurrent != 0 || zero.XPNeeded != 100 {
		t.Fatalf("level data for 0 xp = %+v", zero)
	}

	// 99 XP is still level 1; 100 rolls over.
	if got := CalculateLevel(99).CurrentLevel; got != 1 {
		t.Fatalf("99 xp level = %d, want 1", got)
	}
	rolled := CalculateLevel(100)
	if rolled.CurrentLevel != 2 || rolled.XPCurrent != 0 {
		t.Fatalf("100 xp level data = %+v, want level 2 with 0 into it", rolled)
	}

	// 100 + 282 clears level 2 as well.
	if got := CalculateLevel(382).CurrentLevel; got != 3 {
		t.Fatalf("382 xp level = %d, want 3", got)
	}

	mid := CalculateLevel(150)
	if mid.CurrentLevel != 2 || mid.XPCurrent != 50 || mid.XPRemaining != 232 {
		t.Fatalf("150 xp level data = %+v", mid)
	}
}
