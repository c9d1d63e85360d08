package utils

import "math"

// LevelData describes a user's level progress derived from lifetime XP.
type LevelData struct {
	CurrentLevel    int     `json:"current_level"`
	XPTotal         int     `json:"xp_total"`
	XPCurrent       int     `json:"xp_current"`
	XPNeeded        int     `json:"xp_needed"`
	XPRemaining     int     `json:"xp_remaining"`
	ProgressPercent float64 `json:"progress_percent"`
}

// XPToNextLevel is the XP required to clear the given level: level^1.5 * 100.
func XPToNextLevel(level int) int {
	return int(math.Floor(math.Pow(float64(level), 1.5) * 100))
}

// CalculateLevel walks total XP through the level curve and returns the
// user's current level plus progress inside it.
func CalculateLevel(totalXP int) LevelData {
	level := 1
	xpIntoLevel := totalXP

	for {
		need := XPToNextLevel(level)
		if xpIntoLevel < need {
			break
		}
		xpIntoLevel -= need
		level++
	}

	need := XPToNextLevel(level)
	progress := 0.0
	if need > 0 {
		progress = math.Round(float64(xpIntoLevel)/float64(need)*1000) / 10
	}

	return LevelData{
		CurrentLevel:    level,
		XPTotal:         totalXP,
		XPCurrent:       xpIntoLevel,
		XPNeeded:        need,
		XPRemaining:     need - xpIntoLevel,
		ProgressPercent: progress,
	}
}
