package engine

import "math"

// RequiredXP is the cumulative XP threshold to advance past the given level:
// floor(100 * level^1.5). RequiredXP(1)=100, RequiredXP(4)=800.
func RequiredXP(level int) int {
	return int(math.Floor(100 * math.Pow(float64(level), 1.5)))
}

// LevelChange is the outcome of applying an XP gain.
type LevelChange struct {
	OldLevel  int  `json:"oldLevel"`
	NewLevel  int  `json:"newLevel"`
	LeveledUp bool `json:"leveledUp"`
	XPAfter   int  `json:"xpAfter"`
	// NextLevelXP is the threshold toward which progress is now shown.
	NextLevelXP int `json:"nextLevelXP"`
}

// ApplyXP advances the leveling state machine by one XP gain. Levels are
// ≥ 1 and monotonically non-decreasing; XP is cumulative for the lifetime
// of the account and never reset on level-up. At most one level is gained
// per application, even when the gain crosses several thresholds; crossing
// more than one is deliberately not compressed into a single call.
func ApplyXP(level, xpBefore, gain int) LevelChange {
	if level < 1 {
		level = 1
	}
	xpAfter := xpBefore + gain

	newLevel := level
	if xpAfter >= RequiredXP(level) {
		newLevel = level + 1
	}

	return LevelChange{
		OldLevel:    level,
		NewLevel:    newLevel,
		LeveledUp:   newLevel > level,
		XPAfter:     xpAfter,
		NextLevelXP: RequiredXP(newLevel),
	}
}
