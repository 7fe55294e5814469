package models

import (
	"time"

	"github.com/google/uuid"
)

// UserStatsRow is the single mutable stats document for one user. Numeric
// fields only ever grow; Version backs the compare-and-swap update so two
// concurrent session finishes cannot silently overwrite each other.
type UserStatsRow struct {
	UserID        int            `json:"userId"`
	XP            int            `json:"xp"`
	Gold          int            `json:"gold"`
	Level         int            `json:"level"`
	GroupXP       map[string]int `json:"xpByMuscleGroup"`
	TotalWorkouts int            `json:"totalWorkouts"`
	TotalSets     int            `json:"totalSets"`
	TotalReps     int            `json:"totalReps"`
	TotalVolume   int            `json:"totalVolume"`
	TotalDuration int            `json:"totalDuration"`
	Version       int            `json:"version"`
}

// StatsDelta is the additive update produced by one finished session.
type StatsDelta struct {
	XP            int
	Gold          int
	NewLevel      int
	GroupXP       map[string]int
	TotalSets     int
	TotalReps     int
	TotalVolume   int
	TotalDuration int
}

// WorkoutRow is a persisted finished workout.
type WorkoutRow struct {
	ID          uuid.UUID `json:"id"`
	UserID      int       `json:"userId"`
	StartedAt   time.Time `json:"startedAt"`
	FinishedAt  time.Time `json:"finishedAt"`
	DurationSec int       `json:"durationSec"`
	Notes       string    `json:"notes,omitempty"`
	TotalSets   int       `json:"totalSets"`
	TotalReps   int       `json:"totalReps"`
	TotalVolume int       `json:"totalVolume"`
	XPGained    int       `json:"xpGained"`
	GoldGained  int       `json:"goldGained"`
}

// WorkoutSetRow is one persisted completed set. Only completed sets are
// ever written.
type WorkoutSetRow struct {
	ID           uuid.UUID `json:"id"`
	WorkoutID    uuid.UUID `json:"workoutId"`
	UserID       int       `json:"userId"`
	ExerciseName string    `json:"exerciseName"`
	SetKind      string    `json:"setKind"`
	SetNumber    int       `json:"setNumber"`
	Reps         *int      `json:"reps,omitempty"`
	Weight       *float64  `json:"weight,omitempty"`
	Duration     string    `json:"duration,omitempty"`
	Distance     *float64  `json:"distance,omitempty"`
}

// EquippedItemRow is the user↔item equipment relation. At most one equipped
// item per slot per user, enforced by the unequip-then-equip transaction.
type EquippedItemRow struct {
	UserID     int       `json:"userId"`
	ItemID     string    `json:"itemId"`
	SlotType   string    `json:"slotType"`
	EquippedAt time.Time `json:"equippedAt"`
}

// InventoryRow is an owned item with quantity.
type InventoryRow struct {
	UserID   int    `json:"userId"`
	ItemID   string `json:"itemId"`
	Quantity int    `json:"quantity"`
}

// UnlockRow is a user's achievement unlock, unique per (user, achievement).
type UnlockRow struct {
	UserID        int       `json:"userId"`
	AchievementID string    `json:"achievementId"`
	UnlockedAt    time.Time `json:"unlockedAt"`
}
