package engine

import (
	"fmt"
	"strconv"
	"strings"
)

// Comparator is a requirement operator.
type Comparator string

const (
	OpGTE Comparator = ">="
	OpLTE Comparator = "<="
	OpGT  Comparator = ">"
	OpLT  Comparator = "<"
	OpEQ  Comparator = "=="
)

// Requirement is a decoded unlock rule: <field> <op> <threshold>.
// Requirements are decoded once at catalog load; malformed rules are
// rejected there instead of failing silently at evaluation time.
type Requirement struct {
	Field     string     `json:"field"`
	Op        Comparator `json:"op"`
	Threshold float64    `json:"threshold"`
}

// ParseRequirement decodes a rule string like "legs_xp >= 500".
func ParseRequirement(s string) (Requirement, error) {
	parts := strings.Fields(s)
	if len(parts) != 3 {
		return Requirement{}, fmt.Errorf("requirement %q: want `<field> <op> <number>`", s)
	}

	op := Comparator(parts[1])
	switch op {
	case OpGTE, OpLTE, OpGT, OpLT, OpEQ:
	default:
		return Requirement{}, fmt.Errorf("requirement %q: unknown operator %q", s, parts[1])
	}

	threshold, err := strconv.ParseFloat(parts[2], 64)
	if err != nil {
		return Requirement{}, fmt.Errorf("requirement %q: parsing threshold: %w", s, err)
	}

	if !validStatField(parts[0]) {
		return Requirement{}, fmt.Errorf("requirement %q: unknown stat field %q", s, parts[0])
	}

	return Requirement{Field: parts[0], Op: op, Threshold: threshold}, nil
}

// Test evaluates the requirement against a stat value.
func (r Requirement) Test(value float64) bool {
	switch r.Op {
	case OpGTE:
		return value >= r.Threshold
	case OpLTE:
		return value <= r.Threshold
	case OpGT:
		return value > r.Threshold
	case OpLT:
		return value < r.Threshold
	case OpEQ:
		return value == r.Threshold
	}
	return false
}

// Achievement is a catalog entity: a rule over cumulative stats with an
// optional item granted on unlock.
type Achievement struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description,omitempty"`
	Requirement Requirement `json:"requirement"`
	ItemID      string      `json:"itemId,omitempty"`
}

// Stats is the cumulative stat snapshot achievements are tested against.
type Stats struct {
	Level         int
	XP            int
	Gold          int
	TotalWorkouts int
	TotalSets     int
	TotalReps     int
	TotalVolume   int
	TotalDuration int
	GroupXP       map[MuscleGroup]int
}

// Field returns the named stat value. Per-group XP uses "<group>_xp" keys
// (e.g. "legs_xp").
func (s Stats) Field(name string) (float64, bool) {
	switch name {
	case "level":
		return float64(s.Level), true
	case "xp":
		return float64(s.XP), true
	case "gold":
		return float64(s.Gold), true
	case "total_workouts":
		return float64(s.TotalWorkouts), true
	case "total_sets":
		return float64(s.TotalSets), true
	case "total_reps":
		return float64(s.TotalReps), true
	case "total_volume":
		return float64(s.TotalVolume), true
	case "total_duration":
		return float64(s.TotalDuration), true
	}
	if g, ok := strings.CutSuffix(name, "_xp"); ok && MuscleGroup(g).Valid() {
		return float64(s.GroupXP[MuscleGroup(g)]), true
	}
	return 0, false
}

func validStatField(name string) bool {
	_, ok := Stats{}.Field(name)
	return ok
}

// Unlock is one emitted unlock event. ItemID is non-empty when the
// achievement grants an item.
type Unlock struct {
	AchievementID string `json:"achievementId"`
	ItemID        string `json:"itemId,omitempty"`
}

// Evaluate tests every not-yet-unlocked achievement against the stats and
// returns the unlock events to apply. It is safe to call repeatedly after
// every stat change: already-unlocked achievements are skipped here, and
// the persistence layer additionally treats a duplicate unlock row as
// "already unlocked" rather than an error.
func Evaluate(stats Stats, achievements []Achievement, unlocked map[string]bool) []Unlock {
	var out []Unlock
	for _, a := range achievements {
		if unlocked[a.ID] {
			continue
		}
		value, ok := stats.Field(a.Requirement.Field)
		if !ok {
			continue
		}
		if a.Requirement.Test(value) {
			out = append(out, Unlock{AchievementID: a.ID, ItemID: a.ItemID})
		}
	}
	return out
}
