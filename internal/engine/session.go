package engine

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Set is one recorded unit of work within an exercise. Which fields are
// populated depends on the owning exercise's SetKind. A set is mutable
// until marked completed; only completed sets are scored and persisted.
type Set struct {
	ID        uuid.UUID `json:"id"`
	Completed bool      `json:"completed"`
	Reps      *int      `json:"reps,omitempty"`
	Weight    *float64  `json:"weight,omitempty"`
	Duration  string    `json:"duration,omitempty"` // "MM:SS"
	Distance  *float64  `json:"distance,omitempty"`
}

// ExerciseEntry is one exercise within a workout session.
type ExerciseEntry struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Kind SetKind   `json:"kind"`
	Sets []Set     `json:"sets"`
}

// CompletedSets returns the number of completed sets in the exercise.
func (e ExerciseEntry) CompletedSets() int {
	n := 0
	for _, s := range e.Sets {
		if s.Completed {
			n++
		}
	}
	return n
}

// WorkoutSession is the transient in-progress workout. It exists only
// while a workout is active and is discarded on finish or cancel.
type WorkoutSession struct {
	ID             uuid.UUID       `json:"id"`
	UserID         int             `json:"userId"`
	Exercises      []ExerciseEntry `json:"exercises"`
	Notes          string          `json:"notes,omitempty"`
	ElapsedSeconds int             `json:"elapsedSeconds"`
	StartedAt      time.Time       `json:"startedAt"`
}

// DurationValue converts a "MM:SS" duration string into the numeric value
// used as a timed set's proxy volume. The minutes component is taken as-is,
// never converted to seconds; a plain number is accepted unchanged.
func DurationValue(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	if i := strings.IndexByte(s, ':'); i >= 0 {
		s = s[:i]
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}
