package engine

// Validation limits for a single set.
const (
	MaxReps      = 100
	MaxSetVolume = 20000
)

// Violation identifies one invalid completed set and the reason it failed.
type Violation struct {
	ExerciseIndex int    `json:"exerciseIndex"`
	ExerciseName  string `json:"exerciseName"`
	SetIndex      int    `json:"setIndex"`
	Reason        string `json:"reason"`
}

// ValidateSession checks every completed set in the session and returns the
// full list of violations, not just the first, so the caller can present one
// consolidated error. Incomplete sets are work-in-progress and always pass.
// A session with any violation must not be scored or persisted.
func ValidateSession(s *WorkoutSession) []Violation {
	var out []Violation
	for ei, ex := range s.Exercises {
		for si, set := range ex.Sets {
			if !set.Completed {
				continue
			}
			for _, reason := range validateSet(ex.Kind, set) {
				out = append(out, Violation{
					ExerciseIndex: ei,
					ExerciseName:  ex.Name,
					SetIndex:      si,
					Reason:        reason,
				})
			}
		}
	}
	return out
}

func validateSet(kind SetKind, set Set) []string {
	var reasons []string
	switch kind {
	case KindStandard:
		if set.Reps == nil {
			reasons = append(reasons, "reps required")
		}
		if set.Weight == nil {
			reasons = append(reasons, "weight required")
		}
		if set.Reps != nil && *set.Reps > MaxReps {
			reasons = append(reasons, "reps cannot exceed 100")
		}
		if set.Reps != nil && set.Weight != nil && float64(*set.Reps)**set.Weight > MaxSetVolume {
			reasons = append(reasons, "volume (reps × weight) cannot exceed 20,000")
		}
	case KindBodyweight:
		if set.Reps == nil {
			reasons = append(reasons, "reps required")
		} else if *set.Reps > MaxReps {
			reasons = append(reasons, "reps cannot exceed 100")
		}
	case KindTimed:
		if set.Duration == "" {
			reasons = append(reasons, "duration required")
		}
	}
	return reasons
}
