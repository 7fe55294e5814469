package engine

import "math"

// SessionTotals are the aggregate metrics of a finished session,
// computed over completed sets only.
type SessionTotals struct {
	TotalSets   int `json:"totalSets"`
	TotalReps   int `json:"totalReps"`
	TotalVolume int `json:"totalVolume"`
}

// Aggregate reduces a session into totals. Volume per set is reps*weight for
// standard sets, reps for bodyweight sets, and the numeric duration value for
// timed sets. Volume is rounded once at the session level, not per set.
func Aggregate(s *WorkoutSession) SessionTotals {
	var t SessionTotals
	var volume float64
	for _, ex := range s.Exercises {
		for _, set := range ex.Sets {
			if !set.Completed {
				continue
			}
			t.TotalSets++
			if set.Reps != nil {
				t.TotalReps += *set.Reps
			}
			switch ex.Kind {
			case KindStandard:
				if set.Reps != nil && set.Weight != nil {
					volume += float64(*set.Reps) * *set.Weight
				}
			case KindBodyweight:
				if set.Reps != nil {
					volume += float64(*set.Reps)
				}
			case KindTimed:
				volume += DurationValue(set.Duration)
			}
		}
	}
	t.TotalVolume = int(math.Round(volume))
	return t
}
