package engine

// MuscleGroup is one of the seven fixed reward buckets.
type MuscleGroup string

const (
	Chest     MuscleGroup = "chest"
	Back      MuscleGroup = "back"
	Legs      MuscleGroup = "legs"
	Shoulders MuscleGroup = "shoulders"
	Arms      MuscleGroup = "arms"
	Core      MuscleGroup = "core"
	Cardio    MuscleGroup = "cardio"
)

// MuscleGroups lists all seven groups in canonical order.
var MuscleGroups = [7]MuscleGroup{Chest, Back, Legs, Shoulders, Arms, Core, Cardio}

// Valid reports whether g is one of the seven known groups.
func (g MuscleGroup) Valid() bool {
	for _, m := range MuscleGroups {
		if g == m {
			return true
		}
	}
	return false
}
