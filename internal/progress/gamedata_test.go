package progress

import (
	"os"
	"path/filepath"
	"testing"
)

// writeTestGamedata writes a minimal but complete gamedata directory used
// by the service tests.
func writeTestGamedata(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	files := map[string]string{
		"exercises.yaml": `exercises:
  - {name: Bench Press, muscle_group: chest, kind: standard}
  - {name: Squat, muscle_group: legs, kind: standard}
  - {name: Push Up, muscle_group: chest, kind: bodyweight}
  - {name: Plank, muscle_group: core, kind: timed}
`,
		"items.yaml": `items:
  - id: iron-wristband
    name: Iron Wristband
    slot_type: wrist
    rarity: common
    xp_bonus: {muscle_group: all, bonus_percent: 5}
  - id: lifting-belt
    name: Lifting Belt
    slot_type: waist
    rarity: rare
    xp_bonus: {muscle_group: legs, bonus_percent: 15}
`,
		"ranks.yaml": `ranks:
  - {name: Bronze, min_xp: 0, power_value: 10}
  - {name: Silver, min_xp: 500, power_value: 20}
  - {name: Gold, min_xp: 1500, power_value: 35}
  - {name: Legend, min_xp: 5000, power_value: 100}
`,
		"achievements.yaml": `achievements:
  - id: first-workout
    name: First Steps
    requirement: "total_workouts >= 1"
    item_id: iron-wristband
  - id: leg-day
    name: Leg Day Devotee
    requirement: "legs_xp >= 500"
  - id: high-level
    name: Seasoned
    requirement: "level >= 10"
`,
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}
