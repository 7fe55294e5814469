package engine

import "math"

// Base reward per completed set, credited to the exercise's primary
// muscle group only.
const (
	BaseXPPerSet   = 10.0
	BaseGoldPerSet = 2.0
)

// GroupGain is the reward earned by a single muscle group.
type GroupGain struct {
	XP   int `json:"xp"`
	Gold int `json:"gold"`
}

// Rewards is the per-group and total outcome of a finished session.
// The values are already rounded for persistence: XP rounds to nearest,
// gold floors, so rounding never overpays gold.
type Rewards struct {
	ByGroup   map[MuscleGroup]GroupGain `json:"byGroup"`
	TotalXP   int                       `json:"totalXP"`
	TotalGold int                       `json:"totalGold"`
}

// Distribute computes per-muscle-group XP and gold for a session. Each
// exercise's completed sets earn the base reward into its primary group;
// exercises missing from the catalog contribute nothing. Equipped item
// bonuses matching the group (or "all") stack additively before being
// applied as amount*(1+pct/100). Pure: persistence is the caller's job.
func Distribute(s *WorkoutSession, catalog *Catalog, equipped []Item) Rewards {
	xpFloat := make(map[MuscleGroup]float64)
	goldFloat := make(map[MuscleGroup]float64)

	for _, ex := range s.Exercises {
		done := ex.CompletedSets()
		if done == 0 {
			continue
		}
		entry, ok := catalog.Resolve(ex.Name)
		if !ok {
			continue
		}
		group := entry.MuscleGroup

		xpPct, goldPct := 0.0, 0.0
		for _, item := range equipped {
			if item.XPBonus != nil && item.XPBonus.AppliesTo(group) {
				xpPct += item.XPBonus.BonusPercent
			}
			if item.GoldBonus != nil && item.GoldBonus.AppliesTo(group) {
				goldPct += item.GoldBonus.BonusPercent
			}
		}

		xpFloat[group] += float64(done) * BaseXPPerSet * (1 + xpPct/100)
		goldFloat[group] += float64(done) * BaseGoldPerSet * (1 + goldPct/100)
	}

	r := Rewards{ByGroup: make(map[MuscleGroup]GroupGain, len(xpFloat))}
	for _, g := range MuscleGroups {
		xp, gold := xpFloat[g], goldFloat[g]
		if xp == 0 && gold == 0 {
			continue
		}
		gain := GroupGain{
			XP:   int(math.Round(xp)),
			Gold: int(math.Floor(gold)),
		}
		r.ByGroup[g] = gain
		r.TotalXP += gain.XP
		r.TotalGold += gain.Gold
	}
	return r
}
