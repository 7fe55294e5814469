package engine

import "math"

// RankTier is one named progression band, purely display/power data.
type RankTier struct {
	Name       string `yaml:"name" json:"name"`
	MinXP      int    `yaml:"min_xp" json:"minXP"`
	PowerValue int    `yaml:"power_value" json:"powerValue"`
}

// RankTable is the ordered tier list, ascending in MinXP.
type RankTable []RankTier

// RankOf returns the highest tier whose MinXP <= xp. A last-match-wins scan
// over the ascending thresholds; xp below every threshold gets the lowest
// tier, so lookup never fails.
func (t RankTable) RankOf(xp int) RankTier {
	if len(t) == 0 {
		return RankTier{}
	}
	best := t[0]
	for _, tier := range t {
		if xp >= tier.MinXP {
			best = tier
		}
	}
	return best
}

// NextRank returns the lowest tier whose threshold is still above xp, and
// false when xp already sits in the top tier.
func (t RankTable) NextRank(xp int) (RankTier, bool) {
	for _, tier := range t {
		if xp < tier.MinXP {
			return tier, true
		}
	}
	return RankTier{}, false
}

// AverageRank is the tier of the arithmetic mean of the seven muscle-group
// XP values, floored before lookup.
func (t RankTable) AverageRank(groupXP map[MuscleGroup]int) RankTier {
	sum := 0
	for _, g := range MuscleGroups {
		sum += groupXP[g]
	}
	avg := int(math.Floor(float64(sum) / float64(len(MuscleGroups))))
	return t.RankOf(avg)
}

// PowerLevel sums each muscle group's rank power plus a flat per-equipped-item
// power keyed by rarity. Derived display data; recomputed on every read.
func (t RankTable) PowerLevel(groupXP map[MuscleGroup]int, equipped []Item) int {
	power := 0
	for _, g := range MuscleGroups {
		power += t.RankOf(groupXP[g]).PowerValue
	}
	for _, item := range equipped {
		power += item.Rarity.PowerValue()
	}
	return power
}
