package engine

// Rarity is an item's rarity tier, in ascending order of prestige.
type Rarity string

const (
	RarityCommon    Rarity = "common"
	RarityUncommon  Rarity = "uncommon"
	RarityRare      Rarity = "rare"
	RarityEpic      Rarity = "epic"
	RarityLegendary Rarity = "legendary"
)

// Valid reports whether r is a known rarity.
func (r Rarity) Valid() bool {
	switch r {
	case RarityCommon, RarityUncommon, RarityRare, RarityEpic, RarityLegendary:
		return true
	}
	return false
}

// PowerValue is the flat power contribution of an equipped item of this
// rarity.
func (r Rarity) PowerValue() int {
	switch r {
	case RarityCommon:
		return 5
	case RarityUncommon:
		return 10
	case RarityRare:
		return 20
	case RarityEpic:
		return 35
	case RarityLegendary:
		return 50
	}
	return 0
}

// BonusTargetAll is the bonus muscle-group selector that matches every group.
const BonusTargetAll = "all"

// Bonus is a percentage boost to XP or gold earned for a muscle group.
// MuscleGroup may name one of the seven groups or be "all".
type Bonus struct {
	MuscleGroup  string  `yaml:"muscle_group" json:"muscleGroup"`
	BonusPercent float64 `yaml:"bonus_percent" json:"bonusPercent"`
}

// AppliesTo reports whether the bonus covers the given group.
func (b Bonus) AppliesTo(g MuscleGroup) bool {
	return b.MuscleGroup == BonusTargetAll || b.MuscleGroup == string(g)
}

// Item is a catalog entity, read-only to the engine. At most one item per
// SlotType may be equipped per user.
type Item struct {
	ID        string `yaml:"id" json:"id"`
	Name      string `yaml:"name" json:"name"`
	SlotType  string `yaml:"slot_type" json:"slotType"`
	Rarity    Rarity `yaml:"rarity" json:"rarity"`
	XPBonus   *Bonus `yaml:"xp_bonus,omitempty" json:"xpBonus,omitempty"`
	GoldBonus *Bonus `yaml:"gold_bonus,omitempty" json:"goldBonus,omitempty"`
}
