package game

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/meltforce/ironquest/internal/engine"
	"gopkg.in/yaml.v3"
)

// Data is the loaded static game content: the exercise taxonomy, the item
// catalog, the rank table, and the achievement rules. Loaded once at startup
// and read-only afterwards.
type Data struct {
	Catalog      *engine.Catalog
	Items        []engine.Item
	Ranks        engine.RankTable
	Achievements []engine.Achievement

	itemsByID map[string]engine.Item
}

// ItemByID looks up an item definition.
func (d *Data) ItemByID(id string) (engine.Item, bool) {
	item, ok := d.itemsByID[id]
	return item, ok
}

type exercisesFile struct {
	Exercises []engine.CatalogEntry `yaml:"exercises"`
}

type itemsFile struct {
	Items []engine.Item `yaml:"items"`
}

type ranksFile struct {
	Ranks []engine.RankTier `yaml:"ranks"`
}

type achievementsFile struct {
	Achievements []achievementSpec `yaml:"achievements"`
}

// achievementSpec is the on-disk shape; the requirement string is decoded
// into its tagged form at load so malformed rules fail here, not during
// evaluation.
type achievementSpec struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Requirement string `yaml:"requirement"`
	ItemID      string `yaml:"item_id"`
}

// Load reads and validates all game data files from dir.
func Load(dir string) (*Data, error) {
	d := &Data{}

	var ef exercisesFile
	if err := loadYAML(filepath.Join(dir, "exercises.yaml"), &ef); err != nil {
		return nil, err
	}
	for _, e := range ef.Exercises {
		if e.Name == "" {
			return nil, fmt.Errorf("exercises.yaml: entry with empty name")
		}
		if !e.MuscleGroup.Valid() {
			return nil, fmt.Errorf("exercises.yaml: %q has unknown muscle group %q", e.Name, e.MuscleGroup)
		}
		if !e.Kind.Valid() {
			return nil, fmt.Errorf("exercises.yaml: %q has unknown set kind %q", e.Name, e.Kind)
		}
	}
	d.Catalog = engine.NewCatalog(ef.Exercises)

	var itf itemsFile
	if err := loadYAML(filepath.Join(dir, "items.yaml"), &itf); err != nil {
		return nil, err
	}
	d.Items = itf.Items
	d.itemsByID = make(map[string]engine.Item, len(itf.Items))
	for _, item := range itf.Items {
		if item.ID == "" {
			return nil, fmt.Errorf("items.yaml: item %q has empty id", item.Name)
		}
		if !item.Rarity.Valid() {
			return nil, fmt.Errorf("items.yaml: item %q has unknown rarity %q", item.ID, item.Rarity)
		}
		if err := validBonus(item.XPBonus); err != nil {
			return nil, fmt.Errorf("items.yaml: item %q xp_bonus: %w", item.ID, err)
		}
		if err := validBonus(item.GoldBonus); err != nil {
			return nil, fmt.Errorf("items.yaml: item %q gold_bonus: %w", item.ID, err)
		}
		if _, dup := d.itemsByID[item.ID]; dup {
			return nil, fmt.Errorf("items.yaml: duplicate item id %q", item.ID)
		}
		d.itemsByID[item.ID] = item
	}

	var rf ranksFile
	if err := loadYAML(filepath.Join(dir, "ranks.yaml"), &rf); err != nil {
		return nil, err
	}
	if len(rf.Ranks) == 0 {
		return nil, fmt.Errorf("ranks.yaml: no rank tiers defined")
	}
	for i, tier := range rf.Ranks {
		if i > 0 && tier.MinXP <= rf.Ranks[i-1].MinXP {
			return nil, fmt.Errorf("ranks.yaml: tier %q min_xp must increase (got %d after %d)",
				tier.Name, tier.MinXP, rf.Ranks[i-1].MinXP)
		}
	}
	d.Ranks = engine.RankTable(rf.Ranks)

	var af achievementsFile
	if err := loadYAML(filepath.Join(dir, "achievements.yaml"), &af); err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(af.Achievements))
	for _, spec := range af.Achievements {
		if spec.ID == "" {
			return nil, fmt.Errorf("achievements.yaml: achievement %q has empty id", spec.Name)
		}
		if seen[spec.ID] {
			return nil, fmt.Errorf("achievements.yaml: duplicate achievement id %q", spec.ID)
		}
		seen[spec.ID] = true

		req, err := engine.ParseRequirement(spec.Requirement)
		if err != nil {
			return nil, fmt.Errorf("achievements.yaml: achievement %q: %w", spec.ID, err)
		}
		if spec.ItemID != "" {
			if _, ok := d.itemsByID[spec.ItemID]; !ok {
				return nil, fmt.Errorf("achievements.yaml: achievement %q grants unknown item %q", spec.ID, spec.ItemID)
			}
		}
		d.Achievements = append(d.Achievements, engine.Achievement{
			ID:          spec.ID,
			Name:        spec.Name,
			Description: spec.Description,
			Requirement: req,
			ItemID:      spec.ItemID,
		})
	}

	return d, nil
}

func loadYAML(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", filepath.Base(path), err)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parsing %s: %w", filepath.Base(path), err)
	}
	return nil
}

func validBonus(b *engine.Bonus) error {
	if b == nil {
		return nil
	}
	if b.MuscleGroup != engine.BonusTargetAll && !engine.MuscleGroup(b.MuscleGroup).Valid() {
		return fmt.Errorf("unknown muscle group %q", b.MuscleGroup)
	}
	if b.BonusPercent < 0 {
		return fmt.Errorf("negative bonus percent %v", b.BonusPercent)
	}
	return nil
}
