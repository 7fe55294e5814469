package engine

// SetKind determines which fields a set records and how it is validated.
type SetKind string

const (
	KindStandard   SetKind = "standard"   // reps + weight
	KindBodyweight SetKind = "bodyweight" // reps only
	KindTimed      SetKind = "timed"      // duration (+ optional distance)
)

// Valid reports whether k is a known set kind.
func (k SetKind) Valid() bool {
	return k == KindStandard || k == KindBodyweight || k == KindTimed
}

// CatalogEntry maps an exercise name to its primary muscle group and set shape.
type CatalogEntry struct {
	Name        string      `yaml:"name" json:"name"`
	MuscleGroup MuscleGroup `yaml:"muscle_group" json:"muscleGroup"`
	Kind        SetKind     `yaml:"kind" json:"kind"`
}

// Catalog is the static exercise taxonomy. Lookup is by exact,
// case-sensitive name; on duplicate names the first entry wins.
type Catalog struct {
	entries []CatalogEntry
	byName  map[string]int
}

// NewCatalog builds a catalog from entries, keeping first-match-wins order.
func NewCatalog(entries []CatalogEntry) *Catalog {
	c := &Catalog{
		entries: entries,
		byName:  make(map[string]int, len(entries)),
	}
	for i, e := range entries {
		if _, ok := c.byName[e.Name]; !ok {
			c.byName[e.Name] = i
		}
	}
	return c
}

// Resolve looks up an exercise by name. An unknown exercise is not an
// error: it still counts toward session totals, it just earns no rewards.
func (c *Catalog) Resolve(name string) (CatalogEntry, bool) {
	i, ok := c.byName[name]
	if !ok {
		return CatalogEntry{}, false
	}
	return c.entries[i], true
}

// Entries returns the catalog contents in load order.
func (c *Catalog) Entries() []CatalogEntry {
	return c.entries
}

// Len returns the number of distinct loaded entries.
func (c *Catalog) Len() int {
	return len(c.entries)
}
