package seed

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LogFile is one workout log on disk. Every set in a log is treated as
// completed; partial sets have no place in a backfill.
type LogFile struct {
	UserID    int           `yaml:"user_id"`
	Notes     string        `yaml:"notes"`
	Exercises []LogExercise `yaml:"exercises"`
}

// LogExercise is one exercise block within a log.
type LogExercise struct {
	Name string   `yaml:"name"`
	Kind string   `yaml:"kind"`
	Sets []LogSet `yaml:"sets"`
}

// LogSet carries whichever fields the exercise's set kind needs.
type LogSet struct {
	Reps     *int     `yaml:"reps"`
	Weight   *float64 `yaml:"weight"`
	Duration string   `yaml:"duration"`
	Distance *float64 `yaml:"distance"`
}

// ParseLogFile reads and validates a workout log.
func ParseLogFile(path string) (*LogFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var log LogFile
	if err := yaml.Unmarshal(data, &log); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	if log.UserID <= 0 {
		return nil, fmt.Errorf("%s: user_id must be positive", path)
	}
	if len(log.Exercises) == 0 {
		return nil, fmt.Errorf("%s: no exercises", path)
	}
	for i, ex := range log.Exercises {
		if ex.Name == "" {
			return nil, fmt.Errorf("%s: exercise %d has no name", path, i)
		}
		if len(ex.Sets) == 0 {
			return nil, fmt.Errorf("%s: exercise %q has no sets", path, ex.Name)
		}
	}
	return &log, nil
}

// SetCount returns the total number of sets in the log.
func (l *LogFile) SetCount() int {
	n := 0
	for _, ex := range l.Exercises {
		n += len(ex.Sets)
	}
	return n
}
