package catalog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type catalogFile struct {
	Exercises []fileExercise `yaml:"exercises"`
}

type fileExercise struct {
	ID        int64  `yaml:"id"`
	Name      string `yaml:"name"`
	Pattern   string `yaml:"pattern"`
	Muscle    string `yaml:"muscle"`
	Equipment string `yaml:"equipment"`
}

// LoadFile reads a YAML exercise file. Used for seeding the backend and
// for running without a database in dev mode.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog file: %w", err)
	}

	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing catalog file: %w", err)
	}

	records := make([]Exercise, 0, len(f.Exercises))
	for i, e := range f.Exercises {
		if e.ID == 0 {
			return nil, fmt.Errorf("exercise %d (%q): id is required", i, e.Name)
		}
		if e.Name == "" || e.Pattern == "" {
			return nil, fmt.Errorf("exercise %d: name and pattern are required", e.ID)
		}
		records = append(records, Exercise{
			ID:        ExerciseID(e.ID),
			Name:      e.Name,
			Pattern:   e.Pattern,
			Muscle:    e.Muscle,
			Equipment: e.Equipment,
		})
	}
	return New(records), nil
}
