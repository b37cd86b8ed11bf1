// Package catalog holds the exercise catalog: the read-only set of
// exercises a training program can draw from. The catalog is hydrated
// from the backend once and treated as an immutable snapshot; swap and
// logging code only ever reads it.
package catalog

// ExerciseID identifies an exercise in the catalog. IDs are assigned by
// the catalog backend and are stable across syncs.
type ExerciseID int64

// Exercise is a single catalog record. Pattern is the movement-pattern
// tag (e.g. "Horizontal Push") that defines the equivalence class for
// substitutions; Muscle and Equipment are secondary differentiators.
type Exercise struct {
	ID        ExerciseID `json:"id"`
	Name      string     `json:"name"`
	Pattern   string     `json:"pattern"`
	Muscle    string     `json:"muscle"`
	Equipment string     `json:"equipment"`
}

// Provider is the read surface the rest of the core consumes.
type Provider interface {
	All() []Exercise
	ByID(id ExerciseID) (Exercise, bool)
}

// Catalog is an in-memory snapshot. It preserves the order records were
// loaded in, which is the iteration order the alternatives selector's
// fallback tier depends on.
type Catalog struct {
	ordered []Exercise
	byID    map[ExerciseID]Exercise
}

// Compile-time check: *Catalog satisfies Provider.
var _ Provider = (*Catalog)(nil)

// New builds a snapshot from records, keeping the first occurrence of
// any duplicated id.
func New(records []Exercise) *Catalog {
	c := &Catalog{
		ordered: make([]Exercise, 0, len(records)),
		byID:    make(map[ExerciseID]Exercise, len(records)),
	}
	for _, r := range records {
		if _, dup := c.byID[r.ID]; dup {
			continue
		}
		c.byID[r.ID] = r
		c.ordered = append(c.ordered, r)
	}
	return c
}

// All returns every record in load order. Callers must not mutate the
// returned slice.
func (c *Catalog) All() []Exercise {
	return c.ordered
}

// ByID looks up a single record.
func (c *Catalog) ByID(id ExerciseID) (Exercise, bool) {
	e, ok := c.byID[id]
	return e, ok
}

// Len reports the number of records in the snapshot.
func (c *Catalog) Len() int {
	return len(c.ordered)
}
