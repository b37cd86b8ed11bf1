// Package program defines the persisted per-slot training state: which
// exercise a slot currently resolves to, the sets logged against it,
// custom set counts and favorite exercises. Each structure is a JSON
// blob under a fixed key in the state store.
//
// A slot is addressed by (day, slot): day is the 0-based offset from
// program start, slot the 0-based position within that day.
package program

import "github.com/meltforce/pivotfit/internal/catalog"

// SetStatus is the logged outcome of a single set. The zero value means
// the set has no status; a stored record with an empty status is a set
// whose status was toggled back off, distinct from a set never stored.
type SetStatus string

const (
	StatusCompleted SetStatus = "completed"
	StatusFailed    SetStatus = "failed"
)

// Next advances the status along the toggle cycle:
// unset → completed → failed → unset.
func (s SetStatus) Next() SetStatus {
	switch s {
	case StatusCompleted:
		return StatusFailed
	case StatusFailed:
		return ""
	default:
		return StatusCompleted
	}
}

// LoggedSet is one performed set. A nil Weight is an intentionally
// unrecorded load (bodyweight work), not zero.
type LoggedSet struct {
	Weight *float64  `json:"weight"`
	Reps   int       `json:"reps"`
	Status SetStatus `json:"status,omitempty"`
}

// Slot identifies a program position together with the exercise the
// program author assigned to it. The original id is owned by the host
// app's program definition and never stored here; only deviations from
// it are persisted.
type Slot struct {
	Day        int                `json:"day"`
	Index      int                `json:"slot"`
	OriginalID catalog.ExerciseID `json:"original_id"`
}

// SlotLog is the stored state of one slot, as reported by DayLog.
type SlotLog struct {
	Override *catalog.ExerciseID `json:"override,omitempty"`
	Sets     map[int]LoggedSet   `json:"sets,omitempty"`
	SetCount *int                `json:"set_count,omitempty"`
}

// DayLog groups every slot of a day that has stored state.
type DayLog struct {
	Day   int             `json:"day"`
	Slots map[int]SlotLog `json:"slots"`
}
