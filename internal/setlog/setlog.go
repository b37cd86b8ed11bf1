// Package setlog is the set-logging state machine. It parses the free
// text weight/reps fields the mobile shell sends, silently rejecting
// anything that does not validate, and cycles each set's status through
// unset → completed → failed → unset on explicit toggles.
package setlog

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"github.com/meltforce/pivotfit/internal/program"
)

// Logger applies set edits and toggles to the slot store.
type Logger struct {
	store *program.Store
	log   *slog.Logger
}

// NewLogger creates a Logger over store.
func NewLogger(store *program.Store, log *slog.Logger) *Logger {
	return &Logger{store: store, log: log}
}

// parseReps accepts a positive integer. Anything else fails.
func parseReps(raw string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// parseWeight accepts a non-negative number, or empty for "no load
// recorded". Empty maps to nil, which is distinct from zero.
func parseWeight(raw string) (*float64, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, true
	}
	w, err := strconv.ParseFloat(raw, 64)
	if err != nil || w < 0 {
		return nil, false
	}
	return &w, true
}

// SaveSet persists a weight/reps edit for one set. Invalid input is a
// silent no-op: these come straight from free-text fields and rejecting
// loudly mid-typing would be noise. Any status already on the set is
// carried forward unchanged.
func (l *Logger) SaveSet(ctx context.Context, day, slot, set int, weight, reps string) error {
	repsVal, ok := parseReps(reps)
	if !ok {
		return nil
	}
	weightVal, ok := parseWeight(weight)
	if !ok {
		return nil
	}

	sets, err := l.store.LoggedSets(ctx, day, slot)
	if err != nil {
		return err
	}
	prior := sets[set]

	return l.store.SaveSet(ctx, day, slot, set, program.LoggedSet{
		Weight: weightVal,
		Reps:   repsVal,
		Status: prior.Status,
	})
}

// ToggleSet advances the set's status one step along the cycle,
// persisting the given weight/reps with it. The same validation as
// SaveSet applies: a set cannot carry a status without valid reps.
func (l *Logger) ToggleSet(ctx context.Context, day, slot, set int, weight, reps string) error {
	repsVal, ok := parseReps(reps)
	if !ok {
		return nil
	}
	weightVal, ok := parseWeight(weight)
	if !ok {
		return nil
	}

	sets, err := l.store.LoggedSets(ctx, day, slot)
	if err != nil {
		return err
	}
	next := sets[set].Status.Next()

	l.log.Debug("set toggled", "day", day, "slot", slot, "set", set, "status", string(next))

	return l.store.SaveSet(ctx, day, slot, set, program.LoggedSet{
		Weight: weightVal,
		Reps:   repsVal,
		Status: next,
	})
}
