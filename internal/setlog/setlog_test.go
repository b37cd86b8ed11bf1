package setlog

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/meltforce/pivotfit/internal/program"
	"github.com/meltforce/pivotfit/internal/state"
)

func testLogger(t *testing.T) (*Logger, *program.Store) {
	t.Helper()
	kv, err := state.Open(t.TempDir())
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	t.Cleanup(func() { kv.Close() })
	store := program.NewStore(kv)
	return NewLogger(store, slog.New(slog.NewTextHandler(io.Discard, nil))), store
}

// TestToggleCycle verifies three toggles walk completed → failed →
// unset, with the last toggle leaving a stored record whose status is
// absent while weight and reps survive.
func TestToggleCycle(t *testing.T) {
	ctx := context.Background()
	l, store := testLogger(t)

	want := []program.SetStatus{program.StatusCompleted, program.StatusFailed, ""}
	for i, status := range want {
		if err := l.ToggleSet(ctx, 0, 0, 0, "80", "5"); err != nil {
			t.Fatal(err)
		}
		sets, err := store.LoggedSets(ctx, 0, 0)
		if err != nil {
			t.Fatal(err)
		}
		got, ok := sets[0]
		if !ok {
			t.Fatalf("toggle %d: set not stored", i)
		}
		if got.Status != status {
			t.Errorf("toggle %d: status = %q, want %q", i, got.Status, status)
		}
		if got.Reps != 5 {
			t.Errorf("toggle %d: reps = %d, want 5", i, got.Reps)
		}
		if got.Weight == nil || *got.Weight != 80 {
			t.Errorf("toggle %d: weight = %v, want 80", i, got.Weight)
		}
	}
}

// TestToggleRejectsInvalidInput verifies bad reps/weight make the
// toggle a silent no-op: no error, nothing stored.
func TestToggleRejectsInvalidInput(t *testing.T) {
	ctx := context.Background()
	l, store := testLogger(t)

	tests := []struct {
		name         string
		weight, reps string
	}{
		{name: "empty reps", weight: "100", reps: ""},
		{name: "zero reps", weight: "100", reps: "0"},
		{name: "negative reps", weight: "100", reps: "-3"},
		{name: "non-numeric reps", weight: "100", reps: "five"},
		{name: "negative weight", weight: "-10", reps: "5"},
		{name: "non-numeric weight", weight: "heavy", reps: "5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := l.ToggleSet(ctx, 1, 0, 0, tt.weight, tt.reps); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			sets, err := store.LoggedSets(ctx, 1, 0)
			if err != nil {
				t.Fatal(err)
			}
			if len(sets) != 0 {
				t.Errorf("set stored despite invalid input: %+v", sets)
			}
		})
	}
}

// TestEmptyWeightIsNil verifies an empty weight field persists nil,
// not zero.
func TestEmptyWeightIsNil(t *testing.T) {
	ctx := context.Background()
	l, store := testLogger(t)

	if err := l.SaveSet(ctx, 0, 1, 0, "", "12"); err != nil {
		t.Fatal(err)
	}
	if err := l.SaveSet(ctx, 0, 1, 1, "0", "12"); err != nil {
		t.Fatal(err)
	}

	sets, err := store.LoggedSets(ctx, 0, 1)
	if err != nil {
		t.Fatal(err)
	}
	if sets[0].Weight != nil {
		t.Errorf("empty weight stored as %v, want nil", *sets[0].Weight)
	}
	if sets[1].Weight == nil || *sets[1].Weight != 0 {
		t.Error("explicit zero weight lost")
	}
}

// TestSaveCarriesStatusForward verifies editing weight/reps does not
// clear a status set by an earlier toggle.
func TestSaveCarriesStatusForward(t *testing.T) {
	ctx := context.Background()
	l, store := testLogger(t)

	if err := l.ToggleSet(ctx, 1, 2, 0, "100", "5"); err != nil {
		t.Fatal(err)
	}
	if err := l.SaveSet(ctx, 1, 2, 0, "110", "6"); err != nil {
		t.Fatal(err)
	}

	sets, err := store.LoggedSets(ctx, 1, 2)
	if err != nil {
		t.Fatal(err)
	}
	got := sets[0]
	if got.Weight == nil || *got.Weight != 110 {
		t.Errorf("weight = %v, want 110", got.Weight)
	}
	if got.Reps != 6 {
		t.Errorf("reps = %d, want 6", got.Reps)
	}
	if got.Status != program.StatusCompleted {
		t.Errorf("status = %q, want completed (carried forward)", got.Status)
	}
}

// TestSaveTrimsWhitespace verifies padded numeric input still parses.
func TestSaveTrimsWhitespace(t *testing.T) {
	ctx := context.Background()
	l, store := testLogger(t)

	if err := l.SaveSet(ctx, 2, 0, 0, " 72.5 ", " 8 "); err != nil {
		t.Fatal(err)
	}
	sets, err := store.LoggedSets(ctx, 2, 0)
	if err != nil {
		t.Fatal(err)
	}
	got := sets[0]
	if got.Weight == nil || *got.Weight != 72.5 {
		t.Errorf("weight = %v, want 72.5", got.Weight)
	}
	if got.Reps != 8 {
		t.Errorf("reps = %d, want 8", got.Reps)
	}
}
