package pivot

import (
	"math/rand/v2"
	"testing"

	"github.com/meltforce/pivotfit/internal/catalog"
)

// testCatalog: ids 1-5 share "Horizontal Push"; 1 and 4 use a barbell,
// so 2, 3 and 5 are the different-equipment tier for exercise 1.
// Exercise 6 is the only "Squat", 7 the lone "Carry".
func testCatalog() *catalog.Catalog {
	return catalog.New([]catalog.Exercise{
		{ID: 1, Name: "Bench Press", Pattern: "Horizontal Push", Equipment: "Barbell"},
		{ID: 2, Name: "DB Bench Press", Pattern: "Horizontal Push", Equipment: "Dumbbell"},
		{ID: 3, Name: "Push Up", Pattern: "Horizontal Push", Equipment: "Bodyweight"},
		{ID: 4, Name: "Close Grip Bench", Pattern: "Horizontal Push", Equipment: "Barbell"},
		{ID: 5, Name: "Machine Chest Press", Pattern: "Horizontal Push", Equipment: "Machine"},
		{ID: 6, Name: "Back Squat", Pattern: "Squat", Equipment: "Barbell"},
		{ID: 7, Name: "Farmer Carry", Pattern: "Carry", Equipment: "Dumbbell"},
	})
}

func newTestEngine() *Engine {
	return New(testCatalog(), WithRandSource(rand.NewPCG(1, 2)))
}

// TestUnknownExercise verifies unknown ids yield an empty result for
// any count, never an error.
func TestUnknownExercise(t *testing.T) {
	e := newTestEngine()
	for _, count := range []int{0, 1, 3, 100} {
		if got := e.FindAlternatives(99, count); len(got) != 0 {
			t.Errorf("FindAlternatives(99, %d) = %d results, want 0", count, len(got))
		}
	}
}

// TestZeroCount verifies count 0 returns nothing.
func TestZeroCount(t *testing.T) {
	e := newTestEngine()
	if got := e.FindAlternatives(1, 0); len(got) != 0 {
		t.Errorf("FindAlternatives(1, 0) = %d results, want 0", len(got))
	}
}

// TestPreferredTierExactCount verifies that when the different-
// equipment tier can satisfy count, the result is exactly count
// distinct records, all sharing the pattern, none the input, and all
// drawn from that tier.
func TestPreferredTierExactCount(t *testing.T) {
	e := newTestEngine()

	for count := 1; count <= 3; count++ {
		got := e.FindAlternatives(1, count)
		if len(got) != count {
			t.Fatalf("count=%d: got %d results", count, len(got))
		}
		seen := map[catalog.ExerciseID]bool{}
		for _, ex := range got {
			if ex.ID == 1 {
				t.Error("result contains the input exercise")
			}
			if ex.Pattern != "Horizontal Push" {
				t.Errorf("result %d has pattern %q", ex.ID, ex.Pattern)
			}
			if ex.Equipment == "Barbell" {
				t.Errorf("result %d shares the input's equipment", ex.ID)
			}
			if seen[ex.ID] {
				t.Errorf("duplicate id %d", ex.ID)
			}
			seen[ex.ID] = true
		}
	}
}

// TestFallbackTierOrdered verifies that when the preferred tier falls
// short, it is returned in catalog order followed by same-pattern
// fill records, also in catalog order. No shuffle runs on this path,
// so the ordering is exact.
func TestFallbackTierOrdered(t *testing.T) {
	e := newTestEngine()

	// Exercise 1 has 3 different-equipment alternatives (2, 3, 5) and
	// one same-equipment one (4). Asking for 4 exhausts the pattern.
	got := e.FindAlternatives(1, 4)
	want := []catalog.ExerciseID{2, 3, 5, 4}
	if len(got) != len(want) {
		t.Fatalf("got %d results, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].ID != want[i] {
			t.Errorf("result[%d].ID = %d, want %d", i, got[i].ID, want[i])
		}
	}
}

// TestCatalogExhausted verifies the result is capped by what the
// pattern has, not padded.
func TestCatalogExhausted(t *testing.T) {
	e := newTestEngine()
	got := e.FindAlternatives(1, 50)
	if len(got) != 4 {
		t.Fatalf("got %d results, want 4 (pattern exhausted)", len(got))
	}
}

// TestLonePatternMember verifies an exercise with no same-pattern
// peers has no alternatives.
func TestLonePatternMember(t *testing.T) {
	e := newTestEngine()
	if got := e.FindAlternatives(6, 3); len(got) != 0 {
		t.Errorf("FindAlternatives(6, 3) = %d results, want 0", len(got))
	}
}

// TestShuffleIsUniformDraw runs the preferred tier repeatedly and
// checks every tier member shows up in some draw: the shuffle selects
// from the whole tier, not a fixed prefix.
func TestShuffleIsUniformDraw(t *testing.T) {
	e := New(testCatalog(), WithRandSource(rand.NewPCG(7, 7)))

	seen := map[catalog.ExerciseID]bool{}
	for range 100 {
		for _, ex := range e.FindAlternatives(1, 1) {
			seen[ex.ID] = true
		}
	}
	for _, id := range []catalog.ExerciseID{2, 3, 5} {
		if !seen[id] {
			t.Errorf("exercise %d never selected across 100 draws", id)
		}
	}
}
