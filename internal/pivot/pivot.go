// Package pivot implements the exercise-substitution selector. Given a
// catalog exercise it proposes alternatives that share the same
// movement pattern, preferring ones performed with different equipment
// so a swap actually buys the user flexibility.
package pivot

import (
	"math/rand/v2"
	"sync"

	"github.com/meltforce/pivotfit/internal/catalog"
)

// Engine selects substitute exercises from a catalog snapshot.
type Engine struct {
	provider catalog.Provider

	mu  sync.Mutex
	rng *rand.Rand
}

// Option configures an Engine.
type Option func(*Engine)

// WithRandSource replaces the shuffle source. Tests pass a seeded
// source to pin the tier-1 ordering.
func WithRandSource(src rand.Source) Option {
	return func(e *Engine) {
		e.rng = rand.New(src)
	}
}

// New creates an Engine over the given provider.
func New(p catalog.Provider, opts ...Option) *Engine {
	e := &Engine{
		provider: p,
		rng:      rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// FindAlternatives returns up to count substitutes for the given
// exercise. An unknown id yields an empty result, not an error: callers
// treat "no alternatives" and "unknown exercise" the same way.
//
// Selection is two-tiered. Tier 1 is every same-pattern exercise whose
// equipment differs from the current one; when it can satisfy count on
// its own, a Fisher–Yates shuffle of the whole tier is truncated to
// count, so the draw is uniform and duplicate-free. When tier 1 falls
// short, it is returned in catalog order and topped up with remaining
// same-pattern exercises regardless of equipment, also in catalog
// order. The fallback tier is deliberately not shuffled; tests pin that
// ordering.
//
// The result never contains the input exercise, never repeats an id,
// and never exceeds count.
func (e *Engine) FindAlternatives(id catalog.ExerciseID, count int) []catalog.Exercise {
	if count <= 0 {
		return nil
	}
	current, ok := e.provider.ByID(id)
	if !ok {
		return nil
	}

	all := e.provider.All()

	preferred := make([]catalog.Exercise, 0, count)
	for _, ex := range all {
		if ex.ID == id || ex.Pattern != current.Pattern {
			continue
		}
		if ex.Equipment != current.Equipment {
			preferred = append(preferred, ex)
		}
	}

	if len(preferred) >= count {
		shuffled := make([]catalog.Exercise, len(preferred))
		copy(shuffled, preferred)
		e.mu.Lock()
		e.rng.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})
		e.mu.Unlock()
		return shuffled[:count]
	}

	result := preferred
	seen := make(map[catalog.ExerciseID]struct{}, len(result))
	for _, ex := range result {
		seen[ex.ID] = struct{}{}
	}
	for _, ex := range all {
		if len(result) == count {
			break
		}
		if ex.ID == id || ex.Pattern != current.Pattern {
			continue
		}
		if _, dup := seen[ex.ID]; dup {
			continue
		}
		seen[ex.ID] = struct{}{}
		result = append(result, ex)
	}
	return result
}
