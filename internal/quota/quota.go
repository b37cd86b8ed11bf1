// Package quota tracks the monthly exercise-swap allowance for
// non-privileged identities. The counter lives in the state store and
// rolls over lazily: any read or increment under a different calendar
// month treats the stored count as zero.
package quota

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/meltforce/pivotfit/internal/state"
)

// MonthlyAllowance is the number of swaps a non-privileged identity may
// perform per calendar month.
const MonthlyAllowance = 10

const quotaKey = "swapquota"

// record is the persisted counter plus the device-local month it
// belongs to.
type record struct {
	Count int        `json:"count"`
	Year  int        `json:"year"`
	Month time.Month `json:"month"`
}

// Tracker reads and bumps the swap counter.
type Tracker struct {
	kv  *state.Store
	now func() time.Time
}

// New creates a Tracker over kv using the wall clock.
func New(kv *state.Store) *Tracker {
	return &Tracker{kv: kv, now: time.Now}
}

// NewWithClock creates a Tracker with an injected clock, used by tests
// to cross month boundaries.
func NewWithClock(kv *state.Store, now func() time.Time) *Tracker {
	return &Tracker{kv: kv, now: now}
}

type getter interface {
	Get(ctx context.Context, key string) (string, error)
}

func (t *Tracker) load(ctx context.Context, src getter) (record, error) {
	raw, err := src.Get(ctx, quotaKey)
	if errors.Is(err, state.ErrNotFound) {
		return record{}, nil
	}
	if err != nil {
		return record{}, err
	}
	var r record
	if err := json.Unmarshal([]byte(raw), &r); err != nil {
		return record{}, fmt.Errorf("corrupt swap quota: %w", err)
	}
	return r, nil
}

// effectiveCount is the stored count, or zero when the stored month is
// not the current one.
func (t *Tracker) effectiveCount(r record) int {
	y, m, _ := t.now().Date()
	if r.Year != y || r.Month != m {
		return 0
	}
	return r.Count
}

// Remaining returns the swaps left this month, floored at zero. It
// never writes: the month rollover is persisted on the next increment.
func (t *Tracker) Remaining(ctx context.Context) (int, error) {
	r, err := t.load(ctx, t.kv)
	if err != nil {
		return 0, err
	}
	left := MonthlyAllowance - t.effectiveCount(r)
	if left < 0 {
		left = 0
	}
	return left, nil
}

// Used returns the number of swaps consumed this month.
func (t *Tracker) Used(ctx context.Context) (int, error) {
	r, err := t.load(ctx, t.kv)
	if err != nil {
		return 0, err
	}
	return t.effectiveCount(r), nil
}

// Increment bumps the counter and returns the new count, resetting it
// first when the stored month is stale.
func (t *Tracker) Increment(ctx context.Context) (int, error) {
	var count int
	err := t.kv.Apply(ctx, func(tx *state.Tx) error {
		var err error
		count, err = t.incrementTx(ctx, tx)
		return err
	})
	return count, err
}

// IncrementTx bumps the counter inside an existing transaction, so a
// swap commit and its quota charge land atomically.
func (t *Tracker) IncrementTx(ctx context.Context, tx *state.Tx) (int, error) {
	return t.incrementTx(ctx, tx)
}

func (t *Tracker) incrementTx(ctx context.Context, tx *state.Tx) (int, error) {
	r, err := t.load(ctx, tx)
	if err != nil {
		return 0, err
	}

	y, m, _ := t.now().Date()
	next := record{Count: t.effectiveCount(r) + 1, Year: y, Month: m}

	blob, err := json.Marshal(next)
	if err != nil {
		return 0, fmt.Errorf("encoding swap quota: %w", err)
	}
	if err := tx.Set(ctx, quotaKey, string(blob)); err != nil {
		return 0, err
	}
	return next.Count, nil
}
