// Package swap orchestrates exercise substitutions: it gates genuine
// swaps on the monthly quota for non-privileged identities, requires a
// confirmation before discarding logged sets, and commits the slot
// change, the set clearing and the quota charge as one transaction.
package swap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/meltforce/pivotfit/internal/catalog"
	"github.com/meltforce/pivotfit/internal/program"
	"github.com/meltforce/pivotfit/internal/quota"
	"github.com/meltforce/pivotfit/internal/state"
)

// Outcome is the result class of a swap request.
type Outcome string

const (
	// OutcomeApplied: the slot now points at the requested exercise.
	OutcomeApplied Outcome = "applied"
	// OutcomeQuotaExceeded: no swaps left this month; nothing changed.
	OutcomeQuotaExceeded Outcome = "quota_exceeded"
	// OutcomeNeedsConfirmation: the slot has logged sets that would be
	// discarded; the caller must confirm before the swap applies.
	OutcomeNeedsConfirmation Outcome = "needs_confirmation"
	// OutcomeDeclined: the caller answered the confirmation with no.
	OutcomeDeclined Outcome = "declined"
)

// UnlimitedRemaining marks a result whose identity never touches the
// quota tracker.
const UnlimitedRemaining = -1

// Result reports what a swap request did.
type Result struct {
	Outcome Outcome `json:"outcome"`
	// CurrentID is the exercise the slot resolves to after the request.
	CurrentID catalog.ExerciseID `json:"current_id"`
	// Remaining is the quota left after the request, or
	// UnlimitedRemaining when the quota was not consulted.
	Remaining int `json:"remaining"`
	// ConfirmToken is set with OutcomeNeedsConfirmation and redeemed
	// via Confirm.
	ConfirmToken uuid.UUID `json:"confirm_token,omitempty"`
}

// ErrUnknownExercise is returned when the requested substitute is not
// in the catalog.
var ErrUnknownExercise = errors.New("swap: unknown exercise")

// ErrUnknownConfirmation is returned for a confirmation token that was
// never issued, was already redeemed, or has expired.
var ErrUnknownConfirmation = errors.New("swap: unknown confirmation token")

// Entitlements is the identity collaborator. HasUnlimitedSwaps is a
// point-in-time read; the controller caches nothing.
type Entitlements interface {
	HasUnlimitedSwaps(ctx context.Context) (bool, error)
}

// Static is a fixed entitlement answer, used in config-driven setups
// and tests.
type Static bool

func (s Static) HasUnlimitedSwaps(context.Context) (bool, error) { return bool(s), nil }

// Confirmer is the destructive-action dialog collaborator for the
// one-shot request path.
type Confirmer interface {
	ConfirmDiscard(ctx context.Context, slot program.Slot, target catalog.ExerciseID) (bool, error)
}

// pendingTTL bounds how long an unconfirmed swap stays redeemable.
const pendingTTL = 5 * time.Minute

type pendingSwap struct {
	slot       program.Slot
	target     catalog.ExerciseID
	privileged bool
	issued     time.Time
}

// Controller runs the swap workflow.
type Controller struct {
	catalog catalog.Provider
	store   *program.Store
	quota   *quota.Tracker
	ent     Entitlements
	log     *slog.Logger
	now     func() time.Time

	mu      sync.Mutex
	pending map[uuid.UUID]pendingSwap
}

// NewController wires the workflow's collaborators together.
func NewController(cat catalog.Provider, store *program.Store, tracker *quota.Tracker, ent Entitlements, log *slog.Logger) *Controller {
	return &Controller{
		catalog: cat,
		store:   store,
		quota:   tracker,
		ent:     ent,
		log:     log,
		now:     time.Now,
		pending: make(map[uuid.UUID]pendingSwap),
	}
}

// Check starts a swap of slot to target. The decision order is fixed:
// the quota gate runs first (skipped for privileged identities and for
// resets back to the original exercise), then the logged-data check.
// A slot with logged sets yields OutcomeNeedsConfirmation and a token
// for Confirm; otherwise the swap applies immediately.
func (c *Controller) Check(ctx context.Context, slot program.Slot, target catalog.ExerciseID) (Result, error) {
	if _, ok := c.catalog.ByID(target); !ok {
		return Result{}, fmt.Errorf("%w: %d", ErrUnknownExercise, target)
	}

	privileged, err := c.ent.HasUnlimitedSwaps(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("reading entitlement: %w", err)
	}

	isReset := target == slot.OriginalID
	if !privileged && !isReset {
		remaining, err := c.quota.Remaining(ctx)
		if err != nil {
			return Result{}, err
		}
		if remaining <= 0 {
			current, err := c.store.Resolve(ctx, slot)
			if err != nil {
				return Result{}, err
			}
			return Result{Outcome: OutcomeQuotaExceeded, CurrentID: current, Remaining: 0}, nil
		}
	}

	logged, err := c.store.HasLoggedData(ctx, slot.Day, slot.Index)
	if err != nil {
		return Result{}, err
	}
	if logged {
		token := uuid.New()
		c.mu.Lock()
		c.prunePendingLocked()
		c.pending[token] = pendingSwap{slot: slot, target: target, privileged: privileged, issued: c.now()}
		c.mu.Unlock()

		current, err := c.store.Resolve(ctx, slot)
		if err != nil {
			return Result{}, err
		}
		return Result{
			Outcome:      OutcomeNeedsConfirmation,
			CurrentID:    current,
			Remaining:    UnlimitedRemaining,
			ConfirmToken: token,
		}, nil
	}

	return c.apply(ctx, slot, target, privileged)
}

// Confirm redeems a token from Check. accept=false discards the
// pending swap and leaves the slot untouched.
func (c *Controller) Confirm(ctx context.Context, token uuid.UUID, accept bool) (Result, error) {
	c.mu.Lock()
	p, ok := c.pending[token]
	if ok {
		delete(c.pending, token)
	}
	c.mu.Unlock()

	if !ok || c.now().Sub(p.issued) > pendingTTL {
		return Result{}, ErrUnknownConfirmation
	}

	if !accept {
		current, err := c.store.Resolve(ctx, p.slot)
		if err != nil {
			return Result{}, err
		}
		return Result{Outcome: OutcomeDeclined, CurrentID: current, Remaining: UnlimitedRemaining}, nil
	}

	return c.apply(ctx, p.slot, p.target, p.privileged)
}

// RequestSwap is the one-shot path: it runs Check and, when a
// confirmation is needed, asks the Confirmer and settles immediately.
func (c *Controller) RequestSwap(ctx context.Context, slot program.Slot, target catalog.ExerciseID, confirmer Confirmer) (Result, error) {
	res, err := c.Check(ctx, slot, target)
	if err != nil || res.Outcome != OutcomeNeedsConfirmation {
		return res, err
	}
	accept, err := confirmer.ConfirmDiscard(ctx, slot, target)
	if err != nil {
		c.Confirm(ctx, res.ConfirmToken, false)
		return Result{}, fmt.Errorf("confirming discard: %w", err)
	}
	return c.Confirm(ctx, res.ConfirmToken, accept)
}

// apply commits the swap: cleared sets, the slot override and (for an
// unprivileged genuine swap) the quota charge land in one transaction.
func (c *Controller) apply(ctx context.Context, slot program.Slot, target catalog.ExerciseID, privileged bool) (Result, error) {
	isReset := target == slot.OriginalID
	remaining := UnlimitedRemaining

	err := c.store.KV().Apply(ctx, func(tx *state.Tx) error {
		if err := c.store.ApplySwapTx(ctx, tx, slot, target); err != nil {
			return err
		}
		if !privileged && !isReset {
			used, err := c.quota.IncrementTx(ctx, tx)
			if err != nil {
				return err
			}
			remaining = quota.MonthlyAllowance - used
			if remaining < 0 {
				remaining = 0
			}
		}
		return nil
	})
	if err != nil {
		return Result{}, fmt.Errorf("applying swap: %w", err)
	}

	c.log.Info("swap applied",
		"day", slot.Day, "slot", slot.Index,
		"from", slot.OriginalID, "to", target,
		"reset", isReset,
	)
	return Result{Outcome: OutcomeApplied, CurrentID: target, Remaining: remaining}, nil
}

// prunePendingLocked drops expired confirmation tokens. Caller holds mu.
func (c *Controller) prunePendingLocked() {
	cutoff := c.now().Add(-pendingTTL)
	for token, p := range c.pending {
		if p.issued.Before(cutoff) {
			delete(c.pending, token)
		}
	}
}
