package setlog

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// DefaultDebounce is how long the autosaver waits after the last edit
// before committing it.
const DefaultDebounce = 600 * time.Millisecond

type setKey struct {
	day, slot, set int
}

type pendingEdit struct {
	weight, reps string
	timer        *time.Timer
}

// Autosaver buffers raw weight/reps edits per set and commits each one
// after a quiet period. A new edit for the same set supersedes the
// pending one, so the last edit always wins; Close cancels everything
// still pending so no write outlives the editing surface.
type Autosaver struct {
	logger *Logger
	delay  time.Duration
	log    *slog.Logger

	mu      sync.Mutex
	pending map[setKey]*pendingEdit
	closed  bool
}

// NewAutosaver creates an Autosaver committing through logger after
// delay of inactivity per set.
func NewAutosaver(logger *Logger, delay time.Duration, log *slog.Logger) *Autosaver {
	if delay <= 0 {
		delay = DefaultDebounce
	}
	return &Autosaver{
		logger:  logger,
		delay:   delay,
		log:     log,
		pending: make(map[setKey]*pendingEdit),
	}
}

// Edit records the latest weight/reps text for a set and (re)starts its
// debounce timer.
func (a *Autosaver) Edit(day, slot, set int, weight, reps string) {
	key := setKey{day: day, slot: slot, set: set}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return
	}

	if p, ok := a.pending[key]; ok {
		p.weight, p.reps = weight, reps
		p.timer.Reset(a.delay)
		return
	}

	p := &pendingEdit{weight: weight, reps: reps}
	p.timer = time.AfterFunc(a.delay, func() {
		a.fire(key)
	})
	a.pending[key] = p
}

// fire commits the pending edit for key, if it is still pending. The
// value is read and the entry removed under the lock, so a commit can
// never clobber a newer edit.
func (a *Autosaver) fire(key setKey) {
	a.mu.Lock()
	p, ok := a.pending[key]
	if !ok || a.closed {
		a.mu.Unlock()
		return
	}
	delete(a.pending, key)
	weight, reps := p.weight, p.reps
	a.mu.Unlock()

	if err := a.logger.SaveSet(context.Background(), key.day, key.slot, key.set, weight, reps); err != nil {
		a.log.Error("autosave failed", "day", key.day, "slot", key.slot, "set", key.set, "error", err)
	}
}

// Flush commits every pending edit immediately.
func (a *Autosaver) Flush(ctx context.Context) error {
	a.mu.Lock()
	edits := make(map[setKey]*pendingEdit, len(a.pending))
	for k, p := range a.pending {
		p.timer.Stop()
		edits[k] = p
		delete(a.pending, k)
	}
	a.mu.Unlock()

	for k, p := range edits {
		if err := a.logger.SaveSet(ctx, k.day, k.slot, k.set, p.weight, p.reps); err != nil {
			return err
		}
	}
	return nil
}

// Close cancels all pending edits without committing them.
func (a *Autosaver) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.closed = true
	for k, p := range a.pending {
		p.timer.Stop()
		delete(a.pending, k)
	}
}
