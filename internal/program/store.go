package program

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/meltforce/pivotfit/internal/catalog"
	"github.com/meltforce/pivotfit/internal/state"
)

// Key layout in the state store. Per-slot keys share the
// "slot:<day>:<slot>:" prefix so a whole day can be listed with one
// prefix scan.
const favoritesKey = "favorites"

func swapKey(day, slot int) string {
	return fmt.Sprintf("slot:%d:%d:swap", day, slot)
}

func setsKey(day, slot int) string {
	return fmt.Sprintf("slot:%d:%d:sets", day, slot)
}

func setCountKey(day, slot int) string {
	return fmt.Sprintf("slot:%d:%d:setcount", day, slot)
}

// Store reads and writes slot state through the key-value store.
type Store struct {
	kv *state.Store
}

// NewStore creates a Store over kv.
func NewStore(kv *state.Store) *Store {
	return &Store{kv: kv}
}

// Override returns the swapped exercise id for a slot, if any.
func (s *Store) Override(ctx context.Context, day, slot int) (catalog.ExerciseID, bool, error) {
	raw, err := s.kv.Get(ctx, swapKey(day, slot))
	if errors.Is(err, state.ErrNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("corrupt slot override %q: %w", raw, err)
	}
	return catalog.ExerciseID(id), true, nil
}

// Resolve returns the exercise id the slot currently points at: the
// stored override if present, the program-authored original otherwise.
func (s *Store) Resolve(ctx context.Context, slot Slot) (catalog.ExerciseID, error) {
	id, ok, err := s.Override(ctx, slot.Day, slot.Index)
	if err != nil {
		return 0, err
	}
	if !ok {
		return slot.OriginalID, nil
	}
	return id, nil
}

// LoggedSets returns the sets stored for a slot, keyed by set index.
// The map is empty (not nil) when nothing is logged.
func (s *Store) LoggedSets(ctx context.Context, day, slot int) (map[int]LoggedSet, error) {
	raw, err := s.kv.Get(ctx, setsKey(day, slot))
	if errors.Is(err, state.ErrNotFound) {
		return map[int]LoggedSet{}, nil
	}
	if err != nil {
		return nil, err
	}
	sets := map[int]LoggedSet{}
	if err := json.Unmarshal([]byte(raw), &sets); err != nil {
		return nil, fmt.Errorf("corrupt logged sets for slot %d/%d: %w", day, slot, err)
	}
	return sets, nil
}

// SaveSet stores one set, merging it into the slot's existing sets.
func (s *Store) SaveSet(ctx context.Context, day, slot, set int, ls LoggedSet) error {
	sets, err := s.LoggedSets(ctx, day, slot)
	if err != nil {
		return err
	}
	sets[set] = ls
	blob, err := json.Marshal(sets)
	if err != nil {
		return fmt.Errorf("encoding logged sets: %w", err)
	}
	return s.kv.Set(ctx, setsKey(day, slot), string(blob))
}

// ClearSets removes all logged sets for a slot.
func (s *Store) ClearSets(ctx context.Context, day, slot int) error {
	return s.kv.Remove(ctx, setsKey(day, slot))
}

// HasLoggedData reports whether the slot has any stored sets. Used by
// the swap workflow to decide whether a destructive-action confirmation
// is needed.
func (s *Store) HasLoggedData(ctx context.Context, day, slot int) (bool, error) {
	sets, err := s.LoggedSets(ctx, day, slot)
	if err != nil {
		return false, err
	}
	return len(sets) > 0, nil
}

// SetCount returns the custom set count for a slot, if one is stored.
func (s *Store) SetCount(ctx context.Context, day, slot int) (int, bool, error) {
	raw, err := s.kv.Get(ctx, setCountKey(day, slot))
	if errors.Is(err, state.ErrNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false, fmt.Errorf("corrupt set count %q: %w", raw, err)
	}
	return n, true, nil
}

// SaveSetCount stores a custom set count override for a slot.
func (s *Store) SaveSetCount(ctx context.Context, day, slot, count int) error {
	if count <= 0 {
		return fmt.Errorf("set count must be positive, got %d", count)
	}
	return s.kv.Set(ctx, setCountKey(day, slot), strconv.Itoa(count))
}

// ClearSetCount removes the override, restoring the program default.
func (s *Store) ClearSetCount(ctx context.Context, day, slot int) error {
	return s.kv.Remove(ctx, setCountKey(day, slot))
}

// Favorites returns the favorited exercise ids in the order they were
// first favorited.
func (s *Store) Favorites(ctx context.Context) ([]catalog.ExerciseID, error) {
	raw, err := s.kv.Get(ctx, favoritesKey)
	if errors.Is(err, state.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var ids []catalog.ExerciseID
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		return nil, fmt.Errorf("corrupt favorites: %w", err)
	}
	return ids, nil
}

// ToggleFavorite adds or removes an exercise from the favorites list
// and reports whether it is now a favorite.
func (s *Store) ToggleFavorite(ctx context.Context, id catalog.ExerciseID) (bool, error) {
	ids, err := s.Favorites(ctx)
	if err != nil {
		return false, err
	}
	next := make([]catalog.ExerciseID, 0, len(ids)+1)
	removed := false
	for _, f := range ids {
		if f == id {
			removed = true
			continue
		}
		next = append(next, f)
	}
	if !removed {
		next = append(next, id)
	}
	blob, err := json.Marshal(next)
	if err != nil {
		return false, fmt.Errorf("encoding favorites: %w", err)
	}
	if err := s.kv.Set(ctx, favoritesKey, string(blob)); err != nil {
		return false, err
	}
	return !removed, nil
}

// DayLog collects the stored state of every slot of a day that has any.
func (s *Store) DayLog(ctx context.Context, day int) (DayLog, error) {
	log := DayLog{Day: day, Slots: map[int]SlotLog{}}

	prefix := fmt.Sprintf("slot:%d:", day)
	keys, err := s.kv.Keys(ctx, prefix)
	if err != nil {
		return log, err
	}

	for _, key := range keys {
		parts := strings.Split(key, ":")
		if len(parts) != 4 {
			continue
		}
		slot, err := strconv.Atoi(parts[2])
		if err != nil {
			continue
		}

		entry := log.Slots[slot]
		switch parts[3] {
		case "swap":
			id, ok, err := s.Override(ctx, day, slot)
			if err != nil {
				return log, err
			}
			if ok {
				entry.Override = &id
			}
		case "sets":
			sets, err := s.LoggedSets(ctx, day, slot)
			if err != nil {
				return log, err
			}
			if len(sets) > 0 {
				entry.Sets = sets
			}
		case "setcount":
			n, ok, err := s.SetCount(ctx, day, slot)
			if err != nil {
				return log, err
			}
			if ok {
				entry.SetCount = &n
			}
		}
		log.Slots[slot] = entry
	}
	return log, nil
}

// ApplySwapTx atomically replaces a slot's exercise inside tx: logged
// sets are dropped and the override written, or removed when the slot
// returns to its original exercise.
func (s *Store) ApplySwapTx(ctx context.Context, tx *state.Tx, slot Slot, target catalog.ExerciseID) error {
	if err := tx.Remove(ctx, setsKey(slot.Day, slot.Index)); err != nil {
		return err
	}
	if target == slot.OriginalID {
		return tx.Remove(ctx, swapKey(slot.Day, slot.Index))
	}
	return tx.Set(ctx, swapKey(slot.Day, slot.Index), strconv.FormatInt(int64(target), 10))
}

// KV exposes the underlying store for collaborators that share the
// same transaction (the quota tracker).
func (s *Store) KV() *state.Store {
	return s.kv
}
