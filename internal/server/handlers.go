package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/meltforce/pivotfit/internal/catalog"
	"github.com/meltforce/pivotfit/internal/program"
	"github.com/meltforce/pivotfit/internal/quota"
	"github.com/meltforce/pivotfit/internal/swap"
)

func (s *Server) handleListExercises(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.cat.All())
}

func (s *Server) handleGetExercise(w http.ResponseWriter, r *http.Request) {
	id, err := urlExerciseID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid exercise ID"})
		return
	}
	ex, ok := s.cat.ByID(id)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "exercise not found"})
		return
	}
	writeJSON(w, http.StatusOK, ex)
}

// defaultAlternativesCount is how many substitutes the swap sheet shows
// when the client does not ask for a specific number.
const defaultAlternativesCount = 3

func (s *Server) handleAlternatives(w http.ResponseWriter, r *http.Request) {
	id, err := urlExerciseID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid exercise ID"})
		return
	}

	count := defaultAlternativesCount
	if raw := r.URL.Query().Get("count"); raw != "" {
		count, err = strconv.Atoi(raw)
		if err != nil || count < 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid count"})
			return
		}
	}

	alts := s.engine.FindAlternatives(id, count)
	if alts == nil {
		alts = []catalog.Exercise{}
	}
	writeJSON(w, http.StatusOK, alts)
}

func (s *Server) handleQuota(w http.ResponseWriter, r *http.Request) {
	unlimited, err := s.ent.HasUnlimitedSwaps(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if unlimited {
		writeJSON(w, http.StatusOK, map[string]any{"unlimited": true})
		return
	}

	remaining, err := s.quota.Remaining(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	used, err := s.quota.Used(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"unlimited": false,
		"allowance": quota.MonthlyAllowance,
		"used":      used,
		"remaining": remaining,
	})
}

func (s *Server) handleFavorites(w http.ResponseWriter, r *http.Request) {
	ids, err := s.store.Favorites(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if ids == nil {
		ids = []catalog.ExerciseID{}
	}
	writeJSON(w, http.StatusOK, ids)
}

func (s *Server) handleToggleFavorite(w http.ResponseWriter, r *http.Request) {
	id, err := urlExerciseID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid exercise ID"})
		return
	}
	if _, ok := s.cat.ByID(id); !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "exercise not found"})
		return
	}
	fav, err := s.store.ToggleFavorite(r.Context(), id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"favorite": fav})
}

func (s *Server) handleDayLog(w http.ResponseWriter, r *http.Request) {
	day, err := urlInt(r, "day")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid day"})
		return
	}
	log, err := s.store.DayLog(r.Context(), day)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, log)
}

func (s *Server) handleGetSlot(w http.ResponseWriter, r *http.Request) {
	day, slot, ok := s.slotParams(w, r)
	if !ok {
		return
	}

	var entry program.SlotLog
	if id, found, err := s.store.Override(r.Context(), day, slot); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	} else if found {
		entry.Override = &id
	}

	sets, err := s.store.LoggedSets(r.Context(), day, slot)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if len(sets) > 0 {
		entry.Sets = sets
	}

	if n, found, err := s.store.SetCount(r.Context(), day, slot); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	} else if found {
		entry.SetCount = &n
	}

	writeJSON(w, http.StatusOK, entry)
}

// setInput is the body of set save/toggle/edit requests. Weight and
// reps are raw text from the client's input fields; validation happens
// in the setlog package.
type setInput struct {
	Weight string `json:"weight"`
	Reps   string `json:"reps"`
}

func (s *Server) handleSaveSet(w http.ResponseWriter, r *http.Request) {
	day, slot, set, in, ok := s.setParams(w, r)
	if !ok {
		return
	}
	if err := s.sets.SaveSet(r.Context(), day, slot, set, in.Weight, in.Reps); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	s.respondSets(w, r, day, slot)
}

func (s *Server) handleToggleSet(w http.ResponseWriter, r *http.Request) {
	day, slot, set, in, ok := s.setParams(w, r)
	if !ok {
		return
	}
	if err := s.sets.ToggleSet(r.Context(), day, slot, set, in.Weight, in.Reps); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	s.respondSets(w, r, day, slot)
}

func (s *Server) handleEditSet(w http.ResponseWriter, r *http.Request) {
	day, slot, set, in, ok := s.setParams(w, r)
	if !ok {
		return
	}
	s.saver.Edit(day, slot, set, in.Weight, in.Reps)
	w.WriteHeader(http.StatusAccepted)
}

func (s *Server) handleSaveSetCount(w http.ResponseWriter, r *http.Request) {
	day, slot, ok := s.slotParams(w, r)
	if !ok {
		return
	}
	var in struct {
		Count int `json:"count"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if err := s.store.SaveSetCount(r.Context(), day, slot, in.Count); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleClearSetCount(w http.ResponseWriter, r *http.Request) {
	day, slot, ok := s.slotParams(w, r)
	if !ok {
		return
	}
	if err := s.store.ClearSetCount(r.Context(), day, slot); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// swapInput identifies the slot and the substitute the client wants.
// The program-authored original id comes from the client because the
// program definition lives in the host app, not in this core.
type swapInput struct {
	Day        int                `json:"day"`
	Slot       int                `json:"slot"`
	OriginalID catalog.ExerciseID `json:"original_id"`
	TargetID   catalog.ExerciseID `json:"target_id"`
}

func (s *Server) handleSwapCheck(w http.ResponseWriter, r *http.Request) {
	var in swapInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	slot := program.Slot{Day: in.Day, Index: in.Slot, OriginalID: in.OriginalID}
	res, err := s.swaps.Check(r.Context(), slot, in.TargetID)
	if errors.Is(err, swap.ErrUnknownExercise) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "exercise not found"})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleSwapConfirm(w http.ResponseWriter, r *http.Request) {
	token, err := uuid.Parse(chi.URLParam(r, "token"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid confirmation token"})
		return
	}
	var in struct {
		Accept bool `json:"accept"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	res, err := s.swaps.Confirm(r.Context(), token, in.Accept)
	if errors.Is(err, swap.ErrUnknownConfirmation) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "confirmation not found"})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// --- helpers ---

func (s *Server) respondSets(w http.ResponseWriter, r *http.Request, day, slot int) {
	sets, err := s.store.LoggedSets(r.Context(), day, slot)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, sets)
}

func (s *Server) slotParams(w http.ResponseWriter, r *http.Request) (day, slot int, ok bool) {
	day, err := urlInt(r, "day")
	if err != nil || day < 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid day"})
		return 0, 0, false
	}
	slot, err = urlInt(r, "slot")
	if err != nil || slot < 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid slot"})
		return 0, 0, false
	}
	return day, slot, true
}

func (s *Server) setParams(w http.ResponseWriter, r *http.Request) (day, slot, set int, in setInput, ok bool) {
	day, slot, ok = s.slotParams(w, r)
	if !ok {
		return 0, 0, 0, setInput{}, false
	}
	set, err := urlInt(r, "set")
	if err != nil || set < 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid set"})
		return 0, 0, 0, setInput{}, false
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return 0, 0, 0, setInput{}, false
	}
	return day, slot, set, in, true
}

func urlInt(r *http.Request, name string) (int, error) {
	return strconv.Atoi(chi.URLParam(r, name))
}

func urlExerciseID(r *http.Request) (catalog.ExerciseID, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return catalog.ExerciseID(id), err
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
