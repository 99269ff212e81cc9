package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/fitdeed/fitdeed-backend/internal/models"
	"github.com/fitdeed/fitdeed-backend/internal/services"
)

// SuggestionGenerator is the stateless slice of the generation client used
// for mixed workout/diet suggestions.
type SuggestionGenerator interface {
	GenerateSuggestions(ctx context.Context, prompt string, count int) ([]models.PlanSuggestion, error)
}

// GenerateHandler serves the AI generation and review flow.
type GenerateHandler struct {
	Sessions    *services.SessionManager
	Suggestions SuggestionGenerator
}

// NewGenerateHandler creates a new GenerateHandler.
func NewGenerateHandler(sessions *services.SessionManager, suggestions SuggestionGenerator) *GenerateHandler {
	return &GenerateHandler{Sessions: sessions, Suggestions: suggestions}
}

// GenerateWorkoutHandler runs one generation request. A prompt sent while a
// candidate is already under review is treated as a follow-up edit of that
// candidate.
func (h *GenerateHandler) GenerateWorkoutHandler(w http.ResponseWriter, r *http.Request) {
	session, err := h.Sessions.Get(r.Context(), ownerFrom(r))
	if err != nil {
		writeError(w, err)
		return
	}

	var req struct {
		Prompt string `json:"prompt"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	candidate, err := session.GenerateWorkout(r.Context(), req.Prompt)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, candidate)
}

// GenerateSuggestionsHandler returns mixed workout/diet suggestions. No
// review state is kept; the client adds chosen suggestions through the
// normal create endpoint.
func (h *GenerateHandler) GenerateSuggestionsHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Prompt string `json:"prompt"`
		Count  int    `json:"count"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	suggestions, err := h.Suggestions.GenerateSuggestions(r.Context(), req.Prompt, req.Count)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, suggestions)
}

// GetReviewHandler returns the candidate under review and the currently
// included exercise indices.
func (h *GenerateHandler) GetReviewHandler(w http.ResponseWriter, r *http.Request) {
	session, err := h.Sessions.Get(r.Context(), ownerFrom(r))
	if err != nil {
		writeError(w, err)
		return
	}

	candidate, included, ok := session.Review()
	if !ok {
		http.Error(w, "No generated plan is under review", http.StatusNotFound)
		return
	}
	if included == nil {
		included = []int{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"candidate": candidate,
		"included":  included,
	})
}

// ToggleExerciseHandler flips the inclusion of one exercise of the reviewed
// candidate.
func (h *GenerateHandler) ToggleExerciseHandler(w http.ResponseWriter, r *http.Request) {
	session, err := h.Sessions.Get(r.Context(), ownerFrom(r))
	if err != nil {
		writeError(w, err)
		return
	}

	var req struct {
		Index int `json:"index"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	if err := session.ToggleExercise(req.Index); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CommitReviewHandler commits the reviewed candidate into the workout store
// and returns the created plan.
func (h *GenerateHandler) CommitReviewHandler(w http.ResponseWriter, r *http.Request) {
	session, err := h.Sessions.Get(r.Context(), ownerFrom(r))
	if err != nil {
		writeError(w, err)
		return
	}

	plan, err := session.CommitReview(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, plan)
}
