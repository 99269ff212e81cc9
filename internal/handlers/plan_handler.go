package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/fitdeed/fitdeed-backend/internal/models"
	"github.com/fitdeed/fitdeed-backend/internal/services"
	"github.com/fitdeed/fitdeed-backend/pkg/middleware"
	"github.com/gorilla/mux"
)

// anonSessionHeader carries the anonymous session token for clients without
// an authenticated identity.
const anonSessionHeader = "X-Anon-Session"

// ownerFrom resolves the identity a request operates under: the JWT claims
// when present, otherwise the anonymous session token (or the shared
// anonymous owner when neither exists). The header is client-supplied, so its
// value is forced into the anonymous namespace; only validated claims can
// select an authenticated identity.
func ownerFrom(r *http.Request) string {
	if claims := middleware.GetUserFromContext(r.Context()); claims != nil {
		return claims.UserID
	}
	token := r.Header.Get(anonSessionHeader)
	if token == "" || strings.HasPrefix(token, "anon-") {
		return token
	}
	return "anon-" + token
}

// kindFrom maps the {kind} route segment onto a plan kind.
func kindFrom(r *http.Request) (models.PlanKind, bool) {
	switch mux.Vars(r)["kind"] {
	case "workouts":
		return models.KindWorkout, true
	case "diets":
		return models.KindDiet, true
	default:
		return "", false
	}
}

// PlanHandler serves the plan collections.
type PlanHandler struct {
	Sessions *services.SessionManager
}

// NewPlanHandler creates a new PlanHandler.
func NewPlanHandler(sessions *services.SessionManager) *PlanHandler {
	return &PlanHandler{Sessions: sessions}
}

func (h *PlanHandler) session(w http.ResponseWriter, r *http.Request) (*services.Session, models.PlanKind, bool) {
	kind, ok := kindFrom(r)
	if !ok {
		http.Error(w, "Unknown plan kind", http.StatusNotFound)
		return nil, "", false
	}
	session, err := h.Sessions.Get(r.Context(), ownerFrom(r))
	if err != nil {
		writeError(w, err)
		return nil, "", false
	}
	return session, kind, true
}

// ListPlansHandler returns all plans of a kind, most recent first.
func (h *PlanHandler) ListPlansHandler(w http.ResponseWriter, r *http.Request) {
	session, kind, ok := h.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, session.Plans(kind).List())
}

// GetPlanHandler returns a single plan, or 404 when the id is absent.
func (h *PlanHandler) GetPlanHandler(w http.ResponseWriter, r *http.Request) {
	session, kind, ok := h.session(w, r)
	if !ok {
		return
	}

	plan, found := session.Plans(kind).GetByID(mux.Vars(r)["id"])
	if !found {
		http.Error(w, "Plan not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

// createPlanRequest is the manual upload form payload. Instructions may come
// as a list or as one newline-separated block.
type createPlanRequest struct {
	Name             string   `json:"name"`
	Description      string   `json:"description"`
	Category         string   `json:"category"`
	Instructions     []string `json:"instructions"`
	InstructionsText string   `json:"instructionsText"`
	MediaURL         string   `json:"mediaUrl"`
	Duration         string   `json:"duration"`
	Difficulty       string   `json:"difficulty"`
	CaloriesPerDay   string   `json:"caloriesPerDay"`
	Protein          string   `json:"protein"`
	Carbs            string   `json:"carbs"`
	Fat              string   `json:"fat"`
}

// splitInstructions turns a newline-separated block into trimmed, non-empty
// steps.
func splitInstructions(text string) []string {
	var steps []string
	for _, line := range strings.Split(text, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			steps = append(steps, trimmed)
		}
	}
	return steps
}

// CreatePlanHandler adds a plan from a manual form submit.
func (h *PlanHandler) CreatePlanHandler(w http.ResponseWriter, r *http.Request) {
	session, kind, ok := h.session(w, r)
	if !ok {
		return
	}

	var req createPlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	instructions := req.Instructions
	if len(instructions) == 0 && req.InstructionsText != "" {
		instructions = splitInstructions(req.InstructionsText)
	}

	draft := models.Plan{
		Name:           req.Name,
		Description:    req.Description,
		Category:       req.Category,
		Instructions:   instructions,
		MediaURL:       req.MediaURL,
		Duration:       req.Duration,
		Difficulty:     req.Difficulty,
		CaloriesPerDay: req.CaloriesPerDay,
		Protein:        req.Protein,
		Carbs:          req.Carbs,
		Fat:            req.Fat,
	}

	plan, err := session.Plans(kind).Add(r.Context(), draft)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, plan)
}

// UpdatePlanHandler overwrites only the named fields on a plan. An absent id
// is a no-op, mirroring the store contract.
func (h *PlanHandler) UpdatePlanHandler(w http.ResponseWriter, r *http.Request) {
	session, kind, ok := h.session(w, r)
	if !ok {
		return
	}

	var fields map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		http.Error(w, "Invalid update payload", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	if err := session.Plans(kind).Update(r.Context(), mux.Vars(r)["id"], fields); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeletePlanHandler removes a plan and purges it from the favorites ledger.
// Deleting twice is fine.
func (h *PlanHandler) DeletePlanHandler(w http.ResponseWriter, r *http.Request) {
	session, kind, ok := h.session(w, r)
	if !ok {
		return
	}

	if err := session.Plans(kind).Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListCategoriesHandler returns the categories for a plan kind.
func (h *PlanHandler) ListCategoriesHandler(w http.ResponseWriter, r *http.Request) {
	kind, ok := kindFrom(r)
	if !ok {
		http.Error(w, "Unknown plan kind", http.StatusNotFound)
		return
	}

	categories, err := h.Sessions.Categories(r.Context(), kind)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, categories)
}
