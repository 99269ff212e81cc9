package handlers

import (
	"net/http"

	"github.com/fitdeed/fitdeed-backend/internal/services"
	"github.com/gorilla/mux"
)

// FavoriteHandler serves the per-identity favorites ledgers.
type FavoriteHandler struct {
	Sessions *services.SessionManager
}

// NewFavoriteHandler creates a new FavoriteHandler.
func NewFavoriteHandler(sessions *services.SessionManager) *FavoriteHandler {
	return &FavoriteHandler{Sessions: sessions}
}

// GetFavoritesHandler returns the raw favorite ids for a kind. Ids may
// reference plans that no longer exist; use the /plans variant for the
// filtered view.
func (h *FavoriteHandler) GetFavoritesHandler(w http.ResponseWriter, r *http.Request) {
	kind, ok := kindFrom(r)
	if !ok {
		http.Error(w, "Unknown plan kind", http.StatusNotFound)
		return
	}
	session, err := h.Sessions.Get(r.Context(), ownerFrom(r))
	if err != nil {
		writeError(w, err)
		return
	}

	ids := session.Ledger(kind).Favorites()
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"ids": ids})
}

// GetFavoritePlansHandler returns the favorited plans that still exist.
func (h *FavoriteHandler) GetFavoritePlansHandler(w http.ResponseWriter, r *http.Request) {
	kind, ok := kindFrom(r)
	if !ok {
		http.Error(w, "Unknown plan kind", http.StatusNotFound)
		return
	}
	session, err := h.Sessions.Get(r.Context(), ownerFrom(r))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, session.FavoritePlans(kind))
}

// ToggleFavoriteHandler flips the favorite state of one plan id and reports
// the resulting state. Unauthenticated requests operate on the local-only
// anonymous ledger.
func (h *FavoriteHandler) ToggleFavoriteHandler(w http.ResponseWriter, r *http.Request) {
	kind, ok := kindFrom(r)
	if !ok {
		http.Error(w, "Unknown plan kind", http.StatusNotFound)
		return
	}
	session, err := h.Sessions.Get(r.Context(), ownerFrom(r))
	if err != nil {
		writeError(w, err)
		return
	}

	id := mux.Vars(r)["id"]
	if err := session.Ledger(kind).Toggle(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"id":       id,
		"favorite": session.Ledger(kind).IsFavorite(id),
	})
}
