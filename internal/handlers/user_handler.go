package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/fitdeed/fitdeed-backend/internal/config"
	"github.com/fitdeed/fitdeed-backend/internal/models"
	"github.com/fitdeed/fitdeed-backend/internal/services"
	jwtutil "github.com/fitdeed/fitdeed-backend/pkg/jwt"
	"github.com/fitdeed/fitdeed-backend/pkg/middleware"
)

// UserHandler serves account registration, login and logout.
type UserHandler struct {
	Service  *services.UserService
	Sessions *services.SessionManager
	Config   *config.Config
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(service *services.UserService, sessions *services.SessionManager, cfg *config.Config) *UserHandler {
	return &UserHandler{
		Service:  service,
		Sessions: sessions,
		Config:   cfg,
	}
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// RegisterUserHandler creates a new account.
func (h *UserHandler) RegisterUserHandler(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	user := &models.User{
		Email:          req.Email,
		Name:           req.Name,
		HashedPassword: req.Password,
	}
	created, err := h.Service.RegisterUser(r.Context(), user)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created.Public())
}

// LoginUserHandler checks credentials and issues a JWT.
func (h *UserHandler) LoginUserHandler(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	user, err := h.Service.AuthenticateUser(r.Context(), req.Email, req.Password)
	if err != nil {
		http.Error(w, "Invalid email or password", http.StatusUnauthorized)
		return
	}

	token, err := jwtutil.GenerateToken(user.ID.Hex(), user.Email, h.Config.JWTSecret, h.Config.TokenExpiry)
	if err != nil {
		http.Error(w, "Failed to issue token", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"token": token,
		"user":  user.Public(),
	})
}

// GetMeHandler returns the authenticated identity.
func (h *UserHandler) GetMeHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	user, err := h.Service.GetUser(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user.Public())
}

// LogoutHandler tears down the identity's session state on the server.
func (h *UserHandler) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	h.Sessions.Drop(claims.UserID)
	w.WriteHeader(http.StatusNoContent)
}
