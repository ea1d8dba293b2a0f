package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/annapurna-pos/api/internal/auth"
	"github.com/annapurna-pos/api/internal/enum"
	"github.com/annapurna-pos/api/internal/middleware"
	"github.com/annapurna-pos/api/internal/session"
	"github.com/go-chi/chi/v5"
)

// Authenticator defines the staff service methods needed by auth handlers.
// Satisfied by *auth.Client; narrow interface for testability.
type Authenticator interface {
	Authenticate(ctx context.Context, username, password string, owner bool) (auth.StaffUser, error)
}

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	staff     Authenticator
	jwtSecret string
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(staff Authenticator, jwtSecret string) *AuthHandler {
	return &AuthHandler{staff: staff, jwtSecret: jwtSecret}
}

// RegisterRoutes registers auth endpoints on the given Chi router.
func (h *AuthHandler) RegisterRoutes(r chi.Router) {
	r.Post("/auth/login", h.Login)
	r.Post("/auth/refresh", h.Refresh)
}

// --- Request / Response types ---

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Owner    bool   `json:"owner"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type tokenResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	User         userResponse `json:"user"`
	View         enum.View    `json:"view"`
}

type userResponse struct {
	ID             int64     `json:"id"`
	FullName       string    `json:"full_name"`
	Role           enum.Role `json:"role"`
	RestaurantName string    `json:"restaurant_name,omitempty"`
}

// --- Handlers ---

// Login verifies credentials against the remote staff service and issues a
// session. The remote service owns the verdict; no secret material is
// compared here.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if req.Username == "" || req.Password == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "username and password are required"})
		return
	}

	user, err := h.staff.Authenticate(r.Context(), req.Username, req.Password, req.Owner)
	if err != nil {
		if errors.Is(err, auth.ErrAuthFailed) {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid credentials"})
			return
		}
		log.Printf("ERROR: staff service login: %v", err)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "staff service unavailable"})
		return
	}

	h.respondWithTokens(w, user)
}

// Refresh exchanges a valid refresh token for a new access + refresh token pair.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if req.RefreshToken == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "refresh_token is required"})
		return
	}

	claims, err := auth.ValidateToken(h.jwtSecret, req.RefreshToken)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid refresh token"})
		return
	}

	h.respondWithTokens(w, auth.StaffUser{
		ID:   claims.UserID,
		Name: claims.FullName,
		Role: claims.Role,
	})
}

// --- Helpers ---

func (h *AuthHandler) respondWithTokens(w http.ResponseWriter, user auth.StaffUser) {
	view, err := session.RouteFor(user.Role)
	if err != nil {
		// Deny rather than defaulting to a privileged view.
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "unknown role"})
		return
	}

	accessToken, err := auth.GenerateToken(h.jwtSecret, user.ID, user.Name, user.Role)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	refreshToken, err := auth.GenerateRefreshToken(h.jwtSecret, user.ID, user.Name, user.Role)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, tokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User: userResponse{
			ID:             user.ID,
			FullName:       user.Name,
			Role:           user.Role,
			RestaurantName: user.RestaurantName,
		},
		View: view,
	})
}

// SessionHandler reports the routed view for the authenticated caller.
type SessionHandler struct{}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler() *SessionHandler {
	return &SessionHandler{}
}

// RegisterRoutes registers the session endpoint on the given Chi router.
func (h *SessionHandler) RegisterRoutes(r chi.Router) {
	r.Get("/session/view", h.View)
}

// View handles GET /session/view.
func (h *SessionHandler) View(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}

	view, err := session.RouteFor(claims.Role)
	if err != nil {
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "unknown role"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"role": claims.Role,
		"view": view,
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("ERROR: failed to encode JSON response: %v", err)
	}
}
