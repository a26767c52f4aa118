package auth_api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"event-hub/internal/auth"
	"event-hub/internal/logger"
	"event-hub/internal/models"
)

type Handler struct {
	AuthService *auth.Service
	Logger      *logger.Logger
}

func NewHandler(service *auth.Service, logger *logger.Logger) *Handler {
	return &Handler{AuthService: service, Logger: logger}
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Logger.Error("AUTH", fmt.Sprintf("Register: failed to decode request body: %v", err))
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	_, err := h.AuthService.Register(req)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrMissingFields):
			http.Error(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, auth.ErrUsernameTaken):
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			h.Logger.Error("AUTH", fmt.Sprintf("Register: %v", err))
			http.Error(w, "Registration failed", http.StatusInternalServerError)
		}
		return
	}

	h.Logger.Info("AUTH", fmt.Sprintf("Register: user %s registered", req.Username))
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]string{"detail": "User registered successfully."})
}

func (h *Handler) Token(w http.ResponseWriter, r *http.Request) {
	var req models.TokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	tokens, err := h.AuthService.IssueTokens(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			h.Logger.LogSecurity("TOKEN", fmt.Sprintf("failed login for %q", req.Username))
			http.Error(w, "No active account found with the given credentials", http.StatusUnauthorized)
			return
		}
		h.Logger.Error("AUTH", fmt.Sprintf("Token: %v", err))
		http.Error(w, "Token issuance failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(tokens)
}

func (h *Handler) TokenRefresh(w http.ResponseWriter, r *http.Request) {
	var req models.TokenRefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	tokens, err := h.AuthService.RefreshAccess(r.Context(), req.Refresh)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidToken) {
			http.Error(w, "Token is invalid or expired", http.StatusUnauthorized)
			return
		}
		h.Logger.Error("AUTH", fmt.Sprintf("TokenRefresh: %v", err))
		http.Error(w, "Token refresh failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(tokens)
}

func (h *Handler) TokenVerify(w http.ResponseWriter, r *http.Request) {
	var req models.TokenVerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.AuthService.VerifyToken(req.Token); err != nil {
		http.Error(w, "Token is invalid or expired", http.StatusUnauthorized)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte("{}"))
}
