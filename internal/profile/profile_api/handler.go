package profile_api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"event-hub/internal/auth"
	"event-hub/internal/logger"
	"event-hub/internal/models"
	"event-hub/internal/profile"
)

type Handler struct {
	ProfileService *profile.Service
	Logger         *logger.Logger
}

func NewHandler(service *profile.Service, logger *logger.Logger) *Handler {
	return &Handler{ProfileService: service, Logger: logger}
}

// GetOwnProfile handles GET /profile/ and returns the caller's own profile.
func (h *Handler) GetOwnProfile(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	result, err := h.ProfileService.GetProfileByUserID(userID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(result); err != nil {
		h.Logger.Error("API", fmt.Sprintf("GetOwnProfile: failed to encode response: %v", err))
	}
}

// UpdateOwnProfile handles PUT /profile/, applying a partial update to
// the caller's own profile.
func (h *Handler) UpdateOwnProfile(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	var req models.ProfileUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	result, err := h.ProfileService.Update(userID, req)
	if err != nil {
		h.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(result); err != nil {
		h.Logger.Error("API", fmt.Sprintf("UpdateOwnProfile: failed to encode response: %v", err))
	}
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	if errors.Is(err, profile.ErrNotFound) {
		http.Error(w, "Profile not found", http.StatusNotFound)
		return
	}
	h.Logger.Error("API", fmt.Sprintf("profile handler: %v", err))
	http.Error(w, "Internal server error", http.StatusInternalServerError)
}
