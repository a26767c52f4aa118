package rsvp_api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"event-hub/internal/authz"
	"event-hub/internal/logger"
	"event-hub/internal/models"
	"event-hub/internal/rsvp"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	RSVPService *rsvp.RSVPService
	Resolver    *authz.Resolver
	Logger      *logger.Logger
}

func NewHandler(service *rsvp.RSVPService, resolver *authz.Resolver, logger *logger.Logger) *Handler {
	return &Handler{RSVPService: service, Resolver: resolver, Logger: logger}
}

// SetRSVP handles POST /events/{eventId}/rsvp/, creating or updating the
// caller's RSVP.
func (h *Handler) SetRSVP(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventId")

	var req models.RSVPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	caller, err := h.Resolver.IdentityFromContext(r.Context())
	if err != nil {
		http.Error(w, "Failed to resolve identity", http.StatusInternalServerError)
		return
	}

	result, err := h.RSVPService.Set(caller, eventID, req.Status)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.Logger.Info("API", fmt.Sprintf("SetRSVP: profile %s is %q on event %s", caller.ProfileID, result.Status, eventID))

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(result); err != nil {
		h.Logger.Error("API", fmt.Sprintf("SetRSVP: failed to encode response: %v", err))
	}
}

// GetOwnRSVP handles GET /events/{eventId}/rsvp/. It returns the caller's
// own RSVP, or a bare "not_going" payload when none exists.
func (h *Handler) GetOwnRSVP(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventId")

	caller, err := h.Resolver.IdentityFromContext(r.Context())
	if err != nil {
		http.Error(w, "Failed to resolve identity", http.StatusInternalServerError)
		return
	}

	result, err := h.RSVPService.GetOwn(caller, eventID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if result == nil {
		// No stored row reads the same as a declined one.
		json.NewEncoder(w).Encode(map[string]string{"status": models.RSVPNotGoing})
		return
	}
	if err := json.NewEncoder(w).Encode(result); err != nil {
		h.Logger.Error("API", fmt.Sprintf("GetOwnRSVP: failed to encode response: %v", err))
	}
}

// GetPass handles GET /events/{eventId}/rsvp/pass/, rendering the
// caller's RSVP as an encrypted QR PNG.
func (h *Handler) GetPass(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventId")

	caller, err := h.Resolver.IdentityFromContext(r.Context())
	if err != nil {
		http.Error(w, "Failed to resolve identity", http.StatusInternalServerError)
		return
	}

	png, err := h.RSVPService.Pass(caller, eventID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Write(png)
}

func (h *Handler) ListRSVPs(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventId")

	caller, err := h.Resolver.IdentityFromContext(r.Context())
	if err != nil {
		http.Error(w, "Failed to resolve identity", http.StatusInternalServerError)
		return
	}

	rsvps, err := h.RSVPService.List(caller, eventID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(rsvps); err != nil {
		h.Logger.Error("API", fmt.Sprintf("ListRSVPs: failed to encode response: %v", err))
	}
}

func (h *Handler) GetRSVP(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventId")
	rsvpID := chi.URLParam(r, "rsvpId")

	caller, err := h.Resolver.IdentityFromContext(r.Context())
	if err != nil {
		http.Error(w, "Failed to resolve identity", http.StatusInternalServerError)
		return
	}

	result, err := h.RSVPService.Get(caller, eventID, rsvpID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(result); err != nil {
		h.Logger.Error("API", fmt.Sprintf("GetRSVP: failed to encode response: %v", err))
	}
}

func (h *Handler) UpdateRSVP(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventId")
	rsvpID := chi.URLParam(r, "rsvpId")

	var req models.RSVPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	caller, err := h.Resolver.IdentityFromContext(r.Context())
	if err != nil {
		http.Error(w, "Failed to resolve identity", http.StatusInternalServerError)
		return
	}

	result, err := h.RSVPService.Update(caller, eventID, rsvpID, req.Status)
	if err != nil {
		h.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(result); err != nil {
		h.Logger.Error("API", fmt.Sprintf("UpdateRSVP: failed to encode response: %v", err))
	}
}

func (h *Handler) DeleteRSVP(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventId")
	rsvpID := chi.URLParam(r, "rsvpId")

	caller, err := h.Resolver.IdentityFromContext(r.Context())
	if err != nil {
		http.Error(w, "Failed to resolve identity", http.StatusInternalServerError)
		return
	}

	if err := h.RSVPService.Delete(caller, eventID, rsvpID); err != nil {
		h.writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, rsvp.ErrEventNotFound):
		http.Error(w, "Event not found", http.StatusNotFound)
	case errors.Is(err, rsvp.ErrNotFound):
		http.Error(w, "RSVP not found", http.StatusNotFound)
	case errors.Is(err, rsvp.ErrUnauthenticated):
		http.Error(w, "Authentication required", http.StatusUnauthorized)
	case errors.Is(err, rsvp.ErrForbidden):
		http.Error(w, "You do not have permission to perform this action", http.StatusForbidden)
	case errors.Is(err, rsvp.ErrValidation):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		h.Logger.Error("API", fmt.Sprintf("rsvp handler: %v", err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}
