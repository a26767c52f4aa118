package event_api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"event-hub/internal/authz"
	"event-hub/internal/events"
	"event-hub/internal/logger"
	"event-hub/internal/models"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	EventService *events.EventService
	Resolver     *authz.Resolver
	Logger       *logger.Logger
}

func NewHandler(service *events.EventService, resolver *authz.Resolver, logger *logger.Logger) *Handler {
	return &Handler{EventService: service, Resolver: resolver, Logger: logger}
}

func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	viewer, err := h.Resolver.IdentityFromContext(r.Context())
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("ListEvents: failed to resolve identity: %v", err))
		http.Error(w, "Failed to resolve identity", http.StatusInternalServerError)
		return
	}

	eventList, err := h.EventService.List(viewer)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("ListEvents: %v", err))
		http.Error(w, "Failed to list events", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(eventList); err != nil {
		h.Logger.Error("API", fmt.Sprintf("ListEvents: failed to encode response: %v", err))
	}
}

func (h *Handler) GetEvent(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventId")
	h.Logger.Info("API", fmt.Sprintf("GetEvent: eventId=%s", eventID))

	viewer, err := h.Resolver.IdentityFromContext(r.Context())
	if err != nil {
		http.Error(w, "Failed to resolve identity", http.StatusInternalServerError)
		return
	}

	event, err := h.EventService.Get(viewer, eventID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(event); err != nil {
		h.Logger.Error("API", fmt.Sprintf("GetEvent: failed to encode response: %v", err))
	}
}

func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req models.EventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	caller, err := h.Resolver.IdentityFromContext(r.Context())
	if err != nil {
		http.Error(w, "Failed to resolve identity", http.StatusInternalServerError)
		return
	}

	event, err := h.EventService.Create(caller, req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.Logger.Info("API", fmt.Sprintf("CreateEvent: event %s created by profile %s", event.ID, caller.ProfileID))

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(event); err != nil {
		h.Logger.Error("API", fmt.Sprintf("CreateEvent: failed to encode response: %v", err))
	}
}

func (h *Handler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventId")

	var req models.EventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	caller, err := h.Resolver.IdentityFromContext(r.Context())
	if err != nil {
		http.Error(w, "Failed to resolve identity", http.StatusInternalServerError)
		return
	}

	event, err := h.EventService.Update(caller, eventID, req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.Logger.Info("API", fmt.Sprintf("UpdateEvent: event %s updated", eventID))

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(event); err != nil {
		h.Logger.Error("API", fmt.Sprintf("UpdateEvent: failed to encode response: %v", err))
	}
}

func (h *Handler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventId")

	caller, err := h.Resolver.IdentityFromContext(r.Context())
	if err != nil {
		http.Error(w, "Failed to resolve identity", http.StatusInternalServerError)
		return
	}

	if err := h.EventService.Delete(caller, eventID); err != nil {
		h.writeError(w, err)
		return
	}
	h.Logger.Info("API", fmt.Sprintf("DeleteEvent: event %s deleted with its RSVPs and reviews", eventID))

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, events.ErrNotFound):
		http.Error(w, "Event not found", http.StatusNotFound)
	case errors.Is(err, events.ErrUnauthenticated):
		http.Error(w, "Authentication required", http.StatusUnauthorized)
	case errors.Is(err, events.ErrForbidden):
		http.Error(w, "You do not have permission to perform this action", http.StatusForbidden)
	case errors.Is(err, events.ErrValidation):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		h.Logger.Error("API", fmt.Sprintf("event handler: %v", err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}
