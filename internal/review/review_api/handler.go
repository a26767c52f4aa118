package review_api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"event-hub/internal/authz"
	"event-hub/internal/logger"
	"event-hub/internal/models"
	"event-hub/internal/review"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	ReviewService *review.ReviewService
	Resolver      *authz.Resolver
	Logger        *logger.Logger
}

func NewHandler(service *review.ReviewService, resolver *authz.Resolver, logger *logger.Logger) *Handler {
	return &Handler{ReviewService: service, Resolver: resolver, Logger: logger}
}

func (h *Handler) ListReviews(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventId")

	reviews, err := h.ReviewService.List(eventID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(reviews); err != nil {
		h.Logger.Error("API", fmt.Sprintf("ListReviews: failed to encode response: %v", err))
	}
}

func (h *Handler) CreateReview(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventId")

	var req models.ReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	caller, err := h.Resolver.IdentityFromContext(r.Context())
	if err != nil {
		http.Error(w, "Failed to resolve identity", http.StatusInternalServerError)
		return
	}

	result, err := h.ReviewService.Create(caller, eventID, req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.Logger.Info("API", fmt.Sprintf("CreateReview: profile %s rated event %s %d", caller.ProfileID, eventID, result.Rating))

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(result); err != nil {
		h.Logger.Error("API", fmt.Sprintf("CreateReview: failed to encode response: %v", err))
	}
}

func (h *Handler) GetReview(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventId")
	reviewID := chi.URLParam(r, "reviewId")

	result, err := h.ReviewService.Get(eventID, reviewID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(result); err != nil {
		h.Logger.Error("API", fmt.Sprintf("GetReview: failed to encode response: %v", err))
	}
}

func (h *Handler) UpdateReview(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventId")
	reviewID := chi.URLParam(r, "reviewId")

	var req models.ReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	caller, err := h.Resolver.IdentityFromContext(r.Context())
	if err != nil {
		http.Error(w, "Failed to resolve identity", http.StatusInternalServerError)
		return
	}

	result, err := h.ReviewService.Update(caller, eventID, reviewID, req)
	if err != nil {
		h.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(result); err != nil {
		h.Logger.Error("API", fmt.Sprintf("UpdateReview: failed to encode response: %v", err))
	}
}

func (h *Handler) DeleteReview(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventId")
	reviewID := chi.URLParam(r, "reviewId")

	caller, err := h.Resolver.IdentityFromContext(r.Context())
	if err != nil {
		http.Error(w, "Failed to resolve identity", http.StatusInternalServerError)
		return
	}

	if err := h.ReviewService.Delete(caller, eventID, reviewID); err != nil {
		h.writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, review.ErrEventNotFound):
		http.Error(w, "Event not found", http.StatusNotFound)
	case errors.Is(err, review.ErrNotFound):
		http.Error(w, "Review not found", http.StatusNotFound)
	case errors.Is(err, review.ErrUnauthenticated):
		http.Error(w, "Authentication required", http.StatusUnauthorized)
	case errors.Is(err, review.ErrForbidden):
		http.Error(w, "You do not have permission to perform this action", http.StatusForbidden)
	case errors.Is(err, review.ErrConflict):
		http.Error(w, "You have already reviewed this event.", http.StatusBadRequest)
	case errors.Is(err, review.ErrValidation):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		h.Logger.Error("API", fmt.Sprintf("review handler: %v", err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}
