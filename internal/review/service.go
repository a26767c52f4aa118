package review

import (
	"errors"
	"fmt"
	"time"

	"event-hub/internal/authz"
	"event-hub/internal/models"

	"github.com/google/uuid"
)

var (
	ErrNotFound        = errors.New("review not found")
	ErrEventNotFound   = errors.New("event not found")
	ErrForbidden       = errors.New("not allowed to modify this review")
	ErrUnauthenticated = errors.New("authentication required")
	ErrConflict        = errors.New("event already reviewed")
	ErrValidation      = errors.New("invalid review")
)

type DBLayer interface {
	GetReviewByID(id string) (*models.Review, error)
	ReviewExists(eventID, profileID string) (bool, error)
	ListReviewsByEvent(eventID string) ([]models.Review, error)
	CreateReview(review models.Review) error
	UpdateReview(review models.Review) error
	DeleteReview(id string) error
}

type EventGetter interface {
	GetEventByID(id string) (*models.Event, error)
}

type KafkaPublisher interface {
	PublishReviewCreated(review models.Review) error
}

type ReviewService struct {
	DB       DBLayer
	Events   EventGetter
	Kafka    KafkaPublisher
	policies authz.Pipeline
}

func NewReviewService(db DBLayer, events EventGetter, kafka KafkaPublisher) *ReviewService {
	return &ReviewService{
		DB:     db,
		Events: events,
		Kafka:  kafka,
		policies: authz.Pipeline{
			authz.AuthenticatedOrReadOnly(),
			authz.OwnerOrReadOnly(),
		},
	}
}

// Create stores a new review. Unlike the RSVP path this never upserts: a
// second review for the same (event, profile) pair is rejected with a
// conflict, and the separate update path is the only way to change a
// rating afterwards.
func (s *ReviewService) Create(caller authz.Identity, eventID string, req models.ReviewRequest) (*models.Review, error) {
	if caller.Anonymous() {
		return nil, ErrUnauthenticated
	}
	if _, err := s.Events.GetEventByID(eventID); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrEventNotFound, eventID)
	}
	if err := validateRating(req.Rating); err != nil {
		return nil, err
	}

	exists, err := s.DB.ReviewExists(eventID, caller.ProfileID)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing review: %w", err)
	}
	if exists {
		return nil, ErrConflict
	}

	review := models.Review{
		ID:        uuid.NewString(),
		EventID:   eventID,
		ProfileID: caller.ProfileID,
		Rating:    req.Rating,
		CreatedAt: time.Now(),
	}
	if req.Comment != nil {
		review.Comment = *req.Comment
	}
	if err := s.DB.CreateReview(review); err != nil {
		return nil, fmt.Errorf("failed to create review: %w", err)
	}
	review.Profile = caller.Profile

	if err := s.Kafka.PublishReviewCreated(review); err != nil {
		fmt.Printf("Kafka publish error (review created): %v\n", err)
	}
	return &review, nil
}

// List returns every review on an event. Reads are open to anonymous
// callers.
func (s *ReviewService) List(eventID string) ([]models.Review, error) {
	reviews, err := s.DB.ListReviewsByEvent(eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews for event %s: %w", eventID, err)
	}
	return reviews, nil
}

// Get returns a single review scoped to the event in the path.
func (s *ReviewService) Get(eventID, id string) (*models.Review, error) {
	review, err := s.DB.GetReviewByID(id)
	if err != nil || review.EventID != eventID {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return review, nil
}

// Update overwrites the rating and comment of a review the caller owns.
func (s *ReviewService) Update(caller authz.Identity, eventID, id string, req models.ReviewRequest) (*models.Review, error) {
	review, err := s.Get(eventID, id)
	if err != nil {
		return nil, err
	}

	allowed, err := s.policies.Allow(caller, authz.ActionWrite, review)
	if err != nil {
		return nil, err
	}
	if !allowed {
		if caller.Anonymous() {
			return nil, ErrUnauthenticated
		}
		return nil, ErrForbidden
	}

	if err := validateRating(req.Rating); err != nil {
		return nil, err
	}

	review.Rating = req.Rating
	if req.Comment != nil {
		review.Comment = *req.Comment
	}
	review.UpdatedAt = time.Now()

	if err := s.DB.UpdateReview(*review); err != nil {
		return nil, fmt.Errorf("failed to update review: %w", err)
	}
	return review, nil
}

// Delete removes a review the caller owns.
func (s *ReviewService) Delete(caller authz.Identity, eventID, id string) error {
	review, err := s.Get(eventID, id)
	if err != nil {
		return err
	}

	allowed, err := s.policies.Allow(caller, authz.ActionWrite, review)
	if err != nil {
		return err
	}
	if !allowed {
		if caller.Anonymous() {
			return ErrUnauthenticated
		}
		return ErrForbidden
	}

	if err := s.DB.DeleteReview(id); err != nil {
		return fmt.Errorf("failed to delete review %s: %w", id, err)
	}
	return nil
}

func validateRating(rating int) error {
	if rating < 1 || rating > 5 {
		return fmt.Errorf("%w: rating must be between 1 and 5", ErrValidation)
	}
	return nil
}
