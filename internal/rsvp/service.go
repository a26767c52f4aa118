package rsvp

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"time"

	"event-hub/internal/authz"
	"event-hub/internal/models"
	"event-hub/internal/rsvp/pass"

	"github.com/google/uuid"
)

var (
	ErrNotFound        = errors.New("rsvp not found")
	ErrEventNotFound   = errors.New("event not found")
	ErrForbidden       = errors.New("not allowed to modify this rsvp")
	ErrUnauthenticated = errors.New("authentication required")
	ErrValidation      = errors.New("invalid rsvp status")
)

type DBLayer interface {
	GetRSVPByID(id string) (*models.RSVP, error)
	GetRSVPByEventAndProfile(eventID, profileID string) (*models.RSVP, error)
	ListRSVPsByEvent(eventID string) ([]models.RSVP, error)
	CreateRSVP(rsvp models.RSVP) error
	UpdateRSVP(rsvp models.RSVP) error
	DeleteRSVP(id string) error
}

type EventGetter interface {
	GetEventByID(id string) (*models.Event, error)
}

type KafkaPublisher interface {
	PublishRSVPUpdated(rsvp models.RSVP) error
}

type RSVPService struct {
	DB       DBLayer
	Events   EventGetter
	Kafka    KafkaPublisher
	policies authz.Pipeline
}

func NewRSVPService(db DBLayer, events EventGetter, kafka KafkaPublisher) *RSVPService {
	return &RSVPService{
		DB:     db,
		Events: events,
		Kafka:  kafka,
		policies: authz.Pipeline{
			authz.AuthenticatedOrReadOnly(),
			authz.OwnerOrReadOnly(),
		},
	}
}

// Set creates or updates the caller's RSVP on an event. Repeated calls
// with the same status converge to the same single row; the uniqueness
// constraint on (event_id, profile_id) resolves concurrent upserts.
func (s *RSVPService) Set(caller authz.Identity, eventID, status string) (*models.RSVP, error) {
	if caller.Anonymous() {
		return nil, ErrUnauthenticated
	}
	if _, err := s.Events.GetEventByID(eventID); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrEventNotFound, eventID)
	}

	if status == "" {
		status = models.RSVPGoing
	}
	if !models.ValidRSVPStatus(status) {
		return nil, fmt.Errorf("%w: %q", ErrValidation, status)
	}

	existing, err := s.DB.GetRSVPByEventAndProfile(eventID, caller.ProfileID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to look up rsvp: %w", err)
	}
	if err != nil {
		// No row yet, create one.
		rsvp := models.RSVP{
			ID:        uuid.NewString(),
			EventID:   eventID,
			ProfileID: caller.ProfileID,
			Status:    status,
			CreatedAt: time.Now(),
		}
		if err := s.DB.CreateRSVP(rsvp); err != nil {
			return nil, fmt.Errorf("failed to create rsvp: %w", err)
		}
		rsvp.Profile = caller.Profile

		if err := s.Kafka.PublishRSVPUpdated(rsvp); err != nil {
			fmt.Printf("Kafka publish error (rsvp updated): %v\n", err)
		}
		return &rsvp, nil
	}

	existing.Status = status
	existing.UpdatedAt = time.Now()
	if err := s.DB.UpdateRSVP(*existing); err != nil {
		return nil, fmt.Errorf("failed to update rsvp: %w", err)
	}
	existing.Profile = caller.Profile

	if err := s.Kafka.PublishRSVPUpdated(*existing); err != nil {
		fmt.Printf("Kafka publish error (rsvp updated): %v\n", err)
	}
	return existing, nil
}

// GetOwn returns the caller's RSVP on the event, or nil when none exists.
// The handler turns nil into the bare "not_going" payload.
func (s *RSVPService) GetOwn(caller authz.Identity, eventID string) (*models.RSVP, error) {
	if caller.Anonymous() {
		return nil, ErrUnauthenticated
	}
	rsvp, err := s.DB.GetRSVPByEventAndProfile(eventID, caller.ProfileID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up rsvp: %w", err)
	}
	return rsvp, nil
}

// List returns every RSVP on an event.
func (s *RSVPService) List(caller authz.Identity, eventID string) ([]models.RSVP, error) {
	if caller.Anonymous() {
		return nil, ErrUnauthenticated
	}
	rsvps, err := s.DB.ListRSVPsByEvent(eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to list rsvps for event %s: %w", eventID, err)
	}
	return rsvps, nil
}

// Get returns a single RSVP scoped to the event in the path.
func (s *RSVPService) Get(caller authz.Identity, eventID, id string) (*models.RSVP, error) {
	if caller.Anonymous() {
		return nil, ErrUnauthenticated
	}
	rsvp, err := s.DB.GetRSVPByID(id)
	if err != nil || rsvp.EventID != eventID {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return rsvp, nil
}

// Update overwrites the status of an RSVP the caller owns.
func (s *RSVPService) Update(caller authz.Identity, eventID, id, status string) (*models.RSVP, error) {
	rsvp, err := s.Get(caller, eventID, id)
	if err != nil {
		return nil, err
	}

	allowed, err := s.policies.Allow(caller, authz.ActionWrite, rsvp)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, ErrForbidden
	}

	if !models.ValidRSVPStatus(status) {
		return nil, fmt.Errorf("%w: %q", ErrValidation, status)
	}

	rsvp.Status = status
	rsvp.UpdatedAt = time.Now()
	if err := s.DB.UpdateRSVP(*rsvp); err != nil {
		return nil, fmt.Errorf("failed to update rsvp: %w", err)
	}

	if err := s.Kafka.PublishRSVPUpdated(*rsvp); err != nil {
		fmt.Printf("Kafka publish error (rsvp updated): %v\n", err)
	}
	return rsvp, nil
}

// Delete removes an RSVP the caller owns.
func (s *RSVPService) Delete(caller authz.Identity, eventID, id string) error {
	rsvp, err := s.Get(caller, eventID, id)
	if err != nil {
		return err
	}

	allowed, err := s.policies.Allow(caller, authz.ActionWrite, rsvp)
	if err != nil {
		return err
	}
	if !allowed {
		return ErrForbidden
	}

	if err := s.DB.DeleteRSVP(id); err != nil {
		return fmt.Errorf("failed to delete rsvp %s: %w", id, err)
	}
	return nil
}

// Pass renders the caller's RSVP on the event as an encrypted QR
// attendance pass.
func (s *RSVPService) Pass(caller authz.Identity, eventID string) ([]byte, error) {
	rsvp, err := s.GetOwn(caller, eventID)
	if err != nil {
		return nil, err
	}
	if rsvp == nil {
		return nil, fmt.Errorf("%w: no rsvp on event %s", ErrNotFound, eventID)
	}

	secretKey := os.Getenv("PASS_SECRET_KEY")
	generator := pass.NewGenerator(secretKey)

	png, err := generator.GenerateEncryptedPass(*rsvp)
	if err != nil {
		return nil, fmt.Errorf("failed to generate pass: %w", err)
	}
	return png, nil
}
