package profile

import (
	"errors"
	"fmt"
	"time"

	"event-hub/internal/models"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("profile not found")

type DBLayer interface {
	CreateProfile(profile models.Profile) error
	GetProfileByID(id string) (*models.Profile, error)
	GetProfileByUserID(userID string) (*models.Profile, error)
	UpdateProfile(profile models.Profile) error
}

type Service struct {
	DB DBLayer
}

func NewService(db DBLayer) *Service {
	return &Service{DB: db}
}

// CreateForUser creates the profile that backs a freshly registered user.
func (s *Service) CreateForUser(userID, fullName string) (*models.Profile, error) {
	profile := models.Profile{
		ID:        uuid.NewString(),
		UserID:    userID,
		FullName:  fullName,
		CreatedAt: time.Now(),
	}
	if err := s.DB.CreateProfile(profile); err != nil {
		return nil, fmt.Errorf("failed to create profile for user %s: %w", userID, err)
	}
	return &profile, nil
}

func (s *Service) GetProfileByUserID(userID string) (*models.Profile, error) {
	profile, err := s.DB.GetProfileByUserID(userID)
	if err != nil {
		return nil, fmt.Errorf("%w: user %s", ErrNotFound, userID)
	}
	return profile, nil
}

func (s *Service) GetProfileByID(id string) (*models.Profile, error) {
	profile, err := s.DB.GetProfileByID(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return profile, nil
}

// Update applies the non-nil fields of the request to the caller's own
// profile.
func (s *Service) Update(userID string, req models.ProfileUpdateRequest) (*models.Profile, error) {
	profile, err := s.DB.GetProfileByUserID(userID)
	if err != nil {
		return nil, fmt.Errorf("%w: user %s", ErrNotFound, userID)
	}

	if req.FullName != nil {
		profile.FullName = *req.FullName
	}
	if req.Bio != nil {
		profile.Bio = *req.Bio
	}
	if req.Location != nil {
		profile.Location = *req.Location
	}
	profile.UpdatedAt = time.Now()

	if err := s.DB.UpdateProfile(*profile); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return profile, nil
}
