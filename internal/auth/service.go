package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"event-hub/internal/models"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrUsernameTaken      = errors.New("username already taken")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrMissingFields      = errors.New("username and password are required")
)

type UserDBLayer interface {
	CreateUser(user models.User) error
	GetUserByID(id string) (*models.User, error)
	GetUserByUsername(username string) (*models.User, error)
	UsernameExists(username string) (bool, error)
}

type ProfileCreator interface {
	CreateForUser(userID, fullName string) (*models.Profile, error)
}

type RefreshTokens interface {
	Save(ctx context.Context, jti, userID string, ttl time.Duration) error
	Valid(ctx context.Context, jti, userID string) (bool, error)
	Revoke(ctx context.Context, jti string) error
}

type Service struct {
	DB       UserDBLayer
	Profiles ProfileCreator
	Issuer   *TokenIssuer
	Refresh  RefreshTokens
}

func NewService(db UserDBLayer, profiles ProfileCreator, issuer *TokenIssuer, refresh RefreshTokens) *Service {
	return &Service{DB: db, Profiles: profiles, Issuer: issuer, Refresh: refresh}
}

// Register creates a user and its profile. The profile's full name falls
// back to the username when no name is given.
func (s *Service) Register(req models.RegisterRequest) (*models.User, error) {
	if req.Username == "" || req.Password == "" {
		return nil, ErrMissingFields
	}

	taken, err := s.DB.UsernameExists(req.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}
	if taken {
		return nil, ErrUsernameTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.User{
		ID:           uuid.NewString(),
		Username:     req.Username,
		Email:        req.Email,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		PasswordHash: string(hash),
		CreatedAt:    time.Now(),
	}

	if err := s.DB.CreateUser(user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	fullName := strings.TrimSpace(req.FirstName + " " + req.LastName)
	if fullName == "" {
		fullName = req.Username
	}
	if _, err := s.Profiles.CreateForUser(user.ID, fullName); err != nil {
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}

	return &user, nil
}

// IssueTokens verifies the credentials and returns an access/refresh token
// pair along with the user payload.
func (s *Service) IssueTokens(ctx context.Context, username, password string) (*models.TokenResponse, error) {
	user, err := s.DB.GetUserByUsername(username)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	access, _, err := s.Issuer.IssueAccess(user.ID)
	if err != nil {
		return nil, err
	}

	refresh, claims, err := s.Issuer.IssueRefresh(user.ID)
	if err != nil {
		return nil, err
	}

	if err := s.Refresh.Save(ctx, claims.ID, user.ID, time.Until(claims.ExpiresAt.Time)); err != nil {
		return nil, err
	}

	return &models.TokenResponse{Access: access, Refresh: refresh, User: user}, nil
}

// RefreshAccess exchanges a still-valid refresh token for a new access
// token.
func (s *Service) RefreshAccess(ctx context.Context, refreshToken string) (*models.TokenResponse, error) {
	claims, err := s.Issuer.Verify(refreshToken, TokenTypeRefresh)
	if err != nil {
		return nil, ErrInvalidToken
	}

	valid, err := s.Refresh.Valid(ctx, claims.ID, claims.Subject)
	if err != nil {
		return nil, err
	}
	if !valid {
		return nil, ErrInvalidToken
	}

	access, _, err := s.Issuer.IssueAccess(claims.Subject)
	if err != nil {
		return nil, err
	}

	return &models.TokenResponse{Access: access}, nil
}

// VerifyToken checks that a token carries a valid signature and has not
// expired. Both access and refresh tokens pass, matching the /token/verify/
// contract.
func (s *Service) VerifyToken(tokenString string) error {
	if _, err := s.Issuer.Verify(tokenString, TokenTypeAccess); err == nil {
		return nil
	}
	if _, err := s.Issuer.Verify(tokenString, TokenTypeRefresh); err == nil {
		return nil
	}
	return ErrInvalidToken
}
