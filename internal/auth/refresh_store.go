package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const refreshKeyPrefix = "refresh_token:"

// RefreshStore tracks issued refresh tokens in Redis so they can be
// validated and revoked. A refresh token is honored only while its JTI is
// present in the store.
type RefreshStore struct {
	Client *redis.Client
}

func NewRefreshStore(client *redis.Client) *RefreshStore {
	return &RefreshStore{Client: client}
}

// Save records a refresh token's JTI for its lifetime.
func (s *RefreshStore) Save(ctx context.Context, jti, userID string, ttl time.Duration) error {
	if s.Client == nil {
		return fmt.Errorf("redis client not initialized")
	}
	if err := s.Client.Set(ctx, refreshKeyPrefix+jti, userID, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store refresh token in Redis: %w", err)
	}
	return nil
}

// Valid reports whether the refresh token with the given JTI is still
// honored and belongs to the given user.
func (s *RefreshStore) Valid(ctx context.Context, jti, userID string) (bool, error) {
	if s.Client == nil {
		return false, fmt.Errorf("redis client not initialized")
	}
	stored, err := s.Client.Get(ctx, refreshKeyPrefix+jti).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to get refresh token from Redis: %w", err)
	}
	return stored == userID, nil
}

// Revoke drops a refresh token's JTI from the store.
func (s *RefreshStore) Revoke(ctx context.Context, jti string) error {
	if s.Client == nil {
		return fmt.Errorf("redis client not initialized")
	}
	if err := s.Client.Del(ctx, refreshKeyPrefix+jti).Err(); err != nil {
		return fmt.Errorf("failed to revoke refresh token: %w", err)
	}
	return nil
}
