package authz

import (
	"context"
	"fmt"

	"event-hub/internal/auth"
	"event-hub/internal/models"
)

type ProfileGetter interface {
	GetProfileByUserID(userID string) (*models.Profile, error)
}

// Resolver turns the user ID stashed in the request context by the auth
// middleware into a full Identity with its profile attached.
type Resolver struct {
	Profiles ProfileGetter
}

func NewResolver(profiles ProfileGetter) *Resolver {
	return &Resolver{Profiles: profiles}
}

func (r *Resolver) IdentityFromContext(ctx context.Context) (Identity, error) {
	userID := auth.UserID(ctx)
	if userID == "" {
		return Identity{}, nil
	}

	profile, err := r.Profiles.GetProfileByUserID(userID)
	if err != nil {
		return Identity{}, fmt.Errorf("no profile for user %s: %w", userID, err)
	}

	return Identity{UserID: userID, ProfileID: profile.ID, Profile: profile}, nil
}
