package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Profile is the application-level user record, one per registered user.
type Profile struct {
	bun.BaseModel `bun:"table:profiles,alias:profile"`

	ID        string    `bun:"id,pk" json:"id"`
	UserID    string    `bun:"user_id,unique,notnull" json:"user_id"`
	FullName  string    `bun:"full_name,notnull" json:"full_name"`
	Bio       string    `bun:"bio,nullzero" json:"bio,omitempty"`
	Location  string    `bun:"location,nullzero" json:"location,omitempty"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt time.Time `bun:"updated_at,nullzero" json:"updated_at,omitempty"`
}

type ProfileUpdateRequest struct {
	FullName *string `json:"full_name"`
	Bio      *string `json:"bio"`
	Location *string `json:"location"`
}
