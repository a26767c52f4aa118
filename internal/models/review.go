package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Review struct {
	bun.BaseModel `bun:"table:reviews,alias:review"`

	ID        string    `bun:"id,pk" json:"id"`
	EventID   string    `bun:"event_id,notnull,unique:reviews_event_profile" json:"event"`
	ProfileID string    `bun:"profile_id,notnull,unique:reviews_event_profile" json:"-"`
	Rating    int       `bun:"rating,notnull" json:"rating"`
	Comment   string    `bun:"comment,nullzero" json:"comment,omitempty"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt time.Time `bun:"updated_at,nullzero" json:"updated_at,omitempty"`

	Profile *Profile `bun:"rel:belongs-to,join:profile_id=id" json:"user,omitempty"`
}

// ReviewRequest carries the writable review fields. Comment is a
// pointer so an update can clear it with an explicit empty string.
type ReviewRequest struct {
	Rating  int     `json:"rating"`
	Comment *string `json:"comment"`
}
