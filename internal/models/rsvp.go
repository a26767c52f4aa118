package models

import (
	"time"

	"github.com/uptrace/bun"
)

const (
	RSVPGoing    = "going"
	RSVPMaybe    = "maybe"
	RSVPNotGoing = "not_going"
)

// ValidRSVPStatus reports whether s is one of the three RSVP states.
func ValidRSVPStatus(s string) bool {
	return s == RSVPGoing || s == RSVPMaybe || s == RSVPNotGoing
}

type RSVP struct {
	bun.BaseModel `bun:"table:rsvps,alias:rsvp"`

	ID        string    `bun:"id,pk" json:"id"`
	EventID   string    `bun:"event_id,notnull,unique:rsvps_event_profile" json:"event"`
	ProfileID string    `bun:"profile_id,notnull,unique:rsvps_event_profile" json:"-"`
	Status    string    `bun:"status,notnull" json:"status"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt time.Time `bun:"updated_at,nullzero" json:"updated_at,omitempty"`

	Profile *Profile `bun:"rel:belongs-to,join:profile_id=id" json:"user,omitempty"`
}

type RSVPRequest struct {
	Status string `json:"status"`
}
