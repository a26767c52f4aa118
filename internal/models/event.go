package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Event struct {
	bun.BaseModel `bun:"table:events,alias:event"`

	ID          string    `bun:"id,pk" json:"id"`
	Title       string    `bun:"title,notnull" json:"title"`
	Description string    `bun:"description,nullzero" json:"description,omitempty"`
	Location    string    `bun:"location,nullzero" json:"location,omitempty"`
	StartTime   time.Time `bun:"start_time,notnull" json:"start_time"`
	EndTime     time.Time `bun:"end_time,notnull" json:"end_time"`
	OrganizerID string    `bun:"organizer_id,notnull" json:"organizer_id"`
	IsPublic    bool      `bun:"is_public,notnull,default:true" json:"is_public"`
	CreatedAt   time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt   time.Time `bun:"updated_at,nullzero" json:"updated_at,omitempty"`

	Organizer *Profile `bun:"rel:belongs-to,join:organizer_id=id" json:"organizer,omitempty"`
}

// EventRequest carries the writable event fields. Description, Location
// and IsPublic are pointers so an update can tell an omitted field from
// one deliberately set empty.
type EventRequest struct {
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	Location    *string   `json:"location"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	IsPublic    *bool     `json:"is_public"`
}

// EventResponse decorates an event with aggregates computed from its
// engagement rows. AverageRating is null when the event has no reviews.
type EventResponse struct {
	Event
	RSVPCount     int      `json:"rsvp_count"`
	AverageRating *float64 `json:"average_rating"`
}
