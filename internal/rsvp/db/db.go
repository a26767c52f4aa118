package db

import (
	"context"
	"event-hub/internal/models"

	"github.com/uptrace/bun"
)

type DB struct {
	Bun *bun.DB
}

// ---------------- RSVPS ----------------

// GetRSVPByID → fetch one RSVP by its ID, owner profile attached
func (d *DB) GetRSVPByID(id string) (*models.RSVP, error) {
	var rsvp models.RSVP
	err := d.Bun.NewSelect().
		Model(&rsvp).
		Relation("Profile").
		Where("rsvp.id = ?", id).
		Limit(1).
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return &rsvp, nil
}

// GetRSVPByEventAndProfile → fetch the unique RSVP for an (event, profile)
// pair
func (d *DB) GetRSVPByEventAndProfile(eventID, profileID string) (*models.RSVP, error) {
	var rsvp models.RSVP
	err := d.Bun.NewSelect().
		Model(&rsvp).
		Where("event_id = ?", eventID).
		Where("profile_id = ?", profileID).
		Limit(1).
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return &rsvp, nil
}

// ListRSVPsByEvent → all RSVPs on an event
func (d *DB) ListRSVPsByEvent(eventID string) ([]models.RSVP, error) {
	var rsvps []models.RSVP
	err := d.Bun.NewSelect().
		Model(&rsvps).
		Relation("Profile").
		Where("event_id = ?", eventID).
		Order("rsvp.created_at ASC").
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return rsvps, nil
}

// CreateRSVP → insert new RSVP; the (event_id, profile_id) uniqueness
// constraint is the race-breaker for concurrent upserts
func (d *DB) CreateRSVP(rsvp models.RSVP) error {
	_, err := d.Bun.NewInsert().Model(&rsvp).Exec(context.Background())
	return err
}

// UpdateRSVP → overwrite status and updated_at
func (d *DB) UpdateRSVP(rsvp models.RSVP) error {
	_, err := d.Bun.NewUpdate().
		Model(&rsvp).
		Column("status", "updated_at").
		Where("id = ?", rsvp.ID).
		Exec(context.Background())
	return err
}

// DeleteRSVP → delete an RSVP by ID
func (d *DB) DeleteRSVP(id string) error {
	_, err := d.Bun.NewDelete().
		Model((*models.RSVP)(nil)).
		Where("id = ?", id).
		Exec(context.Background())
	return err
}
