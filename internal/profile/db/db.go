package db

import (
	"context"
	"event-hub/internal/models"

	"github.com/uptrace/bun"
)

type DB struct {
	Bun *bun.DB
}

// ---------------- PROFILES ----------------

// CreateProfile → insert new profile row
func (d *DB) CreateProfile(profile models.Profile) error {
	_, err := d.Bun.NewInsert().Model(&profile).Exec(context.Background())
	return err
}

// GetProfileByID → fetch one profile by its ID
func (d *DB) GetProfileByID(id string) (*models.Profile, error) {
	var profile models.Profile
	err := d.Bun.NewSelect().
		Model(&profile).
		Where("id = ?", id).
		Limit(1).
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// GetProfileByUserID → fetch the profile owned by a user identity
func (d *DB) GetProfileByUserID(userID string) (*models.Profile, error) {
	var profile models.Profile
	err := d.Bun.NewSelect().
		Model(&profile).
		Where("user_id = ?", userID).
		Limit(1).
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// UpdateProfile → update display fields
func (d *DB) UpdateProfile(profile models.Profile) error {
	_, err := d.Bun.NewUpdate().
		Model(&profile).
		Column("full_name", "bio", "location", "updated_at").
		Where("id = ?", profile.ID).
		Exec(context.Background())
	return err
}
