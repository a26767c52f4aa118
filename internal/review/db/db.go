package db

import (
	"context"
	"event-hub/internal/models"

	"github.com/uptrace/bun"
)

type DB struct {
	Bun *bun.DB
}

// ---------------- REVIEWS ----------------

// GetReviewByID → fetch one review by its ID, owner profile attached
func (d *DB) GetReviewByID(id string) (*models.Review, error) {
	var review models.Review
	err := d.Bun.NewSelect().
		Model(&review).
		Relation("Profile").
		Where("review.id = ?", id).
		Limit(1).
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return &review, nil
}

// ReviewExists → whether a profile already reviewed an event
func (d *DB) ReviewExists(eventID, profileID string) (bool, error) {
	return d.Bun.NewSelect().
		Model((*models.Review)(nil)).
		Where("event_id = ?", eventID).
		Where("profile_id = ?", profileID).
		Exists(context.Background())
}

// ListReviewsByEvent → all reviews on an event
func (d *DB) ListReviewsByEvent(eventID string) ([]models.Review, error) {
	var reviews []models.Review
	err := d.Bun.NewSelect().
		Model(&reviews).
		Relation("Profile").
		Where("event_id = ?", eventID).
		Order("review.created_at ASC").
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return reviews, nil
}

// CreateReview → insert new review; uniqueness on (event_id, profile_id)
// backs the one-review-per-profile rule
func (d *DB) CreateReview(review models.Review) error {
	_, err := d.Bun.NewInsert().Model(&review).Exec(context.Background())
	return err
}

// UpdateReview → overwrite rating and comment
func (d *DB) UpdateReview(review models.Review) error {
	_, err := d.Bun.NewUpdate().
		Model(&review).
		Column("rating", "comment", "updated_at").
		Where("id = ?", review.ID).
		Exec(context.Background())
	return err
}

// DeleteReview → delete a review by ID
func (d *DB) DeleteReview(id string) error {
	_, err := d.Bun.NewDelete().
		Model((*models.Review)(nil)).
		Where("id = ?", id).
		Exec(context.Background())
	return err
}
