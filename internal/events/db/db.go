package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"event-hub/internal/models"

	"github.com/uptrace/bun"
)

type DB struct {
	Bun *bun.DB
}

// EventStats holds the engagement aggregates computed per event.
type EventStats struct {
	EventID       string          `bun:"event_id"`
	RSVPCount     int             `bun:"rsvp_count"`
	AverageRating sql.NullFloat64 `bun:"average_rating"`
}

// ---------------- EVENTS ----------------

// GetEventByID → fetch one event by its ID, organizer attached
func (d *DB) GetEventByID(id string) (*models.Event, error) {
	var event models.Event
	err := d.Bun.NewSelect().
		Model(&event).
		Relation("Organizer").
		Where("event.id = ?", id).
		Limit(1).
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return &event, nil
}

// ListPublicEvents → all events visible to everyone
func (d *DB) ListPublicEvents() ([]models.Event, error) {
	var events []models.Event
	err := d.Bun.NewSelect().
		Model(&events).
		Relation("Organizer").
		Where("event.is_public = ?", true).
		Order("event.start_time ASC").
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return events, nil
}

// ListVisibleEvents → public events plus the profile's own and invited
// ones. The RSVP membership goes through a subquery so the union stays
// duplicate-free.
func (d *DB) ListVisibleEvents(profileID string) ([]models.Event, error) {
	var events []models.Event
	err := d.Bun.NewSelect().
		Model(&events).
		Relation("Organizer").
		WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.
				Where("event.is_public = ?", true).
				WhereOr("event.organizer_id = ?", profileID).
				WhereOr("event.id IN (SELECT event_id FROM rsvps WHERE profile_id = ?)", profileID)
		}).
		Order("event.start_time ASC").
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return events, nil
}

// CreateEvent → insert new event
func (d *DB) CreateEvent(event models.Event) error {
	_, err := d.Bun.NewInsert().Model(&event).Exec(context.Background())
	return err
}

// UpdateEvent → update allowed fields; the organizer column never changes
func (d *DB) UpdateEvent(event models.Event) error {
	_, err := d.Bun.NewUpdate().
		Model(&event).
		Column("title", "description", "location", "start_time", "end_time", "is_public", "updated_at").
		Where("id = ?", event.ID).
		Exec(context.Background())
	return err
}

// DeleteEventCascade → remove the event and its dependent RSVP and review
// rows in one transaction.
func (d *DB) DeleteEventCascade(id string) error {
	ctx := context.Background()
	return d.Bun.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().
			Model((*models.RSVP)(nil)).
			Where("event_id = ?", id).
			Exec(ctx); err != nil {
			return fmt.Errorf("failed to delete rsvps for event %s: %w", id, err)
		}
		if _, err := tx.NewDelete().
			Model((*models.Review)(nil)).
			Where("event_id = ?", id).
			Exec(ctx); err != nil {
			return fmt.Errorf("failed to delete reviews for event %s: %w", id, err)
		}
		if _, err := tx.NewDelete().
			Model((*models.Event)(nil)).
			Where("id = ?", id).
			Exec(ctx); err != nil {
			return fmt.Errorf("failed to delete event %s: %w", id, err)
		}
		return nil
	})
}

// ---------------- RELATION QUERIES ----------------

// HasRSVP → whether the profile holds any RSVP on the event
func (d *DB) HasRSVP(eventID, profileID string) (bool, error) {
	return d.Bun.NewSelect().
		Model((*models.RSVP)(nil)).
		Where("event_id = ?", eventID).
		Where("profile_id = ?", profileID).
		Exists(context.Background())
}

// EventAggregates → RSVP count and average review rating per event
func (d *DB) EventAggregates(eventIDs []string) (map[string]EventStats, error) {
	stats := make(map[string]EventStats, len(eventIDs))
	if len(eventIDs) == 0 {
		return stats, nil
	}

	placeholders := make([]string, len(eventIDs))
	args := make([]interface{}, len(eventIDs))
	for i, id := range eventIDs {
		placeholders[i] = "?"
		args[i] = id
	}
	inClause := strings.Join(placeholders, ", ")

	var rows []EventStats
	rawSQL := fmt.Sprintf(`
		SELECT
			e.id AS event_id,
			(SELECT COUNT(*) FROM rsvps r WHERE r.event_id = e.id) AS rsvp_count,
			(SELECT AVG(rating) FROM reviews rv WHERE rv.event_id = e.id) AS average_rating
		FROM
			events e
		WHERE
			e.id IN (%s)`, inClause)

	err := d.Bun.NewRaw(rawSQL, args...).Scan(context.Background(), &rows)
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		stats[row.EventID] = row
	}
	return stats, nil
}
