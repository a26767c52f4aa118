package rsvp

import (
	"database/sql"
	"errors"
	"testing"
	"time"

	"event-hub/internal/authz"
	"event-hub/internal/models"

	"github.com/stretchr/testify/assert"
)

type mockDB struct {
	rsvps        map[string]models.RSVP
	shouldFailOn string
	errorMsg     string
}

func newMockDB() *mockDB {
	return &mockDB{rsvps: make(map[string]models.RSVP)}
}

func (m *mockDB) fail(op string) error {
	if m.shouldFailOn == op {
		return errors.New(m.errorMsg)
	}
	return nil
}

func (m *mockDB) GetRSVPByID(id string) (*models.RSVP, error) {
	if err := m.fail("GetRSVPByID"); err != nil {
		return nil, err
	}
	rsvp, ok := m.rsvps[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &rsvp, nil
}

func (m *mockDB) GetRSVPByEventAndProfile(eventID, profileID string) (*models.RSVP, error) {
	if err := m.fail("GetRSVPByEventAndProfile"); err != nil {
		return nil, err
	}
	for _, rsvp := range m.rsvps {
		if rsvp.EventID == eventID && rsvp.ProfileID == profileID {
			found := rsvp
			return &found, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockDB) ListRSVPsByEvent(eventID string) ([]models.RSVP, error) {
	if err := m.fail("ListRSVPsByEvent"); err != nil {
		return nil, err
	}
	var out []models.RSVP
	for _, rsvp := range m.rsvps {
		if rsvp.EventID == eventID {
			out = append(out, rsvp)
		}
	}
	return out, nil
}

func (m *mockDB) CreateRSVP(rsvp models.RSVP) error {
	if err := m.fail("CreateRSVP"); err != nil {
		return err
	}
	for _, existing := range m.rsvps {
		if existing.EventID == rsvp.EventID && existing.ProfileID == rsvp.ProfileID {
			return errors.New("UNIQUE constraint failed: rsvps.event_id, rsvps.profile_id")
		}
	}
	m.rsvps[rsvp.ID] = rsvp
	return nil
}

func (m *mockDB) UpdateRSVP(rsvp models.RSVP) error {
	if err := m.fail("UpdateRSVP"); err != nil {
		return err
	}
	m.rsvps[rsvp.ID] = rsvp
	return nil
}

func (m *mockDB) DeleteRSVP(id string) error {
	if err := m.fail("DeleteRSVP"); err != nil {
		return err
	}
	delete(m.rsvps, id)
	return nil
}

type mockEvents struct {
	events map[string]models.Event
}

func (m *mockEvents) GetEventByID(id string) (*models.Event, error) {
	event, ok := m.events[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &event, nil
}

type mockKafka struct {
	published int
}

func (k *mockKafka) PublishRSVPUpdated(models.RSVP) error { k.published++; return nil }

func identity(profileID string) authz.Identity {
	return authz.Identity{
		UserID:    "user-" + profileID,
		ProfileID: profileID,
		Profile:   &models.Profile{ID: profileID, UserID: "user-" + profileID},
	}
}

func newService(db *mockDB) (*RSVPService, *mockKafka) {
	events := &mockEvents{events: map[string]models.Event{
		"event1": {ID: "event1", Title: "Event One", OrganizerID: "organizer", IsPublic: false},
	}}
	kafka := &mockKafka{}
	return NewRSVPService(db, events, kafka), kafka
}

func TestSetCreatesWithDefaultStatus(t *testing.T) {
	db := newMockDB()
	svc, kafka := newService(db)

	rsvp, err := svc.Set(identity("attendee"), "event1", "")

	assert.NoError(t, err)
	assert.Equal(t, models.RSVPGoing, rsvp.Status)
	assert.Equal(t, "attendee", rsvp.ProfileID)
	assert.Equal(t, 1, kafka.published)
	assert.Len(t, db.rsvps, 1)
}

func TestSetIsIdempotentPerEventAndProfile(t *testing.T) {
	db := newMockDB()
	svc, _ := newService(db)
	caller := identity("attendee")

	first, err := svc.Set(caller, "event1", models.RSVPGoing)
	assert.NoError(t, err)

	second, err := svc.Set(caller, "event1", models.RSVPNotGoing)
	assert.NoError(t, err)

	assert.Equal(t, first.ID, second.ID, "repeated sets must converge to one row")
	assert.Len(t, db.rsvps, 1)
	assert.Equal(t, models.RSVPNotGoing, db.rsvps[first.ID].Status)
}

func TestSetRejectsUnknownEvent(t *testing.T) {
	svc, _ := newService(newMockDB())

	_, err := svc.Set(identity("attendee"), "missing", models.RSVPGoing)

	assert.ErrorIs(t, err, ErrEventNotFound)
}

func TestSetRejectsInvalidStatus(t *testing.T) {
	svc, _ := newService(newMockDB())

	_, err := svc.Set(identity("attendee"), "event1", "attending")

	assert.ErrorIs(t, err, ErrValidation)
}

func TestSetRequiresAuthentication(t *testing.T) {
	svc, _ := newService(newMockDB())

	_, err := svc.Set(authz.Identity{}, "event1", models.RSVPGoing)

	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestGetOwnReturnsNilWhenAbsent(t *testing.T) {
	svc, _ := newService(newMockDB())

	rsvp, err := svc.GetOwn(identity("attendee"), "event1")

	assert.NoError(t, err)
	assert.Nil(t, rsvp)
}

func TestGetOwnReturnsStoredRSVP(t *testing.T) {
	db := newMockDB()
	svc, _ := newService(db)
	caller := identity("attendee")

	created, err := svc.Set(caller, "event1", models.RSVPMaybe)
	assert.NoError(t, err)

	rsvp, err := svc.GetOwn(caller, "event1")
	assert.NoError(t, err)
	assert.Equal(t, created.ID, rsvp.ID)
	assert.Equal(t, models.RSVPMaybe, rsvp.Status)
}

func TestGetScopedToEvent(t *testing.T) {
	db := newMockDB()
	db.rsvps["rsvp1"] = models.RSVP{ID: "rsvp1", EventID: "event1", ProfileID: "attendee", Status: models.RSVPGoing, CreatedAt: time.Now()}
	svc, _ := newService(db)

	_, err := svc.Get(identity("attendee"), "otherevent", "rsvp1")

	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateOwnerOnly(t *testing.T) {
	db := newMockDB()
	db.rsvps["rsvp1"] = models.RSVP{ID: "rsvp1", EventID: "event1", ProfileID: "attendee", Status: models.RSVPGoing, CreatedAt: time.Now()}
	svc, kafka := newService(db)

	_, err := svc.Update(identity("stranger"), "event1", "rsvp1", models.RSVPMaybe)
	assert.ErrorIs(t, err, ErrForbidden)

	rsvp, err := svc.Update(identity("attendee"), "event1", "rsvp1", models.RSVPMaybe)
	assert.NoError(t, err)
	assert.Equal(t, models.RSVPMaybe, rsvp.Status)
	assert.Equal(t, 1, kafka.published)
}

func TestUpdateRejectsInvalidStatus(t *testing.T) {
	db := newMockDB()
	db.rsvps["rsvp1"] = models.RSVP{ID: "rsvp1", EventID: "event1", ProfileID: "attendee", Status: models.RSVPGoing, CreatedAt: time.Now()}
	svc, _ := newService(db)

	_, err := svc.Update(identity("attendee"), "event1", "rsvp1", "")

	assert.ErrorIs(t, err, ErrValidation)
}

func TestDeleteOwnerOnly(t *testing.T) {
	db := newMockDB()
	db.rsvps["rsvp1"] = models.RSVP{ID: "rsvp1", EventID: "event1", ProfileID: "attendee", Status: models.RSVPGoing, CreatedAt: time.Now()}
	svc, _ := newService(db)

	err := svc.Delete(identity("stranger"), "event1", "rsvp1")
	assert.ErrorIs(t, err, ErrForbidden)
	assert.Len(t, db.rsvps, 1)

	err = svc.Delete(identity("attendee"), "event1", "rsvp1")
	assert.NoError(t, err)
	assert.Empty(t, db.rsvps)
}

func TestListRequiresAuthentication(t *testing.T) {
	svc, _ := newService(newMockDB())

	_, err := svc.List(authz.Identity{}, "event1")

	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestPassWithoutRSVP(t *testing.T) {
	svc, _ := newService(newMockDB())

	_, err := svc.Pass(identity("attendee"), "event1")

	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetOwnPropagatesLookupErrors(t *testing.T) {
	db := newMockDB()
	db.shouldFailOn = "GetRSVPByEventAndProfile"
	db.errorMsg = "connection refused"
	svc, _ := newService(db)

	rsvp, err := svc.GetOwn(identity("attendee"), "event1")

	assert.Error(t, err, "a database failure must not read as an absent rsvp")
	assert.Nil(t, rsvp)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestSetPropagatesLookupErrors(t *testing.T) {
	db := newMockDB()
	db.shouldFailOn = "GetRSVPByEventAndProfile"
	db.errorMsg = "connection refused"
	svc, _ := newService(db)

	_, err := svc.Set(identity("attendee"), "event1", models.RSVPGoing)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
	assert.Empty(t, db.rsvps, "a failed lookup must not fall through to an insert")
}

func TestSetPropagatesCreateErrors(t *testing.T) {
	db := newMockDB()
	db.shouldFailOn = "CreateRSVP"
	db.errorMsg = "disk full"
	svc, _ := newService(db)

	_, err := svc.Set(identity("attendee"), "event1", models.RSVPGoing)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}
