package authz_test

import (
	"errors"
	"testing"

	"event-hub/internal/authz"
	"event-hub/internal/models"

	"github.com/stretchr/testify/assert"
)

type mockRSVPFinder struct {
	invited      map[string]bool
	shouldFailOn string
	errorMsg     string
}

func (m *mockRSVPFinder) HasRSVP(eventID, profileID string) (bool, error) {
	if m.shouldFailOn == "HasRSVP" {
		return false, errors.New(m.errorMsg)
	}
	return m.invited[eventID+"/"+profileID], nil
}

func TestAuthenticatedOrReadOnly(t *testing.T) {
	check := authz.AuthenticatedOrReadOnly()

	anon := authz.Identity{}
	authed := authz.Identity{UserID: "user1", ProfileID: "profile1"}

	ok, err := check(anon, authz.ActionRead, nil)
	assert.NoError(t, err)
	assert.True(t, ok, "reads are open to anonymous callers")

	ok, err = check(anon, authz.ActionWrite, nil)
	assert.NoError(t, err)
	assert.False(t, ok, "writes require authentication")

	ok, err = check(authed, authz.ActionWrite, nil)
	assert.NoError(t, err)
	assert.True(t, ok)
}

func TestOrganizerOrReadOnly(t *testing.T) {
	check := authz.OrganizerOrReadOnly()
	event := &models.Event{ID: "event1", OrganizerID: "profile1"}

	organizer := authz.Identity{UserID: "user1", ProfileID: "profile1"}
	other := authz.Identity{UserID: "user2", ProfileID: "profile2"}

	ok, _ := check(other, authz.ActionRead, event)
	assert.True(t, ok, "read-only verbs bypass the organizer check")

	ok, _ = check(organizer, authz.ActionWrite, event)
	assert.True(t, ok)

	ok, _ = check(other, authz.ActionWrite, event)
	assert.False(t, ok)

	ok, _ = check(authz.Identity{}, authz.ActionWrite, event)
	assert.False(t, ok, "anonymous caller is never the organizer")
}

func TestOwnerOrReadOnly(t *testing.T) {
	check := authz.OwnerOrReadOnly()

	owner := authz.Identity{UserID: "user1", ProfileID: "profile1"}
	other := authz.Identity{UserID: "user2", ProfileID: "profile2"}

	rsvp := &models.RSVP{ID: "rsvp1", ProfileID: "profile1"}
	review := &models.Review{ID: "review1", ProfileID: "profile1"}

	ok, _ := check(other, authz.ActionRead, rsvp)
	assert.True(t, ok)

	ok, _ = check(owner, authz.ActionWrite, rsvp)
	assert.True(t, ok)

	ok, _ = check(other, authz.ActionWrite, rsvp)
	assert.False(t, ok)

	ok, _ = check(owner, authz.ActionWrite, review)
	assert.True(t, ok)

	ok, _ = check(owner, authz.ActionWrite, "not an owned entity")
	assert.False(t, ok, "subjects without an owner are denied writes")
}

func TestInvitedForPrivateEvent(t *testing.T) {
	finder := &mockRSVPFinder{invited: map[string]bool{"event1/profile2": true}}
	check := authz.InvitedForPrivateEvent(finder)

	public := &models.Event{ID: "event0", OrganizerID: "profile1", IsPublic: true}
	private := &models.Event{ID: "event1", OrganizerID: "profile1", IsPublic: false}

	organizer := authz.Identity{UserID: "user1", ProfileID: "profile1"}
	invited := authz.Identity{UserID: "user2", ProfileID: "profile2"}
	stranger := authz.Identity{UserID: "user3", ProfileID: "profile3"}

	ok, _ := check(authz.Identity{}, authz.ActionRead, public)
	assert.True(t, ok, "public events are visible to everyone")

	ok, _ = check(authz.Identity{}, authz.ActionRead, private)
	assert.False(t, ok, "private events are invisible to anonymous callers")

	ok, _ = check(organizer, authz.ActionRead, private)
	assert.True(t, ok)

	ok, _ = check(invited, authz.ActionRead, private)
	assert.True(t, ok, "an RSVP on the event grants visibility")

	ok, _ = check(stranger, authz.ActionRead, private)
	assert.False(t, ok)
}

func TestPipelineConjunction(t *testing.T) {
	calls := 0
	allow := func(authz.Identity, authz.Action, any) (bool, error) {
		calls++
		return true, nil
	}
	deny := func(authz.Identity, authz.Action, any) (bool, error) {
		calls++
		return false, nil
	}

	pipeline := authz.Pipeline{allow, deny, allow}
	ok, err := pipeline.Allow(authz.Identity{}, authz.ActionRead, nil)
	assert.NoError(t, err)
	assert.False(t, ok, "any single deny short-circuits to deny")
	assert.Equal(t, 2, calls, "checks after the deny must not run")

	calls = 0
	pipeline = authz.Pipeline{allow, allow}
	ok, err = pipeline.Allow(authz.Identity{}, authz.ActionRead, nil)
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 2, calls)
}

func TestPipelinePropagatesErrors(t *testing.T) {
	finder := &mockRSVPFinder{shouldFailOn: "HasRSVP", errorMsg: "db unavailable"}
	pipeline := authz.Pipeline{authz.InvitedForPrivateEvent(finder)}

	private := &models.Event{ID: "event1", OrganizerID: "profile1", IsPublic: false}
	viewer := authz.Identity{UserID: "user2", ProfileID: "profile2"}

	ok, err := pipeline.Allow(viewer, authz.ActionRead, private)
	assert.Error(t, err)
	assert.False(t, ok)
}
