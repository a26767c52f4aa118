package authz

import (
	"event-hub/internal/models"
)

type Action int

const (
	ActionRead Action = iota
	ActionWrite
)

// Identity is the resolved caller of a request. A zero Identity is
// anonymous. It is passed explicitly to every check; there is no ambient
// request-scoped user.
type Identity struct {
	UserID    string
	ProfileID string
	Profile   *models.Profile
}

func (i Identity) Anonymous() bool {
	return i.UserID == ""
}

// Check is a single object-level permission predicate.
type Check func(ident Identity, action Action, subject any) (bool, error)

// Pipeline evaluates checks in order as a conjunction. Any single deny
// short-circuits to deny.
type Pipeline []Check

func (p Pipeline) Allow(ident Identity, action Action, subject any) (bool, error) {
	for _, check := range p {
		ok, err := check(ident, action, subject)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

// AuthenticatedOrReadOnly permits reads for everyone and writes only for
// authenticated callers.
func AuthenticatedOrReadOnly() Check {
	return func(ident Identity, action Action, subject any) (bool, error) {
		if action == ActionRead {
			return true, nil
		}
		return !ident.Anonymous(), nil
	}
}

// OrganizerOrReadOnly permits event writes only for the event's organizer.
// Non-event subjects pass through.
func OrganizerOrReadOnly() Check {
	return func(ident Identity, action Action, subject any) (bool, error) {
		if action == ActionRead {
			return true, nil
		}
		event, ok := subject.(*models.Event)
		if !ok {
			return true, nil
		}
		return !ident.Anonymous() && event.OrganizerID == ident.ProfileID, nil
	}
}

// OwnerOrReadOnly permits writes on an RSVP or Review only for the profile
// that owns it. Subjects without an owner are denied writes.
func OwnerOrReadOnly() Check {
	return func(ident Identity, action Action, subject any) (bool, error) {
		if action == ActionRead {
			return true, nil
		}
		if ident.Anonymous() {
			return false, nil
		}
		switch obj := subject.(type) {
		case *models.RSVP:
			return obj.ProfileID == ident.ProfileID, nil
		case *models.Review:
			return obj.ProfileID == ident.ProfileID, nil
		}
		return false, nil
	}
}

// RSVPFinder reports whether a profile holds any RSVP on an event. The
// invitation check consults it for private events.
type RSVPFinder interface {
	HasRSVP(eventID, profileID string) (bool, error)
}

// InvitedForPrivateEvent gates visibility of private events: the event
// must be public, or the caller its organizer, or an authenticated caller
// holding an RSVP on it. Non-event subjects pass through.
func InvitedForPrivateEvent(rsvps RSVPFinder) Check {
	return func(ident Identity, action Action, subject any) (bool, error) {
		event, ok := subject.(*models.Event)
		if !ok {
			return true, nil
		}
		if event.IsPublic {
			return true, nil
		}
		if ident.Anonymous() {
			return false, nil
		}
		if event.OrganizerID == ident.ProfileID {
			return true, nil
		}
		return rsvps.HasRSVP(event.ID, ident.ProfileID)
	}
}
