package event_api_test

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"event-hub/internal/auth"
	"event-hub/internal/authz"
	"event-hub/internal/events"
	eventdb "event-hub/internal/events/db"
	"event-hub/internal/events/event_api"
	"event-hub/internal/kafka"
	"event-hub/internal/logger"
	"event-hub/internal/models"
	"event-hub/internal/profile"
	profiledb "event-hub/internal/profile/db"
	"event-hub/internal/review"
	reviewdb "event-hub/internal/review/db"
	"event-hub/internal/review/review_api"
	"event-hub/internal/rsvp"
	rsvpdb "event-hub/internal/rsvp/db"
	"event-hub/internal/rsvp/rsvp_api"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

// testUserHeader stands in for the JWT middleware: the value is stashed
// in the context the same way auth.Required does in production.
const testUserHeader = "X-Test-User"

func optionalTestAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if userID := r.Header.Get(testUserHeader); userID != "" {
			r = r.WithContext(auth.WithUserID(r.Context(), userID))
		}
		next.ServeHTTP(w, r)
	})
}

func requiredTestAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := r.Header.Get(testUserHeader)
		if userID == "" {
			http.Error(w, "Authentication required", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r.WithContext(auth.WithUserID(r.Context(), userID)))
	})
}

type testApp struct {
	router *chi.Mux
	bunDB  *bun.DB
}

func setupTestApp(t *testing.T) *testApp {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, "file::memory:?cache=shared")
	if err != nil {
		t.Fatalf("Failed to open sqlite: %v", err)
	}
	bunDB := bun.NewDB(sqldb, sqlitedialect.New())

	ctx := context.Background()
	for _, model := range []interface{}{
		(*models.Profile)(nil),
		(*models.Event)(nil),
		(*models.RSVP)(nil),
		(*models.Review)(nil),
	} {
		if err := bunDB.ResetModel(ctx, model); err != nil {
			t.Fatalf("Failed to reset model %T: %v", model, err)
		}
	}

	profiles := []models.Profile{
		{ID: "profile-organizer", UserID: "user-organizer", FullName: "Olga Organizer", CreatedAt: time.Now()},
		{ID: "profile-guest", UserID: "user-guest", FullName: "Gary Guest", CreatedAt: time.Now()},
	}
	if _, err := bunDB.NewInsert().Model(&profiles).Exec(ctx); err != nil {
		t.Fatalf("Failed to seed profiles: %v", err)
	}

	log := &logger.Logger{}
	var notifier *kafka.Notifier // disabled, same as running without brokers

	eventDB := &eventdb.DB{Bun: bunDB}
	profileDB := &profiledb.DB{Bun: bunDB}
	rsvpDB := &rsvpdb.DB{Bun: bunDB}
	reviewDB := &reviewdb.DB{Bun: bunDB}

	profileService := profile.NewService(profileDB)
	resolver := authz.NewResolver(profileService)
	eventService := events.NewEventService(eventDB, notifier)
	rsvpService := rsvp.NewRSVPService(rsvpDB, eventDB, notifier)
	reviewService := review.NewReviewService(reviewDB, eventDB, notifier)

	eventHandler := event_api.NewHandler(eventService, resolver, log)
	rsvpHandler := rsvp_api.NewHandler(rsvpService, resolver, log)
	reviewHandler := review_api.NewHandler(reviewService, resolver, log)

	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(optionalTestAuth)
			r.Get("/events/", eventHandler.ListEvents)
			r.Get("/events/{eventId}/", eventHandler.GetEvent)
			r.Get("/events/{eventId}/reviews/", reviewHandler.ListReviews)
			r.Get("/events/{eventId}/reviews/{reviewId}/", reviewHandler.GetReview)
		})
		r.Group(func(r chi.Router) {
			r.Use(requiredTestAuth)
			r.Post("/events/", eventHandler.CreateEvent)
			r.Put("/events/{eventId}/", eventHandler.UpdateEvent)
			r.Delete("/events/{eventId}/", eventHandler.DeleteEvent)
			r.Get("/events/{eventId}/rsvp/", rsvpHandler.GetOwnRSVP)
			r.Post("/events/{eventId}/rsvp/", rsvpHandler.SetRSVP)
			r.Get("/events/{eventId}/rsvps/", rsvpHandler.ListRSVPs)
			r.Post("/events/{eventId}/reviews/", reviewHandler.CreateReview)
		})
	})

	return &testApp{router: r, bunDB: bunDB}
}

func (app *testApp) request(t *testing.T, method, path, userID string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("Failed to encode request body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	if userID != "" {
		req.Header.Set(testUserHeader, userID)
	}

	rec := httptest.NewRecorder()
	app.router.ServeHTTP(rec, req)
	return rec
}

func (app *testApp) createEvent(t *testing.T, userID string, isPublic bool) string {
	t.Helper()

	start := time.Now().Add(24 * time.Hour)
	rec := app.request(t, "POST", "/api/events/", userID, map[string]interface{}{
		"title":      "Test Event",
		"location":   "The Hall",
		"start_time": start.Format(time.RFC3339),
		"end_time":   start.Add(2 * time.Hour).Format(time.RFC3339),
		"is_public":  isPublic,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("Failed to create event: status %d, body %s", rec.Code, rec.Body.String())
	}

	var created models.EventResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("Failed to decode created event: %v", err)
	}
	return created.ID
}

func TestCreateEventAssignsCallerAsOrganizer(t *testing.T) {
	app := setupTestApp(t)

	eventID := app.createEvent(t, "user-organizer", true)

	rec := app.request(t, "GET", fmt.Sprintf("/api/events/%s/", eventID), "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	var event models.EventResponse
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &event))
	assert.Equal(t, "profile-organizer", event.OrganizerID)
}

func TestCreateEventRequiresAuthentication(t *testing.T) {
	app := setupTestApp(t)

	rec := app.request(t, "POST", "/api/events/", "", map[string]interface{}{"title": "Nope"})

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAnonymousListShowsOnlyPublicEvents(t *testing.T) {
	app := setupTestApp(t)
	app.createEvent(t, "user-organizer", true)
	app.createEvent(t, "user-organizer", false)

	rec := app.request(t, "GET", "/api/events/", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	var listed []models.EventResponse
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
	assert.Len(t, listed, 1)
	assert.True(t, listed[0].IsPublic)
}

func TestPrivateEventVisibilityLifecycle(t *testing.T) {
	app := setupTestApp(t)
	eventID := app.createEvent(t, "user-organizer", false)
	path := fmt.Sprintf("/api/events/%s/", eventID)

	// A stranger cannot tell the private event exists.
	rec := app.request(t, "GET", path, "user-guest", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// The organizer sees it.
	rec = app.request(t, "GET", path, "user-organizer", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	// RSVPing grants visibility even though the event was hidden.
	rec = app.request(t, "POST", fmt.Sprintf("/api/events/%s/rsvp/", eventID), "user-guest", map[string]string{"status": "going"})
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = app.request(t, "GET", path, "user-guest", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	// And the event now shows up in the guest's list.
	rec = app.request(t, "GET", "/api/events/", "user-guest", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	var listed []models.EventResponse
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
	assert.Len(t, listed, 1)
}

func TestUpdateEventForbiddenForNonOrganizer(t *testing.T) {
	app := setupTestApp(t)
	eventID := app.createEvent(t, "user-organizer", true)

	rec := app.request(t, "PUT", fmt.Sprintf("/api/events/%s/", eventID), "user-guest", map[string]string{"title": "Hijacked"})

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestDeleteEventCascadesThroughAPI(t *testing.T) {
	app := setupTestApp(t)
	eventID := app.createEvent(t, "user-organizer", true)

	rec := app.request(t, "POST", fmt.Sprintf("/api/events/%s/rsvp/", eventID), "user-guest", map[string]string{"status": "going"})
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = app.request(t, "POST", fmt.Sprintf("/api/events/%s/reviews/", eventID), "user-guest", map[string]interface{}{"rating": 5})
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = app.request(t, "DELETE", fmt.Sprintf("/api/events/%s/", eventID), "user-organizer", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = app.request(t, "GET", fmt.Sprintf("/api/events/%s/", eventID), "user-organizer", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	ctx := context.Background()
	rsvpCount, err := app.bunDB.NewSelect().Model((*models.RSVP)(nil)).Where("event_id = ?", eventID).Count(ctx)
	assert.NoError(t, err)
	assert.Zero(t, rsvpCount)
	reviewCount, err := app.bunDB.NewSelect().Model((*models.Review)(nil)).Where("event_id = ?", eventID).Count(ctx)
	assert.NoError(t, err)
	assert.Zero(t, reviewCount)
}

func TestRSVPUpsertAndSentinelThroughAPI(t *testing.T) {
	app := setupTestApp(t)
	eventID := app.createEvent(t, "user-organizer", true)
	rsvpPath := fmt.Sprintf("/api/events/%s/rsvp/", eventID)

	// No stored RSVP reads as the bare "not_going" payload.
	rec := app.request(t, "GET", rsvpPath, "user-guest", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"not_going"}`, rec.Body.String())

	// Empty status defaults to "going".
	rec = app.request(t, "POST", rsvpPath, "user-guest", map[string]string{})
	assert.Equal(t, http.StatusCreated, rec.Code)
	var first models.RSVP
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &first))
	assert.Equal(t, models.RSVPGoing, first.Status)

	// A second POST updates the same row instead of adding one.
	rec = app.request(t, "POST", rsvpPath, "user-guest", map[string]string{"status": "maybe"})
	assert.Equal(t, http.StatusCreated, rec.Code)
	var second models.RSVP
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &second))
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, models.RSVPMaybe, second.Status)

	count, err := app.bunDB.NewSelect().Model((*models.RSVP)(nil)).Where("event_id = ?", eventID).Count(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestSecondReviewIsRejectedThroughAPI(t *testing.T) {
	app := setupTestApp(t)
	eventID := app.createEvent(t, "user-organizer", true)
	reviewPath := fmt.Sprintf("/api/events/%s/reviews/", eventID)

	rec := app.request(t, "POST", reviewPath, "user-guest", map[string]interface{}{"rating": 4, "comment": "Nice"})
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = app.request(t, "POST", reviewPath, "user-guest", map[string]interface{}{"rating": 5})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// The original review is untouched and readable anonymously.
	rec = app.request(t, "GET", reviewPath, "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	var reviews []models.Review
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &reviews))
	assert.Len(t, reviews, 1)
	assert.Equal(t, 4, reviews[0].Rating)
}
