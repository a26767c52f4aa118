package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"event-hub/internal/auth"
	"event-hub/internal/auth/auth_api"
	authdb "event-hub/internal/auth/db"
	"event-hub/internal/authz"
	"event-hub/internal/config"
	"event-hub/internal/events"
	eventdb "event-hub/internal/events/db"
	"event-hub/internal/events/event_api"
	"event-hub/internal/kafka"
	"event-hub/internal/logger"
	"event-hub/internal/profile"
	profiledb "event-hub/internal/profile/db"
	"event-hub/internal/profile/profile_api"
	"event-hub/internal/review"
	reviewdb "event-hub/internal/review/db"
	"event-hub/internal/review/review_api"
	"event-hub/internal/rsvp"
	rsvpdb "event-hub/internal/rsvp/db"
	"event-hub/internal/rsvp/rsvp_api"
)

func verifyConnections(ctx context.Context, cfg *config.Config, logger *logger.Logger) (*bun.DB, *redis.Client) {
	var sqldb *sql.DB
	var err error
	maxRetries := 5

	for i := 0; i < maxRetries; i++ {
		logger.Info("DATABASE", fmt.Sprintf("Attempting to connect to PostgreSQL (attempt %d/%d)", i+1, maxRetries))
		connector := pgdriver.NewConnector(pgdriver.WithDSN(cfg.Database.DSN))
		sqldb = sql.OpenDB(connector)

		err = sqldb.PingContext(ctx)
		if err == nil {
			break
		}

		logger.Error("DATABASE", fmt.Sprintf("Failed to connect to PostgreSQL: %v", err))
		if i < maxRetries-1 {
			time.Sleep(2 * time.Second)
		}
	}

	if err != nil {
		logger.Fatal("DATABASE", fmt.Sprintf("Failed to connect to PostgreSQL after %d attempts: %v", maxRetries, err))
	}

	sqldb.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqldb.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqldb.SetConnMaxLifetime(cfg.Database.MaxLifetime)

	logger.Info("DATABASE", "✅ PostgreSQL connection successful")

	bunDB := bun.NewDB(sqldb, pgdialect.New())

	redisClient := redis.NewClient(&redis.Options{
		Addr: cfg.Redis.Addr,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Fatal("DATABASE", fmt.Sprintf("Redis connection error: %v", err))
	}
	logger.Info("DATABASE", fmt.Sprintf("✅ Redis connection successful to %s", cfg.Redis.Addr))

	return bunDB, redisClient
}

func main() {
	logger := logger.NewLogger()
	defer logger.Close()

	logger.Info("APP", "Starting Event Hub API initialization")

	if err := godotenv.Load(); err != nil {
		logger.Warn("CONFIG", ".env file not found, using environment variables")
	} else {
		logger.Info("CONFIG", "Loaded environment variables from .env file")
	}

	cfg := config.Load()
	ctx := context.Background()

	logger.Info("APP", "Verifying database connections")
	bunDB, redisClient := verifyConnections(ctx, cfg, logger)
	defer bunDB.Close()
	defer redisClient.Close()

	var notifier *kafka.Notifier
	if cfg.Kafka.Enabled {
		logger.Info("KAFKA", fmt.Sprintf("Using Kafka brokers: %v", cfg.Kafka.Brokers))
		producer := kafka.NewProducer(cfg.Kafka.Brokers)
		defer producer.Close()

		requiredTopics := []string{
			cfg.Kafka.Topics.EventCreated,
			cfg.Kafka.Topics.EventUpdated,
			cfg.Kafka.Topics.EventDeleted,
			cfg.Kafka.Topics.RSVPUpdated,
			cfg.Kafka.Topics.ReviewCreated,
		}
		if err := kafka.EnsureTopicsExist(cfg.Kafka.Brokers, requiredTopics); err != nil {
			logger.Warn("KAFKA", fmt.Sprintf("Topic creation might have failed: %v", err))
		} else {
			logger.Info("KAFKA", "Required topics ensured successfully")
		}

		notifier = kafka.NewNotifier(producer, cfg.Kafka.Topics)
	} else {
		logger.Warn("KAFKA", "Kafka disabled, engagement notifications will not be published")
	}

	issuer := auth.NewTokenIssuer(cfg.Auth.Secret, cfg.Auth.AccessTTL, cfg.Auth.RefreshTTL)
	refreshStore := auth.NewRefreshStore(redisClient)

	profileService := profile.NewService(&profiledb.DB{Bun: bunDB})
	authService := auth.NewService(&authdb.DB{Bun: bunDB}, profileService, issuer, refreshStore)
	resolver := authz.NewResolver(profileService)

	eventsDB := &eventdb.DB{Bun: bunDB}
	eventService := events.NewEventService(eventsDB, notifier)
	rsvpService := rsvp.NewRSVPService(&rsvpdb.DB{Bun: bunDB}, eventsDB, notifier)
	reviewService := review.NewReviewService(&reviewdb.DB{Bun: bunDB}, eventsDB, notifier)

	authHandler := auth_api.NewHandler(authService, logger)
	profileHandler := profile_api.NewHandler(profileService, logger)
	eventHandler := event_api.NewHandler(eventService, resolver, logger)
	rsvpHandler := rsvp_api.NewHandler(rsvpService, resolver, logger)
	reviewHandler := review_api.NewHandler(reviewService, resolver, logger)

	logger.Info("HTTP", "Setting up router and middleware")
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	}))

	r.Route("/api", func(r chi.Router) {
		// --- Identity surface ---
		r.Post("/register/", authHandler.Register)
		r.Post("/token/", authHandler.Token)
		r.Post("/token/refresh/", authHandler.TokenRefresh)
		r.Post("/token/verify/", authHandler.TokenVerify)
		logger.Info("ROUTER", "Identity routes registered under /api")

		// --- Read routes: anonymous callers see public data ---
		r.Group(func(r chi.Router) {
			r.Use(auth.Optional(issuer))
			r.Get("/events/", eventHandler.ListEvents)
			r.Get("/events/{eventId}/", eventHandler.GetEvent)
			r.Get("/events/{eventId}/reviews/", reviewHandler.ListReviews)
			r.Get("/events/{eventId}/reviews/{reviewId}/", reviewHandler.GetReview)
		})
		logger.Info("ROUTER", "Public read routes registered under /api/events")

		// --- Protected routes ---
		r.Group(func(r chi.Router) {
			r.Use(auth.Required(issuer))
			logger.Info("AUTH", "JWT middleware applied to protected API routes")

			r.Post("/events/", eventHandler.CreateEvent)
			r.Put("/events/{eventId}/", eventHandler.UpdateEvent)
			r.Patch("/events/{eventId}/", eventHandler.UpdateEvent)
			r.Delete("/events/{eventId}/", eventHandler.DeleteEvent)

			r.Get("/events/{eventId}/rsvp/", rsvpHandler.GetOwnRSVP)
			r.Post("/events/{eventId}/rsvp/", rsvpHandler.SetRSVP)
			r.Get("/events/{eventId}/rsvp/pass/", rsvpHandler.GetPass)
			r.Get("/events/{eventId}/rsvps/", rsvpHandler.ListRSVPs)
			r.Get("/events/{eventId}/rsvps/{rsvpId}/", rsvpHandler.GetRSVP)
			r.Put("/events/{eventId}/rsvps/{rsvpId}/", rsvpHandler.UpdateRSVP)
			r.Delete("/events/{eventId}/rsvps/{rsvpId}/", rsvpHandler.DeleteRSVP)

			r.Post("/events/{eventId}/reviews/", reviewHandler.CreateReview)
			r.Put("/events/{eventId}/reviews/{reviewId}/", reviewHandler.UpdateReview)
			r.Delete("/events/{eventId}/reviews/{reviewId}/", reviewHandler.DeleteReview)

			r.Get("/profile/", profileHandler.GetOwnProfile)
			r.Put("/profile/", profileHandler.UpdateOwnProfile)
		})
		logger.Info("ROUTER", "Event, RSVP and review routes registered under /api/events")
	})

	server := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logger.Info("HTTP", fmt.Sprintf("🚀 Event Hub API running on %s", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP", fmt.Sprintf("HTTP server error: %v", err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	logger.Info("APP", "Service started successfully, waiting for shutdown signal")
	<-stop

	logger.Info("APP", "Shutdown signal received, initiating graceful shutdown")
	ctxShutdown, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctxShutdown); err != nil {
		logger.Error("HTTP", fmt.Sprintf("Server Shutdown Failed: %v", err))
	} else {
		logger.Info("HTTP", "✅ Event Hub API shutdown complete")
	}
}
