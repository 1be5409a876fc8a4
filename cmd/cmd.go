package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"foodlink-backend/internal/config"
	"foodlink-backend/internal/events"
	"foodlink-backend/internal/handlers"
	"foodlink-backend/internal/middleware"
	"foodlink-backend/internal/models"
	"foodlink-backend/internal/repository"
	"foodlink-backend/internal/repository/memory"
	"foodlink-backend/internal/repository/postgres"
	"foodlink-backend/internal/services"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func Run() {
	// Load configuration
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Setup logger
	setupLogger(cfg.Log.Level)

	// Open the store. It lives for the whole process and is injected
	// into every component; nothing opens its own connection.
	var (
		store       repository.Store
		donations   repository.DonationRepository
		acceptances repository.AcceptanceRepository
	)
	switch cfg.Storage.Backend {
	case "memory":
		memStore := memory.NewStore()
		store = memStore
		donations = memStore.Donations()
		acceptances = memStore.Acceptances()
		log.Warn().Msg("Using in-memory storage, data will not survive restarts")
	default:
		pool, err := pgxpool.New(context.Background(), cfg.Database.DSN())
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to database")
		}
		defer pool.Close()

		if err := pool.Ping(context.Background()); err != nil {
			log.Fatal().Err(err).Msg("Failed to ping database")
		}
		log.Info().Msg("Database connection established")

		db := postgres.NewDB(pool)
		store = db
		donations = postgres.NewDonationRepository(db)
		acceptances = postgres.NewAcceptanceRepository(db)
	}

	// Lifecycle event publisher
	var publisher events.Publisher = events.NopPublisher{}
	if cfg.Kafka.Enabled {
		publisher = events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		log.Info().Strs("brokers", cfg.Kafka.Brokers).Str("topic", cfg.Kafka.Topic).Msg("Kafka event publishing enabled")
	}

	// Initialize services
	donationService := services.NewDonationService(donations, publisher)
	listingService := services.NewListingService(donations)
	acceptanceService := services.NewAcceptanceService(store, donations, acceptances, publisher)
	photoService, err := services.NewPhotoService(
		cfg.AWS.Region,
		cfg.AWS.S3Bucket,
		cfg.AWS.AccessKey,
		cfg.AWS.SecretKey,
		cfg.AWS.Endpoint,
	)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create photo service")
	}

	// Initialize handlers
	donationHandler := handlers.NewDonationHandler(donationService, listingService, acceptanceService)
	photoHandler := handlers.NewPhotoHandler(photoService)

	// Setup router
	r := chi.NewRouter()

	// Middleware
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(corsMiddleware)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	// Routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.AuthMiddleware(cfg.JWT.Secret))

		r.Get("/donations", donationHandler.ListDonations)
		r.Get("/donations/{donation_id}", donationHandler.GetDonation)

		// Donor-only routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(models.RoleDonor))
			r.Post("/donations", donationHandler.CreateDonation)
			r.Delete("/donations/{donation_id}", donationHandler.CancelDonation)
			r.Post("/photos/upload-url", photoHandler.CreateUploadURL)
		})

		// Volunteer-only routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(models.RoleVolunteer))
			r.Post("/donations/{donation_id}/accept", donationHandler.AcceptDonation)
			r.Post("/donations/{donation_id}/complete", donationHandler.CompleteDonation)
		})
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("host", cfg.Server.Host).
			Int("port", cfg.Server.Port).
			Str("storage", cfg.Storage.Backend).
			Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	if err := publisher.Close(); err != nil {
		log.Error().Err(err).Msg("Failed to close event publisher")
	}

	log.Info().Msg("Server exited")
}

// setupLogger configures zerolog logger
func setupLogger(level string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

// corsMiddleware handles CORS
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
