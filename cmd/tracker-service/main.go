package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/spf13/afero"
	"github.com/tfshrms/worktracker/internal/tracker/consumers"
	"github.com/tfshrms/worktracker/internal/tracker/domain"
	"github.com/tfshrms/worktracker/internal/tracker/events"
	"github.com/tfshrms/worktracker/internal/tracker/handler"
	"github.com/tfshrms/worktracker/internal/tracker/repository"
	"github.com/tfshrms/worktracker/internal/tracker/service"
	"github.com/tfshrms/worktracker/migrations"
	"github.com/tfshrms/worktracker/pkg/auth"
	"github.com/tfshrms/worktracker/pkg/config"
	"github.com/tfshrms/worktracker/pkg/database"
	"github.com/tfshrms/worktracker/pkg/filestore"
	"github.com/tfshrms/worktracker/pkg/httputil"
	"github.com/tfshrms/worktracker/pkg/logger"
	"github.com/tfshrms/worktracker/pkg/messaging"
)

const serviceName = "tracker-service"

func main() {
	// Load configuration
	cfg, err := config.LoadWithValidation(serviceName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(serviceName, cfg.Server.Environment)
	log.Info().Msg("starting Tracker Service")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Connect to database
	db, err := database.New(&cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	if err := migrations.Apply(ctx, db.DB); err != nil {
		log.Fatal().Err(err).Msg("failed to apply migrations")
	}

	// Connect to RabbitMQ
	rmq, err := messaging.New(&cfg.RabbitMQ, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to RabbitMQ")
	}
	defer rmq.Close()

	if err := rmq.DeclareDeadLetterQueue(serviceName); err != nil {
		log.Fatal().Err(err).Msg("failed to declare dead letter queue")
	}

	// Initialize event publisher
	amqpPublisher, err := messaging.NewPublisher(rmq, cfg.RabbitMQ.Exchange, serviceName, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create event publisher")
	}
	publisher := events.NewTrackerEventPublisher(amqpPublisher, log)

	// Initialize repositories
	loc := cfg.Tracking.Location()
	employeeRepo := repository.NewEmployeeRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	trackerRepo := repository.NewTrackerRepository(db)
	targetRepo := repository.NewMonthlyTargetRepository(db, loc.String())
	apiCallRepo := repository.NewAPICallLogRepository(db)

	files := filestore.New(afero.NewOsFs(), cfg.Uploads.RootDir, cfg.Uploads.PublicBaseURL)

	// Initialize services
	visibilityService := service.NewVisibilityService(employeeRepo, domain.NewVisibilityResolver(cfg.Tracking.ElevatedRoles), log)
	trackerService := service.NewTrackerService(db, employeeRepo, taskRepo, trackerRepo, files, publisher, log)
	reportService := service.NewReportService(visibilityService, trackerRepo, targetRepo, files, publisher, loc, log)
	targetService := service.NewMonthlyTargetService(db, employeeRepo, targetRepo, publisher, loc, log)

	// Initialize handlers
	trackerHandler := handler.NewTrackerHandler(trackerService, reportService, log)
	targetHandler := handler.NewMonthlyTargetHandler(targetService, log)

	// Start API call consumer
	apiCallConsumer, err := consumers.NewAPICallConsumer(rmq, cfg.RabbitMQ.Exchange, cfg.RabbitMQ.APICallQueue, apiCallRepo, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create api call consumer")
	}
	if err := apiCallConsumer.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to start api call consumer")
	}

	// Create router
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RealIP)
	r.Use(httputil.RequestID)
	r.Use(httputil.Logger(log))
	r.Use(httputil.Recoverer(log))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID", "X-User-ID", "X-Device-ID", "X-Device-Type"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httputil.JSON(w, http.StatusOK, map[string]interface{}{
			"status":   "healthy",
			"service":  serviceName,
			"database": db.Health(r.Context()),
			"rabbitmq": rmq.Health(),
		})
	})

	// Uploaded attachments, when served from a local path
	if base := cfg.Uploads.PublicBaseURL; len(base) > 1 && base[0] == '/' {
		r.Handle(base+"/*", http.StripPrefix(base, http.FileServer(http.Dir(cfg.Uploads.RootDir))))
	}

	// API routes
	verifier := auth.NewVerifier(&cfg.JWT)
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(auth.Middleware(verifier, cfg.JWT.Required, log))
		trackerHandler.RegisterRoutes(r)
		targetHandler.RegisterRoutes(r)
	})

	// Create server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server
	go func() {
		log.Info().Str("addr", addr).Str("timezone", loc.String()).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	// Stop consumers
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}
