package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/stemsi/unierp-backend/internal/config"
	"github.com/stemsi/unierp-backend/internal/database"
	"github.com/stemsi/unierp-backend/internal/handler"
	"github.com/stemsi/unierp-backend/internal/logger"
	"github.com/stemsi/unierp-backend/internal/middleware"
	"github.com/stemsi/unierp-backend/internal/model"
	"github.com/stemsi/unierp-backend/internal/registration"
	"github.com/stemsi/unierp-backend/internal/repository"
	"github.com/stemsi/unierp-backend/internal/router"
	"github.com/stemsi/unierp-backend/internal/service"
	"github.com/stemsi/unierp-backend/internal/validator"
	"github.com/stemsi/unierp-backend/internal/worker"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)

	mode, err := registration.ParseMode(cfg.PrerequisiteMode)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid PREREQUISITE_MODE")
	}

	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Int("credit_ceiling", cfg.CreditCeiling).
		Str("prerequisite_mode", string(mode)).
		Bool("enforce_capacity", cfg.EnforceCapacity).
		Msg("Starting UniERP Backend")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Connect to Redis ──────────────────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	// ─── Initialize Repositories ───────────────────────────────────────
	userRepo := repository.NewUserRepository(pool)
	courseRepo := repository.NewCourseRepository(pool)
	offeringRepo := repository.NewOfferingRepository(pool)
	enrollmentRepo := repository.NewEnrollmentRepository(pool)
	assignmentRepo := repository.NewAssignmentRepository(pool)
	announcementRepo := repository.NewAnnouncementRepository(pool)
	dashboardRepo := repository.NewDashboardRepository(pool)
	eventRepo := repository.NewEnrollmentEventRepository(pool)
	store := repository.NewRegistrationStore(pool)

	// ─── Initialize Services ──────────────────────────────────────────
	regValidator := registration.NewValidator(store, registration.Options{
		CreditCeiling:    cfg.CreditCeiling,
		PrerequisiteMode: mode,
		EnforceCapacity:  cfg.EnforceCapacity,
	})
	publisher := service.NewRedisEventPublisher(rdb)

	authService := service.NewAuthService(cfg)
	registrationService := service.NewRegistrationService(regValidator, userRepo, publisher, log)
	catalogService := service.NewCatalogService(courseRepo, offeringRepo, userRepo, rdb, cfg.CatalogCacheTTL, log)
	enrollmentService := service.NewEnrollmentService(enrollmentRepo, offeringRepo, eventRepo, publisher, log)
	assignmentService := service.NewAssignmentService(assignmentRepo, offeringRepo, enrollmentRepo, log)
	announcementService := service.NewAnnouncementService(announcementRepo, offeringRepo, log)
	dashboardService := service.NewDashboardService(dashboardRepo, enrollmentRepo, assignmentRepo, announcementRepo, store, cfg.CreditCeiling)
	userService := service.NewUserService(userRepo, log)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Catalog:      handler.NewCatalogHandler(catalogService),
		Registration: handler.NewRegistrationHandler(registrationService),
		Enrollment:   handler.NewEnrollmentHandler(enrollmentService),
		Assignment:   handler.NewAssignmentHandler(assignmentService),
		Announcement: handler.NewAnnouncementHandler(announcementService),
		Dashboard:    handler.NewDashboardHandler(dashboardService),
		User:         handler.NewUserHandler(userService),
		WS:           handler.NewWSHandler(rdb, log, cfg.AllowedOrigins),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())
	var workers sync.WaitGroup

	eventWorker := worker.NewEnrollmentEventWorker(
		worker.NewRedisQueue(rdb, config.WorkerKey.EnrollmentEventsQueue),
		eventRepo,
		log,
	)
	workers.Add(1)
	go func() {
		defer workers.Done()
		eventWorker.Start(workerCtx)
	}()

	// ─── Prewarm Redis Caches ─────────────────────────────────────────
	semester, year := model.TermOf(time.Now())
	catalogService.PrewarmOfferings(ctx, semester, year)

	// ─── Setup Router ──────────────────────────────────────────────────
	limiter := middleware.NewRateLimiter(cfg.RateLimitPerMinute, time.Minute)
	defer limiter.Stop()

	r := router.SetupRouter(authService, handlers, cfg, limiter, log)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// 1. Stop accepting new HTTP requests (5s timeout).
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}
	cancel()

	// 2. Stop the event worker and wait for its queue to drain.
	workerCancel()
	workers.Wait()

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
