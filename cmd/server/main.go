package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/careacademy/academy-backend/internal/config"
	"github.com/careacademy/academy-backend/internal/database"
	"github.com/careacademy/academy-backend/internal/feed"
	"github.com/careacademy/academy-backend/internal/handler"
	"github.com/careacademy/academy-backend/internal/logger"
	"github.com/careacademy/academy-backend/internal/mail"
	"github.com/careacademy/academy-backend/internal/middleware"
	"github.com/careacademy/academy-backend/internal/repository"
	"github.com/careacademy/academy-backend/internal/router"
	"github.com/careacademy/academy-backend/internal/scheduler"
	"github.com/careacademy/academy-backend/internal/service"
	"github.com/careacademy/academy-backend/internal/validator"
	"github.com/careacademy/academy-backend/internal/worker"
	"github.com/rs/zerolog"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Msg("Starting Academy Backend")

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
	profileRepo := repository.NewProfileRepository(pool)
	categoryRepo := repository.NewCategoryRepository(pool)
	courseRepo := repository.NewCourseRepository(pool)
	intakeRepo := repository.NewIntakeRepository(pool)
	enrollmentRepo := repository.NewEnrollmentRepository(pool)
	paymentRepo := repository.NewPaymentRepository(pool)
	refundRepo := repository.NewRefundRepository(pool)
	contactRepo := repository.NewContactRepository(pool)
	settingRepo := repository.NewSettingRepository(pool)
	dashboardRepo := repository.NewDashboardRepository(pool)

	// ─── Mail & Live Feed ──────────────────────────────────────────────
	mailQueue := mail.NewQueue(rdb, config.WorkerKey.MailQueue)
	renderer, err := mail.NewRenderer(cfg.MailFromName, cfg.FrontendBaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to parse mail templates")
	}
	var sender mail.Sender
	if cfg.SendgridAPIKey != "" {
		sender = mail.NewSendGridSender(cfg.SendgridAPIKey, cfg.MailFromName, cfg.MailFromAddress)
	} else {
		log.Warn().Msg("SENDGRID_API_KEY not set, emails are logged instead of sent")
		sender = mail.NewConsoleSender(log)
	}
	feedPublisher := feed.NewPublisher(rdb, config.CacheKey.AdminFeedChannel())

	// ─── Initialize Services ──────────────────────────────────────────
	authService := service.NewAuthService(cfg, profileRepo, service.NewRedisRevocationStore(rdb))
	catalogCache := service.NewRedisCatalogCache(rdb, cfg.CatalogCacheTTL)
	catalogService := service.NewCatalogService(categoryRepo, courseRepo, intakeRepo, catalogCache, log)
	intakeService := service.NewIntakeService(intakeRepo, catalogService)
	enrollmentService := service.NewEnrollmentService(
		enrollmentRepo, intakeRepo, mailQueue, feedPublisher, catalogService, cfg.AdminNotifyEmail, log,
	)
	paymentService := service.NewPaymentService(paymentRepo, log)
	refundService := service.NewRefundService(refundRepo, mailQueue, log)
	userService := service.NewUserService(profileRepo, authService)
	contactService := service.NewContactService(contactRepo, mailQueue, feedPublisher, cfg.AdminNotifyEmail, log)
	mediaService := service.NewMediaService(cfg)
	settingService := service.NewSettingService(settingRepo, log)
	dashboardService := service.NewDashboardService(dashboardRepo)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Auth:       handler.NewAuthHandler(authService),
		Public:     handler.NewPublicHandler(catalogService, contactService),
		Category:   handler.NewCategoryHandler(catalogService),
		Course:     handler.NewCourseHandler(catalogService),
		Intake:     handler.NewIntakeHandler(intakeService),
		Enrollment: handler.NewEnrollmentHandler(enrollmentService),
		Payment:    handler.NewPaymentHandler(paymentService),
		Refund:     handler.NewRefundHandler(refundService),
		User:       handler.NewUserHandler(userService),
		Contact:    handler.NewContactHandler(contactService),
		Media:      handler.NewMediaHandler(mediaService),
		Dashboard:  handler.NewDashboardHandler(dashboardService),
		Setting:    handler.NewSettingHandler(settingService),
		WS:         handler.NewWSHandler(feedPublisher, log, cfg.AllowedOrigins),
		System: handler.NewSystemHandler(map[string]handler.Pinger{
			"postgres": pool.Ping,
			"redis":    func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
		}, log),
	}

	// ─── Rate Limiters ─────────────────────────────────────────────────
	stopCleanup := make(chan struct{})
	limiters := &router.Limiters{
		Auth:    middleware.NewRateLimiter(cfg.AuthRateLimit, time.Minute),
		Contact: middleware.NewRateLimiter(cfg.ContactRateLimit, time.Minute),
	}
	limiters.Auth.StartCleanup(time.Minute, stopCleanup)
	limiters.Contact.StartCleanup(time.Minute, stopCleanup)

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())
	var workers sync.WaitGroup

	mailWorker := worker.NewMailWorker(rdb, mailQueue, renderer, sender, log)
	workers.Add(1)
	go func() {
		defer workers.Done()
		mailWorker.Start(workerCtx)
	}()

	// ─── Scheduler ─────────────────────────────────────────────────────
	var cron *scheduler.Scheduler
	if cfg.SchedulerEnabled {
		cron, err = scheduler.New(enrollmentService, cfg.ReminderCron, cfg.CompletionCron, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Invalid scheduler configuration")
		}
		cron.Start()
	}

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(authService, handlers, limiters, cfg, log)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// 1. Stop accepting new HTTP requests.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}
	close(stopCleanup)

	// 2. Let running cron jobs finish.
	if cron != nil {
		cron.Stop(shutdownCtx)
	}

	// 3. Stop the mail worker; it drains the queue before returning.
	workerCancel()
	workers.Wait()

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
