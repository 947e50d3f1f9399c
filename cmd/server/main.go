package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/edumitra/edumitra-backend/internal/config"
	"github.com/edumitra/edumitra-backend/internal/database"
	"github.com/edumitra/edumitra-backend/internal/handler"
	"github.com/edumitra/edumitra-backend/internal/logger"
	"github.com/edumitra/edumitra-backend/internal/repository"
	"github.com/edumitra/edumitra-backend/internal/router"
	"github.com/edumitra/edumitra-backend/internal/service"
	"github.com/edumitra/edumitra-backend/internal/validator"
	"github.com/edumitra/edumitra-backend/internal/worker"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("base_domain", cfg.BaseDomain).
		Msg("Starting EduMitra Backend")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

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
	instituteRepo := repository.NewInstituteRepository(pool)
	userRepo := repository.NewUserRepository(pool)
	syllabusRepo := repository.NewSyllabusRepository(pool)
	postRepo := repository.NewPostRepository(pool)
	quizRepo := repository.NewQuizRepository(pool)
	sessionRepo := repository.NewSessionRepository(pool)
	notifRepo := repository.NewNotificationRepository(pool)

	// ─── Initialize Services ──────────────────────────────────────────
	authService := service.NewAuthService(cfg, rdb)
	instituteService := service.NewInstituteService(instituteRepo)
	userService := service.NewUserService(userRepo, authService)
	syllabusService := service.NewSyllabusService(syllabusRepo)
	notificationService := service.NewNotificationService(notifRepo, rdb)
	feedService := service.NewFeedService(postRepo, notificationService)
	quizService := service.NewQuizService(quizRepo, syllabusRepo)
	liveService := service.NewLiveService(quizRepo, sessionRepo, instituteRepo, rdb,
		notificationService, cfg.LeaderboardSize)
	defer liveService.Close()

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Auth:         handler.NewAuthHandler(authService, userService),
		User:         handler.NewUserHandler(userService),
		Institute:    handler.NewInstituteHandler(instituteService),
		Syllabus:     handler.NewSyllabusHandler(syllabusService),
		Feed:         handler.NewFeedHandler(feedService),
		Quiz:         handler.NewQuizHandler(quizService, liveService),
		Live:         handler.NewLiveHandler(rdb, liveService, log, cfg.AllowedOrigins),
		Monitor:      handler.NewMonitorHandler(rdb, liveService, log),
		Notification: handler.NewNotificationHandler(notificationService),
	}

	// ─── Prewarm Redis Caches ─────────────────────────────────────────
	// Rebuild the live snapshot for every RUNNING quiz BEFORE accepting
	// traffic, so reconnecting participants never observe a cold cache.
	if err := liveService.Prewarm(ctx); err != nil {
		log.Warn().Err(err).Msg("Live cache prewarm failed")
	}

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(authService, instituteService, handlers, cfg)

	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	// ─── Run Server and Workers ───────────────────────────────────────
	g, gctx := errgroup.WithContext(ctx)

	notifyWorker := worker.NewNotifyWorker(notifRepo, rdb, log)
	g.Go(func() error {
		notifyWorker.Start(gctx)
		return nil
	})

	g.Go(func() error {
		log.Info().Str("addr", srv.Addr).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("Shutting down gracefully...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("Server exited with error")
	}
	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
