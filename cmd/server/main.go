package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Simi129/pinterest-backend/internal/config"
	"github.com/Simi129/pinterest-backend/internal/database"
	"github.com/Simi129/pinterest-backend/internal/handler"
	"github.com/Simi129/pinterest-backend/internal/jobs"
	"github.com/Simi129/pinterest-backend/internal/middleware"
	"github.com/Simi129/pinterest-backend/internal/pinterest"
	"github.com/Simi129/pinterest-backend/internal/redis"
	"github.com/Simi129/pinterest-backend/internal/repository"
	"github.com/Simi129/pinterest-backend/internal/service"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	setLogLevel(cfg.LogLevel)

	isProduction := os.Getenv("FLY_APP_NAME") != ""
	if err := cfg.Validate(isProduction); err != nil {
		log.Fatal().Err(err).Msg("invalid config")
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), config.DBPingTimeout)
	if err := db.Ping(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to ping database")
	}
	cancel()
	log.Info().Msg("database connected")

	redisClient, err := redis.NewClient(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	log.Info().Msg("redis connected")

	connRepo := repository.NewConnectionRepository(db.DB)
	postRepo := repository.NewPostRepository(db.DB)
	stateRepo := repository.NewOAuthStateRepository(db.DB)
	analyticsRepo := repository.NewPinAnalyticsRepository(db.DB)

	pinClient := pinterest.NewClient()
	oauthClient := pinterest.NewOAuthClient(cfg.PinterestAppID, cfg.PinterestAppSecret)

	connService := service.NewConnectionService(connRepo, oauthClient, cfg.TokenRefreshMargin())
	oauthService := service.NewOAuthService(
		stateRepo, connService, oauthClient, pinClient, cfg.RedirectURI(), cfg.OAuthStateTTL(),
	)
	publisher := service.NewPublisher(postRepo, connService, pinClient)
	scheduler := service.NewScheduler(publisher, cfg.PublishTimeout())
	postService := service.NewPostService(postRepo, connRepo, scheduler)
	boardService := service.NewBoardService(connService, pinClient)
	analyticsService := service.NewAnalyticsService(postRepo, analyticsRepo, connService, pinClient)

	rateLimitMiddleware := middleware.NewRedisRateLimitMiddleware(redisClient.Client, cfg.RateLimitPerMin)
	bodyLimitMiddleware := middleware.NewBodyLimitMiddleware(0)

	authHandler := handler.NewAuthHandler(oauthService, connService, cfg.FrontendURL)
	publishHandler := handler.NewPublishHandler(postService)
	boardHandler := handler.NewBoardHandler(boardService)
	analyticsHandler := handler.NewAnalyticsHandler(analyticsService, postService)

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(config.ServerRequestTimeout))
	r.Use(bodyLimitMiddleware.Handler)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]any{
			"status":    "ok",
			"timestamp": time.Now().UnixMilli(),
		})
	})

	r.Route("/auth", func(r chi.Router) {
		r.Mount("/", authHandler.Routes())
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(rateLimitMiddleware.Handler)
		r.Mount("/boards", boardHandler.Routes())
		r.Mount("/analytics", analyticsHandler.Routes())
		r.Mount("/", publishHandler.Routes())
	})

	// Startup reap of abandoned handshake states.
	reapCtx, reapCancel := context.WithTimeout(context.Background(), 10*time.Second)
	if _, err := oauthService.ReapStates(reapCtx); err != nil {
		log.Warn().Err(err).Msg("startup oauth state reap failed")
	}
	reapCancel()

	reconcileJob := jobs.NewReconcileJob(postRepo, scheduler, config.ReconcileJobInterval)
	reconcileJob.Start()
	defer reconcileJob.Stop()

	cleanupJob := jobs.NewCleanupJob(oauthService, config.CleanupJobInterval)
	cleanupJob.Start()
	defer cleanupJob.Stop()

	analyticsJob := jobs.NewAnalyticsSyncJob(analyticsService, config.AnalyticsSyncInterval)
	analyticsJob.Start()
	defer analyticsJob.Stop()

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  config.ServerReadTimeout,
		WriteTimeout: 0,
		IdleTimeout:  config.ServerIdleTimeout,
	}

	go func() {
		log.Info().Str("addr", cfg.Addr()).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), config.ServerShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	scheduler.Stop()

	log.Info().Msg("server stopped")
}

func setLogLevel(level string) {
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
