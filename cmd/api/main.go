package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"job-tracker-backend/config"
	_ "job-tracker-backend/docs" // Important for Swagger
	"job-tracker-backend/internal/delivery/http/middleware"
	v1 "job-tracker-backend/internal/delivery/http/v1"
	"job-tracker-backend/internal/domain"
	"job-tracker-backend/internal/repository/postgres"
	"job-tracker-backend/internal/session"
	"job-tracker-backend/internal/usecase"
	"job-tracker-backend/pkg/database"
	"job-tracker-backend/pkg/logger"
	"job-tracker-backend/pkg/redis"
	"job-tracker-backend/pkg/security"
	"job-tracker-backend/pkg/storage"
	"job-tracker-backend/pkg/validation"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
)

// @title           Job Tracker API
// @version         1.0
// @description     Session-authenticated job application tracker.
// @BasePath        /api
// @securityDefinitions.apikey SessionCookie
// @in cookie
// @name sid
func main() {
	// 1. Load Config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. Setup Logger
	logger.Init(cfg.LogLevel)
	logger.Log.Info("Starting job tracker backend", "port", cfg.Port, "env", cfg.Env)
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := validation.RegisterGinValidators(); err != nil {
		logger.Log.Error("Failed to register validators", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 3. Setup Database
	dbPool, err := database.NewPostgresConnection(ctx, cfg.DBUrl, database.PoolOptions{SimpleProtocol: cfg.DBSimpleProtocol})
	if err != nil {
		logger.Log.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	if cfg.AutoMigrate {
		if err := database.MigratePool(ctx, dbPool); err != nil {
			logger.Log.Error("Failed to run migrations", "error", err)
			os.Exit(1)
		}
	}

	// 4. Setup Session Store
	var redisClient *goredis.Client
	var backend session.Backend
	if cfg.SessionBackend == "redis" {
		redisClient, err = redis.NewClient(ctx, redis.Config{URL: cfg.RedisURL, Password: cfg.RedisPassword})
		if err != nil {
			logger.Log.Error("Failed to connect to Redis", "error", err)
			os.Exit(1)
		}
		defer redisClient.Close()
		backend = session.NewRedisBackend(redisClient)
	} else {
		logger.Log.Warn("Using in-memory session store; sessions do not survive restarts")
		memory := session.NewMemoryBackend()
		memory.StartJanitor(ctx, time.Minute)
		backend = memory
	}
	sessions := session.NewManager(backend, session.Options{TTL: cfg.SessionTTL, Rolling: cfg.SessionRolling})

	// 5. Setup Object Storage
	objectStore, err := newObjectStore(ctx, cfg)
	if err != nil {
		logger.Log.Error("Failed to configure object storage", "error", err)
		os.Exit(1)
	}

	// 6. Setup Repositories
	userRepo := postgres.NewUserRepository(dbPool)
	applicationRepo := postgres.NewApplicationRepository(dbPool)
	feedbackRepo := postgres.NewFeedbackRepository(dbPool)

	// 7. Setup UseCases
	authUC := usecase.NewAuthUsecase(userRepo, sessions)
	applicationUC := usecase.NewApplicationUsecase(applicationRepo)
	profileUC := usecase.NewProfileUsecase(userRepo, sessions, objectStore, cfg.MaxUploadBytes)
	feedbackUC := usecase.NewFeedbackUsecase(feedbackRepo)

	checks := map[string]usecase.Checker{"database": dbPool.Ping}
	if redisClient != nil {
		checks["redis"] = func(ctx context.Context) error { return redis.HealthCheck(ctx, redisClient) }
	}
	healthUC := usecase.NewHealthUsecase(checks)

	audit := security.NewAuditLogger("job-tracker-backend", cfg.Env)
	defer func() { _ = audit.Sync() }()

	rateLimiter := middleware.NewRateLimiter(redisClient, audit)
	rateLimiter.StartCleanup(ctx, time.Minute)

	// 8. Setup Router
	router := v1.NewRouter(v1.RouterDeps{
		AuthUC:        authUC,
		ApplicationUC: applicationUC,
		ProfileUC:     profileUC,
		FeedbackUC:    feedbackUC,
		HealthUC:      healthUC,
		Sessions:      sessions,
		Cookie: middleware.SessionCookie{
			Profile: cfg.Profile,
			TTL:     sessions.TTL(),
			Signer:  session.NewSigner(cfg.SessionSecret),
		},
		Audit:       audit,
		RateLimiter: rateLimiter,
		Metrics:     middleware.NewMetrics("job_tracker"),
		Config:      cfg,
	})

	// 9. Start Server
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Error("Listen failed", "error", err)
			stop()
		}
	}()

	// Graceful Shutdown
	<-ctx.Done()
	logger.Log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("Server forced to shutdown", "error", err)
	}

	logger.Log.Info("Server exiting")
}

func newObjectStore(ctx context.Context, cfg *config.Config) (domain.ObjectStore, error) {
	if cfg.S3Bucket == "" {
		logger.Log.Warn("S3_BUCKET not configured; uploads are kept in memory")
		return storage.NewMemoryStore("http://localhost:" + cfg.Port + "/uploads"), nil
	}

	s3cfg := storage.Config{
		Provider:        storage.Provider(cfg.S3Provider),
		AccessKeyID:     cfg.S3AccessKeyID,
		SecretAccessKey: cfg.S3SecretAccessKey,
		Region:          cfg.S3Region,
		Bucket:          cfg.S3Bucket,
		Endpoint:        cfg.S3Endpoint,
		PublicBaseURL:   cfg.S3PublicBaseURL,
	}
	client, err := storage.NewS3Client(ctx, s3cfg)
	if err != nil {
		return nil, err
	}
	return storage.NewS3Store(client, s3cfg), nil
}
