package v1

import (
	"net/http"
	"time"

	"job-tracker-backend/config"
	"job-tracker-backend/internal/delivery/http/middleware"
	"job-tracker-backend/internal/delivery/http/response"
	"job-tracker-backend/internal/domain"
	"job-tracker-backend/internal/usecase"
	"job-tracker-backend/pkg/security"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type RouterDeps struct {
	AuthUC        domain.AuthUsecase
	ApplicationUC domain.ApplicationUsecase
	ProfileUC     domain.ProfileUsecase
	FeedbackUC    domain.FeedbackUsecase
	HealthUC      usecase.HealthUsecase

	Sessions    domain.SessionStore
	Cookie      middleware.SessionCookie
	Audit       *security.AuditLogger
	RateLimiter *middleware.RateLimiter
	// Optional; /metrics is not mounted without it
	Metrics *middleware.Metrics
	Config  *config.Config
}

func NewRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()
	cfg := deps.Config

	// Global Middlewares
	r.Use(middleware.CORSMiddleware(cfg.Profile)) // CORS must be first!
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.SecurityHeadersMiddleware(cfg.IsProduction()))
	if deps.Metrics != nil {
		r.Use(deps.Metrics.Middleware())
		r.GET("/metrics", deps.Metrics.Handler())
	}
	r.Use(middleware.ErrorHandler())

	r.NoRoute(func(c *gin.Context) {
		response.Error(c, http.StatusNotFound, "Route not found", nil)
	})

	api := r.Group("/api")
	api.Use(middleware.OriginGuard(cfg.Profile))

	api.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	NewHealthHandler(api, deps.HealthUC)

	window := time.Duration(cfg.RateLimitWindowSeconds) * time.Second
	authLimit := deps.RateLimiter.Middleware(middleware.AuthRateLimitConfig(cfg.RateLimitAuthThreshold, window))
	uploadLimit := deps.RateLimiter.Middleware(middleware.UploadRateLimitConfig(cfg.RateLimitUploadThreshold, window))

	// Protected routes
	protected := api.Group("")
	protected.Use(middleware.SessionAuth(deps.Cookie, deps.Sessions, deps.Audit))

	NewAuthHandler(api, protected, deps.AuthUC, deps.Cookie, deps.Audit, authLimit)
	NewApplicationHandler(protected, deps.ApplicationUC)
	NewUserHandler(protected, deps.ProfileUC, deps.Cookie, cfg.MaxUploadBytes, uploadLimit)
	NewFeedbackHandler(api, deps.FeedbackUC)

	return r
}
