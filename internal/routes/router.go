package routes

import (
	"pet-adoption-marketplace/internal/auth"
	"pet-adoption-marketplace/internal/config"
	"pet-adoption-marketplace/internal/delivery/http/handler"
	"pet-adoption-marketplace/internal/logger"
	"pet-adoption-marketplace/internal/middleware"
	"pet-adoption-marketplace/internal/realtime"
	"pet-adoption-marketplace/internal/upload"
	"pet-adoption-marketplace/internal/usecase/pet"
	"pet-adoption-marketplace/internal/usecase/user"

	"github.com/gin-gonic/gin"
)

// multipartOverhead leaves room for form fields next to the photos.
const multipartOverhead = 1 << 20

// Dependencies are the wired services the router exposes.
type Dependencies struct {
	Config        *config.Config
	Authenticator *auth.Authenticator
	UserService   *user.Service
	PetService    *pet.Service
	Photos        *upload.Photos
	Gateway       *realtime.Gateway
	RateLimiter   *middleware.RateLimiter
	Ping          handler.Pinger
}

func SetupRoutes(deps Dependencies) *gin.Engine {
	cfg := deps.Config
	if cfg.Server.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Add middleware in order: request ID, recovery, logging, security headers, CORS, request size limit, general rate limit
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.RecoveryMiddleware())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())
	router.Use(middleware.CORSMiddleware(&cfg.CORS))
	router.Use(middleware.RequestSizeLimitMiddleware(cfg.Server.BodyLimit, multipartLimit(cfg.Upload)))
	if deps.RateLimiter != nil {
		router.Use(middleware.RateLimitMiddleware(deps.RateLimiter))
	}

	router.NoRoute(middleware.NotFoundHandler)

	requireAuth := middleware.AuthMiddleware(deps.Authenticator)
	optionalAuth := middleware.OptionalAuthMiddleware(deps.Authenticator)

	var gatewayStats handler.GatewayStats
	if deps.Gateway != nil {
		gatewayStats = deps.Gateway
	}
	healthHandler := handler.NewHealthHandler(deps.Ping, gatewayStats)
	authHandler := handler.NewAuthHandler(deps.UserService, cfg.Auth)
	userHandler := handler.NewUserHandler(deps.UserService)
	petHandler := handler.NewPetHandler(deps.PetService, deps.Photos)

	router.GET("/health", healthHandler.Health)
	if cfg.Upload.URLPrefix != "" {
		router.Static(cfg.Upload.URLPrefix, cfg.Upload.Dir)
	}

	if deps.Gateway != nil {
		router.GET(cfg.Realtime.Path, deps.Gateway.ServeWS)
	}

	api := router.Group("/api")
	{
		api.GET("/health", healthHandler.Health)
		authHandler.RegisterRoutes(api)
		userHandler.RegisterRoutes(api, requireAuth)
		petHandler.RegisterRoutes(api, optionalAuth, requireAuth)
	}

	logger.Info("All routes initialized")
	return router
}

func multipartLimit(cfg config.UploadConfig) int64 {
	if cfg.MaxFiles <= 0 || cfg.MaxFileSize <= 0 {
		return 0
	}
	return int64(cfg.MaxFiles)*cfg.MaxFileSize + multipartOverhead
}
