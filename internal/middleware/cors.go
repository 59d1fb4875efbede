package middleware

import (
	"slices"
	"time"

	"pet-adoption-marketplace/internal/config"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CORSMiddleware admits the web client origins from CORS_ALLOWED_ORIGINS.
// A "*" entry opens the API to any origin.
func CORSMiddleware(cfg *config.CORSConfig) gin.HandlerFunc {
	policy := cors.Config{
		AllowMethods:     cfg.AllowedMethods,
		AllowHeaders:     cfg.AllowedHeaders,
		ExposeHeaders:    cfg.ExposedHeaders,
		AllowCredentials: cfg.AllowCredentials,
		MaxAge:           time.Duration(cfg.MaxAge) * time.Second,
	}
	if slices.Contains(cfg.AllowedOrigins, "*") {
		policy.AllowAllOrigins = true
	} else {
		policy.AllowOrigins = cfg.AllowedOrigins
	}

	return cors.New(policy)
}
