package middleware

import (
	"pet-adoption-marketplace/internal/logger"
	appErrors "pet-adoption-marketplace/pkg/errors"
	"pet-adoption-marketplace/pkg/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RecoveryMiddleware turns panics into the standard 500 envelope.
func RecoveryMiddleware() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logger.WithRequestID(GetRequestID(c)).Error("Panic recovered",
			zap.Any("panic", recovered),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Stack("stack"),
		)
		abort(c, appErrors.Internal(nil))
	})
}

// NotFoundHandler answers unknown routes.
func NotFoundHandler(c *gin.Context) {
	utils.AppErrorResponse(c, appErrors.NotFound("Route not found", nil))
}
