package handler

import (
	"errors"

	domainPet "pet-adoption-marketplace/internal/domain/pet"
	domainUser "pet-adoption-marketplace/internal/domain/user"
	"pet-adoption-marketplace/internal/logger"
	"pet-adoption-marketplace/internal/middleware"
	appErrors "pet-adoption-marketplace/pkg/errors"
	"pet-adoption-marketplace/pkg/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const msgInvalidBody = "Invalid request body"

func respondWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	if appErr, ok := appErrors.As(err); ok {
		if appErr.Code == appErrors.CodeInternal {
			logInternal(c, err)
		}
		utils.AppErrorResponse(c, appErr)
		return
	}

	switch {
	case errors.Is(err, domainUser.ErrUserAlreadyExists):
		utils.AppErrorResponse(c, appErrors.Conflict("Email or username already in use", err))
	case errors.Is(err, domainUser.ErrUserNotFound):
		utils.AppErrorResponse(c, appErrors.NotFound("User not found", err))
	case errors.Is(err, domainPet.ErrPetNotFound):
		utils.AppErrorResponse(c, appErrors.NotFound("Pet not found", err))
	default:
		logInternal(c, err)
		utils.AppErrorResponse(c, appErrors.Internal(err))
	}
}

func respondInvalidBody(c *gin.Context) {
	utils.AppErrorResponse(c, appErrors.Validation(msgInvalidBody))
}

func logInternal(c *gin.Context, err error) {
	logger.WithRequestID(middleware.GetRequestID(c)).Error("Internal server error",
		zap.String("path", c.Request.URL.Path),
		zap.String("method", c.Request.Method),
		zap.Error(err),
	)
}
