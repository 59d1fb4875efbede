package utils

import (
	appErrors "pet-adoption-marketplace/pkg/errors"

	"github.com/gin-gonic/gin"
)

// Response is the envelope every endpoint answers with.
type Response struct {
	Success bool                   `json:"success"`
	Message string                 `json:"message,omitempty"`
	Data    any                    `json:"data,omitempty"`
	Meta    any                    `json:"meta,omitempty"`
	Code    string                 `json:"code,omitempty"`
	Errors  []appErrors.FieldError `json:"errors,omitempty"`
}

func SuccessResponse(c *gin.Context, status int, message string, data any) {
	c.JSON(status, Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

func PaginatedResponse(c *gin.Context, status int, data any, meta any) {
	c.JSON(status, Response{
		Success: true,
		Data:    data,
		Meta:    meta,
	})
}

func ErrorResponse(c *gin.Context, status int, message string) {
	c.JSON(status, Response{
		Success: false,
		Message: message,
	})
}

func AppErrorResponse(c *gin.Context, err *appErrors.AppError) {
	c.JSON(err.Status(), Response{
		Success: false,
		Message: err.Message,
		Code:    err.Code,
		Errors:  err.Fields,
	})
}
