package middleware

import (
	"pet-adoption-marketplace/internal/auth"
	appErrors "pet-adoption-marketplace/pkg/errors"
	"pet-adoption-marketplace/pkg/utils"

	"github.com/gin-gonic/gin"
)

const (
	PrincipalKey = "principal"
	AuthErrorKey = "auth_error"
)

// AuthMiddleware requires a valid "Authorization: Bearer <token>" header.
func AuthMiddleware(authenticator *auth.Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abort(c, appErrors.Unauthenticated("Authorization header required", appErrors.ErrUnauthorized))
			return
		}

		token, ok := auth.BearerToken(authHeader)
		if !ok {
			abort(c, appErrors.Unauthenticated("Invalid authorization header format", appErrors.ErrUnauthorized))
			return
		}

		principal, err := authenticator.Authenticate(token)
		if err != nil {
			abort(c, toAppError(err))
			return
		}

		setPrincipal(c, principal)
		c.Next()
	}
}

// OptionalAuthMiddleware attaches a principal when a valid bearer token is
// present. A bad token does not fail the request; the error is kept for
// handlers that need to explain why a caller is anonymous.
func OptionalAuthMiddleware(authenticator *auth.Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Next()
			return
		}

		token, ok := auth.BearerToken(authHeader)
		if !ok {
			c.Set(AuthErrorKey, appErrors.Unauthenticated("Invalid authorization header format", appErrors.ErrUnauthorized))
			c.Next()
			return
		}

		principal, err := authenticator.Authenticate(token)
		if err != nil {
			c.Set(AuthErrorKey, toAppError(err))
			c.Next()
			return
		}

		setPrincipal(c, principal)
		c.Next()
	}
}

func setPrincipal(c *gin.Context, p *auth.Principal) {
	c.Set(PrincipalKey, p)
	c.Set("userID", p.ID)
	c.Set("email", p.Email)
	c.Set("role", p.Role)
}

// GetPrincipal returns the authenticated caller, or nil.
func GetPrincipal(c *gin.Context) *auth.Principal {
	if v, exists := c.Get(PrincipalKey); exists {
		if p, ok := v.(*auth.Principal); ok {
			return p
		}
	}
	return nil
}

// GetAuthError returns the error recorded by OptionalAuthMiddleware, if any.
func GetAuthError(c *gin.Context) *appErrors.AppError {
	if v, exists := c.Get(AuthErrorKey); exists {
		if appErr, ok := v.(*appErrors.AppError); ok {
			return appErr
		}
	}
	return nil
}

func toAppError(err error) *appErrors.AppError {
	if appErr, ok := appErrors.As(err); ok {
		return appErr
	}
	return appErrors.Unauthenticated("Invalid or malformed token", err)
}

func abort(c *gin.Context, err *appErrors.AppError) {
	utils.AppErrorResponse(c, err)
	c.Abort()
}
