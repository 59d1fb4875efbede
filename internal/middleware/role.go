package middleware

import (
	"pet-adoption-marketplace/internal/auth"
	domainUser "pet-adoption-marketplace/internal/domain/user"
	appErrors "pet-adoption-marketplace/pkg/errors"

	"github.com/gin-gonic/gin"
)

// RoleMiddleware must run after AuthMiddleware.
func RoleMiddleware(allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal := GetPrincipal(c)
		if principal == nil {
			abort(c, appErrors.Unauthenticated("Authentication required", appErrors.ErrUnauthorized))
			return
		}

		if !auth.HasRole(principal, allowedRoles...) {
			abort(c, appErrors.Forbidden("Insufficient permissions"))
			return
		}

		c.Next()
	}
}

func SuperAdminOnly() gin.HandlerFunc {
	return RoleMiddleware(domainUser.RoleSuperAdmin)
}
