package handler

import (
	"net/http"

	"pet-adoption-marketplace/internal/middleware"
	"pet-adoption-marketplace/internal/usecase/user"
	appErrors "pet-adoption-marketplace/pkg/errors"
	"pet-adoption-marketplace/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type UserHandler struct {
	service *user.Service
}

func NewUserHandler(service *user.Service) *UserHandler {
	return &UserHandler{service: service}
}

// RegisterRoutes mounts the profile routes for any signed-in user and the
// account administration routes for superadmins.
func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup, requireAuth gin.HandlerFunc) {
	users := router.Group("/users", requireAuth)
	{
		users.GET("/me", h.GetProfile)
		users.PATCH("/me", h.UpdateProfile)
		users.POST("/me/password", h.ChangePassword)
	}

	admin := users.Group("", middleware.SuperAdminOnly())
	{
		admin.GET("", h.ListUsers)
		admin.GET("/:id", h.GetUser)
		admin.DELETE("/:id", h.DeleteUser)
	}
}

func (h *UserHandler) GetProfile(c *gin.Context) {
	principal := middleware.GetPrincipal(c)

	profile, err := h.service.GetProfile(c.Request.Context(), principal.ID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Profile retrieved successfully", profile)
}

func (h *UserHandler) UpdateProfile(c *gin.Context) {
	var req user.UpdateProfileRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalidBody(c)
		return
	}

	principal := middleware.GetPrincipal(c)
	profile, err := h.service.UpdateProfile(c.Request.Context(), principal.ID, &req)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Profile updated successfully", profile)
}

func (h *UserHandler) ChangePassword(c *gin.Context) {
	var req user.ChangePasswordRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalidBody(c)
		return
	}

	principal := middleware.GetPrincipal(c)
	if err := h.service.ChangePassword(c.Request.Context(), principal.ID, &req); err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Password changed successfully", nil)
}

func (h *UserHandler) ListUsers(c *gin.Context) {
	users, err := h.service.ListUsers(c.Request.Context())
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Users retrieved successfully", users)
}

func (h *UserHandler) GetUser(c *gin.Context) {
	userID, ok := parseID(c, "Invalid user ID")
	if !ok {
		return
	}

	u, err := h.service.GetUser(c.Request.Context(), userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "User retrieved successfully", u)
}

func (h *UserHandler) DeleteUser(c *gin.Context) {
	userID, ok := parseID(c, "Invalid user ID")
	if !ok {
		return
	}

	if err := h.service.DeleteUser(c.Request.Context(), userID); err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "User deleted successfully", nil)
}

func parseID(c *gin.Context, message string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.AppErrorResponse(c, appErrors.Validation(message, appErrors.FieldError{Field: "id", Message: "must be a valid id"}))
		return uuid.Nil, false
	}
	return id, true
}
