package handler

import (
	"errors"
	"io"
	"net/http"

	"pet-adoption-marketplace/internal/config"
	"pet-adoption-marketplace/internal/usecase/user"
	"pet-adoption-marketplace/pkg/utils"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	service *user.Service
	cfg     config.AuthConfig
}

func NewAuthHandler(service *user.Service, cfg config.AuthConfig) *AuthHandler {
	if cfg.CookieName == "" {
		cfg.CookieName = "refreshToken"
	}
	return &AuthHandler{service: service, cfg: cfg}
}

func (h *AuthHandler) RegisterRoutes(router *gin.RouterGroup) {
	authGroup := router.Group("/auth")
	{
		authGroup.POST("/register", h.Register)
		authGroup.POST("/login", h.Login)
		authGroup.POST("/refresh", h.Refresh)
		authGroup.POST("/logout", h.Logout)
		authGroup.POST("/password/forgot", h.ForgotPassword)
		authGroup.POST("/password/reset", h.ResetPassword)
	}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req user.RegisterRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalidBody(c)
		return
	}

	authResponse, err := h.service.Register(c.Request.Context(), &req)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.setRefreshCookie(c, authResponse)
	utils.SuccessResponse(c, http.StatusCreated, "User registered successfully", authResponse)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req user.LoginRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalidBody(c)
		return
	}

	req.Email = utils.SanitizeEmail(req.Email)

	authResponse, err := h.service.Login(c.Request.Context(), &req)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.setRefreshCookie(c, authResponse)
	utils.SuccessResponse(c, http.StatusOK, "Login successful", authResponse)
}

// Refresh reads the refresh token from the cookie in cookie mode, otherwise
// from the body with the cookie as fallback.
func (h *AuthHandler) Refresh(c *gin.Context) {
	var token string

	if !h.cfg.UseRefreshCookie {
		var req user.RefreshRequest
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			respondInvalidBody(c)
			return
		}
		token = req.RefreshToken
	}
	if token == "" {
		if cookie, err := c.Cookie(h.cfg.CookieName); err == nil {
			token = cookie
		}
	}

	resp, err := h.service.Refresh(c.Request.Context(), token)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Token refreshed successfully", resp)
}

// Logout is stateless; it only clears the refresh cookie.
func (h *AuthHandler) Logout(c *gin.Context) {
	if h.cfg.UseRefreshCookie {
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(h.cfg.CookieName, "", -1, "/", "", h.cfg.CookieSecure, true)
	}

	utils.SuccessResponse(c, http.StatusOK, "Logged out", nil)
}

func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req user.ForgotPasswordRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalidBody(c)
		return
	}

	req.Email = utils.SanitizeEmail(req.Email)

	resp, err := h.service.ForgotPassword(c.Request.Context(), &req)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var data any
	if resp != nil && resp.Link != "" {
		data = resp
	}
	utils.SuccessResponse(c, http.StatusOK, "If the email exists, a reset link has been sent", data)
}

func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req user.ResetPasswordRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalidBody(c)
		return
	}

	if err := h.service.ResetPassword(c.Request.Context(), &req); err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Password has been reset successfully", nil)
}

func (h *AuthHandler) setRefreshCookie(c *gin.Context, resp *user.AuthResponse) {
	if !h.cfg.UseRefreshCookie || resp == nil || resp.RefreshCookie == "" {
		return
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cfg.CookieName, resp.RefreshCookie, int(resp.RefreshTTL.Seconds()), "/", "", h.cfg.CookieSecure, true)
}
