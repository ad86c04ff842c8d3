package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pageza/cookbook/backend/internal/middleware"
	"github.com/pageza/cookbook/backend/internal/service"
	"github.com/pageza/cookbook/backend/internal/types"
)

type AuthHandler struct {
	auth    service.IAuthService
	users   service.IUserService
	resets  service.IPasswordResetService
	limiter *middleware.IPRateLimiter
	logger  *zap.Logger
}

func NewAuthHandler(auth service.IAuthService, users service.IUserService, resets service.IPasswordResetService, limiter *middleware.IPRateLimiter, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, users: users, resets: resets, limiter: limiter, logger: logger}
}

func (h *AuthHandler) RegisterRoutes(router *gin.RouterGroup) {
	login := []gin.HandlerFunc{h.Login}
	if h.limiter != nil {
		login = append([]gin.HandlerFunc{h.limiter.Middleware()}, login...)
	}

	auth := router.Group("/auth")
	{
		auth.POST("/login", login...)
		auth.POST("/refresh", h.Refresh)
		auth.POST("/logout", middleware.Auth(h.auth), h.Logout)
		auth.POST("/password-reset", h.RequestPasswordReset)
		auth.POST("/password-reset-confirm", h.ConfirmPasswordReset)
	}
}

type LoginResponse struct {
	Access  string             `json:"access"`
	Refresh string             `json:"refresh"`
	User    types.UserResponse `json:"user"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req types.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Email and password are required.")
		return
	}
	user, pair, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, LoginResponse{
		Access:  pair.Access,
		Refresh: pair.Refresh,
		User:    types.NewUserResponse(user),
	})
}

func (h *AuthHandler) Refresh(c *gin.Context) {
	var req types.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Refresh token is required.")
		return
	}
	pair, err := h.auth.Refresh(c.Request.Context(), req.Refresh)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, pair)
}

func (h *AuthHandler) Logout(c *gin.Context) {
	var req types.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Refresh token is required.")
		return
	}
	if err := h.auth.Logout(c.Request.Context(), currentActor(c), req.Refresh); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *AuthHandler) RequestPasswordReset(c *gin.Context) {
	var req types.PasswordResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Email is required.")
		return
	}
	if err := h.resets.Request(c.Request.Context(), req.Email); err != nil {
		// The response must not reveal whether the account exists.
		h.logger.Error("password reset request failed", zap.Error(err))
	}
	c.JSON(http.StatusOK, gin.H{"message": service.ResetRequestedMessage})
}

func (h *AuthHandler) ConfirmPasswordReset(c *gin.Context) {
	var req types.PasswordResetConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body.")
		return
	}
	if err := h.resets.Confirm(c.Request.Context(), &req); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password has been reset successfully."})
}
