package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pageza/cookbook/backend/internal/middleware"
	"github.com/pageza/cookbook/backend/internal/service"
	"github.com/pageza/cookbook/backend/internal/types"
)

type UserHandler struct {
	users  service.IUserService
	auth   middleware.Authenticator
	logger *zap.Logger
}

func NewUserHandler(users service.IUserService, auth middleware.Authenticator, logger *zap.Logger) *UserHandler {
	return &UserHandler{users: users, auth: auth, logger: logger}
}

func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup) {
	authed := middleware.Auth(h.auth)

	users := router.Group("/users")
	{
		users.POST("", h.Register)
		users.GET("/with-recipes", h.ListWithRecipes)
		users.GET("/me", authed, h.GetProfile)
		users.GET("/profile", authed, h.GetProfile)
		users.PUT("/profile", authed, h.UpdateProfile)
		users.DELETE("/profile", authed, h.DeactivateProfile)
	}

	admin := router.Group("/admin", authed, middleware.RequireAdmin())
	{
		admin.POST("/users/:id/restore", h.RestoreUser)
	}
}

func (h *UserHandler) Register(c *gin.Context) {
	var req types.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body.")
		return
	}
	user, err := h.users.Register(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, types.NewUserResponse(user))
}

func (h *UserHandler) GetProfile(c *gin.Context) {
	user, err := h.users.GetByID(c.Request.Context(), currentActor(c).UserID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, types.NewUserResponse(user))
}

func (h *UserHandler) UpdateProfile(c *gin.Context) {
	var req types.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body.")
		return
	}
	user, err := h.users.UpdateProfile(c.Request.Context(), currentActor(c).UserID, &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, types.NewUserResponse(user))
}

func (h *UserHandler) DeactivateProfile(c *gin.Context) {
	if err := h.users.Deactivate(c.Request.Context(), currentActor(c).UserID); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *UserHandler) ListWithRecipes(c *gin.Context) {
	users, err := h.users.ListWithRecipes(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	resp := make([]types.UserResponse, 0, len(users))
	for i := range users {
		resp = append(resp, types.NewUserResponse(&users[i]))
	}
	c.JSON(http.StatusOK, resp)
}

func (h *UserHandler) RestoreUser(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	user, err := h.users.Restore(c.Request.Context(), currentActor(c), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, types.NewUserResponse(user))
}
