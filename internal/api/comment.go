package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pageza/cookbook/backend/internal/middleware"
	"github.com/pageza/cookbook/backend/internal/service"
	"github.com/pageza/cookbook/backend/internal/types"
)

type CommentHandler struct {
	comments service.ICommentService
	auth     middleware.Authenticator
	logger   *zap.Logger
}

func NewCommentHandler(comments service.ICommentService, auth middleware.Authenticator, logger *zap.Logger) *CommentHandler {
	return &CommentHandler{comments: comments, auth: auth, logger: logger}
}

func (h *CommentHandler) RegisterRoutes(router *gin.RouterGroup) {
	comments := router.Group("/recipes/:id/comments")
	{
		comments.GET("", middleware.OptionalAuth(h.auth), h.ListComments)
		comments.POST("", middleware.Auth(h.auth), h.CreateComment)
		comments.DELETE("/:comment_id", middleware.Auth(h.auth), h.DeleteComment)
	}
}

func (h *CommentHandler) ListComments(c *gin.Context) {
	recipeID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	comments, err := h.comments.List(c.Request.Context(), optionalActor(c), recipeID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	resp := make([]types.CommentResponse, 0, len(comments))
	for i := range comments {
		resp = append(resp, types.NewCommentResponse(&comments[i]))
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CommentHandler) CreateComment(c *gin.Context) {
	recipeID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req types.CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body.")
		return
	}
	comment, err := h.comments.Create(c.Request.Context(), currentActor(c), recipeID, &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, types.NewCommentResponse(comment))
}

func (h *CommentHandler) DeleteComment(c *gin.Context) {
	recipeID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	commentID, ok := uuidParam(c, "comment_id")
	if !ok {
		return
	}
	if err := h.comments.Delete(c.Request.Context(), currentActor(c), recipeID, commentID); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}
