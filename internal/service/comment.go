package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pageza/cookbook/backend/internal/models"
	"github.com/pageza/cookbook/backend/internal/types"
)

type CommentService struct {
	db      *gorm.DB
	recipes *RecipeService
	authz   Authorizer
	logger  *zap.Logger
}

func NewCommentService(db *gorm.DB, recipes *RecipeService, logger *zap.Logger) *CommentService {
	return &CommentService{db: db, recipes: recipes, authz: recipes.authz, logger: logger}
}

// List returns the comments of a visible recipe, oldest first.
func (s *CommentService) List(ctx context.Context, actor *types.Identity, recipeID uuid.UUID) ([]models.Comment, error) {
	if err := s.visible(ctx, actor, recipeID); err != nil {
		return nil, err
	}
	comments := []models.Comment{}
	err := s.db.WithContext(ctx).
		Preload("Author").
		Where("recipe_id = ?", recipeID).
		Order("created_at").
		Order("id").
		Find(&comments).Error
	if err != nil {
		return nil, storageError("list comments", err)
	}
	return comments, nil
}

func (s *CommentService) Create(ctx context.Context, actor types.Identity, recipeID uuid.UUID, req *types.CommentRequest) (*models.Comment, error) {
	text := strings.TrimSpace(req.Text)
	if err := validateStruct(&types.CommentRequest{Text: text}).Err(); err != nil {
		return nil, err
	}
	if _, err := s.recipes.findActive(ctx, recipeID); err != nil {
		return nil, err
	}

	comment := &models.Comment{RecipeID: recipeID, AuthorID: actor.UserID, Text: text}
	if err := s.db.WithContext(ctx).Create(comment).Error; err != nil {
		return nil, storageError("create comment", err)
	}
	s.logger.Info("comment created",
		zap.String("comment_id", comment.ID.String()),
		zap.String("recipe_id", recipeID.String()),
	)
	return s.get(ctx, comment.ID)
}

// Delete removes the comment. Only its author or an admin may do so.
func (s *CommentService) Delete(ctx context.Context, actor types.Identity, recipeID, commentID uuid.UUID) error {
	var comment models.Comment
	err := s.db.WithContext(ctx).First(&comment, "id = ? AND recipe_id = ?", commentID, recipeID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &NotFoundError{Resource: "comment", ID: commentID.String()}
	}
	if err != nil {
		return storageError("load comment", err)
	}
	if !s.authz.CanDeleteComment(actor, &comment) {
		return &PermissionError{Action: "delete this comment"}
	}
	if err := s.db.WithContext(ctx).Delete(&models.Comment{}, "id = ?", commentID).Error; err != nil {
		return storageError("delete comment", err)
	}
	return nil
}

func (s *CommentService) get(ctx context.Context, id uuid.UUID) (*models.Comment, error) {
	var comment models.Comment
	if err := s.db.WithContext(ctx).Preload("Author").First(&comment, "id = ?", id).Error; err != nil {
		return nil, storageError("load comment", err)
	}
	return &comment, nil
}

// visible fails with NotFoundError unless actor may read the recipe.
func (s *CommentService) visible(ctx context.Context, actor *types.Identity, recipeID uuid.UUID) error {
	var recipe models.Recipe
	err := s.db.WithContext(ctx).Unscoped().First(&recipe, "id = ?", recipeID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &NotFoundError{Resource: "recipe", ID: recipeID.String()}
	}
	if err != nil {
		return storageError("load recipe", err)
	}
	if recipe.Deleted() && !canSeeDeleted(actor, &recipe) {
		return &NotFoundError{Resource: "recipe", ID: recipeID.String()}
	}
	return nil
}
