package service

import (
	"github.com/pageza/cookbook/backend/internal/models"
	"github.com/pageza/cookbook/backend/internal/types"
)

// Authorizer answers ownership questions for recipes and comments.
type Authorizer interface {
	CanModifyRecipe(actor types.Identity, recipe *models.Recipe) bool
	CanDeleteComment(actor types.Identity, comment *models.Comment) bool
}

// OwnerOrAdmin grants modification to the creator or author, and to admins.
type OwnerOrAdmin struct{}

func (OwnerOrAdmin) CanModifyRecipe(actor types.Identity, recipe *models.Recipe) bool {
	return actor.IsAdmin || recipe.OwnedBy(actor.UserID)
}

func (OwnerOrAdmin) CanDeleteComment(actor types.Identity, comment *models.Comment) bool {
	return actor.IsAdmin || comment.AuthorID == actor.UserID
}

// canSeeDeleted reports whether actor may read a soft-deleted recipe.
func canSeeDeleted(actor *types.Identity, recipe *models.Recipe) bool {
	return actor != nil && (actor.IsAdmin || recipe.OwnedBy(actor.UserID))
}
