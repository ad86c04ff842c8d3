package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/pageza/cookbook/backend/internal/models"
	"github.com/pageza/cookbook/backend/internal/types"
)

// IRecipeService defines the recipe operations exposed over HTTP
type IRecipeService interface {
	Create(ctx context.Context, actor types.Identity, req *types.RecipeRequest, upload *ImageUpload) (*models.Recipe, error)
	Update(ctx context.Context, actor types.Identity, id uuid.UUID, req *types.RecipeRequest, upload *ImageUpload) (*models.Recipe, error)
	Get(ctx context.Context, actor *types.Identity, id uuid.UUID) (*models.Recipe, error)
	Delete(ctx context.Context, actor types.Identity, id uuid.UUID) error
	Restore(ctx context.Context, actor types.Identity, id uuid.UUID) (*models.Recipe, error)
	Search(ctx context.Context, f *RecipeFilter) (*RecipePageResult, error)
	RemoveIngredientSection(ctx context.Context, actor types.Identity, recipeID, sectionID uuid.UUID) (*models.Recipe, error)
	RemoveIngredient(ctx context.Context, actor types.Identity, recipeID, sectionID, ingredientID uuid.UUID) (*models.Recipe, error)
	RemoveInstructionSection(ctx context.Context, actor types.Identity, recipeID, sectionID uuid.UUID) (*models.Recipe, error)
	RemoveInstruction(ctx context.Context, actor types.Identity, recipeID, sectionID, instructionID uuid.UUID) (*models.Recipe, error)
}

// ICommentService defines the interface for comment operations
type ICommentService interface {
	List(ctx context.Context, actor *types.Identity, recipeID uuid.UUID) ([]models.Comment, error)
	Create(ctx context.Context, actor types.Identity, recipeID uuid.UUID, req *types.CommentRequest) (*models.Comment, error)
	Delete(ctx context.Context, actor types.Identity, recipeID, commentID uuid.UUID) error
}

// IAuthService defines the interface for authentication operations
type IAuthService interface {
	Login(ctx context.Context, email, password string) (*models.User, *types.TokenPair, error)
	Refresh(ctx context.Context, refresh string) (*types.TokenPair, error)
	Logout(ctx context.Context, actor types.Identity, refresh string) error
	Authenticate(ctx context.Context, access string) (*types.Identity, error)
}

// IUserService defines the interface for account and profile operations
type IUserService interface {
	Register(ctx context.Context, req *types.RegisterRequest) (*models.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, req *types.UpdateProfileRequest) (*models.User, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
	Restore(ctx context.Context, actor types.Identity, id uuid.UUID) (*models.User, error)
	ListWithRecipes(ctx context.Context) ([]models.User, error)
}

type IPasswordResetService interface {
	Request(ctx context.Context, email string) error
	Confirm(ctx context.Context, req *types.PasswordResetConfirmRequest) error
}

var (
	_ IRecipeService        = (*RecipeService)(nil)
	_ ICommentService       = (*CommentService)(nil)
	_ IAuthService          = (*AuthService)(nil)
	_ IUserService          = (*UserService)(nil)
	_ IPasswordResetService = (*PasswordResetService)(nil)
	_ Mailer                = (*EmailService)(nil)
	_ ImageStore            = (*S3ImageStore)(nil)
	_ ImageStore            = (*LocalImageStore)(nil)
	_ TokenStore            = (*RedisTokenStore)(nil)
	_ TokenStore            = (*MemoryTokenStore)(nil)
)
