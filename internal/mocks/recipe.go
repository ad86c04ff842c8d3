package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/pageza/cookbook/backend/internal/models"
	"github.com/pageza/cookbook/backend/internal/service"
	"github.com/pageza/cookbook/backend/internal/types"
)

// MockRecipeService is a mock implementation of service.IRecipeService
type MockRecipeService struct {
	mock.Mock
}

var _ service.IRecipeService = (*MockRecipeService)(nil)

func recipeResult(args mock.Arguments) (*models.Recipe, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Recipe), args.Error(1)
}

func (m *MockRecipeService) Create(ctx context.Context, actor types.Identity, req *types.RecipeRequest, upload *service.ImageUpload) (*models.Recipe, error) {
	return recipeResult(m.Called(ctx, actor, req, upload))
}

func (m *MockRecipeService) Update(ctx context.Context, actor types.Identity, id uuid.UUID, req *types.RecipeRequest, upload *service.ImageUpload) (*models.Recipe, error) {
	return recipeResult(m.Called(ctx, actor, id, req, upload))
}

func (m *MockRecipeService) Get(ctx context.Context, actor *types.Identity, id uuid.UUID) (*models.Recipe, error) {
	return recipeResult(m.Called(ctx, actor, id))
}

func (m *MockRecipeService) Delete(ctx context.Context, actor types.Identity, id uuid.UUID) error {
	args := m.Called(ctx, actor, id)
	return args.Error(0)
}

func (m *MockRecipeService) Restore(ctx context.Context, actor types.Identity, id uuid.UUID) (*models.Recipe, error) {
	return recipeResult(m.Called(ctx, actor, id))
}

// Search mocks the Search method
func (m *MockRecipeService) Search(ctx context.Context, f *service.RecipeFilter) (*service.RecipePageResult, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.RecipePageResult), args.Error(1)
}

func (m *MockRecipeService) RemoveIngredientSection(ctx context.Context, actor types.Identity, recipeID, sectionID uuid.UUID) (*models.Recipe, error) {
	return recipeResult(m.Called(ctx, actor, recipeID, sectionID))
}

func (m *MockRecipeService) RemoveIngredient(ctx context.Context, actor types.Identity, recipeID, sectionID, ingredientID uuid.UUID) (*models.Recipe, error) {
	return recipeResult(m.Called(ctx, actor, recipeID, sectionID, ingredientID))
}

func (m *MockRecipeService) RemoveInstructionSection(ctx context.Context, actor types.Identity, recipeID, sectionID uuid.UUID) (*models.Recipe, error) {
	return recipeResult(m.Called(ctx, actor, recipeID, sectionID))
}

func (m *MockRecipeService) RemoveInstruction(ctx context.Context, actor types.Identity, recipeID, sectionID, instructionID uuid.UUID) (*models.Recipe, error) {
	return recipeResult(m.Called(ctx, actor, recipeID, sectionID, instructionID))
}
