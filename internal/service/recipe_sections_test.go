package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/cookbook/backend/internal/models"
	"github.com/pageza/cookbook/backend/internal/service"
	"github.com/pageza/cookbook/backend/internal/testhelpers"
	"github.com/pageza/cookbook/backend/internal/types"
)

// threeOfEach returns a payload with three ingredient and instruction
// sections, each holding three items.
func threeOfEach(name string) *types.RecipeRequest {
	req := testhelpers.NewRecipeRequest(name)
	req.IngredientSections = nil
	req.InstructionSections = nil
	for _, title := range []string{"First", "Second", "Third"} {
		req.IngredientSections = append(req.IngredientSections, types.IngredientSectionInput{
			Title: title,
			Ingredients: []types.IngredientInput{
				{Name: title + " a"}, {Name: title + " b"}, {Name: title + " c"},
			},
		})
		req.InstructionSections = append(req.InstructionSections, types.InstructionSectionInput{
			Title: title,
			Instructions: []types.InstructionInput{
				{Step: title + " 1"}, {Step: title + " 2"}, {Step: title + " 3"},
			},
		})
	}
	return req
}

func assertContiguous(t *testing.T, recipe *models.Recipe) {
	t.Helper()
	for i, sec := range recipe.IngredientSections {
		assert.Equal(t, i+1, sec.Order, "ingredient section %q", sec.Title)
		for j, ing := range sec.Ingredients {
			assert.Equal(t, j+1, ing.Order, "ingredient %q", ing.Name)
		}
	}
	for i, sec := range recipe.InstructionSections {
		assert.Equal(t, i+1, sec.Order, "instruction section %q", sec.Title)
		for j, ins := range sec.Instructions {
			assert.Equal(t, j+1, ins.Order, "instruction %q", ins.Step)
		}
	}
}

func TestRemoveSectionsAndItemsRenumbers(t *testing.T) {
	fx := newRecipeFixture(t)
	ctx := context.Background()
	actor := testhelpers.Identity(testhelpers.CreateTestUser(t, fx.db))

	recipe, err := fx.recipes.Create(ctx, actor, threeOfEach("Tasting Menu"), nil)
	require.NoError(t, err)
	id := recipe.ID

	recipe, err = fx.recipes.RemoveIngredientSection(ctx, actor, id, recipe.IngredientSections[0].ID)
	require.NoError(t, err)
	require.Len(t, recipe.IngredientSections, 2)
	assert.Equal(t, "Second", recipe.IngredientSections[0].Title)
	assertContiguous(t, recipe)

	sec := recipe.IngredientSections[1]
	recipe, err = fx.recipes.RemoveIngredient(ctx, actor, id, sec.ID, sec.Ingredients[1].ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Third a", "Third c"}, []string{
		recipe.IngredientSections[1].Ingredients[0].Name,
		recipe.IngredientSections[1].Ingredients[1].Name,
	})
	assertContiguous(t, recipe)

	recipe, err = fx.recipes.RemoveInstructionSection(ctx, actor, id, recipe.InstructionSections[1].ID)
	require.NoError(t, err)
	require.Len(t, recipe.InstructionSections, 2)
	assertContiguous(t, recipe)

	ins := recipe.InstructionSections[0]
	recipe, err = fx.recipes.RemoveInstruction(ctx, actor, id, ins.ID, ins.Instructions[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "First 2", recipe.InstructionSections[0].Instructions[0].Step)
	assertContiguous(t, recipe)

	// Re-reading gives the same contiguous ordering.
	reread, err := fx.recipes.Get(ctx, nil, id)
	require.NoError(t, err)
	assertContiguous(t, reread)

	var orphans int64
	require.NoError(t, fx.db.Model(&models.Ingredient{}).
		Where("section_id NOT IN (?)", fx.db.Model(&models.IngredientSection{}).Select("id")).
		Count(&orphans).Error)
	assert.Zero(t, orphans)
}

func TestRemoveLastSiblingIsRejected(t *testing.T) {
	fx := newRecipeFixture(t)
	ctx := context.Background()
	actor := testhelpers.Identity(testhelpers.CreateTestUser(t, fx.db))

	recipe, err := fx.recipes.Create(ctx, actor, testhelpers.NewRecipeRequest("Minimal"), nil)
	require.NoError(t, err)
	ingSec := recipe.IngredientSections[0]
	insSec := recipe.InstructionSections[0]

	tests := []struct {
		name  string
		field string
		call  func() error
	}{
		{"ingredient section", "ingredient_sections", func() error {
			_, err := fx.recipes.RemoveIngredientSection(ctx, actor, recipe.ID, ingSec.ID)
			return err
		}},
		{"ingredient", "ingredients", func() error {
			_, err := fx.recipes.RemoveIngredient(ctx, actor, recipe.ID, ingSec.ID, ingSec.Ingredients[0].ID)
			return err
		}},
		{"instruction section", "instruction_sections", func() error {
			_, err := fx.recipes.RemoveInstructionSection(ctx, actor, recipe.ID, insSec.ID)
			return err
		}},
		{"instruction", "instructions", func() error {
			_, err := fx.recipes.RemoveInstruction(ctx, actor, recipe.ID, insSec.ID, insSec.Instructions[0].ID)
			return err
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var verr *service.ValidationError
			require.True(t, errors.As(tt.call(), &verr))
			assert.Contains(t, verr.Fields, tt.field)
		})
	}

	got, err := fx.recipes.Get(ctx, nil, recipe.ID)
	require.NoError(t, err)
	assert.Len(t, got.IngredientSections[0].Ingredients, 1)
	assert.Len(t, got.InstructionSections[0].Instructions, 1)
}

func TestRemoveChecksOwnershipAndParent(t *testing.T) {
	fx := newRecipeFixture(t)
	ctx := context.Background()
	owner := testhelpers.Identity(testhelpers.CreateTestUser(t, fx.db))
	stranger := testhelpers.Identity(testhelpers.CreateTestUser(t, fx.db))

	recipe, err := fx.recipes.Create(ctx, owner, threeOfEach("Guarded"), nil)
	require.NoError(t, err)
	other, err := fx.recipes.Create(ctx, owner, threeOfEach("Elsewhere"), nil)
	require.NoError(t, err)

	var perm *service.PermissionError
	_, err = fx.recipes.RemoveIngredientSection(ctx, stranger, recipe.ID, recipe.IngredientSections[0].ID)
	assert.True(t, errors.As(err, &perm))

	var nf *service.NotFoundError
	_, err = fx.recipes.RemoveIngredientSection(ctx, owner, recipe.ID, other.IngredientSections[0].ID)
	assert.True(t, errors.As(err, &nf), "section of another recipe")

	_, err = fx.recipes.RemoveInstruction(ctx, owner, recipe.ID, other.InstructionSections[0].ID, other.InstructionSections[0].Instructions[0].ID)
	assert.True(t, errors.As(err, &nf), "item through a foreign section")

	_, err = fx.recipes.RemoveIngredient(ctx, owner, recipe.ID, recipe.IngredientSections[0].ID, uuid.New())
	assert.True(t, errors.As(err, &nf))
}
