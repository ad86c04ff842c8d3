package service_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pageza/cookbook/backend/internal/models"
	"github.com/pageza/cookbook/backend/internal/service"
	"github.com/pageza/cookbook/backend/internal/testhelpers"
	"github.com/pageza/cookbook/backend/internal/types"
)

func TestCreateRecipe(t *testing.T) {
	fx := newRecipeFixture(t)
	ctx := context.Background()
	chef := testhelpers.CreateTestUser(t, fx.db, testhelpers.WithName("Julia", "Child"))

	recipe, err := fx.recipes.Create(ctx, testhelpers.Identity(chef), testhelpers.NewRecipeRequest("Spaghetti Carbonara"), nil)
	require.NoError(t, err)

	assert.Equal(t, "Spaghetti Carbonara", recipe.Name)
	assert.Equal(t, 30, recipe.TotalTime())
	assert.Equal(t, 4, recipe.NumberServings)
	assert.Equal(t, "Julia Child", recipe.CreatorName())
	require.Len(t, recipe.IngredientSections, 1)
	require.Len(t, recipe.IngredientSections[0].Ingredients, 1)
	assert.Equal(t, 1, recipe.IngredientSections[0].Order)
	assert.Equal(t, 1, recipe.IngredientSections[0].Ingredients[0].Order)
	assert.Equal(t, "spaghetti", recipe.IngredientSections[0].Ingredients[0].Name)
	require.Len(t, recipe.InstructionSections, 1)
	require.Len(t, recipe.InstructionSections[0].Instructions, 1)
	assert.Equal(t, 1, recipe.InstructionSections[0].Instructions[0].Order)
}

func TestCreateRecipeNormalizesOrder(t *testing.T) {
	fx := newRecipeFixture(t)
	chef := testhelpers.CreateTestUser(t, fx.db)

	req := testhelpers.NewRecipeRequest("Layered Lasagna")
	req.IngredientSections = []types.IngredientSectionInput{
		{Title: "Sauce", Order: testhelpers.IntPtr(7), Ingredients: []types.IngredientInput{
			{Name: "tomatoes", Order: testhelpers.IntPtr(5)},
			{Name: "garlic", Order: testhelpers.IntPtr(2)},
		}},
		{Title: "Pasta", Order: testhelpers.IntPtr(3), Ingredients: []types.IngredientInput{
			{Name: "lasagna sheets"},
		}},
	}

	recipe, err := fx.recipes.Create(context.Background(), testhelpers.Identity(chef), req, nil)
	require.NoError(t, err)

	require.Len(t, recipe.IngredientSections, 2)
	assert.Equal(t, "Pasta", recipe.IngredientSections[0].Title)
	assert.Equal(t, 1, recipe.IngredientSections[0].Order)
	assert.Equal(t, "Sauce", recipe.IngredientSections[1].Title)
	assert.Equal(t, 2, recipe.IngredientSections[1].Order)

	sauce := recipe.IngredientSections[1].Ingredients
	require.Len(t, sauce, 2)
	assert.Equal(t, "garlic", sauce[0].Name)
	assert.Equal(t, 1, sauce[0].Order)
	assert.Equal(t, "tomatoes", sauce[1].Name)
	assert.Equal(t, 2, sauce[1].Order)
}

func TestCreateRecipeInvalidWritesNothing(t *testing.T) {
	fx := newRecipeFixture(t)
	chef := testhelpers.CreateTestUser(t, fx.db)

	req := testhelpers.NewRecipeRequest("Broken")
	req.InstructionSections = nil

	_, err := fx.recipes.Create(context.Background(), testhelpers.Identity(chef), req, nil)
	var verr *service.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Fields, "instruction_sections")

	var count int64
	require.NoError(t, fx.db.Model(&models.IngredientSection{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestCreateRecipeDuplicateName(t *testing.T) {
	fx := newRecipeFixture(t)
	ctx := context.Background()
	chef := testhelpers.CreateTestUser(t, fx.db)
	actor := testhelpers.Identity(chef)

	first, err := fx.recipes.Create(ctx, actor, testhelpers.NewRecipeRequest("Pad Thai"), nil)
	require.NoError(t, err)
	require.NoError(t, fx.recipes.Delete(ctx, actor, first.ID))

	// Deleted recipes still hold their name.
	_, err = fx.recipes.Create(ctx, actor, testhelpers.NewRecipeRequest("pad thai"), nil)
	var verr *service.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, []string{"A recipe with this name already exists."}, verr.Fields["name"])
}

func TestCreateRecipeWithImage(t *testing.T) {
	fx := newRecipeFixture(t)
	chef := testhelpers.CreateTestUser(t, fx.db)

	recipe, err := fx.recipes.Create(context.Background(), testhelpers.Identity(chef),
		testhelpers.NewRecipeRequest("Pictured Pie"), &service.ImageUpload{Data: pngImage(t), Filename: "pie.png"})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(recipe.ImageURL, "https://images.test/recipe_images/"+recipe.ID.String()))
	assert.True(t, strings.HasSuffix(recipe.ImageURL, ".png"))
	assert.Contains(t, recipe.ThumbnailURL, "/thumbnails/")
	assert.Equal(t, 2, fx.store.Len())
}

func TestCreateRecipeRejectsBadImage(t *testing.T) {
	fx := newRecipeFixture(t)
	chef := testhelpers.CreateTestUser(t, fx.db)

	req := testhelpers.NewRecipeRequest("")
	_, err := fx.recipes.Create(context.Background(), testhelpers.Identity(chef), req,
		&service.ImageUpload{Data: []byte("plain text, not an image")})

	var verr *service.ValidationError
	require.True(t, errors.As(err, &verr))
	// Image problems are reported together with the other fields.
	assert.Contains(t, verr.Fields, "image")
	assert.Contains(t, verr.Fields, "name")
	assert.Zero(t, fx.store.Len())
}

func TestCreateRecipeRollsBackOnImageFailure(t *testing.T) {
	fx := newRecipeFixture(t)
	chef := testhelpers.CreateTestUser(t, fx.db)
	fx.store.FailPut = func(key string) bool { return strings.Contains(key, "thumbnails") }

	_, err := fx.recipes.Create(context.Background(), testhelpers.Identity(chef),
		testhelpers.NewRecipeRequest("Unlucky Stew"), &service.ImageUpload{Data: pngImage(t)})

	var upstream *service.UpstreamStorageError
	require.True(t, errors.As(err, &upstream))
	assert.True(t, errors.Is(err, testhelpers.ErrStoreUnavailable))

	var count int64
	require.NoError(t, fx.db.Unscoped().Model(&models.Recipe{}).Count(&count).Error)
	assert.Zero(t, count)
	require.NoError(t, fx.db.Model(&models.Ingredient{}).Count(&count).Error)
	assert.Zero(t, count)
	assert.Zero(t, fx.store.Len(), "the uploaded original must be removed")
}

func TestUpdateRecipeReplacesGraph(t *testing.T) {
	fx := newRecipeFixture(t)
	ctx := context.Background()
	chef := testhelpers.CreateTestUser(t, fx.db)
	actor := testhelpers.Identity(chef)

	created, err := fx.recipes.Create(ctx, actor, testhelpers.NewRecipeRequest("Spaghetti Carbonara"), nil)
	require.NoError(t, err)
	oldSection := created.IngredientSections[0].ID

	req := testhelpers.NewRecipeRequest("Spaghetti alla Carbonara")
	req.PrepTime = testhelpers.IntPtr(15)
	req.CookTime = testhelpers.IntPtr(25)
	req.IngredientSections = append(req.IngredientSections, types.IngredientSectionInput{
		Title:       "Sauce",
		Ingredients: []types.IngredientInput{{Name: "egg yolks"}, {Name: "pecorino"}},
	})

	updated, err := fx.recipes.Update(ctx, actor, created.ID, req, nil)
	require.NoError(t, err)

	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "Spaghetti alla Carbonara", updated.Name)
	assert.Equal(t, 40, updated.TotalTime())
	require.Len(t, updated.IngredientSections, 2)
	assert.NotEqual(t, oldSection, updated.IngredientSections[0].ID)
	assert.Equal(t, 2, updated.IngredientSections[1].Order)
	assert.Len(t, updated.IngredientSections[1].Ingredients, 2)

	var sections int64
	require.NoError(t, fx.db.Model(&models.IngredientSection{}).Where("recipe_id = ?", created.ID).Count(&sections).Error)
	assert.EqualValues(t, 2, sections)
}

func TestUpdateRecipeKeepsOwnName(t *testing.T) {
	fx := newRecipeFixture(t)
	ctx := context.Background()
	actor := testhelpers.Identity(testhelpers.CreateTestUser(t, fx.db))

	created, err := fx.recipes.Create(ctx, actor, testhelpers.NewRecipeRequest("Focaccia"), nil)
	require.NoError(t, err)

	_, err = fx.recipes.Update(ctx, actor, created.ID, testhelpers.NewRecipeRequest("FOCACCIA"), nil)
	assert.NoError(t, err)
}

func TestUpdateRecipePermissions(t *testing.T) {
	fx := newRecipeFixture(t)
	ctx := context.Background()
	owner := testhelpers.CreateTestUser(t, fx.db)
	stranger := testhelpers.CreateTestUser(t, fx.db)
	admin := testhelpers.CreateTestUser(t, fx.db, testhelpers.AsAdmin())

	created, err := fx.recipes.Create(ctx, testhelpers.Identity(owner), testhelpers.NewRecipeRequest("Borscht"), nil)
	require.NoError(t, err)

	_, err = fx.recipes.Update(ctx, testhelpers.Identity(stranger), created.ID, testhelpers.NewRecipeRequest("Stolen Borscht"), nil)
	var perm *service.PermissionError
	assert.True(t, errors.As(err, &perm))

	_, err = fx.recipes.Update(ctx, testhelpers.Identity(admin), created.ID, testhelpers.NewRecipeRequest("Moderated Borscht"), nil)
	assert.NoError(t, err)

	_, err = fx.recipes.Update(ctx, testhelpers.Identity(owner), uuid.New(), testhelpers.NewRecipeRequest("Ghost"), nil)
	var nf *service.NotFoundError
	assert.True(t, errors.As(err, &nf))
}

func TestUpdateRecipeImageFailureKeepsPreviousState(t *testing.T) {
	fx := newRecipeFixture(t)
	ctx := context.Background()
	actor := testhelpers.Identity(testhelpers.CreateTestUser(t, fx.db))

	created, err := fx.recipes.Create(ctx, actor, testhelpers.NewRecipeRequest("Shakshuka"), nil)
	require.NoError(t, err)

	fx.store.FailPut = func(string) bool { return true }
	req := testhelpers.NewRecipeRequest("Green Shakshuka")
	_, err = fx.recipes.Update(ctx, actor, created.ID, req, &service.ImageUpload{Data: pngImage(t)})
	require.Error(t, err)

	got, err := fx.recipes.Get(ctx, nil, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Shakshuka", got.Name)
	require.Len(t, got.IngredientSections, 1)
	assert.Equal(t, created.IngredientSections[0].ID, got.IngredientSections[0].ID)
}

func TestUpdateRecipeReplacesAndRemovesImage(t *testing.T) {
	fx := newRecipeFixture(t)
	ctx := context.Background()
	actor := testhelpers.Identity(testhelpers.CreateTestUser(t, fx.db))

	created, err := fx.recipes.Create(ctx, actor, testhelpers.NewRecipeRequest("Tarte Tatin"),
		&service.ImageUpload{Data: pngImage(t)})
	require.NoError(t, err)

	replaced, err := fx.recipes.Update(ctx, actor, created.ID, testhelpers.NewRecipeRequest("Tarte Tatin"),
		&service.ImageUpload{Data: pngImage(t)})
	require.NoError(t, err)
	assert.NotEqual(t, created.ImageURL, replaced.ImageURL)
	assert.Equal(t, 2, fx.store.Len())
	assert.Contains(t, fx.store.Deleted, created.ImageKey)
	assert.Contains(t, fx.store.Deleted, created.ThumbnailKey)

	req := testhelpers.NewRecipeRequest("Tarte Tatin")
	req.RemoveImage = true
	cleared, err := fx.recipes.Update(ctx, actor, created.ID, req, nil)
	require.NoError(t, err)
	assert.Empty(t, cleared.ImageURL)
	assert.Empty(t, cleared.ThumbnailURL)
	assert.Zero(t, fx.store.Len())
}

func TestTotalTimeFollowsStoredTimes(t *testing.T) {
	fx := newRecipeFixture(t)
	ctx := context.Background()
	actor := testhelpers.Identity(testhelpers.CreateTestUser(t, fx.db))

	times := []struct{ prep, cook int }{{0, 0}, {5, 0}, {45, 90}, {1, 1}}
	created, err := fx.recipes.Create(ctx, actor, testhelpers.NewRecipeRequest("Timed"), nil)
	require.NoError(t, err)
	assert.Equal(t, models.ComputeTotalTime(created.PrepTime, created.CookTime), created.TotalTime())

	for _, tt := range times {
		req := testhelpers.NewRecipeRequest("Timed")
		req.PrepTime = testhelpers.IntPtr(tt.prep)
		req.CookTime = testhelpers.IntPtr(tt.cook)
		updated, err := fx.recipes.Update(ctx, actor, created.ID, req, nil)
		require.NoError(t, err)
		assert.Equal(t, tt.prep+tt.cook, updated.TotalTime())
	}
}

func TestSoftDeleteAndRestore(t *testing.T) {
	fx := newRecipeFixture(t)
	ctx := context.Background()
	owner := testhelpers.CreateTestUser(t, fx.db)
	other := testhelpers.CreateTestUser(t, fx.db)
	admin := testhelpers.CreateTestUser(t, fx.db, testhelpers.AsAdmin())

	created, err := fx.recipes.Create(ctx, testhelpers.Identity(owner), testhelpers.NewRecipeRequest("Gumbo"), nil)
	require.NoError(t, err)

	var perm *service.PermissionError
	require.True(t, errors.As(fx.recipes.Delete(ctx, testhelpers.Identity(other), created.ID), &perm))
	require.NoError(t, fx.recipes.Delete(ctx, testhelpers.Identity(owner), created.ID))

	result, err := fx.recipes.Search(ctx, &service.RecipeFilter{})
	require.NoError(t, err)
	assert.Zero(t, result.Count)

	var nf *service.NotFoundError
	_, err = fx.recipes.Get(ctx, nil, created.ID)
	assert.True(t, errors.As(err, &nf))
	otherID := testhelpers.Identity(other)
	_, err = fx.recipes.Get(ctx, &otherID, created.ID)
	assert.True(t, errors.As(err, &nf))

	adminID := testhelpers.Identity(admin)
	got, err := fx.recipes.Get(ctx, &adminID, created.ID)
	require.NoError(t, err)
	assert.True(t, got.Deleted())
	assert.Len(t, got.IngredientSections, 1, "children survive a soft delete")

	_, err = fx.recipes.Restore(ctx, testhelpers.Identity(owner), created.ID)
	assert.True(t, errors.As(err, &perm))

	restored, err := fx.recipes.Restore(ctx, adminID, created.ID)
	require.NoError(t, err)
	assert.False(t, restored.Deleted())

	_, err = fx.recipes.Restore(ctx, adminID, created.ID)
	assert.True(t, errors.As(err, &nf), "restoring an active recipe")
}

func TestDeletedCreatorShowsAsAnonymous(t *testing.T) {
	fx := newRecipeFixture(t)
	ctx := context.Background()
	chef := testhelpers.CreateTestUser(t, fx.db, testhelpers.WithName("Gone", "Chef"))
	recipe := testhelpers.CreateTestRecipe(t, fx.db, chef, "Orphaned Omelette")

	users := service.NewUserService(fx.db, zap.NewNop())
	require.NoError(t, users.Deactivate(ctx, chef.ID))

	result, err := fx.recipes.Search(ctx, &service.RecipeFilter{Search: "omelette"})
	require.NoError(t, err)
	require.Len(t, result.Recipes, 1)
	assert.Equal(t, models.AnonymousUser, result.Recipes[0].CreatorName())

	got, err := fx.recipes.Get(ctx, nil, recipe.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AnonymousUser, got.CreatorName())
}
