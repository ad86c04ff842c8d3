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

func TestComments(t *testing.T) {
	fx := newRecipeFixture(t)
	comments := service.NewCommentService(fx.db, fx.recipes, zap.NewNop())
	ctx := context.Background()
	owner := testhelpers.CreateTestUser(t, fx.db)
	guest := testhelpers.CreateTestUser(t, fx.db, testhelpers.WithName("Guest", "Eater"))
	admin := testhelpers.CreateTestUser(t, fx.db, testhelpers.AsAdmin())
	recipe := testhelpers.CreateTestRecipe(t, fx.db, owner, "Tiramisu")

	first, err := comments.Create(ctx, testhelpers.Identity(guest), recipe.ID, &types.CommentRequest{Text: "  Delicious!  "})
	require.NoError(t, err)
	assert.Equal(t, "Delicious!", first.Text)
	assert.Equal(t, "Guest Eater", first.AuthorName())

	_, err = comments.Create(ctx, testhelpers.Identity(owner), recipe.ID, &types.CommentRequest{Text: "Thanks!"})
	require.NoError(t, err)

	list, err := comments.List(ctx, nil, recipe.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Delicious!", list[0].Text)

	var perm *service.PermissionError
	assert.True(t, errors.As(comments.Delete(ctx, testhelpers.Identity(owner), recipe.ID, first.ID), &perm),
		"recipe owners cannot delete other people's comments")
	require.NoError(t, comments.Delete(ctx, testhelpers.Identity(admin), recipe.ID, first.ID))

	var nf *service.NotFoundError
	assert.True(t, errors.As(comments.Delete(ctx, testhelpers.Identity(admin), recipe.ID, first.ID), &nf))

	list, err = comments.List(ctx, nil, recipe.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestCommentValidation(t *testing.T) {
	fx := newRecipeFixture(t)
	comments := service.NewCommentService(fx.db, fx.recipes, zap.NewNop())
	user := testhelpers.CreateTestUser(t, fx.db)
	recipe := testhelpers.CreateTestRecipe(t, fx.db, user, "Flan")

	for _, text := range []string{"", "   ", strings.Repeat("x", models.MaxCommentLen+1)} {
		_, err := comments.Create(context.Background(), testhelpers.Identity(user), recipe.ID, &types.CommentRequest{Text: text})
		var verr *service.ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Contains(t, verr.Fields, "text")
	}

	_, err := comments.Create(context.Background(), testhelpers.Identity(user), uuid.New(), &types.CommentRequest{Text: "hello"})
	var nf *service.NotFoundError
	assert.True(t, errors.As(err, &nf))
}

func TestCommentsOnDeletedRecipe(t *testing.T) {
	fx := newRecipeFixture(t)
	comments := service.NewCommentService(fx.db, fx.recipes, zap.NewNop())
	ctx := context.Background()
	owner := testhelpers.CreateTestUser(t, fx.db)
	admin := testhelpers.Identity(testhelpers.CreateTestUser(t, fx.db, testhelpers.AsAdmin()))
	recipe := testhelpers.CreateTestRecipe(t, fx.db, owner, "Retired Recipe")

	_, err := comments.Create(ctx, testhelpers.Identity(owner), recipe.ID, &types.CommentRequest{Text: "Before"})
	require.NoError(t, err)
	require.NoError(t, fx.recipes.Delete(ctx, testhelpers.Identity(owner), recipe.ID))

	var nf *service.NotFoundError
	_, err = comments.Create(ctx, testhelpers.Identity(owner), recipe.ID, &types.CommentRequest{Text: "After"})
	assert.True(t, errors.As(err, &nf))
	_, err = comments.List(ctx, nil, recipe.ID)
	assert.True(t, errors.As(err, &nf))

	list, err := comments.List(ctx, &admin, recipe.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestCommentByDeactivatedAuthor(t *testing.T) {
	fx := newRecipeFixture(t)
	comments := service.NewCommentService(fx.db, fx.recipes, zap.NewNop())
	ctx := context.Background()
	owner := testhelpers.CreateTestUser(t, fx.db)
	author := testhelpers.CreateTestUser(t, fx.db)
	recipe := testhelpers.CreateTestRecipe(t, fx.db, owner, "Popular Pie")

	_, err := comments.Create(ctx, testhelpers.Identity(author), recipe.ID, &types.CommentRequest{Text: "Great pie"})
	require.NoError(t, err)
	require.NoError(t, service.NewUserService(fx.db, zap.NewNop()).Deactivate(ctx, author.ID))

	list, err := comments.List(ctx, nil, recipe.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, models.AnonymousUser, list[0].AuthorName())
}
