package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pageza/cookbook/backend/internal/models"
	"github.com/pageza/cookbook/backend/internal/service"
	"github.com/pageza/cookbook/backend/internal/testhelpers"
	"github.com/pageza/cookbook/backend/internal/types"
)

func TestRegister(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	users := service.NewUserService(db, zap.NewNop())

	user, err := users.Register(context.Background(), &types.RegisterRequest{
		Email:     " Marcella@Example.com",
		FirstName: " Marcella ",
		LastName:  "Hazan",
		Password:  "bolognese1",
	})
	require.NoError(t, err)
	assert.Equal(t, "marcella@example.com", user.Email)
	assert.Equal(t, "Marcella", user.FirstName)
	assert.False(t, user.IsAdmin)
	assert.True(t, service.CheckPassword(user.PasswordHash, "bolognese1"))
}

func TestRegisterValidation(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	users := service.NewUserService(db, zap.NewNop())
	taken := testhelpers.CreateTestUser(t, db, testhelpers.WithEmail("taken@example.com"))
	require.NoError(t, users.Deactivate(context.Background(), taken.ID))

	_, err := users.Register(context.Background(), &types.RegisterRequest{
		Email:     "TAKEN@example.com",
		FirstName: "J",
		Password:  "short",
	})
	var verr *service.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, []string{"A user with this email already exists."}, verr.Fields["email"])
	assert.Equal(t, []string{"Ensure this field has at least 2 characters."}, verr.Fields["first_name"])
	assert.Equal(t, []string{"This field is required."}, verr.Fields["last_name"])
	assert.Equal(t, []string{"Ensure this field has at least 8 characters."}, verr.Fields["password"])

	_, err = users.Register(context.Background(), &types.RegisterRequest{
		Email: "not-an-email", FirstName: "Jo", LastName: "Doe", Password: "longenough",
	})
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, []string{"Enter a valid email address."}, verr.Fields["email"])
}

func TestUpdateProfile(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	users := service.NewUserService(db, zap.NewNop())
	ctx := context.Background()
	user := testhelpers.CreateTestUser(t, db)
	testhelpers.CreateTestUser(t, db, testhelpers.WithEmail("other@example.com"))

	updated, err := users.UpdateProfile(ctx, user.ID, &types.UpdateProfileRequest{
		FirstName: testhelpers.StrPtr("Julia"),
		Email:     testhelpers.StrPtr("JULIA@example.com"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Julia", updated.FirstName)
	assert.Equal(t, "User", updated.LastName, "absent fields are left alone")
	assert.Equal(t, "julia@example.com", updated.Email)

	_, err = users.UpdateProfile(ctx, user.ID, &types.UpdateProfileRequest{Email: testhelpers.StrPtr("other@example.com")})
	var verr *service.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Fields, "email")
}

func TestUpdateProfilePassword(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	users := service.NewUserService(db, zap.NewNop())
	ctx := context.Background()
	user := testhelpers.CreateTestUser(t, db)

	tests := []struct {
		name  string
		req   types.UpdateProfileRequest
		field string
	}{
		{"wrong current password", types.UpdateProfileRequest{
			CurrentPassword: "guess", NewPassword: "newpassword1", ConfirmPassword: "newpassword1",
		}, "current_password"},
		{"missing confirmation", types.UpdateProfileRequest{
			CurrentPassword: testhelpers.TestPassword, NewPassword: "newpassword1",
		}, "confirm_password"},
		{"mismatched confirmation", types.UpdateProfileRequest{
			CurrentPassword: testhelpers.TestPassword, NewPassword: "newpassword1", ConfirmPassword: "newpassword2",
		}, "confirm_password"},
		{"too short", types.UpdateProfileRequest{
			CurrentPassword: testhelpers.TestPassword, NewPassword: "short", ConfirmPassword: "short",
		}, "new_password"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.req
			_, err := users.UpdateProfile(ctx, user.ID, &req)
			var verr *service.ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Contains(t, verr.Fields, tt.field)
		})
	}

	updated, err := users.UpdateProfile(ctx, user.ID, &types.UpdateProfileRequest{
		CurrentPassword: testhelpers.TestPassword, NewPassword: "newpassword1", ConfirmPassword: "newpassword1",
	})
	require.NoError(t, err)
	assert.True(t, service.CheckPassword(updated.PasswordHash, "newpassword1"))
}

func TestDeactivateAndRestoreUser(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	users := service.NewUserService(db, zap.NewNop())
	ctx := context.Background()
	user := testhelpers.CreateTestUser(t, db)
	admin := testhelpers.CreateTestUser(t, db, testhelpers.AsAdmin())

	require.NoError(t, users.Deactivate(ctx, user.ID))

	var nf *service.NotFoundError
	_, err := users.GetByID(ctx, user.ID)
	assert.True(t, errors.As(err, &nf))
	assert.True(t, errors.As(users.Deactivate(ctx, user.ID), &nf), "already deactivated")

	var perm *service.PermissionError
	_, err = users.Restore(ctx, testhelpers.Identity(user), user.ID)
	assert.True(t, errors.As(err, &perm))

	restored, err := users.Restore(ctx, testhelpers.Identity(admin), user.ID)
	require.NoError(t, err)
	assert.True(t, restored.Active())
}

func TestListWithRecipes(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	users := service.NewUserService(db, zap.NewNop())
	zed := testhelpers.CreateTestUser(t, db, testhelpers.WithName("Ann", "Zed"))
	abe := testhelpers.CreateTestUser(t, db, testhelpers.WithName("Bea", "Abe"))
	abe2 := testhelpers.CreateTestUser(t, db, testhelpers.WithName("Al", "Abe"))
	testhelpers.CreateTestUser(t, db, testhelpers.WithName("No", "Recipes"))
	onlyDeleted := testhelpers.CreateTestUser(t, db, testhelpers.WithName("Only", "Deleted"))

	testhelpers.CreateTestRecipe(t, db, zed, "Zed's Pie")
	testhelpers.CreateTestRecipe(t, db, abe, "Abe's Pie")
	testhelpers.CreateTestRecipe(t, db, abe2, "Al's Pie")
	gone := testhelpers.CreateTestRecipe(t, db, onlyDeleted, "Deleted Pie")
	require.NoError(t, db.Delete(&models.Recipe{}, "id = ?", gone.ID).Error)

	list, err := users.ListWithRecipes(context.Background())
	require.NoError(t, err)
	got := make([]string, 0, len(list))
	for _, u := range list {
		got = append(got, u.FullName())
	}
	assert.Equal(t, []string{"Al Abe", "Bea Abe", "Ann Zed"}, got)
}
