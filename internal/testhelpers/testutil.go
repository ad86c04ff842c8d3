package testhelpers

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/pageza/cookbook/backend/internal/database"
	"github.com/pageza/cookbook/backend/internal/models"
	"github.com/pageza/cookbook/backend/internal/types"
)

// TestPassword is the plain text password of every user created by CreateTestUser.
const TestPassword = "testpassword123"

var testPasswordHash = func() string {
	hash, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	return string(hash)
}()

// SetupTestDB returns a migrated in-memory sqlite database private to the test.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.AutoMigrate(db))
	return db
}

type UserOption func(*models.User)

func AsAdmin() UserOption {
	return func(u *models.User) { u.IsAdmin = true }
}

func WithName(first, last string) UserOption {
	return func(u *models.User) {
		u.FirstName = first
		u.LastName = last
	}
}

func WithEmail(email string) UserOption {
	return func(u *models.User) { u.Email = email }
}

// CreateTestUser inserts an active user whose password is TestPassword.
func CreateTestUser(t *testing.T, db *gorm.DB, opts ...UserOption) *models.User {
	t.Helper()
	id := uuid.New()
	user := &models.User{
		ID:           id,
		Email:        fmt.Sprintf("user+%s@example.com", id.String()[:8]),
		FirstName:    "Test",
		LastName:     "User",
		PasswordHash: testPasswordHash,
	}
	for _, opt := range opts {
		opt(user)
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// Identity returns the request identity of user.
func Identity(user *models.User) types.Identity {
	return types.Identity{UserID: user.ID, IsAdmin: user.IsAdmin}
}

type RecipeOption func(*models.Recipe)

func WithIngredients(names ...string) RecipeOption {
	return func(r *models.Recipe) {
		sec := &r.IngredientSections[0]
		sec.Ingredients = nil
		for i, n := range names {
			sec.Ingredients = append(sec.Ingredients, models.Ingredient{Name: n, Order: i + 1})
		}
	}
}

func WithFacets(course models.CourseType, protein models.Protein, style models.EthnicStyle) RecipeOption {
	return func(r *models.Recipe) {
		r.CourseType = course
		r.PrimaryProtein = protein
		r.EthnicStyle = style
	}
}

func WithTimes(prep, cook int) RecipeOption {
	return func(r *models.Recipe) {
		r.PrepTime = prep
		r.CookTime = cook
	}
}

func WithServings(n int) RecipeOption {
	return func(r *models.Recipe) { r.NumberServings = n }
}

func CreatedAt(at time.Time) RecipeOption {
	return func(r *models.Recipe) { r.CreatedAt = at }
}

// CreateTestRecipe inserts a recipe with one ingredient and one instruction
// section directly, bypassing validation.
func CreateTestRecipe(t *testing.T, db *gorm.DB, creator *models.User, name string, opts ...RecipeOption) *models.Recipe {
	t.Helper()
	recipe := &models.Recipe{
		Name:           name,
		Description:    "A recipe for " + name,
		CourseType:     models.CourseDinner,
		RecipeType:     models.RecipeEntree,
		PrimaryProtein: models.ProteinNone,
		EthnicStyle:    models.StyleAmerican,
		PrepTime:       10,
		CookTime:       20,
		NumberServings: 4,
		IngredientSections: []models.IngredientSection{{
			Title:       "Main Ingredients",
			Order:       1,
			Ingredients: []models.Ingredient{{Name: "salt", Order: 1}},
		}},
		InstructionSections: []models.InstructionSection{{
			Title:        "Steps",
			Order:        1,
			Instructions: []models.Instruction{{Step: "Cook it.", Order: 1}},
		}},
	}
	if creator != nil {
		recipe.CreatorID = &creator.ID
	}
	for _, opt := range opts {
		opt(recipe)
	}
	require.NoError(t, db.Create(recipe).Error)
	return recipe
}

func IntPtr(v int) *int { return &v }

func StrPtr(v string) *string { return &v }

// NewRecipeRequest returns a valid nested payload named name.
func NewRecipeRequest(name string) *types.RecipeRequest {
	return &types.RecipeRequest{
		Name:           name,
		Description:    "Classic Roman pasta.",
		CourseType:     string(models.CourseDinner),
		RecipeType:     string(models.RecipePasta),
		PrimaryProtein: string(models.ProteinPork),
		EthnicStyle:    string(models.StyleItalian),
		PrepTime:       IntPtr(10),
		CookTime:       IntPtr(20),
		NumberServings: IntPtr(4),
		IngredientSections: []types.IngredientSectionInput{{
			Title: "Main Ingredients",
			Order: IntPtr(1),
			Ingredients: []types.IngredientInput{
				{Name: "spaghetti", Quantity: StrPtr("400"), Unit: StrPtr("g"), Order: IntPtr(1)},
			},
		}},
		InstructionSections: []types.InstructionSectionInput{{
			Title: "Cooking Steps",
			Order: IntPtr(1),
			Instructions: []types.InstructionInput{
				{Step: "Cook spaghetti in salted water.", Order: IntPtr(1)},
			},
		}},
	}
}
