package types

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/pageza/cookbook/backend/internal/models"
)

const defaultImage = "https://cdn.example.com/default.png"

func TestNewRecipeSummaryImageFallbacks(t *testing.T) {
	r := &models.Recipe{Name: "Plain", PrepTime: 5, CookTime: 10}
	s := NewRecipeSummary(r, defaultImage)
	assert.Equal(t, defaultImage, s.ThumbnailURL)
	assert.Equal(t, 15, s.TotalTime)
	assert.Equal(t, models.AnonymousUser, s.CreatorName)

	r.ImageURL = "https://cdn.example.com/full.png"
	assert.Equal(t, r.ImageURL, NewRecipeSummary(r, defaultImage).ThumbnailURL)

	r.ThumbnailURL = "https://cdn.example.com/thumb.jpg"
	assert.Equal(t, r.ThumbnailURL, NewRecipeSummary(r, defaultImage).ThumbnailURL)
}

func TestNewRecipeDetail(t *testing.T) {
	creator := &models.User{ID: uuid.New(), FirstName: "Marcella", LastName: "Hazan"}
	r := &models.Recipe{
		ID:        uuid.New(),
		Name:      "Ragu",
		PrepTime:  30,
		CookTime:  180,
		CreatorID: &creator.ID,
		Creator:   creator,
		DeletedAt: gorm.DeletedAt{Time: time.Now(), Valid: true},
		IngredientSections: []models.IngredientSection{{
			Title:       "Sauce",
			Order:       1,
			Ingredients: []models.Ingredient{{Name: "beef", Order: 1}, {Name: "milk", Order: 2}},
		}},
	}

	d := NewRecipeDetail(r, defaultImage)
	assert.Equal(t, 210, d.TotalTime)
	assert.Equal(t, "Marcella Hazan", d.CreatorName)
	assert.True(t, d.IsDeleted)
	assert.Equal(t, defaultImage, d.ImageURL)
	assert.Equal(t, defaultImage, d.ThumbnailURL)
	require.Len(t, d.IngredientSections, 1)
	assert.Len(t, d.IngredientSections[0].Ingredients, 2)
	assert.NotNil(t, d.InstructionSections, "empty collections serialize as []")
}

func TestServingsValue(t *testing.T) {
	four, six := 4, 6
	assert.Nil(t, (&RecipeRequest{}).ServingsValue())
	assert.Equal(t, &six, (&RecipeRequest{Servings: &six}).ServingsValue())
	assert.Equal(t, &four, (&RecipeRequest{NumberServings: &four, Servings: &six}).ServingsValue())
}

func TestAllFacets(t *testing.T) {
	f := AllFacets()
	assert.Contains(t, f.CourseTypes, models.CourseDinner)
	assert.Len(t, f.TimeNeeded, 4)
	assert.Equal(t, models.EthnicStyles, f.EthnicStyles)
}
