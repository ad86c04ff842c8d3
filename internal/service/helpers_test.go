package service_test

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pageza/cookbook/backend/internal/service"
	"github.com/pageza/cookbook/backend/internal/testhelpers"
)

type recipeFixture struct {
	db      *gorm.DB
	store   *testhelpers.MemoryImageStore
	recipes *service.RecipeService
}

func newRecipeFixture(t *testing.T) *recipeFixture {
	t.Helper()
	db := testhelpers.SetupTestDB(t)
	store := testhelpers.NewMemoryImageStore()
	logger := zap.NewNop()
	recipes := service.NewRecipeService(db, service.NewImageService(store, logger), logger, service.RecipeServiceOptions{
		DefaultPageSize: 2,
		MaxPageSize:     10,
	})
	return &recipeFixture{db: db, store: store, recipes: recipes}
}

func pngImage(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 120, 90))
	for x := 0; x < 120; x++ {
		for y := 0; y < 90; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}
