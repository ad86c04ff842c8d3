package api

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pageza/cookbook/backend/internal/middleware"
	"github.com/pageza/cookbook/backend/internal/models"
	"github.com/pageza/cookbook/backend/internal/service"
	"github.com/pageza/cookbook/backend/internal/types"
)

type RecipeHandler struct {
	recipes service.IRecipeService
	auth    middleware.Authenticator
	opts    Options
	logger  *zap.Logger
}

func NewRecipeHandler(recipes service.IRecipeService, auth middleware.Authenticator, opts Options, logger *zap.Logger) *RecipeHandler {
	return &RecipeHandler{recipes: recipes, auth: auth, opts: opts, logger: logger}
}

func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup) {
	authed := middleware.Auth(h.auth)

	create := []gin.HandlerFunc{authed}
	if h.opts.RecipeCreateLimiter != nil {
		create = append(create, h.opts.RecipeCreateLimiter.Middleware())
	}
	create = append(create, h.CreateRecipe)

	recipes := router.Group("/recipes")
	{
		recipes.GET("", h.ListRecipes)
		recipes.GET("/:id", middleware.OptionalAuth(h.auth), h.GetRecipe)
		recipes.POST("", create...)
		recipes.PUT("/:id", authed, h.UpdateRecipe)
		recipes.DELETE("/:id", authed, h.DeleteRecipe)

		recipes.DELETE("/:id/ingredient-sections/:section_id", authed, h.RemoveIngredientSection)
		recipes.DELETE("/:id/ingredient-sections/:section_id/ingredients/:item_id", authed, h.RemoveIngredient)
		recipes.DELETE("/:id/instruction-sections/:section_id", authed, h.RemoveInstructionSection)
		recipes.DELETE("/:id/instruction-sections/:section_id/instructions/:item_id", authed, h.RemoveInstruction)
	}

	admin := router.Group("/admin", authed, middleware.RequireAdmin())
	{
		admin.POST("/recipes/:id/restore", h.RestoreRecipe)
	}
}

func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	filter, err := service.ParseRecipeFilter(c.Request.URL.Query(), h.opts.DefaultPageSize, h.opts.MaxPageSize)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	page, err := h.recipes.Search(c.Request.Context(), filter)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	resp := types.RecipePage{
		Count:   page.Count,
		Results: make([]types.RecipeSummary, 0, len(page.Recipes)),
	}
	for i := range page.Recipes {
		resp.Results = append(resp.Results, types.NewRecipeSummary(&page.Recipes[i], h.opts.DefaultImageURL))
	}
	if page.NextPage > 0 {
		resp.Next = pageURL(c, h.opts.PublicURL, page.NextPage)
	}
	if page.PreviousPage > 0 {
		resp.Previous = pageURL(c, h.opts.PublicURL, page.PreviousPage)
	}
	c.JSON(http.StatusOK, resp)
}

func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	recipe, err := h.recipes.Get(c.Request.Context(), optionalActor(c), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, types.NewRecipeDetail(recipe, h.opts.DefaultImageURL))
}

func (h *RecipeHandler) CreateRecipe(c *gin.Context) {
	req, upload, ok := h.bindRecipe(c)
	if !ok {
		return
	}
	recipe, err := h.recipes.Create(c.Request.Context(), currentActor(c), req, upload)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, types.NewRecipeDetail(recipe, h.opts.DefaultImageURL))
}

func (h *RecipeHandler) UpdateRecipe(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	req, upload, ok := h.bindRecipe(c)
	if !ok {
		return
	}
	recipe, err := h.recipes.Update(c.Request.Context(), currentActor(c), id, req, upload)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, types.NewRecipeDetail(recipe, h.opts.DefaultImageURL))
}

func (h *RecipeHandler) DeleteRecipe(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.recipes.Delete(c.Request.Context(), currentActor(c), id); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *RecipeHandler) RestoreRecipe(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	recipe, err := h.recipes.Restore(c.Request.Context(), currentActor(c), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, types.NewRecipeDetail(recipe, h.opts.DefaultImageURL))
}

func (h *RecipeHandler) RemoveIngredientSection(c *gin.Context) {
	h.removeChild(c, false, func(ctx context.Context, actor types.Identity, recipeID, sectionID, _ uuid.UUID) (*models.Recipe, error) {
		return h.recipes.RemoveIngredientSection(ctx, actor, recipeID, sectionID)
	})
}

func (h *RecipeHandler) RemoveIngredient(c *gin.Context) {
	h.removeChild(c, true, h.recipes.RemoveIngredient)
}

func (h *RecipeHandler) RemoveInstructionSection(c *gin.Context) {
	h.removeChild(c, false, func(ctx context.Context, actor types.Identity, recipeID, sectionID, _ uuid.UUID) (*models.Recipe, error) {
		return h.recipes.RemoveInstructionSection(ctx, actor, recipeID, sectionID)
	})
}

func (h *RecipeHandler) RemoveInstruction(c *gin.Context) {
	h.removeChild(c, true, h.recipes.RemoveInstruction)
}

type removeFunc func(ctx context.Context, actor types.Identity, recipeID, sectionID, itemID uuid.UUID) (*models.Recipe, error)

// removeChild parses the path ids, runs remove and answers with the
// renumbered recipe.
func (h *RecipeHandler) removeChild(c *gin.Context, withItem bool, remove removeFunc) {
	recipeID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	sectionID, ok := uuidParam(c, "section_id")
	if !ok {
		return
	}
	itemID := uuid.Nil
	if withItem {
		if itemID, ok = uuidParam(c, "item_id"); !ok {
			return
		}
	}
	recipe, err := remove(c.Request.Context(), currentActor(c), recipeID, sectionID, itemID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, types.NewRecipeDetail(recipe, h.opts.DefaultImageURL))
}

// bindRecipe reads a recipe payload. JSON bodies carry the image as base64 in
// the image field. Multipart bodies carry the JSON in a "data" field and the
// image as an "image" file.
func (h *RecipeHandler) bindRecipe(c *gin.Context) (*types.RecipeRequest, *service.ImageUpload, bool) {
	var req types.RecipeRequest

	if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		if err := json.Unmarshal([]byte(c.PostForm("data")), &req); err != nil {
			badRequest(c, "Invalid recipe data.")
			return nil, nil, false
		}
		file, err := c.FormFile("image")
		if errors.Is(err, http.ErrMissingFile) {
			return &req, nil, true
		}
		if err != nil {
			badRequest(c, "Invalid image upload.")
			return nil, nil, false
		}
		f, err := file.Open()
		if err != nil {
			badRequest(c, "Invalid image upload.")
			return nil, nil, false
		}
		defer f.Close()
		data, err := io.ReadAll(io.LimitReader(f, service.MaxImageBytes+1))
		if err != nil {
			badRequest(c, "Invalid image upload.")
			return nil, nil, false
		}
		return &req, &service.ImageUpload{Data: data, Filename: file.Filename}, true
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body.")
		return nil, nil, false
	}
	if req.Image == "" {
		return &req, nil, true
	}
	data, err := decodeImage(req.Image)
	if err != nil {
		verr := service.NewValidationError()
		verr.Add("image", "Upload a valid image. The file you uploaded was either not an image or a corrupted image.")
		respondError(c, h.logger, verr)
		return nil, nil, false
	}
	return &req, &service.ImageUpload{Data: data, Filename: "upload"}, true
}

// decodeImage accepts raw base64 or a data URI such as "data:image/png;base64,...".
func decodeImage(s string) ([]byte, error) {
	if strings.HasPrefix(s, "data:") {
		if i := strings.Index(s, ","); i >= 0 {
			s = s[i+1:]
		}
	}
	return base64.StdEncoding.DecodeString(strings.TrimSpace(s))
}
