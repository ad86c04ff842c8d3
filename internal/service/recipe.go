package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pageza/cookbook/backend/internal/models"
	"github.com/pageza/cookbook/backend/internal/types"
)

// RecipeService owns the recipe aggregate: nested writes, reads and search.
//
// Updates replace the whole section and item graph of a recipe inside one
// transaction instead of diffing it, so child ids change on every edit.
type RecipeService struct {
	db              *gorm.DB
	images          *ImageService
	authz           Authorizer
	logger          *zap.Logger
	defaultPageSize int
	maxPageSize     int
}

type RecipeServiceOptions struct {
	DefaultPageSize int
	MaxPageSize     int
	Authorizer      Authorizer
}

func NewRecipeService(db *gorm.DB, images *ImageService, logger *zap.Logger, opts RecipeServiceOptions) *RecipeService {
	if opts.DefaultPageSize <= 0 {
		opts.DefaultPageSize = 20
	}
	if opts.MaxPageSize < opts.DefaultPageSize {
		opts.MaxPageSize = 100
	}
	if opts.Authorizer == nil {
		opts.Authorizer = OwnerOrAdmin{}
	}
	return &RecipeService{
		db:              db,
		images:          images,
		authz:           opts.Authorizer,
		logger:          logger,
		defaultPageSize: opts.DefaultPageSize,
		maxPageSize:     opts.MaxPageSize,
	}
}

// Create validates req and persists the recipe with all of its sections in a
// single transaction. An image upload failure rolls the whole write back.
func (s *RecipeService) Create(ctx context.Context, actor types.Identity, req *types.RecipeRequest, upload *ImageUpload) (*models.Recipe, error) {
	verr := validateRecipe(req)
	if err := s.checkNameAvailable(ctx, verr, req.Name, uuid.Nil); err != nil {
		return nil, err
	}
	prepared, err := s.prepareImage(verr, upload)
	if err != nil {
		return nil, err
	}
	if err := verr.Err(); err != nil {
		return nil, err
	}

	creator := actor.UserID
	recipe := &models.Recipe{ID: uuid.New(), CreatorID: &creator}
	applyScalars(recipe, req)

	var stored *StoredImage
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(recipe).Error; err != nil {
			return err
		}
		if err := createGraph(tx, recipe.ID, req); err != nil {
			return err
		}
		if prepared == nil {
			return nil
		}
		img, err := s.images.Save(ctx, recipe.ID, prepared)
		if err != nil {
			return err
		}
		stored = img
		return tx.Model(&models.Recipe{}).Where("id = ?", recipe.ID).Updates(imageColumns(img)).Error
	})
	if err != nil {
		if stored != nil {
			s.images.Discard(ctx, stored.Key, stored.ThumbnailKey)
		}
		if isDuplicateName(err) {
			dup := NewValidationError()
			dup.Add("name", "A recipe with this name already exists.")
			return nil, dup
		}
		return nil, storageError("create recipe", err)
	}

	s.logger.Info("recipe created", zap.String("recipe_id", recipe.ID.String()), zap.String("creator_id", creator.String()))
	return s.load(ctx, s.db, recipe.ID)
}

// Update replaces the recipe's fields and its entire section graph.
func (s *RecipeService) Update(ctx context.Context, actor types.Identity, id uuid.UUID, req *types.RecipeRequest, upload *ImageUpload) (*models.Recipe, error) {
	current, err := s.findActive(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.authz.CanModifyRecipe(actor, current) {
		return nil, &PermissionError{Action: "edit this recipe"}
	}

	verr := validateRecipe(req)
	if err := s.checkNameAvailable(ctx, verr, req.Name, id); err != nil {
		return nil, err
	}
	prepared, err := s.prepareImage(verr, upload)
	if err != nil {
		return nil, err
	}
	if err := verr.Err(); err != nil {
		return nil, err
	}

	updated := &models.Recipe{}
	applyScalars(updated, req)
	columns := map[string]interface{}{
		"name":            updated.Name,
		"description":     updated.Description,
		"course_type":     updated.CourseType,
		"recipe_type":     updated.RecipeType,
		"primary_protein": updated.PrimaryProtein,
		"ethnic_style":    updated.EthnicStyle,
		"prep_time":       updated.PrepTime,
		"cook_time":       updated.CookTime,
		"number_servings": updated.NumberServings,
	}
	if req.RemoveImage && prepared == nil {
		for k, v := range imageColumns(&StoredImage{}) {
			columns[k] = v
		}
	}

	var stored *StoredImage
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Recipe{}).Where("id = ?", id).Updates(columns).Error; err != nil {
			return err
		}
		if err := deleteGraph(tx, id); err != nil {
			return err
		}
		if err := createGraph(tx, id, req); err != nil {
			return err
		}
		if prepared == nil {
			return nil
		}
		img, err := s.images.Save(ctx, id, prepared)
		if err != nil {
			return err
		}
		stored = img
		return tx.Model(&models.Recipe{}).Where("id = ?", id).Updates(imageColumns(img)).Error
	})
	if err != nil {
		if stored != nil {
			s.images.Discard(ctx, stored.Key, stored.ThumbnailKey)
		}
		if isDuplicateName(err) {
			dup := NewValidationError()
			dup.Add("name", "A recipe with this name already exists.")
			return nil, dup
		}
		return nil, storageError("update recipe", err)
	}

	// Replaced or removed images are only cleaned up once the new state is committed.
	if (stored != nil || req.RemoveImage) && s.images != nil {
		s.images.Discard(ctx, current.ImageKey, current.ThumbnailKey)
	}

	s.logger.Info("recipe updated", zap.String("recipe_id", id.String()))
	return s.load(ctx, s.db, id)
}

// Get returns the fully nested recipe. Soft-deleted recipes are only visible
// to their creator and to admins. actor is nil for anonymous requests.
func (s *RecipeService) Get(ctx context.Context, actor *types.Identity, id uuid.UUID) (*models.Recipe, error) {
	recipe, err := s.load(ctx, s.db.Unscoped(), id)
	if err != nil {
		return nil, err
	}
	if recipe.Deleted() && !canSeeDeleted(actor, recipe) {
		return nil, &NotFoundError{Resource: "recipe", ID: id.String()}
	}
	return recipe, nil
}

// Delete soft deletes the recipe. Sections, items and images are kept.
func (s *RecipeService) Delete(ctx context.Context, actor types.Identity, id uuid.UUID) error {
	recipe, err := s.findActive(ctx, id)
	if err != nil {
		return err
	}
	if !s.authz.CanModifyRecipe(actor, recipe) {
		return &PermissionError{Action: "delete this recipe"}
	}
	if err := s.db.WithContext(ctx).Delete(&models.Recipe{}, "id = ?", id).Error; err != nil {
		return storageError("delete recipe", err)
	}
	s.logger.Info("recipe deleted", zap.String("recipe_id", id.String()), zap.String("actor_id", actor.UserID.String()))
	return nil
}

// Restore clears the soft delete flag. Admin only.
func (s *RecipeService) Restore(ctx context.Context, actor types.Identity, id uuid.UUID) (*models.Recipe, error) {
	if !actor.IsAdmin {
		return nil, &PermissionError{Action: "restore recipes"}
	}
	res := s.db.WithContext(ctx).Unscoped().Model(&models.Recipe{}).
		Where("id = ? AND deleted_at IS NOT NULL", id).
		Update("deleted_at", nil)
	if res.Error != nil {
		return nil, storageError("restore recipe", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, &NotFoundError{Resource: "deleted recipe", ID: id.String()}
	}
	return s.load(ctx, s.db, id)
}

func (s *RecipeService) findActive(ctx context.Context, id uuid.UUID) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "recipe", ID: id.String()}
		}
		return nil, storageError("load recipe", err)
	}
	return &recipe, nil
}

// load reads the recipe with every section and item ordered by index.
func (s *RecipeService) load(ctx context.Context, db *gorm.DB, id uuid.UUID) (*models.Recipe, error) {
	var recipe models.Recipe
	err := db.WithContext(ctx).
		Preload("Creator").
		Preload("IngredientSections", orderBy("section_order")).
		Preload("IngredientSections.Ingredients", orderBy("ingredient_order")).
		Preload("InstructionSections", orderBy("section_order")).
		Preload("InstructionSections.Instructions", orderBy("step_order")).
		First(&recipe, "recipes.id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "recipe", ID: id.String()}
		}
		return nil, storageError("load recipe", err)
	}
	return &recipe, nil
}

func orderBy(column string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Order(column)
	}
}

// checkNameAvailable adds a name error when another recipe, deleted or not,
// already uses the name case-insensitively.
func (s *RecipeService) checkNameAvailable(ctx context.Context, verr *ValidationError, name string, exclude uuid.UUID) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}
	q := s.db.WithContext(ctx).Unscoped().Model(&models.Recipe{}).Where("LOWER(name) = ?", strings.ToLower(name))
	if exclude != uuid.Nil {
		q = q.Where("id <> ?", exclude)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return storageError("check recipe name", err)
	}
	if count > 0 {
		verr.Add("name", "A recipe with this name already exists.")
	}
	return nil
}

func (s *RecipeService) prepareImage(verr *ValidationError, upload *ImageUpload) (*PreparedImage, error) {
	if upload == nil {
		return nil, nil
	}
	if s.images == nil {
		return nil, &UpstreamStorageError{Op: "prepare image", Err: errors.New("image storage is not configured")}
	}
	prepared, err := s.images.Prepare(upload)
	if err != nil {
		var imgErr *ValidationError
		if errors.As(err, &imgErr) {
			for field, msgs := range imgErr.Fields {
				for _, m := range msgs {
					verr.Add(field, m)
				}
			}
			return nil, nil
		}
		return nil, &UpstreamStorageError{Op: "prepare image", Err: err}
	}
	return prepared, nil
}

func applyScalars(r *models.Recipe, req *types.RecipeRequest) {
	r.Name = strings.TrimSpace(req.Name)
	r.Description = strings.TrimSpace(req.Description)
	r.CourseType = models.CourseType(req.CourseType)
	r.RecipeType = models.RecipeType(req.RecipeType)
	r.PrimaryProtein = models.Protein(req.PrimaryProtein)
	r.EthnicStyle = models.EthnicStyle(req.EthnicStyle)
	r.PrepTime = *req.PrepTime
	r.CookTime = *req.CookTime
	r.NumberServings = *req.ServingsValue()
}

func imageColumns(img *StoredImage) map[string]interface{} {
	return map[string]interface{}{
		"image_url":     img.URL,
		"image_key":     img.Key,
		"thumbnail_url": img.ThumbnailURL,
		"thumbnail_key": img.ThumbnailKey,
	}
}

// createGraph inserts sections and items in their normalized order.
func createGraph(tx *gorm.DB, recipeID uuid.UUID, req *types.RecipeRequest) error {
	for _, sec := range buildIngredientSections(recipeID, req.IngredientSections) {
		items := sec.Ingredients
		sec.Ingredients = nil
		if err := tx.Create(&sec).Error; err != nil {
			return err
		}
		if err := tx.Create(&items).Error; err != nil {
			return err
		}
	}
	for _, sec := range buildInstructionSections(recipeID, req.InstructionSections) {
		items := sec.Instructions
		sec.Instructions = nil
		if err := tx.Create(&sec).Error; err != nil {
			return err
		}
		if err := tx.Create(&items).Error; err != nil {
			return err
		}
	}
	return nil
}

// deleteGraph removes every section and item belonging to the recipe.
func deleteGraph(tx *gorm.DB, recipeID uuid.UUID) error {
	ingSections := tx.Model(&models.IngredientSection{}).Select("id").Where("recipe_id = ?", recipeID)
	if err := tx.Where("section_id IN (?)", ingSections).Delete(&models.Ingredient{}).Error; err != nil {
		return err
	}
	if err := tx.Where("recipe_id = ?", recipeID).Delete(&models.IngredientSection{}).Error; err != nil {
		return err
	}
	insSections := tx.Model(&models.InstructionSection{}).Select("id").Where("recipe_id = ?", recipeID)
	if err := tx.Where("section_id IN (?)", insSections).Delete(&models.Instruction{}).Error; err != nil {
		return err
	}
	return tx.Where("recipe_id = ?", recipeID).Delete(&models.InstructionSection{}).Error
}

func buildIngredientSections(recipeID uuid.UUID, in []types.IngredientSectionInput) []models.IngredientSection {
	orders := make([]*int, len(in))
	for i := range in {
		orders[i] = in[i].Order
	}
	out := make([]models.IngredientSection, 0, len(in))
	for pos, i := range orderedIndexes(orders) {
		src := in[i]
		sec := models.IngredientSection{ID: uuid.New(), RecipeID: recipeID, Title: strings.TrimSpace(src.Title), Order: pos + 1}
		itemOrders := make([]*int, len(src.Ingredients))
		for j := range src.Ingredients {
			itemOrders[j] = src.Ingredients[j].Order
		}
		for ipos, j := range orderedIndexes(itemOrders) {
			ing := src.Ingredients[j]
			sec.Ingredients = append(sec.Ingredients, models.Ingredient{
				ID:        uuid.New(),
				SectionID: sec.ID,
				Quantity:  trimOptional(ing.Quantity),
				Unit:      trimOptional(ing.Unit),
				Name:      strings.TrimSpace(ing.Name),
				Order:     ipos + 1,
			})
		}
		out = append(out, sec)
	}
	return out
}

func buildInstructionSections(recipeID uuid.UUID, in []types.InstructionSectionInput) []models.InstructionSection {
	orders := make([]*int, len(in))
	for i := range in {
		orders[i] = in[i].Order
	}
	out := make([]models.InstructionSection, 0, len(in))
	for pos, i := range orderedIndexes(orders) {
		src := in[i]
		sec := models.InstructionSection{ID: uuid.New(), RecipeID: recipeID, Title: strings.TrimSpace(src.Title), Order: pos + 1}
		itemOrders := make([]*int, len(src.Instructions))
		for j := range src.Instructions {
			itemOrders[j] = src.Instructions[j].Order
		}
		for ipos, j := range orderedIndexes(itemOrders) {
			sec.Instructions = append(sec.Instructions, models.Instruction{
				ID:        uuid.New(),
				SectionID: sec.ID,
				Step:      strings.TrimSpace(src.Instructions[j].Step),
				Order:     ipos + 1,
			})
		}
		out = append(out, sec)
	}
	return out
}

func trimOptional(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	if t == "" {
		return nil
	}
	return &t
}

// isDuplicateName detects a race on the case-insensitive recipe name index.
func isDuplicateName(err error) bool {
	msg := strings.ToLower(err.Error())
	if !strings.Contains(msg, "unique constraint") && !strings.Contains(msg, "duplicate key") {
		return false
	}
	return strings.Contains(msg, "name")
}
