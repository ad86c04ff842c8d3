package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pageza/cookbook/backend/internal/models"
	"github.com/pageza/cookbook/backend/internal/types"
)

// removal describes deleting one ordered row and closing the gap it leaves.
type removal struct {
	model     interface{}
	resource  string
	parentCol string
	parentID  uuid.UUID
	orderCol  string
	targetID  uuid.UUID
	// lastField and lastMsg are reported when the target is the only sibling left.
	lastField string
	lastMsg   string
	// check runs first inside the transaction, cascade right before the delete.
	check   func(tx *gorm.DB) error
	cascade func(tx *gorm.DB) error
}

type orderedRow struct {
	ID       uuid.UUID
	Position int
}

func (s *RecipeService) RemoveIngredientSection(ctx context.Context, actor types.Identity, recipeID, sectionID uuid.UUID) (*models.Recipe, error) {
	return s.remove(ctx, actor, recipeID, removal{
		model:     &models.IngredientSection{},
		resource:  "ingredient section",
		parentCol: "recipe_id",
		parentID:  recipeID,
		orderCol:  "section_order",
		targetID:  sectionID,
		lastField: "ingredient_sections",
		lastMsg:   "A recipe must keep at least one ingredient section.",
		cascade: func(tx *gorm.DB) error {
			return tx.Where("section_id = ?", sectionID).Delete(&models.Ingredient{}).Error
		},
	})
}

func (s *RecipeService) RemoveIngredient(ctx context.Context, actor types.Identity, recipeID, sectionID, ingredientID uuid.UUID) (*models.Recipe, error) {
	return s.remove(ctx, actor, recipeID, removal{
		model:     &models.Ingredient{},
		resource:  "ingredient",
		parentCol: "section_id",
		parentID:  sectionID,
		orderCol:  "ingredient_order",
		targetID:  ingredientID,
		lastField: "ingredients",
		lastMsg:   "A section must keep at least one ingredient.",
		check:     sectionBelongs(&models.IngredientSection{}, "ingredient section", recipeID, sectionID),
	})
}

func (s *RecipeService) RemoveInstructionSection(ctx context.Context, actor types.Identity, recipeID, sectionID uuid.UUID) (*models.Recipe, error) {
	return s.remove(ctx, actor, recipeID, removal{
		model:     &models.InstructionSection{},
		resource:  "instruction section",
		parentCol: "recipe_id",
		parentID:  recipeID,
		orderCol:  "section_order",
		targetID:  sectionID,
		lastField: "instruction_sections",
		lastMsg:   "A recipe must keep at least one instruction section.",
		cascade: func(tx *gorm.DB) error {
			return tx.Where("section_id = ?", sectionID).Delete(&models.Instruction{}).Error
		},
	})
}

func (s *RecipeService) RemoveInstruction(ctx context.Context, actor types.Identity, recipeID, sectionID, instructionID uuid.UUID) (*models.Recipe, error) {
	return s.remove(ctx, actor, recipeID, removal{
		model:     &models.Instruction{},
		resource:  "instruction",
		parentCol: "section_id",
		parentID:  sectionID,
		orderCol:  "step_order",
		targetID:  instructionID,
		lastField: "instructions",
		lastMsg:   "A section must keep at least one instruction.",
		check:     sectionBelongs(&models.InstructionSection{}, "instruction section", recipeID, sectionID),
	})
}

func sectionBelongs(model interface{}, resource string, recipeID, sectionID uuid.UUID) func(tx *gorm.DB) error {
	return func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(model).Where("id = ? AND recipe_id = ?", sectionID, recipeID).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return &NotFoundError{Resource: resource, ID: sectionID.String()}
		}
		return nil
	}
}

// remove deletes one ordered row and renumbers the remaining siblings 1..N
// in the same transaction.
func (s *RecipeService) remove(ctx context.Context, actor types.Identity, recipeID uuid.UUID, r removal) (*models.Recipe, error) {
	recipe, err := s.findActive(ctx, recipeID)
	if err != nil {
		return nil, err
	}
	if !s.authz.CanModifyRecipe(actor, recipe) {
		return nil, &PermissionError{Action: "edit this recipe"}
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if r.check != nil {
			if err := r.check(tx); err != nil {
				return err
			}
		}

		var rows []orderedRow
		if err := tx.Model(r.model).
			Select("id, "+r.orderCol+" AS position").
			Where(r.parentCol+" = ?", r.parentID).
			Order(r.orderCol).
			Scan(&rows).Error; err != nil {
			return err
		}

		idx := -1
		for i, row := range rows {
			if row.ID == r.targetID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return &NotFoundError{Resource: r.resource, ID: r.targetID.String()}
		}
		if len(rows) == 1 {
			verr := NewValidationError()
			verr.Add(r.lastField, r.lastMsg)
			return verr
		}

		if r.cascade != nil {
			if err := r.cascade(tx); err != nil {
				return err
			}
		}
		if err := tx.Where("id = ?", r.targetID).Delete(r.model).Error; err != nil {
			return err
		}

		remaining := append(rows[:idx:idx], rows[idx+1:]...)
		if err := renumber(tx, r.model, r.orderCol, remaining); err != nil {
			return err
		}
		return tx.Model(&models.Recipe{}).Where("id = ?", recipeID).Update("updated_at", time.Now()).Error
	})
	if err != nil {
		return nil, storageError("remove "+r.resource, err)
	}
	return s.load(ctx, s.db, recipeID)
}

// renumber assigns positions 1..N to rows, which must already be sorted.
// Rows only ever move down, so the unique (parent, order) index is never hit.
func renumber(tx *gorm.DB, model interface{}, orderCol string, rows []orderedRow) error {
	for i, row := range rows {
		if row.Position == i+1 {
			continue
		}
		if err := tx.Model(model).Where("id = ?", row.ID).Update(orderCol, i+1).Error; err != nil {
			return err
		}
	}
	return nil
}
