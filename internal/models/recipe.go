package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Field limits shared by validation and the schema.
const (
	MaxRecipeNameLen   = 150
	MaxDescriptionLen  = 1000
	MaxSectionTitleLen = 150
	MaxIngredientName  = 150
	MaxQuantityLen     = 20
	MaxUnitLen         = 20
	MaxStepLen         = 500
	MaxCommentLen      = 1000
)

type Recipe struct {
	ID                  uuid.UUID            `gorm:"type:varchar(36);primarykey" json:"id"`
	Name                string               `gorm:"size:150;not null;index" json:"name"`
	Description         string               `gorm:"size:1000;not null" json:"description"`
	ImageURL            string               `gorm:"size:500" json:"image_url"`
	ImageKey            string               `gorm:"size:300" json:"-"`
	ThumbnailURL        string               `gorm:"size:500" json:"thumbnail_url"`
	ThumbnailKey        string               `gorm:"size:300" json:"-"`
	CourseType          CourseType           `gorm:"size:50;not null;index" json:"course_type"`
	RecipeType          RecipeType           `gorm:"size:50;not null;index" json:"recipe_type"`
	PrimaryProtein      Protein              `gorm:"size:50;not null;index" json:"primary_protein"`
	EthnicStyle         EthnicStyle          `gorm:"size:50;not null;index" json:"ethnic_style"`
	PrepTime            int                  `gorm:"not null;default:0" json:"prep_time"`
	CookTime            int                  `gorm:"not null;default:0" json:"cook_time"`
	NumberServings      int                  `gorm:"not null;default:1" json:"number_servings"`
	CreatorID           *uuid.UUID           `gorm:"type:varchar(36);index" json:"creator_id"`
	Creator             *User                `gorm:"foreignKey:CreatorID;constraint:OnDelete:SET NULL" json:"-"`
	IngredientSections  []IngredientSection  `gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE" json:"ingredient_sections"`
	InstructionSections []InstructionSection `gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE" json:"instruction_sections"`
	CreatedAt           time.Time            `gorm:"index" json:"created_at"`
	UpdatedAt           time.Time            `json:"updated_at"`
	DeletedAt           gorm.DeletedAt       `gorm:"index" json:"-"`
}

func (r *Recipe) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// TotalTime is always derived from prep and cook time.
func (r *Recipe) TotalTime() int {
	return ComputeTotalTime(r.PrepTime, r.CookTime)
}

// CreatorName is the creator's display name, or AnonymousUser once the
// creator account is gone.
func (r *Recipe) CreatorName() string {
	return DisplayName(r.Creator)
}

// Deleted reports whether the recipe was soft deleted.
func (r *Recipe) Deleted() bool {
	return r.DeletedAt.Valid
}

// OwnedBy reports whether userID created the recipe.
func (r *Recipe) OwnedBy(userID uuid.UUID) bool {
	return r.CreatorID != nil && *r.CreatorID == userID
}

func ComputeTotalTime(prep, cook int) int {
	return prep + cook
}

type IngredientSection struct {
	ID          uuid.UUID    `gorm:"type:varchar(36);primarykey" json:"id"`
	RecipeID    uuid.UUID    `gorm:"type:varchar(36);not null;uniqueIndex:idx_ingredient_section_order" json:"-"`
	Title       string       `gorm:"size:150;not null" json:"title"`
	Order       int          `gorm:"column:section_order;not null;uniqueIndex:idx_ingredient_section_order" json:"order"`
	Ingredients []Ingredient `gorm:"foreignKey:SectionID;constraint:OnDelete:CASCADE" json:"ingredients"`
}

func (s *IngredientSection) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

type Ingredient struct {
	ID        uuid.UUID `gorm:"type:varchar(36);primarykey" json:"id"`
	SectionID uuid.UUID `gorm:"type:varchar(36);not null;uniqueIndex:idx_ingredient_order" json:"-"`
	Quantity  *string   `gorm:"size:20" json:"quantity"`
	Unit      *string   `gorm:"size:20" json:"unit"`
	Name      string    `gorm:"size:150;not null;index" json:"name"`
	Order     int       `gorm:"column:ingredient_order;not null;uniqueIndex:idx_ingredient_order" json:"order"`
}

func (i *Ingredient) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

type InstructionSection struct {
	ID           uuid.UUID     `gorm:"type:varchar(36);primarykey" json:"id"`
	RecipeID     uuid.UUID     `gorm:"type:varchar(36);not null;uniqueIndex:idx_instruction_section_order" json:"-"`
	Title        string        `gorm:"size:150;not null" json:"title"`
	Order        int           `gorm:"column:section_order;not null;uniqueIndex:idx_instruction_section_order" json:"order"`
	Instructions []Instruction `gorm:"foreignKey:SectionID;constraint:OnDelete:CASCADE" json:"instructions"`
}

func (s *InstructionSection) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

type Instruction struct {
	ID        uuid.UUID `gorm:"type:varchar(36);primarykey" json:"id"`
	SectionID uuid.UUID `gorm:"type:varchar(36);not null;uniqueIndex:idx_instruction_order" json:"-"`
	Step      string    `gorm:"size:500;not null" json:"step"`
	Order     int       `gorm:"column:step_order;not null;uniqueIndex:idx_instruction_order" json:"order"`
}

func (i *Instruction) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
