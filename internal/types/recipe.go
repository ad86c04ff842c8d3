package types

import (
	"time"

	"github.com/google/uuid"

	"github.com/pageza/cookbook/backend/internal/models"
)

// RecipeSummary is the list representation of a recipe. It never carries
// ingredients or instructions.
type RecipeSummary struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	ImageURL       string    `json:"image_url"`
	ThumbnailURL   string    `json:"thumbnail_url"`
	CourseType     string    `json:"course_type"`
	RecipeType     string    `json:"recipe_type"`
	PrimaryProtein string    `json:"primary_protein"`
	EthnicStyle    string    `json:"ethnic_style"`
	TotalTime      int       `json:"total_time"`
	NumberServings int       `json:"number_servings"`
	CreatorName    string    `json:"creator_name"`
	CreatedAt      time.Time `json:"created_at"`
}

// RecipePage is the paginated list envelope.
type RecipePage struct {
	Count    int64           `json:"count"`
	Next     *string         `json:"next"`
	Previous *string         `json:"previous"`
	Results  []RecipeSummary `json:"results"`
}

type RecipeDetail struct {
	ID                  uuid.UUID                  `json:"id"`
	Name                string                     `json:"name"`
	Description         string                     `json:"description"`
	ImageURL            string                     `json:"image_url"`
	ThumbnailURL        string                     `json:"thumbnail_url"`
	CourseType          string                     `json:"course_type"`
	RecipeType          string                     `json:"recipe_type"`
	PrimaryProtein      string                     `json:"primary_protein"`
	EthnicStyle         string                     `json:"ethnic_style"`
	PrepTime            int                        `json:"prep_time"`
	CookTime            int                        `json:"cook_time"`
	TotalTime           int                        `json:"total_time"`
	NumberServings      int                        `json:"number_servings"`
	CreatorID           *uuid.UUID                 `json:"creator_id"`
	CreatorName         string                     `json:"creator_name"`
	IsDeleted           bool                       `json:"is_deleted,omitempty"`
	IngredientSections  []IngredientSectionDetail  `json:"ingredient_sections"`
	InstructionSections []InstructionSectionDetail `json:"instruction_sections"`
	CreatedAt           time.Time                  `json:"created_at"`
	UpdatedAt           time.Time                  `json:"updated_at"`
}

type IngredientSectionDetail struct {
	ID          uuid.UUID          `json:"id"`
	Title       string             `json:"title"`
	Order       int                `json:"order"`
	Ingredients []IngredientDetail `json:"ingredients"`
}

type IngredientDetail struct {
	ID       uuid.UUID `json:"id"`
	Quantity *string   `json:"quantity"`
	Unit     *string   `json:"unit"`
	Name     string    `json:"name"`
	Order    int       `json:"order"`
}

type InstructionSectionDetail struct {
	ID           uuid.UUID           `json:"id"`
	Title        string              `json:"title"`
	Order        int                 `json:"order"`
	Instructions []InstructionDetail `json:"instructions"`
}

type InstructionDetail struct {
	ID    uuid.UUID `json:"id"`
	Step  string    `json:"step"`
	Order int       `json:"order"`
}

type CommentResponse struct {
	ID         uuid.UUID `json:"id"`
	RecipeID   uuid.UUID `json:"recipe_id"`
	AuthorID   uuid.UUID `json:"author_id"`
	AuthorName string    `json:"author_name"`
	Text       string    `json:"text"`
	CreatedAt  time.Time `json:"created_at"`
}

type UserResponse struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	FullName  string    `json:"full_name"`
	IsAdmin   bool      `json:"is_admin"`
	CreatedAt time.Time `json:"created_at"`
}

// Facets lists the dropdown choices for recipe attributes.
type Facets struct {
	CourseTypes     []models.CourseType  `json:"course_types"`
	RecipeTypes     []models.RecipeType  `json:"recipe_types"`
	PrimaryProteins []models.Protein     `json:"primary_proteins"`
	EthnicStyles    []models.EthnicStyle `json:"ethnic_styles"`
	TimeNeeded      []models.TimeBucket  `json:"time_needed"`
}

func NewRecipeSummary(r *models.Recipe, defaultImage string) RecipeSummary {
	thumb := r.ThumbnailURL
	if thumb == "" {
		thumb = r.ImageURL
	}
	if thumb == "" {
		thumb = defaultImage
	}
	return RecipeSummary{
		ID:             r.ID,
		Name:           r.Name,
		ImageURL:       r.ImageURL,
		ThumbnailURL:   thumb,
		CourseType:     string(r.CourseType),
		RecipeType:     string(r.RecipeType),
		PrimaryProtein: string(r.PrimaryProtein),
		EthnicStyle:    string(r.EthnicStyle),
		TotalTime:      r.TotalTime(),
		NumberServings: r.NumberServings,
		CreatorName:    r.CreatorName(),
		CreatedAt:      r.CreatedAt,
	}
}

func NewRecipeDetail(r *models.Recipe, defaultImage string) RecipeDetail {
	image := r.ImageURL
	if image == "" {
		image = defaultImage
	}
	thumb := r.ThumbnailURL
	if thumb == "" {
		thumb = image
	}
	d := RecipeDetail{
		ID:                  r.ID,
		Name:                r.Name,
		Description:         r.Description,
		ImageURL:            image,
		ThumbnailURL:        thumb,
		CourseType:          string(r.CourseType),
		RecipeType:          string(r.RecipeType),
		PrimaryProtein:      string(r.PrimaryProtein),
		EthnicStyle:         string(r.EthnicStyle),
		PrepTime:            r.PrepTime,
		CookTime:            r.CookTime,
		TotalTime:           r.TotalTime(),
		NumberServings:      r.NumberServings,
		CreatorID:           r.CreatorID,
		CreatorName:         r.CreatorName(),
		IsDeleted:           r.Deleted(),
		IngredientSections:  make([]IngredientSectionDetail, 0, len(r.IngredientSections)),
		InstructionSections: make([]InstructionSectionDetail, 0, len(r.InstructionSections)),
		CreatedAt:           r.CreatedAt,
		UpdatedAt:           r.UpdatedAt,
	}
	for _, s := range r.IngredientSections {
		sec := IngredientSectionDetail{ID: s.ID, Title: s.Title, Order: s.Order, Ingredients: make([]IngredientDetail, 0, len(s.Ingredients))}
		for _, i := range s.Ingredients {
			sec.Ingredients = append(sec.Ingredients, IngredientDetail{ID: i.ID, Quantity: i.Quantity, Unit: i.Unit, Name: i.Name, Order: i.Order})
		}
		d.IngredientSections = append(d.IngredientSections, sec)
	}
	for _, s := range r.InstructionSections {
		sec := InstructionSectionDetail{ID: s.ID, Title: s.Title, Order: s.Order, Instructions: make([]InstructionDetail, 0, len(s.Instructions))}
		for _, i := range s.Instructions {
			sec.Instructions = append(sec.Instructions, InstructionDetail{ID: i.ID, Step: i.Step, Order: i.Order})
		}
		d.InstructionSections = append(d.InstructionSections, sec)
	}
	return d
}

func NewCommentResponse(c *models.Comment) CommentResponse {
	return CommentResponse{
		ID:         c.ID,
		RecipeID:   c.RecipeID,
		AuthorID:   c.AuthorID,
		AuthorName: c.AuthorName(),
		Text:       c.Text,
		CreatedAt:  c.CreatedAt,
	}
}

func NewUserResponse(u *models.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		FullName:  u.FullName(),
		IsAdmin:   u.IsAdmin,
		CreatedAt: u.CreatedAt,
	}
}

func AllFacets() Facets {
	return Facets{
		CourseTypes:     models.CourseTypes,
		RecipeTypes:     models.RecipeTypes,
		PrimaryProteins: models.Proteins,
		EthnicStyles:    models.EthnicStyles,
		TimeNeeded:      models.TimeBuckets,
	}
}
