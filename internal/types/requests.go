package types

// RecipeRequest is the nested create/update payload for a recipe.
type RecipeRequest struct {
	Name           string `json:"name" validate:"notblank,max=150"`
	Description    string `json:"description" validate:"notblank,max=1000"`
	CourseType     string `json:"course_type" validate:"required,facet=course_type"`
	RecipeType     string `json:"recipe_type" validate:"required,facet=recipe_type"`
	PrimaryProtein string `json:"primary_protein" validate:"required,facet=primary_protein"`
	EthnicStyle    string `json:"ethnic_style" validate:"required,facet=ethnic_style"`
	PrepTime       *int   `json:"prep_time" validate:"required,min=0"`
	CookTime       *int   `json:"cook_time" validate:"required,min=0"`
	NumberServings *int   `json:"number_servings" validate:"required,min=1"`
	// Servings is accepted as an alias of NumberServings.
	Servings *int `json:"servings,omitempty" validate:"-"`

	IngredientSections  []IngredientSectionInput  `json:"ingredient_sections" validate:"min=1,dive"`
	InstructionSections []InstructionSectionInput `json:"instruction_sections" validate:"min=1,dive"`

	// Image is a base64 payload, optionally in data URI form.
	Image       string `json:"image,omitempty" validate:"-"`
	RemoveImage bool   `json:"remove_image,omitempty"`
}

// ServingsValue resolves number_servings and its alias.
func (r *RecipeRequest) ServingsValue() *int {
	if r.NumberServings != nil {
		return r.NumberServings
	}
	return r.Servings
}

// Order fields are optional. A missing order means "position in the list".
type IngredientSectionInput struct {
	Title       string            `json:"title" validate:"notblank,max=150"`
	Order       *int              `json:"order" validate:"omitempty,min=1"`
	Ingredients []IngredientInput `json:"ingredients" validate:"min=1,dive"`
}

type IngredientInput struct {
	Quantity *string `json:"quantity" validate:"omitempty,max=20"`
	Unit     *string `json:"unit" validate:"omitempty,max=20"`
	Name     string  `json:"name" validate:"notblank,max=150"`
	Order    *int    `json:"order" validate:"omitempty,min=1"`
}

type InstructionSectionInput struct {
	Title        string             `json:"title" validate:"notblank,max=150"`
	Order        *int               `json:"order" validate:"omitempty,min=1"`
	Instructions []InstructionInput `json:"instructions" validate:"min=1,dive"`
}

type InstructionInput struct {
	Step  string `json:"step" validate:"notblank,max=500"`
	Order *int   `json:"order" validate:"omitempty,min=1"`
}

type CommentRequest struct {
	Text string `json:"text" validate:"notblank,max=1000"`
}

type RegisterRequest struct {
	Email     string `json:"email" validate:"required,email,max=254"`
	FirstName string `json:"first_name" validate:"required,min=2,max=50"`
	LastName  string `json:"last_name" validate:"required,min=2,max=50"`
	Password  string `json:"password" validate:"required,min=8"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	Refresh string `json:"refresh" binding:"required"`
}

// UpdateProfileRequest changes only the fields that are present.
type UpdateProfileRequest struct {
	Email           *string `json:"email" validate:"omitempty,email,max=254"`
	FirstName       *string `json:"first_name" validate:"omitempty,min=2,max=50"`
	LastName        *string `json:"last_name" validate:"omitempty,min=2,max=50"`
	CurrentPassword string  `json:"current_password"`
	NewPassword     string  `json:"new_password" validate:"omitempty,min=8"`
	ConfirmPassword string  `json:"confirm_password" validate:"omitempty,eqfield=NewPassword"`
}

type PasswordResetRequest struct {
	Email string `json:"email" binding:"required"`
}

type PasswordResetConfirmRequest struct {
	Token           string `json:"token" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=NewPassword"`
}
