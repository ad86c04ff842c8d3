package service

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/pageza/cookbook/backend/internal/models"
	"github.com/pageza/cookbook/backend/internal/types"
)

const (
	msgRequired = "This field is required."
	msgNotEmpty = "This list may not be empty."
)

// ValidateRecipe checks a nested recipe payload and reports every violation.
// It has no side effects.
func ValidateRecipe(req *types.RecipeRequest) error {
	return validateRecipe(req).Err()
}

// validateRecipe runs the tag rules on a trimmed copy of req, then checks
// that explicit orders are unique within each collection.
func validateRecipe(req *types.RecipeRequest) *ValidationError {
	v := validateStruct(trimmedRecipe(req))

	sectionOrders := make([]*int, len(req.IngredientSections))
	for i, sec := range req.IngredientSections {
		sectionOrders[i] = sec.Order
		itemOrders := make([]*int, len(sec.Ingredients))
		for j, ing := range sec.Ingredients {
			itemOrders[j] = ing.Order
		}
		checkOrders(v, fmt.Sprintf("ingredient_sections[%d].ingredients", i), itemOrders)
	}
	checkOrders(v, "ingredient_sections", sectionOrders)

	sectionOrders = make([]*int, len(req.InstructionSections))
	for i, sec := range req.InstructionSections {
		sectionOrders[i] = sec.Order
		itemOrders := make([]*int, len(sec.Instructions))
		for j, ins := range sec.Instructions {
			itemOrders[j] = ins.Order
		}
		checkOrders(v, fmt.Sprintf("instruction_sections[%d].instructions", i), itemOrders)
	}
	checkOrders(v, "instruction_sections", sectionOrders)

	return v
}

// trimmedRecipe copies req with surrounding whitespace removed from every
// text field and the servings alias resolved.
func trimmedRecipe(req *types.RecipeRequest) *types.RecipeRequest {
	out := *req
	out.Name = strings.TrimSpace(req.Name)
	out.Description = strings.TrimSpace(req.Description)
	out.NumberServings = req.ServingsValue()

	out.IngredientSections = make([]types.IngredientSectionInput, len(req.IngredientSections))
	for i, sec := range req.IngredientSections {
		sec.Title = strings.TrimSpace(sec.Title)
		items := make([]types.IngredientInput, len(sec.Ingredients))
		for j, ing := range sec.Ingredients {
			ing.Name = strings.TrimSpace(ing.Name)
			ing.Quantity = trimOptional(ing.Quantity)
			ing.Unit = trimOptional(ing.Unit)
			items[j] = ing
		}
		sec.Ingredients = items
		out.IngredientSections[i] = sec
	}

	out.InstructionSections = make([]types.InstructionSectionInput, len(req.InstructionSections))
	for i, sec := range req.InstructionSections {
		sec.Title = strings.TrimSpace(sec.Title)
		items := make([]types.InstructionInput, len(sec.Instructions))
		for j, ins := range sec.Instructions {
			ins.Step = strings.TrimSpace(ins.Step)
			items[j] = ins
		}
		sec.Instructions = items
		out.InstructionSections[i] = sec
	}
	return &out
}

// checkOrders rejects duplicate orders within one collection. A missing order
// stands for the item's position. Orders below 1 are left to the tag rules.
func checkOrders(v *ValidationError, path string, orders []*int) {
	seen := make(map[int]bool, len(orders))
	for i, o := range orders {
		if o != nil && *o < 1 {
			continue
		}
		eff := effectiveOrder(orders, i)
		if seen[eff] {
			v.Add(fmt.Sprintf("%s[%d].order", path, i), fmt.Sprintf("Duplicate order %d.", eff))
			continue
		}
		seen[eff] = true
	}
}

func effectiveOrder(orders []*int, i int) int {
	if orders[i] != nil {
		return *orders[i]
	}
	return i + 1
}

// orderedIndexes returns the positions of orders sorted by effective order.
// Callers renumber the result 1..N, closing any gaps the client left.
func orderedIndexes(orders []*int) []int {
	idx := make([]int, len(orders))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return effectiveOrder(orders, idx[a]) < effectiveOrder(orders, idx[b])
	})
	return idx
}

var validate = newValidator()

// facets maps the param of the "facet" tag to the closed set it checks.
var facets = map[string]func(string) bool{
	"course_type":     func(s string) bool { return models.CourseType(s).Valid() },
	"recipe_type":     func(s string) bool { return models.RecipeType(s).Valid() },
	"primary_protein": func(s string) bool { return models.Protein(s).Valid() },
	"ethnic_style":    func(s string) bool { return models.EthnicStyle(s).Valid() },
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	mustRegister(v, "notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	mustRegister(v, "facet", func(fl validator.FieldLevel) bool {
		valid, ok := facets[fl.Param()]
		return ok && valid(fl.Field().String())
	})
	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register %s validator: %v", tag, err))
	}
}

// validateStruct runs tag based validation and converts the result into a
// ValidationError so all field problems are reported together.
func validateStruct(s interface{}) *ValidationError {
	out := NewValidationError()
	err := validate.Struct(s)
	if err == nil {
		return out
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		out.Add("non_field_errors", err.Error())
		return out
	}
	for _, fe := range fieldErrs {
		out.Add(fieldPath(fe), fieldMessage(fe))
	}
	return out
}

// fieldPath drops the struct name from the namespace, leaving the JSON path,
// e.g. "ingredient_sections[0].ingredients[1].name".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "notblank":
		return msgRequired
	case "email":
		return "Enter a valid email address."
	case "facet":
		return fmt.Sprintf("%q is not a valid choice.", fe.Value())
	case "min":
		switch fe.Kind() {
		case reflect.Slice:
			return msgNotEmpty
		case reflect.String:
			return fmt.Sprintf("Ensure this field has at least %s characters.", fe.Param())
		}
		return fmt.Sprintf("Ensure this value is greater than or equal to %s.", fe.Param())
	case "max":
		return fmt.Sprintf("Ensure this field has no more than %s characters.", fe.Param())
	case "eqfield":
		return "Passwords do not match."
	}
	return "Invalid value."
}
