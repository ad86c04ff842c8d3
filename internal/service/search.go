package service

import (
	"context"
	"net/url"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pageza/cookbook/backend/internal/models"
)

// MinSearchLen is the shortest search term that is applied. Shorter terms are ignored.
const MinSearchLen = 2

const totalTimeSQL = "(recipes.prep_time + recipes.cook_time)"

var orderings = map[string]string{
	"created_at":  "recipes.created_at",
	"-created_at": "recipes.created_at DESC",
	"name":        "LOWER(recipes.name)",
	"-name":       "LOWER(recipes.name) DESC",
	"total_time":  totalTimeSQL,
	"-total_time": totalTimeSQL + " DESC",
}

// DefaultOrdering is newest first.
const DefaultOrdering = "-created_at"

// RecipeFilter is a parsed list query. Zero values mean "not filtered".
type RecipeFilter struct {
	Search         string
	CourseType     models.CourseType
	RecipeType     models.RecipeType
	PrimaryProtein models.Protein
	EthnicStyle    models.EthnicStyle
	TimeNeeded     models.TimeBucket
	MinServings    int
	UploadedBy     uuid.UUID
	Ordering       string
	Page           int
	PageSize       int
}

// RecipePageResult is one page of search results.
type RecipePageResult struct {
	Recipes  []models.Recipe
	Count    int64
	Page     int
	PageSize int
	// NextPage and PreviousPage are 0 when there is no such page. Past the
	// end, PreviousPage is the last page that has results.
	NextPage     int
	PreviousPage int
}

// ParseRecipeFilter reads list parameters from a query string. Empty values are
// treated as absent. Unknown enumerated values and malformed numbers or ids
// fail with an InvalidFilterError.
func ParseRecipeFilter(q url.Values, defaultPageSize, maxPageSize int) (*RecipeFilter, error) {
	f := &RecipeFilter{Ordering: DefaultOrdering, Page: 1, PageSize: defaultPageSize}

	if term := strings.TrimSpace(q.Get("search")); utf8.RuneCountInString(term) >= MinSearchLen {
		f.Search = term
	}

	if v := q.Get("course_type"); v != "" {
		if !models.CourseType(v).Valid() {
			return nil, &InvalidFilterError{Param: "course_type", Value: v}
		}
		f.CourseType = models.CourseType(v)
	}
	if v := q.Get("recipe_type"); v != "" {
		if !models.RecipeType(v).Valid() {
			return nil, &InvalidFilterError{Param: "recipe_type", Value: v}
		}
		f.RecipeType = models.RecipeType(v)
	}
	if v := q.Get("primary_protein"); v != "" {
		if !models.Protein(v).Valid() {
			return nil, &InvalidFilterError{Param: "primary_protein", Value: v}
		}
		f.PrimaryProtein = models.Protein(v)
	}
	if v := q.Get("ethnic_style"); v != "" {
		if !models.EthnicStyle(v).Valid() {
			return nil, &InvalidFilterError{Param: "ethnic_style", Value: v}
		}
		f.EthnicStyle = models.EthnicStyle(v)
	}
	if v := q.Get("time_needed"); v != "" {
		if !models.TimeBucket(v).Valid() {
			return nil, &InvalidFilterError{Param: "time_needed", Value: v}
		}
		f.TimeNeeded = models.TimeBucket(v)
	}

	servingsParam := "number_servings"
	v := q.Get(servingsParam)
	if v == "" {
		servingsParam = "min_servings"
		v = q.Get(servingsParam)
	}
	if v != "" {
		n, err := positiveInt(servingsParam, v)
		if err != nil {
			return nil, err
		}
		f.MinServings = n
	}

	if v := q.Get("uploaded_by"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return nil, &InvalidFilterError{Param: "uploaded_by", Value: v}
		}
		f.UploadedBy = id
	}

	if v := q.Get("ordering"); v != "" {
		if _, ok := orderings[v]; !ok {
			return nil, &InvalidFilterError{Param: "ordering", Value: v}
		}
		f.Ordering = v
	}

	if v := q.Get("page"); v != "" {
		n, err := positiveInt("page", v)
		if err != nil {
			return nil, err
		}
		f.Page = n
	}
	if v := q.Get("page_size"); v != "" {
		n, err := positiveInt("page_size", v)
		if err != nil {
			return nil, err
		}
		f.PageSize = n
	}
	if maxPageSize > 0 && f.PageSize > maxPageSize {
		f.PageSize = maxPageSize
	}

	return f, nil
}

func positiveInt(param, v string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n < 1 {
		return 0, &InvalidFilterError{Param: param, Value: v}
	}
	return n, nil
}

// Search returns one page of active recipes matching f. With a search term,
// recipes whose name matches rank ahead of recipes that only match through an
// ingredient. Within a rank the requested ordering applies, then id.
func (s *RecipeService) Search(ctx context.Context, f *RecipeFilter) (*RecipePageResult, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 {
		f.PageSize = s.defaultPageSize
	}
	if f.PageSize > s.maxPageSize {
		f.PageSize = s.maxPageSize
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Recipe{}).Scopes(matching(f)).Count(&count).Error; err != nil {
		return nil, storageError("count recipes", err)
	}

	result := &RecipePageResult{
		Count:    count,
		Page:     f.Page,
		PageSize: f.PageSize,
		Recipes:  []models.Recipe{},
	}

	// Page numbers are compared before any multiplication so a huge page
	// cannot wrap into a valid offset.
	page := int64(f.Page)
	lastPage := (count + int64(f.PageSize) - 1) / int64(f.PageSize)
	if page < lastPage {
		result.NextPage = f.Page + 1
	}
	if page > 1 {
		result.PreviousPage = int(min(page-1, lastPage))
	}
	if page > lastPage {
		return result, nil
	}
	offset := (f.Page - 1) * f.PageSize

	err := s.db.WithContext(ctx).
		Scopes(matching(f), ranked(f)).
		Preload("Creator").
		Offset(offset).
		Limit(f.PageSize).
		Find(&result.Recipes).Error
	if err != nil {
		return nil, storageError("search recipes", err)
	}
	return result, nil
}

// matching applies the search term and every facet filter.
func matching(f *RecipeFilter) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if f.Search != "" {
			pattern := likePattern(f.Search)
			db = db.Where(
				"(LOWER(recipes.name) LIKE ? ESCAPE '\\' OR EXISTS ("+ingredientMatchSQL+"))",
				pattern, pattern,
			)
		}
		if f.CourseType != "" {
			db = db.Where("recipes.course_type = ?", f.CourseType)
		}
		if f.RecipeType != "" {
			db = db.Where("recipes.recipe_type = ?", f.RecipeType)
		}
		if f.PrimaryProtein != "" {
			db = db.Where("recipes.primary_protein = ?", f.PrimaryProtein)
		}
		if f.EthnicStyle != "" {
			db = db.Where("recipes.ethnic_style = ?", f.EthnicStyle)
		}
		if f.TimeNeeded != "" {
			min, max := f.TimeNeeded.Bounds()
			if min >= 0 {
				db = db.Where(totalTimeSQL+" >= ?", min)
			}
			if max >= 0 {
				db = db.Where(totalTimeSQL+" <= ?", max)
			}
		}
		if f.MinServings > 0 {
			db = db.Where("recipes.number_servings >= ?", f.MinServings)
		}
		if f.UploadedBy != uuid.Nil {
			db = db.Where("recipes.creator_id = ?", f.UploadedBy)
		}
		return db
	}
}

const ingredientMatchSQL = `SELECT 1 FROM ingredients
JOIN ingredient_sections ON ingredient_sections.id = ingredients.section_id
WHERE ingredient_sections.recipe_id = recipes.id AND LOWER(ingredients.name) LIKE ? ESCAPE '\'`

// ranked builds a single ORDER BY: name-match tier first when searching,
// then the ordering key, then id.
func ranked(f *RecipeFilter) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		key, ok := orderings[f.Ordering]
		if !ok {
			key = orderings[DefaultOrdering]
		}
		if f.Search == "" {
			return db.Order(clause.OrderBy{Expression: clause.Expr{SQL: key + ", recipes.id"}})
		}
		return db.Order(clause.OrderBy{Expression: clause.Expr{
			SQL:  "CASE WHEN LOWER(recipes.name) LIKE ? ESCAPE '\\' THEN 0 ELSE 1 END, " + key + ", recipes.id",
			Vars: []interface{}{likePattern(f.Search)},
		}})
	}
}

// likePattern lower-cases term and escapes LIKE wildcards so the term matches literally.
// SQLite's LOWER folds ASCII only, so on the sqlite driver non-ASCII letters
// match case-sensitively. Postgres folds them like strings.ToLower.
func likePattern(term string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.ToLower(term)) + "%"
}
