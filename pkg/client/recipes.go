package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

// ListOptions filter the recipe list. Zero values are not sent.
type ListOptions struct {
	Search         string
	CourseType     string
	RecipeType     string
	PrimaryProtein string
	EthnicStyle    string
	TimeNeeded     string
	MinServings    int
	UploadedBy     string
	Ordering       string
	Page           int
	PageSize       int
}

func (o ListOptions) values() url.Values {
	q := url.Values{}
	set := func(key, v string) {
		if v != "" {
			q.Set(key, v)
		}
	}
	setInt := func(key string, v int) {
		if v > 0 {
			q.Set(key, strconv.Itoa(v))
		}
	}
	set("search", o.Search)
	set("course_type", o.CourseType)
	set("recipe_type", o.RecipeType)
	set("primary_protein", o.PrimaryProtein)
	set("ethnic_style", o.EthnicStyle)
	set("time_needed", o.TimeNeeded)
	setInt("number_servings", o.MinServings)
	set("uploaded_by", o.UploadedBy)
	set("ordering", o.Ordering)
	setInt("page", o.Page)
	setInt("page_size", o.PageSize)
	return q
}

func (c *Client) ListRecipes(ctx context.Context, opts ListOptions) (*RecipePage, error) {
	var page RecipePage
	if err := c.do(ctx, request{method: http.MethodGet, path: "/recipes", query: opts.values()}, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// GetRecipe sends the session token when there is one, so creators and
// admins can read deleted recipes.
func (c *Client) GetRecipe(ctx context.Context, id string) (*Recipe, error) {
	var recipe Recipe
	if err := c.do(ctx, request{method: http.MethodGet, path: "/recipes/" + id, auth: optional}, &recipe); err != nil {
		return nil, err
	}
	return &recipe, nil
}

func (c *Client) CreateRecipe(ctx context.Context, in *RecipeInput) (*Recipe, error) {
	var recipe Recipe
	if err := c.do(ctx, request{method: http.MethodPost, path: "/recipes", body: in, auth: required}, &recipe); err != nil {
		return nil, err
	}
	return &recipe, nil
}

func (c *Client) UpdateRecipe(ctx context.Context, id string, in *RecipeInput) (*Recipe, error) {
	var recipe Recipe
	if err := c.do(ctx, request{method: http.MethodPut, path: "/recipes/" + id, body: in, auth: required}, &recipe); err != nil {
		return nil, err
	}
	return &recipe, nil
}

func (c *Client) DeleteRecipe(ctx context.Context, id string) error {
	return c.do(ctx, request{method: http.MethodDelete, path: "/recipes/" + id, auth: required}, nil)
}

func (c *Client) ListComments(ctx context.Context, recipeID string) ([]Comment, error) {
	var comments []Comment
	path := "/recipes/" + recipeID + "/comments"
	if err := c.do(ctx, request{method: http.MethodGet, path: path, auth: optional}, &comments); err != nil {
		return nil, err
	}
	return comments, nil
}

func (c *Client) AddComment(ctx context.Context, recipeID, text string) (*Comment, error) {
	var comment Comment
	path := "/recipes/" + recipeID + "/comments"
	if err := c.do(ctx, request{method: http.MethodPost, path: path, body: map[string]string{"text": text}, auth: required}, &comment); err != nil {
		return nil, err
	}
	return &comment, nil
}

func (c *Client) DeleteComment(ctx context.Context, recipeID, commentID string) error {
	path := "/recipes/" + recipeID + "/comments/" + commentID
	return c.do(ctx, request{method: http.MethodDelete, path: path, auth: required}, nil)
}

func (c *Client) Facets(ctx context.Context) (*Facets, error) {
	var facets Facets
	if err := c.do(ctx, request{method: http.MethodGet, path: "/facets"}, &facets); err != nil {
		return nil, err
	}
	return &facets, nil
}
