package recipeapi

import (
	"context"
	"net/http"
	"strconv"
)

// DefaultTopLimit is the number of top-rated recipes requested when no limit is given.
const DefaultTopLimit = 6

// RecipeAPI is the set of recipe operations exposed to callers.
type RecipeAPI interface {
	LoadAllRecipes(ctx context.Context) Result
	SearchRecipes(ctx context.Context, query string) Result
	GetRecipesByCuisine(ctx context.Context, cuisine string) Result
	GetTopRatedRecipes(ctx context.Context, limit ...int) Result
}

// LoadAllRecipes lists every recipe.
func (c *Client) LoadAllRecipes(ctx context.Context) Result {
	return c.Call(ctx, "/", http.MethodGet, nil)
}

// SearchRecipes lists recipes matching query.
func (c *Client) SearchRecipes(ctx context.Context, query string) Result {
	return c.Call(ctx, "/search/"+encodeComponent(query), http.MethodGet, nil)
}

// GetRecipesByCuisine lists recipes of the given cuisine.
func (c *Client) GetRecipesByCuisine(ctx context.Context, cuisine string) Result {
	return c.Call(ctx, "/cuisine/"+encodeComponent(cuisine), http.MethodGet, nil)
}

// GetTopRatedRecipes lists the best rated recipes. Without a limit DefaultTopLimit
// is used; the value is passed through unvalidated and only the first is read.
func (c *Client) GetTopRatedRecipes(ctx context.Context, limit ...int) Result {
	n := DefaultTopLimit
	if len(limit) > 0 {
		n = limit[0]
	}
	return c.Call(ctx, "/top/"+strconv.Itoa(n), http.MethodGet, nil)
}

// GetRecipe fetches a single recipe by id.
func (c *Client) GetRecipe(ctx context.Context, id string) Result {
	return c.Call(ctx, "/"+encodeComponent(id), http.MethodGet, nil)
}

// CreateRecipe posts a new recipe.
func (c *Client) CreateRecipe(ctx context.Context, recipe any) Result {
	return c.Call(ctx, "/", http.MethodPost, recipe)
}

// UpdateRecipe replaces the recipe stored under id.
func (c *Client) UpdateRecipe(ctx context.Context, id string, recipe any) Result {
	return c.Call(ctx, "/"+encodeComponent(id), http.MethodPut, recipe)
}

// DeleteRecipe removes the recipe stored under id.
func (c *Client) DeleteRecipe(ctx context.Context, id string) Result {
	return c.Call(ctx, "/"+encodeComponent(id), http.MethodDelete, nil)
}
