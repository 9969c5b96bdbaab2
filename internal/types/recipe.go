package types

import (
	"time"
)

type RecipeBody struct {
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Instructions []string `json:"instructions"`
	PrepTime     *int     `json:"prepTime"`
	CookTime     *int     `json:"cookTime"`
	Servings     *int     `json:"servings"`
	Difficulty   string   `json:"difficulty"`
	Tips         []string `json:"tips"`
}

type IngredientView struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Amount   string `json:"amount"`
	Unit     string `json:"unit"`
	Category string `json:"category"`
}

// RecipeView is the shape every recipe endpoint returns.
type RecipeView struct {
	ID          string           `json:"id"`
	Recipe      RecipeBody       `json:"recipe"`
	Ingredients []IngredientView `json:"ingredients"`
	GeneratedAt time.Time        `json:"generatedAt"`
	UserPrompt  string           `json:"userPrompt"`
	ImageURL    string           `json:"imageUrl,omitempty"`
}

type Pagination struct {
	Total   int64 `json:"total"`
	Offset  int   `json:"offset"`
	Limit   int   `json:"limit"`
	HasMore bool  `json:"hasMore"`
}

type RecipeListResponse struct {
	Success    bool         `json:"success"`
	Recipes    []RecipeView `json:"recipes"`
	Pagination Pagination   `json:"pagination"`
}

type SavedRecipeView struct {
	RecipeView
	SavedRecipeID string    `json:"savedRecipeId"`
	IsFavorite    bool      `json:"isFavorite"`
	SavedAt       time.Time `json:"savedAt"`
}

type SavedRecipeListResponse struct {
	Success    bool              `json:"success"`
	Recipes    []SavedRecipeView `json:"recipes"`
	Pagination Pagination        `json:"pagination"`
}

type SaveRecipeResponse struct {
	Success       bool   `json:"success"`
	Message       string `json:"message"`
	SavedRecipeID string `json:"savedRecipeId"`
}

// RecipePreferences are per-request overrides layered over the stored user preferences.
type RecipePreferences struct {
	Servings            *int     `json:"servings,omitempty"`
	Difficulty          string   `json:"difficulty,omitempty"`
	MaxCookTime         *int     `json:"maxCookTime,omitempty"`
	DietaryRestrictions []string `json:"dietaryRestrictions,omitempty"`
	Cuisine             string   `json:"cuisine,omitempty"`
}

type GenerateRecipeRequest struct {
	Prompt      string             `json:"prompt" binding:"required"`
	Preferences *RecipePreferences `json:"preferences"`
}

type ModifyRecipeRequest struct {
	RecipeID           FlexibleID `json:"recipeId"`
	ModificationPrompt string     `json:"modificationPrompt" binding:"required"`
}

type RecipeResponse struct {
	Success bool       `json:"success"`
	Recipe  RecipeView `json:"recipe"`
}

type ImageUploadRequest struct {
	ContentType string `json:"content_type" binding:"required"`
}

type ImageUploadResponse struct {
	UploadURL string `json:"upload_url"`
	ImageKey  string `json:"image_key"`
	ExpiresIn int    `json:"expires_in"`
}
