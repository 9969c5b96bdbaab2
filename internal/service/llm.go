package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/pageza/recipewizard/backend/internal/apperr"
	"github.com/pageza/recipewizard/backend/internal/logger"
	"github.com/pageza/recipewizard/backend/internal/models"
	"github.com/pageza/recipewizard/backend/internal/types"
)

const maxCategoryRetries = 2

var ErrInvalidLLMResponse = errors.New("invalid LLM response")

type GeneratedIngredient struct {
	Name     string `json:"name"`
	Amount   string `json:"amount"`
	Unit     string `json:"unit"`
	Category string `json:"category"`
}

// GeneratedRecipe is a recipe as returned by the model, after defaults are applied.
type GeneratedRecipe struct {
	Title        string                `json:"title"`
	Description  string                `json:"description"`
	Instructions []string              `json:"instructions"`
	PrepTime     *int                  `json:"prepTime"`
	CookTime     *int                  `json:"cookTime"`
	Servings     int                   `json:"servings"`
	Difficulty   string                `json:"difficulty"`
	Tips         []string              `json:"tips"`
	Ingredients  []GeneratedIngredient `json:"ingredients"`
}

type GenerationResult struct {
	Recipe           *GeneratedRecipe
	Model            string
	GenerationTimeMs int64
	RetryCount       int
	CategoriesFixed  bool
}

// Metadata is what gets stored alongside the saved recipe.
func (r *GenerationResult) Metadata() map[string]interface{} {
	return map[string]interface{}{
		"model":              r.Model,
		"generation_time_ms": r.GenerationTimeMs,
		"retry_count":        r.RetryCount,
		"categories_fixed":   r.CategoriesFixed,
	}
}

// RecipeGenerator turns user prompts into validated recipes.
type RecipeGenerator struct {
	provider LLMProvider
	rules    *CategoryRules
	log      *logger.Logger
}

func NewRecipeGenerator(provider LLMProvider, rules *CategoryRules, log *logger.Logger) *RecipeGenerator {
	if log == nil {
		log = logger.NewNop()
	}
	return &RecipeGenerator{provider: provider, rules: rules, log: log}
}

// Generate creates a new recipe for the prompt, honouring the user's stored preferences
// and any per-request overrides.
func (g *RecipeGenerator) Generate(ctx context.Context, prompt string, user *models.User, prefs *types.RecipePreferences) (*GenerationResult, error) {
	categories := g.rules.Effective(userCategories(user))
	full := BuildRecipePrompt(prompt, preferenceContext(user, prefs), categories)
	return g.run(ctx, prompt, full, categories)
}

// Modify asks the model to rework an existing recipe.
func (g *RecipeGenerator) Modify(ctx context.Context, original *models.Recipe, modification string, user *models.User) (*GenerationResult, error) {
	categories := g.rules.Effective(userCategories(user))
	full := BuildModificationPrompt(original, modification, preferenceContext(user, nil), categories)
	return g.run(ctx, modification, full, categories)
}

func (g *RecipeGenerator) run(ctx context.Context, userPrompt, fullPrompt string, categories []string) (*GenerationResult, error) {
	start := time.Now()

	text, err := g.provider.Generate(ctx, fullPrompt, 0.7)
	if err != nil {
		return nil, apperr.Upstream(err, "Recipe generation service is unavailable")
	}

	recipe, err := ParseRecipeResponse(text)
	if err != nil {
		g.log.Warn("LLM returned an unusable recipe", "error", err)
		return nil, apperr.Upstream(err, "Recipe generation failed: "+err.Error())
	}

	result := &GenerationResult{Model: g.provider.Model()}

	invalid := InvalidCategories(recipe, categories)
	for len(invalid) > 0 && result.RetryCount < maxCategoryRetries {
		result.RetryCount++
		g.log.Info("Correcting ingredient categories", "invalid", invalid, "attempt", result.RetryCount)

		corrected, err := g.provider.Generate(ctx, BuildCategoryCorrectionPrompt(userPrompt, invalid, categories, text), 0.3)
		if err != nil {
			if ctx.Err() != nil {
				return nil, apperr.Upstream(ctx.Err(), "Recipe generation was interrupted")
			}
			g.log.Warn("Category correction call failed", "error", err)
			continue
		}
		candidate, err := ParseRecipeResponse(corrected)
		if err != nil {
			g.log.Warn("Category correction returned an unusable recipe", "error", err)
			continue
		}
		if remaining := InvalidCategories(candidate, categories); len(remaining) == 0 {
			recipe, invalid = candidate, nil
		}
	}

	if len(invalid) > 0 {
		g.fixCategories(recipe, categories)
		result.CategoriesFixed = true
	} else {
		canonicalizeCategories(recipe, categories)
	}

	result.Recipe = recipe
	result.GenerationTimeMs = time.Since(start).Milliseconds()
	g.log.Info("Recipe generated", "title", recipe.Title, "model", result.Model, "duration_ms", result.GenerationTimeMs)
	return result, nil
}

func (g *RecipeGenerator) fixCategories(recipe *GeneratedRecipe, valid []string) {
	for i := range recipe.Ingredients {
		recipe.Ingredients[i].Category = g.rules.Closest(recipe.Ingredients[i].Category, valid)
	}
}

func canonicalizeCategories(recipe *GeneratedRecipe, valid []string) {
	for i := range recipe.Ingredients {
		if v, ok := Canonical(recipe.Ingredients[i].Category, valid); ok {
			recipe.Ingredients[i].Category = v
		}
	}
}

// InvalidCategories lists, once each, the ingredient categories not in valid (case-insensitive).
func InvalidCategories(recipe *GeneratedRecipe, valid []string) []string {
	var invalid []string
	seen := make(map[string]bool)
	for _, ing := range recipe.Ingredients {
		c := strings.TrimSpace(ing.Category)
		if c == "" || seen[c] {
			continue
		}
		if _, ok := Canonical(c, valid); !ok {
			seen[c] = true
			invalid = append(invalid, c)
		}
	}
	return invalid
}

func userCategories(user *models.User) []string {
	if user == nil {
		return nil
	}
	return user.GroceryCategories
}

func preferenceContext(user *models.User, prefs *types.RecipePreferences) string {
	var b strings.Builder
	if user != nil {
		b.WriteString(user.PreferenceContext())
	}
	if prefs == nil {
		return b.String()
	}
	if prefs.Servings != nil {
		fmt.Fprintf(&b, "\n- For this recipe, serve %d people", *prefs.Servings)
	}
	if prefs.Difficulty != "" {
		fmt.Fprintf(&b, "\n- For this recipe, use %s difficulty", prefs.Difficulty)
	}
	if prefs.MaxCookTime != nil {
		fmt.Fprintf(&b, "\n- For this recipe, keep cooking time under %d minutes", *prefs.MaxCookTime)
	}
	if len(prefs.DietaryRestrictions) > 0 {
		fmt.Fprintf(&b, "\n- For this recipe, it must be: %s", strings.Join(prefs.DietaryRestrictions, ", "))
	}
	if prefs.Cuisine != "" {
		fmt.Fprintf(&b, "\n- Cuisine: %s", prefs.Cuisine)
	}
	return b.String()
}

const recipeJSONFormat = `{
  "recipe": {
    "title": "Recipe Name",
    "description": "Brief description",
    "instructions": ["Step 1", "Step 2", "..."],
    "prepTime": 15,
    "cookTime": 30,
    "servings": 4,
    "difficulty": "easy",
    "tips": ["Tip 1", "Tip 2"]
  },
  "ingredients": [
    {
      "name": "ingredient name",
      "amount": "1",
      "unit": "cup",
      "category": "MUST_BE_FROM_PROVIDED_LIST"
    }
  ]
}`

// BuildRecipePrompt assembles the generation prompt.
func BuildRecipePrompt(userPrompt, preferences string, categories []string) string {
	list := strings.Join(categories, ", ")

	var b strings.Builder
	b.WriteString("You are RecipeWizard, an expert chef and recipe creator. Generate creative, practical recipes based on user requests.\n\n")
	b.WriteString("CRITICAL INSTRUCTIONS:\n")
	b.WriteString("1. Always respond with ONLY valid JSON in the exact format specified below\n")
	b.WriteString("2. Do not include any text before or after the JSON\n")
	b.WriteString("3. All ingredient amounts must be practical and realistic\n")
	b.WriteString("4. Instructions should be clear and detailed\n")
	b.WriteString("5. Include helpful cooking tips\n\n")
	b.WriteString("INGREDIENT CATEGORIZATION - EXTREMELY IMPORTANT:\n")
	fmt.Fprintf(&b, "- Every ingredient MUST be assigned to one of these categories: %s\n", list)
	b.WriteString("- You MUST use the exact category names provided above\n")
	b.WriteString("- Do NOT create new categories or use variations\n\n")
	fmt.Fprintf(&b, "REQUIRED JSON FORMAT:\n%s\n\n", recipeJSONFormat)
	fmt.Fprintf(&b, "VALID INGREDIENT CATEGORIES (use EXACTLY these): %s\n\n", list)
	b.WriteString("DIFFICULTY LEVELS: easy, medium, hard\n\n")
	fmt.Fprintf(&b, "User Request: %s", userPrompt)
	if preferences != "" {
		fmt.Fprintf(&b, "\n\nUser Preferences:%s", preferences)
	}
	b.WriteString("\n\nGenerate a recipe that matches the request with ONLY valid JSON response:")
	return b.String()
}

// BuildModificationPrompt asks for a reworked version of an existing recipe.
func BuildModificationPrompt(original *models.Recipe, modification, preferences string, categories []string) string {
	var ings strings.Builder
	for _, ing := range original.Ingredients {
		unit := ""
		if ing.Unit != nil {
			unit = *ing.Unit
		}
		fmt.Fprintf(&ings, "- %s %s %s (%s)\n", ing.Amount, unit, ing.Name, ing.Category)
	}

	request := fmt.Sprintf("Modify this recipe: %s\n\nDescription: %s\n\nIngredients:\n%s\nInstructions:\n%s\n\nModification request: %s",
		original.Title,
		original.Description,
		ings.String(),
		strings.Join(original.Instructions, "\n"),
		modification)
	return BuildRecipePrompt(request, preferences, categories)
}

// BuildCategoryCorrectionPrompt asks the model to fix only the categories of its previous answer.
func BuildCategoryCorrectionPrompt(userPrompt string, invalid, valid []string, previous string) string {
	return fmt.Sprintf(`CATEGORY CORRECTION REQUIRED

Your previous response contained invalid ingredient categories: %s

VALID CATEGORIES (use EXACTLY these): %s

Please fix your previous JSON response by changing ONLY the invalid categories to valid ones from the list above.

Original request: %s

Previous response with errors:
%s

Provide the corrected JSON with all ingredient categories fixed to use ONLY the valid categories listed above:`,
		strings.Join(invalid, ", "), strings.Join(valid, ", "), userPrompt, previous)
}

type rawRecipe struct {
	Title        *string         `json:"title"`
	Description  *string         `json:"description"`
	Instructions json.RawMessage `json:"instructions"`
	PrepTime     json.RawMessage `json:"prepTime"`
	CookTime     json.RawMessage `json:"cookTime"`
	Servings     json.RawMessage `json:"servings"`
	Difficulty   *string         `json:"difficulty"`
	Tips         json.RawMessage `json:"tips"`
}

type rawIngredient struct {
	Name     *string         `json:"name"`
	Amount   json.RawMessage `json:"amount"`
	Unit     *string         `json:"unit"`
	Category *string         `json:"category"`
}

// ParseRecipeResponse extracts the outermost JSON object from the model's reply,
// validates it and fills in defaults.
func ParseRecipeResponse(text string) (*GeneratedRecipe, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end < start {
		return nil, fmt.Errorf("%w: no JSON object found", ErrInvalidLLMResponse)
	}

	var envelope struct {
		Recipe      *rawRecipe       `json:"recipe"`
		Ingredients *[]rawIngredient `json:"ingredients"`
	}
	if err := json.Unmarshal([]byte(text[start:end+1]), &envelope); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidLLMResponse, err)
	}
	if envelope.Recipe == nil || envelope.Ingredients == nil {
		return nil, fmt.Errorf("%w: missing required 'recipe' or 'ingredients' fields", ErrInvalidLLMResponse)
	}

	raw := envelope.Recipe
	if raw.Title == nil {
		return nil, fmt.Errorf("%w: missing required recipe field: title", ErrInvalidLLMResponse)
	}
	if len(raw.Instructions) == 0 || string(raw.Instructions) == "null" {
		return nil, fmt.Errorf("%w: missing required recipe field: instructions", ErrInvalidLLMResponse)
	}
	if len(*envelope.Ingredients) == 0 {
		return nil, fmt.Errorf("%w: ingredients must be a non-empty list", ErrInvalidLLMResponse)
	}

	instructions, err := stringList(raw.Instructions)
	if err != nil {
		return nil, fmt.Errorf("%w: instructions: %v", ErrInvalidLLMResponse, err)
	}
	tips, err := stringList(raw.Tips)
	if err != nil {
		return nil, fmt.Errorf("%w: tips: %v", ErrInvalidLLMResponse, err)
	}

	recipe := &GeneratedRecipe{
		Title:        strings.TrimSpace(*raw.Title),
		Description:  derefOr(raw.Description, ""),
		Instructions: instructions,
		PrepTime:     looseInt(raw.PrepTime),
		CookTime:     looseInt(raw.CookTime),
		Servings:     4,
		Difficulty:   strings.ToLower(derefOr(raw.Difficulty, "medium")),
		Tips:         tips,
	}
	if s := looseInt(raw.Servings); s != nil && *s > 0 {
		recipe.Servings = *s
	}

	for _, ing := range *envelope.Ingredients {
		if ing.Name == nil || len(ing.Amount) == 0 || string(ing.Amount) == "null" {
			return nil, fmt.Errorf("%w: invalid ingredient format", ErrInvalidLLMResponse)
		}
		amount, err := looseString(ing.Amount)
		if err != nil {
			return nil, fmt.Errorf("%w: ingredient amount: %v", ErrInvalidLLMResponse, err)
		}
		recipe.Ingredients = append(recipe.Ingredients, GeneratedIngredient{
			Name:     strings.TrimSpace(*ing.Name),
			Amount:   amount,
			Unit:     strings.TrimSpace(derefOr(ing.Unit, "")),
			Category: strings.TrimSpace(derefOr(ing.Category, "pantry")),
		})
	}
	return recipe, nil
}

func derefOr(s *string, def string) string {
	if s == nil {
		return def
	}
	return *s
}

// stringList accepts either a JSON array of strings or a single string.
func stringList(raw json.RawMessage) ([]string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return []string{}, nil
	}
	var single string
	if err := json.Unmarshal(raw, &single); err == nil {
		return []string{single}, nil
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// looseString renders a JSON string or number as text.
func looseString(raw json.RawMessage) (string, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s), nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", err
	}
	return n.String(), nil
}

// looseInt reads a number or numeric string; anything else becomes nil.
func looseInt(raw json.RawMessage) *int {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	s, err := looseString(raw)
	if err != nil {
		return nil
	}
	f, err := strconv.ParseFloat(strings.Fields(s + " x")[0], 64)
	if err != nil {
		return nil
	}
	v := int(f)
	return &v
}
