package service_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/recipewizard/backend/internal/apperr"
	"github.com/pageza/recipewizard/backend/internal/models"
	"github.com/pageza/recipewizard/backend/internal/service"
	"github.com/pageza/recipewizard/backend/internal/testhelpers"
)

type fakeImageStore struct {
	uploads []string
	fail    bool
}

func (f *fakeImageStore) PresignUpload(_ context.Context, key, contentType string, _ time.Duration) (string, error) {
	if f.fail {
		return "", errors.New("s3 unavailable")
	}
	f.uploads = append(f.uploads, key)
	return "https://bucket.example.com/" + key + "?upload", nil
}

func (f *fakeImageStore) PresignDownload(_ context.Context, key string, _ time.Duration) (string, error) {
	return "https://bucket.example.com/" + key, nil
}

func generated(title string) *service.GenerationResult {
	prep := 10
	return &service.GenerationResult{
		Model:            "test-model",
		GenerationTimeMs: 1200,
		RetryCount:       1,
		Recipe: &service.GeneratedRecipe{
			Title:        title,
			Description:  "tasty",
			Instructions: []string{"Chop", "Cook"},
			PrepTime:     &prep,
			Servings:     2,
			Difficulty:   "easy",
			Tips:         []string{},
			Ingredients: []service.GeneratedIngredient{
				{Name: "onion", Amount: "1", Category: "produce"},
				{Name: "rice", Amount: "200", Unit: "g", Category: "dry-goods"},
			},
		},
	}
}

func TestRecipeService_CreateFromGeneration(t *testing.T) {
	db := testhelpers.SetupSQLite(t)
	user := testhelpers.CreateTestUser(t, db, "cook@example.com")
	svc := service.NewRecipeService(db, nil, nil)
	ctx := context.Background()

	recipe, err := svc.CreateFromGeneration(ctx, user.ID, "onion rice", generated("Onion Rice"))
	require.NoError(t, err)

	loaded, err := svc.GetOwnedRecipe(ctx, user.ID, recipe.ID)
	require.NoError(t, err)
	assert.Equal(t, "Onion Rice", loaded.Title)
	assert.Equal(t, "onion rice", loaded.OriginalPrompt)
	assert.Equal(t, "test-model", loaded.LLMModel)
	require.Len(t, loaded.Ingredients, 2)
	assert.Equal(t, "onion", loaded.Ingredients[0].Name)
	assert.Nil(t, loaded.Ingredients[0].Unit)
	assert.Equal(t, "g", *loaded.Ingredients[1].Unit)

	meta := service.GenerationMetadata(loaded)
	assert.Equal(t, "test-model", meta["model"])
	assert.EqualValues(t, 1, meta["retry_count"])

	view := service.ToRecipeView(loaded)
	assert.Equal(t, "onion rice", view.UserPrompt)
	assert.Equal(t, "", view.Ingredients[0].Unit)
	assert.Equal(t, []string{"Chop", "Cook"}, view.Recipe.Instructions)
}

func TestRecipeService_GetOwnedRecipe_OtherUser(t *testing.T) {
	db := testhelpers.SetupSQLite(t)
	owner := testhelpers.CreateTestUser(t, db, "owner@example.com")
	other := testhelpers.CreateTestUser(t, db, "other@example.com")
	recipe := testhelpers.CreateTestRecipe(t, db, owner.ID, "Soup")
	svc := service.NewRecipeService(db, nil, nil)

	_, err := svc.GetOwnedRecipe(context.Background(), other.ID, recipe.ID)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))

	_, err = svc.GetRecipe(context.Background(), 9999)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestRecipeService_History(t *testing.T) {
	db := testhelpers.SetupSQLite(t)
	user := testhelpers.CreateTestUser(t, db, "cook@example.com")
	other := testhelpers.CreateTestUser(t, db, "other@example.com")
	for _, title := range []string{"First", "Second", "Third"} {
		testhelpers.CreateTestRecipe(t, db, user.ID, title)
	}
	testhelpers.CreateTestRecipe(t, db, other.ID, "Not mine")
	svc := service.NewRecipeService(db, nil, nil)

	recipes, total, err := svc.History(context.Background(), user.ID, 2, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, recipes, 2)
	assert.Equal(t, "Third", recipes[0].Title)
	assert.Equal(t, "Second", recipes[1].Title)

	recipes, _, err = svc.History(context.Background(), user.ID, 2, 2)
	require.NoError(t, err)
	require.Len(t, recipes, 1)
	assert.Equal(t, "First", recipes[0].Title)
}

func TestRecipeService_SaveAndUnsave(t *testing.T) {
	db := testhelpers.SetupSQLite(t)
	user := testhelpers.CreateTestUser(t, db, "cook@example.com")
	recipe := testhelpers.CreateTestRecipe(t, db, user.ID, "Stew",
		testhelpers.Ingredient{Name: "beef", Amount: "500", Unit: "g", Category: "butchery"})
	svc := service.NewRecipeService(db, nil, nil)
	ctx := context.Background()

	saved, err := svc.SaveRecipe(ctx, user.ID, recipe.ID)
	require.NoError(t, err)
	assert.NotZero(t, saved.ID)

	_, err = svc.SaveRecipe(ctx, user.ID, recipe.ID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrValidation))
	assert.Equal(t, "Recipe already saved", err.Error())

	_, err = svc.SaveRecipe(ctx, user.ID, 9999)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))

	list, total, err := svc.SavedRecipes(ctx, user.ID, 10, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, list, 1)
	assert.Equal(t, "Stew", list[0].Recipe.Title)
	require.Len(t, list[0].Recipe.Ingredients, 1)

	require.NoError(t, svc.UnsaveRecipe(ctx, user.ID, recipe.ID))
	err = svc.UnsaveRecipe(ctx, user.ID, recipe.ID)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestRecipeService_SearchKeywordFallback(t *testing.T) {
	db := testhelpers.SetupSQLite(t)
	user := testhelpers.CreateTestUser(t, db, "cook@example.com")
	testhelpers.CreateTestRecipe(t, db, user.ID, "Tomato Soup",
		testhelpers.Ingredient{Name: "tomato", Amount: "4", Category: "produce"})
	testhelpers.CreateTestRecipe(t, db, user.ID, "Pancakes",
		testhelpers.Ingredient{Name: "flour", Amount: "2", Unit: "cups", Category: "dry-goods"})
	svc := service.NewRecipeService(db, nil, nil)

	results, err := svc.SearchRecipes(context.Background(), "SOUP", 0)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Tomato Soup", results[0].Title)

	results, err = svc.SearchRecipes(context.Background(), "flour", 0)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Pancakes", results[0].Title)

	_, err = svc.SearchRecipes(context.Background(), "  ", 0)
	assert.True(t, errors.Is(err, apperr.ErrValidation))
}

func TestRecipeService_ImageUpload(t *testing.T) {
	db := testhelpers.SetupSQLite(t)
	owner := testhelpers.CreateTestUser(t, db, "owner@example.com")
	other := testhelpers.CreateTestUser(t, db, "other@example.com")
	recipe := testhelpers.CreateTestRecipe(t, db, owner.ID, "Cake")
	store := &fakeImageStore{}
	svc := service.NewRecipeService(db, store, nil)
	ctx := context.Background()

	resp, err := svc.CreateImageUpload(ctx, owner.ID, recipe.ID, "image/png")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(resp.ImageKey, "recipes/"))
	assert.True(t, strings.HasSuffix(resp.ImageKey, ".png"))
	assert.Equal(t, 900, resp.ExpiresIn)

	var stored models.Recipe
	require.NoError(t, db.First(&stored, recipe.ID).Error)
	assert.Equal(t, resp.ImageKey, stored.ImageKey)
	assert.Equal(t, "https://bucket.example.com/"+resp.ImageKey, svc.View(ctx, &stored).ImageURL)

	_, err = svc.CreateImageUpload(ctx, other.ID, recipe.ID, "image/png")
	assert.True(t, errors.Is(err, apperr.ErrNotFound))

	_, err = svc.CreateImageUpload(ctx, owner.ID, recipe.ID, "application/pdf")
	assert.True(t, errors.Is(err, apperr.ErrValidation))

	store.fail = true
	_, err = svc.CreateImageUpload(ctx, owner.ID, recipe.ID, "image/jpeg")
	assert.True(t, errors.Is(err, apperr.ErrUpstream))
}

func TestRecipeService_ImageUploadWithoutStore(t *testing.T) {
	db := testhelpers.SetupSQLite(t)
	owner := testhelpers.CreateTestUser(t, db, "owner@example.com")
	recipe := testhelpers.CreateTestRecipe(t, db, owner.ID, "Cake")

	_, err := service.NewRecipeService(db, nil, nil).CreateImageUpload(context.Background(), owner.ID, recipe.ID, "image/png")
	assert.True(t, errors.Is(err, apperr.ErrUpstream))
}
