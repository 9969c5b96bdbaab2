package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/recipewizard/backend/internal/apperr"
	"github.com/pageza/recipewizard/backend/internal/logger"
	"github.com/pageza/recipewizard/backend/internal/models"
	"github.com/pageza/recipewizard/backend/internal/service"
	"github.com/pageza/recipewizard/backend/internal/testhelpers"
	"github.com/pageza/recipewizard/backend/internal/types"
)

func intPtr(v int) *int { return &v }

func TestUpdateProfile(t *testing.T) {
	db := testhelpers.SetupSQLite(t)
	users := service.NewUserService(db, logger.NewNop())
	ctx := context.Background()
	user := testhelpers.CreateTestUser(t, db, "profile@example.com")
	other := testhelpers.CreateTestUser(t, db, "other@example.com")
	require.NoError(t, db.Model(other).Update("username", "taken").Error)

	updated, err := users.UpdateProfile(ctx, user.ID, &types.UpdateProfileRequest{
		Username:  strPtr(" chef "),
		FirstName: strPtr("Ada"),
	})
	require.NoError(t, err)
	assert.Equal(t, "chef", *updated.Username)
	assert.Equal(t, "Ada", *updated.FirstName)
	assert.Equal(t, "Ada", updated.FullName())

	_, err = users.UpdateProfile(ctx, user.ID, &types.UpdateProfileRequest{Username: strPtr("taken")})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = users.UpdateProfile(ctx, 9999, &types.UpdateProfileRequest{})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestUpdatePreferences(t *testing.T) {
	db := testhelpers.SetupSQLite(t)
	users := service.NewUserService(db, logger.NewNop())
	ctx := context.Background()
	user := testhelpers.CreateTestUser(t, db, "prefs@example.com")

	imperial := "imperial"
	updated, err := users.UpdatePreferences(ctx, user.ID, &types.UserPreferences{
		Units:             &imperial,
		DefaultServings:   intPtr(2),
		GroceryCategories: []string{"Produce", " produce ", "", "Frozen"},
		Allergens:         []string{"peanuts"},
	})
	require.NoError(t, err)
	assert.Equal(t, "imperial", updated.Units)
	assert.Equal(t, 2, updated.DefaultServings)
	assert.Equal(t, []string{"Produce", "Frozen"}, []string(updated.GroceryCategories))

	prefs := service.ToUserPreferences(updated)
	assert.Equal(t, []string{"peanuts"}, prefs.Allergens)

	bad := "furlongs"
	_, err = users.UpdatePreferences(ctx, user.ID, &types.UserPreferences{Units: &bad})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = users.UpdatePreferences(ctx, user.ID, &types.UserPreferences{DefaultServings: intPtr(50)})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestDeleteAccountRemovesOwnedData(t *testing.T) {
	db := testhelpers.SetupSQLite(t)
	log := logger.NewNop()
	users := service.NewUserService(db, log)
	lists := service.NewShoppingListService(db, log)
	ctx := context.Background()

	user := testhelpers.CreateTestUser(t, db, "gone@example.com")
	recipe := testhelpers.CreateTestRecipe(t, db, user.ID, "Soup",
		testhelpers.Ingredient{Name: "leek", Amount: "1", Category: "produce"})
	_, err := lists.AddRecipe(ctx, user.ID, recipe.ID)
	require.NoError(t, err)

	require.NoError(t, users.DeleteAccount(ctx, user.ID))

	_, err = users.GetUser(ctx, user.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	var count int64
	require.NoError(t, db.Model(&models.ShoppingListItem{}).Count(&count).Error)
	assert.Zero(t, count)
	require.NoError(t, db.Model(&models.ShoppingList{}).Count(&count).Error)
	assert.Zero(t, count)

	var kept models.Recipe
	require.NoError(t, db.First(&kept, recipe.ID).Error)
	assert.Nil(t, kept.CreatedByID)
}
