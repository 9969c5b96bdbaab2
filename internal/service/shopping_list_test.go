package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/pageza/recipewizard/backend/internal/apperr"
	"github.com/pageza/recipewizard/backend/internal/models"
	"github.com/pageza/recipewizard/backend/internal/service"
	"github.com/pageza/recipewizard/backend/internal/testhelpers"
	"github.com/pageza/recipewizard/backend/internal/types"
)

type shoppingFixture struct {
	db      *gorm.DB
	svc     *service.ShoppingListService
	user    *models.User
	pasta   *models.Recipe
	pancake *models.Recipe
}

func setupShoppingList(t *testing.T) *shoppingFixture {
	db := testhelpers.SetupSQLite(t)
	user := testhelpers.CreateTestUser(t, db, "shopper@example.com")

	pasta := testhelpers.CreateTestRecipe(t, db, user.ID, "Pasta",
		testhelpers.Ingredient{Name: "flour", Amount: "2", Unit: "cups", Category: "dry-goods"},
		testhelpers.Ingredient{Name: "salt", Amount: "to taste", Unit: "N/A", Category: "spices"},
		testhelpers.Ingredient{Name: "eggs", Amount: "2", Category: "chilled"},
	)
	pancake := testhelpers.CreateTestRecipe(t, db, user.ID, "Pancakes",
		testhelpers.Ingredient{Name: "flour", Amount: "1/2", Unit: "cups", Category: "dry-goods"},
		testhelpers.Ingredient{Name: "milk", Amount: "250", Unit: "ml", Category: "chilled"},
		testhelpers.Ingredient{Name: "salt", Amount: "pinch", Category: "spices"},
	)

	return &shoppingFixture{
		db:      db,
		svc:     service.NewShoppingListService(db, nil),
		user:    user,
		pasta:   pasta,
		pancake: pancake,
	}
}

func itemByName(t *testing.T, view *types.ShoppingListView, name string) types.ShoppingListItemView {
	t.Helper()
	for _, item := range view.Items {
		if item.IngredientName == name {
			return item
		}
	}
	t.Fatalf("item %q not in shopping list", name)
	return types.ShoppingListItemView{}
}

func TestGetOrCreateList(t *testing.T) {
	f := setupShoppingList(t)
	ctx := context.Background()

	first, err := f.svc.GetOrCreateList(ctx, f.user.ID)
	require.NoError(t, err)
	assert.Equal(t, models.DefaultShoppingListName, first.Name)
	assert.True(t, first.IsActive)

	second, err := f.svc.GetOrCreateList(ctx, f.user.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	var count int64
	require.NoError(t, f.db.Model(&models.ShoppingList{}).Where("user_id = ?", f.user.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestGetOrCreateListPicksOldestActive(t *testing.T) {
	f := setupShoppingList(t)
	older := models.ShoppingList{UserID: f.user.ID, Name: "older", IsActive: true}
	newer := models.ShoppingList{UserID: f.user.ID, Name: "newer", IsActive: true}
	require.NoError(t, f.db.Create(&older).Error)
	require.NoError(t, f.db.Create(&newer).Error)

	list, err := f.svc.GetOrCreateList(context.Background(), f.user.ID)
	require.NoError(t, err)
	assert.Equal(t, older.ID, list.ID)
}

func TestGetListEmpty(t *testing.T) {
	f := setupShoppingList(t)

	view, err := f.svc.GetList(context.Background(), f.user.ID)
	require.NoError(t, err)
	assert.NotNil(t, view.Items)
	assert.Empty(t, view.Items)
	assert.False(t, view.LastUpdated.IsZero())
}

func TestAddRecipeCreatesItems(t *testing.T) {
	f := setupShoppingList(t)

	view, err := f.svc.AddRecipe(context.Background(), f.user.ID, f.pasta.ID)
	require.NoError(t, err)
	require.Len(t, view.Items, 3)

	flour := itemByName(t, view, "flour")
	assert.Equal(t, "2 cups", flour.ConsolidatedDisplay)
	assert.Equal(t, "dry-goods", flour.Category)
	assert.False(t, flour.IsChecked)
	require.Len(t, flour.RecipeBreakdown, 1)
	assert.Equal(t, "Pasta", flour.RecipeBreakdown[0].RecipeTitle)
	assert.Equal(t, "2 cups", flour.RecipeBreakdown[0].Quantity)

	assert.Equal(t, "to taste", itemByName(t, view, "salt").ConsolidatedDisplay)
	assert.Equal(t, "2", itemByName(t, view, "eggs").ConsolidatedDisplay)
}

func TestAddRecipeConsolidatesMatchingItems(t *testing.T) {
	f := setupShoppingList(t)
	ctx := context.Background()

	_, err := f.svc.AddRecipe(ctx, f.user.ID, f.pasta.ID)
	require.NoError(t, err)
	view, err := f.svc.AddRecipe(ctx, f.user.ID, f.pancake.ID)
	require.NoError(t, err)
	require.Len(t, view.Items, 4)

	flour := itemByName(t, view, "flour")
	assert.Equal(t, "2.5 cups", flour.ConsolidatedDisplay)
	require.Len(t, flour.RecipeBreakdown, 2)
	assert.Equal(t, "Pasta", flour.RecipeBreakdown[0].RecipeTitle)
	assert.Equal(t, "Pancakes", flour.RecipeBreakdown[1].RecipeTitle)
	assert.Equal(t, "1/2 cups", flour.RecipeBreakdown[1].Quantity)

	salt := itemByName(t, view, "salt")
	assert.Equal(t, "to taste + pinch", salt.ConsolidatedDisplay)

	assert.Equal(t, "250 ml", itemByName(t, view, "milk").ConsolidatedDisplay)
}

func TestAddRecipeTwiceStacks(t *testing.T) {
	f := setupShoppingList(t)
	ctx := context.Background()

	_, err := f.svc.AddRecipe(ctx, f.user.ID, f.pasta.ID)
	require.NoError(t, err)
	view, err := f.svc.AddRecipe(ctx, f.user.ID, f.pasta.ID)
	require.NoError(t, err)

	require.Len(t, view.Items, 3)
	assert.Equal(t, "4 cups", itemByName(t, view, "flour").ConsolidatedDisplay)
	assert.Equal(t, "4", itemByName(t, view, "eggs").ConsolidatedDisplay)
	assert.Len(t, itemByName(t, view, "flour").RecipeBreakdown, 2)

	var assocs int64
	require.NoError(t, f.db.Model(&models.ShoppingListRecipeAssociation{}).Count(&assocs).Error)
	assert.Equal(t, int64(2), assocs)
}

func TestAddRecipeSameNameDifferentCategory(t *testing.T) {
	f := setupShoppingList(t)
	ctx := context.Background()
	other := testhelpers.CreateTestRecipe(t, f.db, f.user.ID, "Frozen Pasta",
		testhelpers.Ingredient{Name: "flour", Amount: "1", Unit: "cups", Category: "frozen"},
	)

	_, err := f.svc.AddRecipe(ctx, f.user.ID, f.pasta.ID)
	require.NoError(t, err)
	view, err := f.svc.AddRecipe(ctx, f.user.ID, other.ID)
	require.NoError(t, err)

	var flourItems int
	for _, item := range view.Items {
		if item.IngredientName == "flour" {
			flourItems++
		}
	}
	assert.Equal(t, 2, flourItems)
}

func TestAddRecipeNotFound(t *testing.T) {
	f := setupShoppingList(t)

	_, err := f.svc.AddRecipe(context.Background(), f.user.ID, 9999)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
	assert.Equal(t, "Recipe with ID 9999 not found", err.Error())

	var lists int64
	require.NoError(t, f.db.Model(&models.ShoppingList{}).Count(&lists).Error)
	assert.Zero(t, lists)
}

func TestAddRecipeBumpsLastUpdated(t *testing.T) {
	f := setupShoppingList(t)
	ctx := context.Background()

	before, err := f.svc.GetList(ctx, f.user.ID)
	require.NoError(t, err)
	time.Sleep(10 * time.Millisecond)

	after, err := f.svc.AddRecipe(ctx, f.user.ID, f.pasta.ID)
	require.NoError(t, err)
	assert.True(t, after.LastUpdated.After(before.LastUpdated))
}

func TestRemoveRecipe(t *testing.T) {
	f := setupShoppingList(t)
	ctx := context.Background()

	_, err := f.svc.AddRecipe(ctx, f.user.ID, f.pasta.ID)
	require.NoError(t, err)
	_, err = f.svc.AddRecipe(ctx, f.user.ID, f.pancake.ID)
	require.NoError(t, err)

	view, err := f.svc.RemoveRecipe(ctx, f.user.ID, f.pancake.ID)
	require.NoError(t, err)

	require.Len(t, view.Items, 3)
	flour := itemByName(t, view, "flour")
	assert.Equal(t, "2 cups", flour.ConsolidatedDisplay)
	require.Len(t, flour.RecipeBreakdown, 1)
	assert.Equal(t, "Pasta", flour.RecipeBreakdown[0].RecipeTitle)
	assert.Equal(t, "to taste", itemByName(t, view, "salt").ConsolidatedDisplay)

	for _, item := range view.Items {
		assert.NotEqual(t, "milk", item.IngredientName)
	}
}

func TestRemoveRecipeAfterDuplicateAdd(t *testing.T) {
	f := setupShoppingList(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := f.svc.AddRecipe(ctx, f.user.ID, f.pasta.ID)
		require.NoError(t, err)
	}

	view, err := f.svc.RemoveRecipe(ctx, f.user.ID, f.pasta.ID)
	require.NoError(t, err)
	assert.Empty(t, view.Items)

	var assocs, breakdowns int64
	require.NoError(t, f.db.Model(&models.ShoppingListRecipeAssociation{}).Count(&assocs).Error)
	require.NoError(t, f.db.Model(&models.ShoppingListRecipeBreakdown{}).Count(&breakdowns).Error)
	assert.Equal(t, int64(1), assocs)
	assert.Zero(t, breakdowns)

	// The leftover association lets a second remove succeed on an already empty list.
	view, err = f.svc.RemoveRecipe(ctx, f.user.ID, f.pasta.ID)
	require.NoError(t, err)
	assert.Empty(t, view.Items)

	require.NoError(t, f.db.Model(&models.ShoppingListRecipeAssociation{}).Count(&assocs).Error)
	assert.Zero(t, assocs)

	_, err = f.svc.RemoveRecipe(ctx, f.user.ID, f.pasta.ID)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func countRows(t *testing.T, db *gorm.DB) (assocs, items, breakdowns int64) {
	t.Helper()
	require.NoError(t, db.Model(&models.ShoppingListRecipeAssociation{}).Count(&assocs).Error)
	require.NoError(t, db.Model(&models.ShoppingListItem{}).Count(&items).Error)
	require.NoError(t, db.Model(&models.ShoppingListRecipeBreakdown{}).Count(&breakdowns).Error)
	return assocs, items, breakdowns
}

func TestAddRecipeRollsBackOnFailure(t *testing.T) {
	f := setupShoppingList(t)
	ctx := context.Background()

	inserts := 0
	err := f.db.Callback().Create().Before("gorm:create").Register("test:fail_second_breakdown", func(tx *gorm.DB) {
		if tx.Statement.Schema == nil || tx.Statement.Schema.Name != "ShoppingListRecipeBreakdown" {
			return
		}
		inserts++
		if inserts == 2 {
			_ = tx.AddError(errors.New("disk full"))
		}
	})
	require.NoError(t, err)

	_, err = f.svc.AddRecipe(ctx, f.user.ID, f.pasta.ID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrPersistence))

	assocs, items, breakdowns := countRows(t, f.db)
	assert.Zero(t, assocs)
	assert.Zero(t, items)
	assert.Zero(t, breakdowns)
}

func TestRemoveRecipeRollsBackOnFailure(t *testing.T) {
	f := setupShoppingList(t)
	ctx := context.Background()

	_, err := f.svc.AddRecipe(ctx, f.user.ID, f.pasta.ID)
	require.NoError(t, err)
	before, err := f.svc.AddRecipe(ctx, f.user.ID, f.pancake.ID)
	require.NoError(t, err)
	assocsBefore, itemsBefore, breakdownsBefore := countRows(t, f.db)

	err = f.db.Callback().Delete().Before("gorm:delete").Register("test:fail_association_delete", func(tx *gorm.DB) {
		if tx.Statement.Schema != nil && tx.Statement.Schema.Name == "ShoppingListRecipeAssociation" {
			_ = tx.AddError(errors.New("disk full"))
		}
	})
	require.NoError(t, err)

	_, err = f.svc.RemoveRecipe(ctx, f.user.ID, f.pasta.ID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrPersistence))

	assocs, items, breakdowns := countRows(t, f.db)
	assert.Equal(t, assocsBefore, assocs)
	assert.Equal(t, itemsBefore, items)
	assert.Equal(t, breakdownsBefore, breakdowns)

	after, err := f.svc.GetList(ctx, f.user.ID)
	require.NoError(t, err)
	assert.Equal(t, itemByName(t, before, "flour").ConsolidatedDisplay, itemByName(t, after, "flour").ConsolidatedDisplay)
}

func TestRemoveRecipeNotInList(t *testing.T) {
	f := setupShoppingList(t)

	_, err := f.svc.RemoveRecipe(context.Background(), f.user.ID, f.pasta.ID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
	assert.Contains(t, err.Error(), "not found in shopping list")
}

func TestAddThenRemoveRestoresDisplay(t *testing.T) {
	f := setupShoppingList(t)
	ctx := context.Background()

	original, err := f.svc.AddRecipe(ctx, f.user.ID, f.pasta.ID)
	require.NoError(t, err)
	_, err = f.svc.AddRecipe(ctx, f.user.ID, f.pancake.ID)
	require.NoError(t, err)
	restored, err := f.svc.RemoveRecipe(ctx, f.user.ID, f.pancake.ID)
	require.NoError(t, err)

	require.Len(t, restored.Items, len(original.Items))
	for _, want := range original.Items {
		got := itemByName(t, restored, want.IngredientName)
		assert.Equal(t, want.ConsolidatedDisplay, got.ConsolidatedDisplay)
		assert.Equal(t, want.ID, got.ID)
	}
}

func TestClearList(t *testing.T) {
	f := setupShoppingList(t)
	ctx := context.Background()

	_, err := f.svc.AddRecipe(ctx, f.user.ID, f.pasta.ID)
	require.NoError(t, err)
	list, err := f.svc.GetOrCreateList(ctx, f.user.ID)
	require.NoError(t, err)

	ok, err := f.svc.ClearList(ctx, f.user.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	view, err := f.svc.GetList(ctx, f.user.ID)
	require.NoError(t, err)
	assert.Empty(t, view.Items)

	for _, model := range []interface{}{
		&models.ShoppingListItem{},
		&models.ShoppingListRecipeBreakdown{},
		&models.ShoppingListRecipeAssociation{},
	} {
		var count int64
		require.NoError(t, f.db.Model(model).Count(&count).Error)
		assert.Zero(t, count)
	}

	after, err := f.svc.GetOrCreateList(ctx, f.user.ID)
	require.NoError(t, err)
	assert.Equal(t, list.ID, after.ID)
}

func TestClearListLeavesOtherUsersAlone(t *testing.T) {
	f := setupShoppingList(t)
	ctx := context.Background()
	other := testhelpers.CreateTestUser(t, f.db, "other@example.com")

	_, err := f.svc.AddRecipe(ctx, f.user.ID, f.pasta.ID)
	require.NoError(t, err)
	_, err = f.svc.AddRecipe(ctx, other.ID, f.pasta.ID)
	require.NoError(t, err)

	_, err = f.svc.ClearList(ctx, f.user.ID)
	require.NoError(t, err)

	view, err := f.svc.GetList(ctx, other.ID)
	require.NoError(t, err)
	assert.Len(t, view.Items, 3)
}

func TestUpdateItemStatus(t *testing.T) {
	f := setupShoppingList(t)
	ctx := context.Background()

	view, err := f.svc.AddRecipe(ctx, f.user.ID, f.pasta.ID)
	require.NoError(t, err)
	flour := itemByName(t, view, "flour")

	itemID := flourItemID(t, f.db)

	item, err := f.svc.UpdateItemStatus(ctx, f.user.ID, itemID, true)
	require.NoError(t, err)
	assert.True(t, item.IsChecked)
	assert.Equal(t, flour.ConsolidatedDisplay, item.ConsolidatedDisplay)
	assert.Len(t, item.RecipeBreakdown, 1)

	item, err = f.svc.UpdateItemStatus(ctx, f.user.ID, itemID, false)
	require.NoError(t, err)
	assert.False(t, item.IsChecked)
}

func TestUpdateItemStatusWrongUser(t *testing.T) {
	f := setupShoppingList(t)
	ctx := context.Background()
	other := testhelpers.CreateTestUser(t, f.db, "intruder@example.com")

	_, err := f.svc.AddRecipe(ctx, f.user.ID, f.pasta.ID)
	require.NoError(t, err)
	itemID := flourItemID(t, f.db)

	_, err = f.svc.UpdateItemStatus(ctx, other.ID, itemID, true)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func flourItemID(t *testing.T, db *gorm.DB) uint {
	t.Helper()
	var item models.ShoppingListItem
	require.NoError(t, db.Where("ingredient_name = ?", "flour").First(&item).Error)
	return item.ID
}

func TestAddRecipeNormalizesSentinelUnitOnExistingItem(t *testing.T) {
	f := setupShoppingList(t)
	ctx := context.Background()
	garnish := testhelpers.CreateTestRecipe(t, f.db, f.user.ID, "Garnish",
		testhelpers.Ingredient{Name: "eggs", Amount: "1", Unit: "N/A", Category: "chilled"},
	)

	_, err := f.svc.AddRecipe(ctx, f.user.ID, f.pasta.ID)
	require.NoError(t, err)
	view, err := f.svc.AddRecipe(ctx, f.user.ID, garnish.ID)
	require.NoError(t, err)

	eggs := itemByName(t, view, "eggs")
	require.Len(t, eggs.RecipeBreakdown, 2)
	assert.Equal(t, "1", eggs.RecipeBreakdown[1].Quantity)
	assert.Equal(t, "3", eggs.ConsolidatedDisplay)
}
