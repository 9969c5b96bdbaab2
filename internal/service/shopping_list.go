package service

import (
	"context"
	"errors"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/pageza/recipewizard/backend/internal/apperr"
	"github.com/pageza/recipewizard/backend/internal/logger"
	"github.com/pageza/recipewizard/backend/internal/models"
	"github.com/pageza/recipewizard/backend/internal/types"
)

// ShoppingListService aggregates recipe ingredients into a per-user shopping list.
// Every mutation runs in a single transaction; there is no cross-request locking,
// so two concurrent writers to the same item can lose an update.
type ShoppingListService struct {
	db     *gorm.DB
	log    *logger.Logger
	tracer trace.Tracer
}

// NewShoppingListService creates a new ShoppingListService instance
func NewShoppingListService(db *gorm.DB, log *logger.Logger) *ShoppingListService {
	if log == nil {
		log = logger.NewNop()
	}
	return &ShoppingListService{
		db:     db,
		log:    log,
		tracer: otel.Tracer("recipewizard/shopping_list"),
	}
}

func (s *ShoppingListService) startSpan(ctx context.Context, name string, userID uint) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, "ShoppingListService."+name,
		trace.WithAttributes(attribute.Int64("user.id", int64(userID))))
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// GetOrCreateList returns the user's active list, creating it on first access.
// If more than one active list exists the oldest one wins.
func (s *ShoppingListService) GetOrCreateList(ctx context.Context, userID uint) (*models.ShoppingList, error) {
	return getOrCreateList(s.db.WithContext(ctx), userID)
}

func getOrCreateList(tx *gorm.DB, userID uint) (*models.ShoppingList, error) {
	var list models.ShoppingList
	err := tx.Where("user_id = ? AND is_active = ?", userID, true).Order("id ASC").First(&list).Error
	if err == nil {
		return &list, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.Persistence(err, "failed to load shopping list")
	}

	list = models.ShoppingList{
		UserID:   userID,
		Name:     models.DefaultShoppingListName,
		IsActive: true,
	}
	if err := tx.Create(&list).Error; err != nil {
		return nil, apperr.Persistence(err, "failed to create shopping list")
	}
	return &list, nil
}

// GetList returns the user's active list with every item and its breakdowns.
func (s *ShoppingListService) GetList(ctx context.Context, userID uint) (_ *types.ShoppingListView, err error) {
	ctx, span := s.startSpan(ctx, "GetList", userID)
	defer func() { endSpan(span, err) }()

	list, err := s.GetOrCreateList(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, list.ID)
}

// AddRecipe merges every ingredient of the recipe into the user's list.
// Adding the same recipe again is allowed and stacks another contribution on top.
func (s *ShoppingListService) AddRecipe(ctx context.Context, userID, recipeID uint) (_ *types.ShoppingListView, err error) {
	ctx, span := s.startSpan(ctx, "AddRecipe", userID)
	span.SetAttributes(attribute.Int64("recipe.id", int64(recipeID)))
	defer func() { endSpan(span, err) }()

	var listID uint
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var recipe models.Recipe
		err := tx.Preload("Ingredients", func(db *gorm.DB) *gorm.DB {
			return db.Order("id ASC")
		}).First(&recipe, recipeID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("Recipe with ID %d not found", recipeID)
		}
		if err != nil {
			return apperr.Persistence(err, "failed to load recipe")
		}

		list, err := getOrCreateList(tx, userID)
		if err != nil {
			return err
		}
		listID = list.ID

		assoc := models.ShoppingListRecipeAssociation{
			ShoppingListID: list.ID,
			RecipeID:       recipe.ID,
			AddedAt:        time.Now(),
		}
		if err := tx.Create(&assoc).Error; err != nil {
			return apperr.Persistence(err, "failed to record recipe on shopping list")
		}

		for i := range recipe.Ingredients {
			if err := addIngredient(tx, list.ID, &recipe, &recipe.Ingredients[i]); err != nil {
				return err
			}
		}
		return touchList(tx, list.ID)
	})
	if err != nil {
		return nil, err
	}

	s.log.Debug("Recipe added to shopping list", "user_id", userID, "recipe_id", recipeID, "list_id", listID)
	return s.view(ctx, listID)
}

func addIngredient(tx *gorm.DB, listID uint, recipe *models.Recipe, ing *models.RecipeIngredient) error {
	var item models.ShoppingListItem
	err := tx.Where("shopping_list_id = ? AND ingredient_name = ? AND category = ?", listID, ing.Name, ing.Category).
		Order("id ASC").
		First(&item).Error

	switch {
	case err == nil:
		breakdown := models.ShoppingListRecipeBreakdown{
			ShoppingItemID:       item.ID,
			RecipeID:             recipe.ID,
			OriginalIngredientID: ing.ID,
			RecipeTitle:          recipe.Title,
			Quantity:             FormatIngredientDisplay(ing.Amount, ing.Unit),
		}
		if err := tx.Create(&breakdown).Error; err != nil {
			return apperr.Persistence(err, "failed to add recipe breakdown")
		}
		return reconcileItem(tx, item.ID)

	case errors.Is(err, gorm.ErrRecordNotFound):
		display := FormatIngredientDisplay(ing.Amount, ing.Unit)
		item = models.ShoppingListItem{
			ShoppingListID:      listID,
			IngredientName:      ing.Name,
			Category:            ing.Category,
			ConsolidatedDisplay: display,
		}
		if err := tx.Create(&item).Error; err != nil {
			return apperr.Persistence(err, "failed to create shopping list item")
		}
		breakdown := models.ShoppingListRecipeBreakdown{
			ShoppingItemID:       item.ID,
			RecipeID:             recipe.ID,
			OriginalIngredientID: ing.ID,
			RecipeTitle:          recipe.Title,
			Quantity:             display,
		}
		if err := tx.Create(&breakdown).Error; err != nil {
			return apperr.Persistence(err, "failed to add recipe breakdown")
		}
		return nil

	default:
		return apperr.Persistence(err, "failed to look up shopping list item")
	}
}

// reconcileItem recomputes an item's display from its breakdowns, deleting the item once none remain.
func reconcileItem(tx *gorm.DB, itemID uint) error {
	var quantities []string
	err := tx.Model(&models.ShoppingListRecipeBreakdown{}).
		Where("shopping_item_id = ?", itemID).
		Order("id ASC").
		Pluck("quantity", &quantities).Error
	if err != nil {
		return apperr.Persistence(err, "failed to load recipe breakdowns")
	}

	if len(quantities) == 0 {
		if err := tx.Delete(&models.ShoppingListItem{}, itemID).Error; err != nil {
			return apperr.Persistence(err, "failed to delete shopping list item")
		}
		return nil
	}

	err = tx.Model(&models.ShoppingListItem{}).
		Where("id = ?", itemID).
		Update("consolidated_display", ConsolidateDisplay(quantities)).Error
	if err != nil {
		return apperr.Persistence(err, "failed to update consolidated display")
	}
	return nil
}

func touchList(tx *gorm.DB, listID uint) error {
	err := tx.Model(&models.ShoppingList{}).Where("id = ?", listID).Update("updated_at", time.Now()).Error
	if err != nil {
		return apperr.Persistence(err, "failed to update shopping list")
	}
	return nil
}

func listItemIDs(tx *gorm.DB, listID uint) *gorm.DB {
	return tx.Model(&models.ShoppingListItem{}).Select("id").Where("shopping_list_id = ?", listID)
}

// RemoveRecipe drops every contribution the recipe made to the list, including all duplicate adds.
func (s *ShoppingListService) RemoveRecipe(ctx context.Context, userID, recipeID uint) (_ *types.ShoppingListView, err error) {
	ctx, span := s.startSpan(ctx, "RemoveRecipe", userID)
	span.SetAttributes(attribute.Int64("recipe.id", int64(recipeID)))
	defer func() { endSpan(span, err) }()

	var listID uint
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		list, err := getOrCreateList(tx, userID)
		if err != nil {
			return err
		}
		listID = list.ID

		var assoc models.ShoppingListRecipeAssociation
		err = tx.Where("shopping_list_id = ? AND recipe_id = ?", list.ID, recipeID).
			Order("id ASC").
			First(&assoc).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("Recipe %d not found in shopping list", recipeID)
		}
		if err != nil {
			return apperr.Persistence(err, "failed to look up recipe on shopping list")
		}

		var breakdowns []models.ShoppingListRecipeBreakdown
		err = tx.Where("recipe_id = ? AND shopping_item_id IN (?)", recipeID, listItemIDs(tx, list.ID)).
			Order("id ASC").
			Find(&breakdowns).Error
		if err != nil {
			return apperr.Persistence(err, "failed to load recipe breakdowns")
		}

		if len(breakdowns) > 0 {
			ids := make([]uint, 0, len(breakdowns))
			var affected []uint
			seen := make(map[uint]bool)
			for _, b := range breakdowns {
				ids = append(ids, b.ID)
				if !seen[b.ShoppingItemID] {
					seen[b.ShoppingItemID] = true
					affected = append(affected, b.ShoppingItemID)
				}
			}
			if err := tx.Where("id IN ?", ids).Delete(&models.ShoppingListRecipeBreakdown{}).Error; err != nil {
				return apperr.Persistence(err, "failed to delete recipe breakdowns")
			}
			for _, itemID := range affected {
				if err := reconcileItem(tx, itemID); err != nil {
					return err
				}
			}
		}

		// Only the oldest association row goes; the recipe's breakdowns are all removed above.
		if err := tx.Delete(&models.ShoppingListRecipeAssociation{}, assoc.ID).Error; err != nil {
			return apperr.Persistence(err, "failed to delete recipe association")
		}
		return touchList(tx, list.ID)
	})
	if err != nil {
		return nil, err
	}

	s.log.Debug("Recipe removed from shopping list", "user_id", userID, "recipe_id", recipeID, "list_id", listID)
	return s.view(ctx, listID)
}

// ClearList empties the user's list. The list row itself is kept.
func (s *ShoppingListService) ClearList(ctx context.Context, userID uint) (_ bool, err error) {
	ctx, span := s.startSpan(ctx, "ClearList", userID)
	defer func() { endSpan(span, err) }()

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		list, err := getOrCreateList(tx, userID)
		if err != nil {
			return err
		}

		err = tx.Where("shopping_item_id IN (?)", listItemIDs(tx, list.ID)).
			Delete(&models.ShoppingListRecipeBreakdown{}).Error
		if err != nil {
			return apperr.Persistence(err, "failed to clear recipe breakdowns")
		}
		if err := tx.Where("shopping_list_id = ?", list.ID).Delete(&models.ShoppingListItem{}).Error; err != nil {
			return apperr.Persistence(err, "failed to clear shopping list items")
		}
		if err := tx.Where("shopping_list_id = ?", list.ID).Delete(&models.ShoppingListRecipeAssociation{}).Error; err != nil {
			return apperr.Persistence(err, "failed to clear recipe associations")
		}
		return touchList(tx, list.ID)
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

// UpdateItemStatus toggles the checked flag, the only item field users may edit directly.
func (s *ShoppingListService) UpdateItemStatus(ctx context.Context, userID, itemID uint, isChecked bool) (_ *types.ShoppingListItemView, err error) {
	ctx, span := s.startSpan(ctx, "UpdateItemStatus", userID)
	span.SetAttributes(attribute.Int64("item.id", int64(itemID)))
	defer func() { endSpan(span, err) }()

	db := s.db.WithContext(ctx)

	var item models.ShoppingListItem
	err = db.Joins("JOIN shopping_lists ON shopping_lists.id = shopping_list_items.shopping_list_id").
		Where("shopping_list_items.id = ? AND shopping_lists.user_id = ?", itemID, userID).
		First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("Shopping list item %d not found for user %d", itemID, userID)
	}
	if err != nil {
		return nil, apperr.Persistence(err, "failed to load shopping list item")
	}

	if err := db.Model(&item).Update("is_checked", isChecked).Error; err != nil {
		return nil, apperr.Persistence(err, "failed to update shopping list item")
	}

	err = db.Preload("RecipeBreakdowns", func(db *gorm.DB) *gorm.DB {
		return db.Order("id ASC")
	}).First(&item, item.ID).Error
	if err != nil {
		return nil, apperr.Persistence(err, "failed to reload shopping list item")
	}

	view := toItemView(&item)
	return &view, nil
}

func (s *ShoppingListService) view(ctx context.Context, listID uint) (*types.ShoppingListView, error) {
	var list models.ShoppingList
	err := s.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("Items.RecipeBreakdowns", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		First(&list, listID).Error
	if err != nil {
		return nil, apperr.Persistence(err, "failed to load shopping list")
	}

	view := &types.ShoppingListView{
		Items:       make([]types.ShoppingListItemView, 0, len(list.Items)),
		LastUpdated: list.UpdatedAt,
	}
	for i := range list.Items {
		view.Items = append(view.Items, toItemView(&list.Items[i]))
	}
	return view, nil
}

func toItemView(item *models.ShoppingListItem) types.ShoppingListItemView {
	breakdowns := make([]types.RecipeBreakdownView, 0, len(item.RecipeBreakdowns))
	for _, b := range item.RecipeBreakdowns {
		breakdowns = append(breakdowns, types.RecipeBreakdownView{
			RecipeID:    strconv.FormatUint(uint64(b.RecipeID), 10),
			RecipeTitle: b.RecipeTitle,
			Quantity:    b.Quantity,
		})
	}
	return types.ShoppingListItemView{
		ID:                  strconv.FormatUint(uint64(item.ID), 10),
		IngredientName:      item.IngredientName,
		Category:            item.Category,
		ConsolidatedDisplay: item.ConsolidatedDisplay,
		RecipeBreakdown:     breakdowns,
		IsChecked:           item.IsChecked,
	}
}
