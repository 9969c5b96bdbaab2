package models

import (
	"time"

	"gorm.io/datatypes"
)

const DefaultShoppingListName = "My Shopping List"

// ShoppingList is a user's aggregated list; only one is active per user.
type ShoppingList struct {
	ID        uint               `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
	UserID    uint               `gorm:"not null;index" json:"user_id"`
	Name      string             `gorm:"size:255;not null;default:'My Shopping List'" json:"name"`
	IsActive  bool               `gorm:"not null;default:true" json:"is_active"`
	Items     []ShoppingListItem `gorm:"foreignKey:ShoppingListID;constraint:OnDelete:CASCADE" json:"items"`
}

// ShoppingListItem is unique per (list, ingredient name, category).
type ShoppingListItem struct {
	ID                    uint                          `gorm:"primaryKey" json:"id"`
	CreatedAt             time.Time                     `json:"created_at"`
	UpdatedAt             time.Time                     `json:"updated_at"`
	ShoppingListID        uint                          `gorm:"not null;index" json:"shopping_list_id"`
	IngredientName        string                        `gorm:"size:255;not null;index" json:"ingredient_name"`
	Category              string                        `gorm:"size:100;not null;index" json:"category"`
	ConsolidatedDisplay   string                        `gorm:"type:text;not null" json:"consolidated_display"`
	IsChecked             bool                          `gorm:"not null;default:false" json:"is_checked"`
	ConsolidationMetadata datatypes.JSON                `json:"consolidation_metadata"`
	RecipeBreakdowns      []ShoppingListRecipeBreakdown `gorm:"foreignKey:ShoppingItemID;constraint:OnDelete:CASCADE" json:"recipe_breakdowns"`
}

// ShoppingListRecipeBreakdown records one recipe's contribution to an item.
// RecipeTitle is a snapshot taken when the recipe was added.
type ShoppingListRecipeBreakdown struct {
	ID                   uint      `gorm:"primaryKey" json:"id"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
	ShoppingItemID       uint      `gorm:"not null;index" json:"shopping_item_id"`
	RecipeID             uint      `gorm:"not null;index" json:"recipe_id"`
	OriginalIngredientID uint      `gorm:"not null;index" json:"original_ingredient_id"`
	RecipeTitle          string    `gorm:"size:500;not null" json:"recipe_title"`
	Quantity             string    `gorm:"size:200;not null" json:"quantity"`
}

// ShoppingListRecipeAssociation marks that a recipe was added to a list. Duplicates are allowed.
type ShoppingListRecipeAssociation struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
	ShoppingListID uint      `gorm:"not null;index" json:"shopping_list_id"`
	RecipeID       uint      `gorm:"not null;index" json:"recipe_id"`
	AddedAt        time.Time `gorm:"not null" json:"added_at"`
}
