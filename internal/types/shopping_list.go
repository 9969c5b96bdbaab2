package types

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// RecipeBreakdownView is one recipe's contribution to a shopping list item.
type RecipeBreakdownView struct {
	RecipeID    string `json:"recipeId"`
	RecipeTitle string `json:"recipeTitle"`
	Quantity    string `json:"quantity"`
}

type ShoppingListItemView struct {
	ID                  string                `json:"id"`
	IngredientName      string                `json:"ingredientName"`
	Category            string                `json:"category"`
	ConsolidatedDisplay string                `json:"consolidatedDisplay"`
	RecipeBreakdown     []RecipeBreakdownView `json:"recipeBreakdown"`
	IsChecked           bool                  `json:"isChecked"`
}

type ShoppingListView struct {
	Items       []ShoppingListItemView `json:"items"`
	LastUpdated time.Time              `json:"lastUpdated"`
}

// FlexibleID accepts an id sent either as a JSON string or a JSON number.
type FlexibleID string

func (f *FlexibleID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexibleID(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = FlexibleID(n.String())
	return nil
}

// Uint parses the id; ok is false when it is empty or not a positive integer.
func (f FlexibleID) Uint() (uint, bool) {
	v, err := strconv.ParseUint(string(f), 10, 64)
	if err != nil || v == 0 {
		return 0, false
	}
	return uint(v), true
}

type AddRecipeToListRequest struct {
	RecipeID FlexibleID `json:"recipeId"`
}

type UpdateShoppingItemRequest struct {
	IsChecked *bool `json:"isChecked"`
}

type UpdateShoppingItemResponse struct {
	Success bool                 `json:"success"`
	Item    ShoppingListItemView `json:"item"`
}

type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
