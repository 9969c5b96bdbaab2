package models

// All lists every model AutoMigrate manages, in dependency order.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Recipe{},
		&RecipeIngredient{},
		&SavedRecipe{},
		&ShoppingList{},
		&ShoppingListItem{},
		&ShoppingListRecipeBreakdown{},
		&ShoppingListRecipeAssociation{},
		&RecipeJob{},
	}
}
