package testhelpers

import (
	"testing"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/pageza/recipewizard/backend/internal/models"
)

const TestPassword = "testpassword123"

// Ingredient is a compact fixture row: name, amount, unit ("" for none) and category.
type Ingredient struct {
	Name     string
	Amount   string
	Unit     string
	Category string
}

// CreateTestUser inserts an active user whose password is TestPassword.
func CreateTestUser(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Email:           email,
		HashedPassword:  string(hash),
		IsActive:        true,
		Units:           "metric",
		DefaultServings: 4,
		ThemePreference: "system",
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestRecipe inserts a recipe with the given ingredients in order.
func CreateTestRecipe(t *testing.T, db *gorm.DB, ownerID uint, title string, ingredients ...Ingredient) *models.Recipe {
	t.Helper()

	var owner *uint
	if ownerID != 0 {
		owner = &ownerID
	}
	recipe := &models.Recipe{
		Title:          title,
		Description:    title + " description",
		Difficulty:     "easy",
		Instructions:   datatypes.JSONSlice[string]{"Prepare", "Cook", "Serve"},
		OriginalPrompt: "make " + title,
		CreatedByID:    owner,
	}
	for _, ing := range ingredients {
		ri := models.RecipeIngredient{
			Name:     ing.Name,
			Amount:   ing.Amount,
			Category: ing.Category,
		}
		if ing.Unit != "" {
			unit := ing.Unit
			ri.Unit = &unit
		}
		recipe.Ingredients = append(recipe.Ingredients, ri)
	}

	if err := db.Create(recipe).Error; err != nil {
		t.Fatalf("failed to create test recipe: %v", err)
	}
	return recipe
}
