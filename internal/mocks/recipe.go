package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/pageza/recipewizard/backend/internal/models"
	"github.com/pageza/recipewizard/backend/internal/service"
	"github.com/pageza/recipewizard/backend/internal/types"
)

// MockRecipeService is a mock implementation of service.IRecipeService.
// View is not mocked; it renders through service.ToRecipeView.
type MockRecipeService struct {
	mock.Mock
}

func (m *MockRecipeService) CreateFromGeneration(ctx context.Context, userID uint, prompt string, result *service.GenerationResult) (*models.Recipe, error) {
	args := m.Called(ctx, userID, prompt, result)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Recipe), args.Error(1)
}

func (m *MockRecipeService) GetRecipe(ctx context.Context, id uint) (*models.Recipe, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Recipe), args.Error(1)
}

func (m *MockRecipeService) GetOwnedRecipe(ctx context.Context, userID, id uint) (*models.Recipe, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Recipe), args.Error(1)
}

func (m *MockRecipeService) History(ctx context.Context, userID uint, limit, offset int) ([]models.Recipe, int64, error) {
	args := m.Called(ctx, userID, limit, offset)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]models.Recipe), args.Get(1).(int64), args.Error(2)
}

func (m *MockRecipeService) SaveRecipe(ctx context.Context, userID, recipeID uint) (*models.SavedRecipe, error) {
	args := m.Called(ctx, userID, recipeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SavedRecipe), args.Error(1)
}

func (m *MockRecipeService) UnsaveRecipe(ctx context.Context, userID, recipeID uint) error {
	args := m.Called(ctx, userID, recipeID)
	return args.Error(0)
}

func (m *MockRecipeService) SavedRecipes(ctx context.Context, userID uint, limit, offset int) ([]models.SavedRecipe, int64, error) {
	args := m.Called(ctx, userID, limit, offset)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]models.SavedRecipe), args.Get(1).(int64), args.Error(2)
}

func (m *MockRecipeService) SearchRecipes(ctx context.Context, query string, limit int) ([]models.Recipe, error) {
	args := m.Called(ctx, query, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Recipe), args.Error(1)
}

func (m *MockRecipeService) CreateImageUpload(ctx context.Context, userID, recipeID uint, contentType string) (*types.ImageUploadResponse, error) {
	args := m.Called(ctx, userID, recipeID, contentType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.ImageUploadResponse), args.Error(1)
}

func (m *MockRecipeService) View(_ context.Context, recipe *models.Recipe) types.RecipeView {
	return service.ToRecipeView(recipe)
}
