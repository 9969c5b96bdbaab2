package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/pageza/recipewizard/backend/internal/models"
	"github.com/pageza/recipewizard/backend/internal/service"
	"github.com/pageza/recipewizard/backend/internal/types"
)

// MockRecipeGenerator is a mock implementation of service.IRecipeGenerator
type MockRecipeGenerator struct {
	mock.Mock
}

func (m *MockRecipeGenerator) Generate(ctx context.Context, prompt string, user *models.User, prefs *types.RecipePreferences) (*service.GenerationResult, error) {
	args := m.Called(ctx, prompt, user, prefs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.GenerationResult), args.Error(1)
}

func (m *MockRecipeGenerator) Modify(ctx context.Context, original *models.Recipe, modification string, user *models.User) (*service.GenerationResult, error) {
	args := m.Called(ctx, original, modification, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.GenerationResult), args.Error(1)
}
