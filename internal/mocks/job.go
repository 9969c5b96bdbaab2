package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/pageza/recipewizard/backend/internal/models"
	"github.com/pageza/recipewizard/backend/internal/types"
)

// MockJobService is a mock implementation of service.IJobService
type MockJobService struct {
	mock.Mock
}

func (m *MockJobService) CreateGenerateJob(ctx context.Context, userID uint, prompt string, prefs *types.RecipePreferences) (*models.RecipeJob, error) {
	args := m.Called(ctx, userID, prompt, prefs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RecipeJob), args.Error(1)
}

func (m *MockJobService) CreateModifyJob(ctx context.Context, userID, recipeID uint, modification string) (*models.RecipeJob, error) {
	args := m.Called(ctx, userID, recipeID, modification)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RecipeJob), args.Error(1)
}

func (m *MockJobService) Status(ctx context.Context, userID uint, jobID string) (*models.RecipeJob, error) {
	args := m.Called(ctx, userID, jobID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RecipeJob), args.Error(1)
}

func (m *MockJobService) Result(ctx context.Context, userID uint, jobID string) (*models.RecipeJob, *models.Recipe, error) {
	args := m.Called(ctx, userID, jobID)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*models.RecipeJob), args.Get(1).(*models.Recipe), args.Error(2)
}

func (m *MockJobService) Cancel(ctx context.Context, userID uint, jobID string) error {
	args := m.Called(ctx, userID, jobID)
	return args.Error(0)
}
