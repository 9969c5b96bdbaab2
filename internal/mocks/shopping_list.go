package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/pageza/recipewizard/backend/internal/types"
)

// MockShoppingListService is a mock implementation of service.IShoppingListService
type MockShoppingListService struct {
	mock.Mock
}

func (m *MockShoppingListService) GetList(ctx context.Context, userID uint) (*types.ShoppingListView, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.ShoppingListView), args.Error(1)
}

func (m *MockShoppingListService) AddRecipe(ctx context.Context, userID, recipeID uint) (*types.ShoppingListView, error) {
	args := m.Called(ctx, userID, recipeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.ShoppingListView), args.Error(1)
}

func (m *MockShoppingListService) RemoveRecipe(ctx context.Context, userID, recipeID uint) (*types.ShoppingListView, error) {
	args := m.Called(ctx, userID, recipeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.ShoppingListView), args.Error(1)
}

func (m *MockShoppingListService) ClearList(ctx context.Context, userID uint) (bool, error) {
	args := m.Called(ctx, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockShoppingListService) UpdateItemStatus(ctx context.Context, userID, itemID uint, isChecked bool) (*types.ShoppingListItemView, error) {
	args := m.Called(ctx, userID, itemID, isChecked)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.ShoppingListItemView), args.Error(1)
}
