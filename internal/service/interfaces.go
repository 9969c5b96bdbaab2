package service

import (
	"context"

	"github.com/pageza/recipewizard/backend/internal/models"
	"github.com/pageza/recipewizard/backend/internal/types"
)

// IAuthService defines the interface for authentication operations
type IAuthService interface {
	Register(ctx context.Context, req *types.RegisterRequest) (*models.User, error)
	Login(ctx context.Context, email, password string) (*models.User, error)
	GenerateToken(user *models.User) (string, int, error)
	ValidateToken(ctx context.Context, token string) (*types.TokenClaims, error)
	RevokeToken(ctx context.Context, claims *types.TokenClaims) error
	ChangePassword(ctx context.Context, userID uint, current, next string) error
	GetUserByID(ctx context.Context, userID uint) (*models.User, error)
}

// IUserService defines the interface for profile and preference operations
type IUserService interface {
	GetUser(ctx context.Context, userID uint) (*models.User, error)
	UpdateProfile(ctx context.Context, userID uint, req *types.UpdateProfileRequest) (*models.User, error)
	UpdatePreferences(ctx context.Context, userID uint, prefs *types.UserPreferences) (*models.User, error)
	DeleteAccount(ctx context.Context, userID uint) error
}

// IRecipeService defines the interface for recipe operations
type IRecipeService interface {
	CreateFromGeneration(ctx context.Context, userID uint, prompt string, result *GenerationResult) (*models.Recipe, error)
	GetRecipe(ctx context.Context, id uint) (*models.Recipe, error)
	GetOwnedRecipe(ctx context.Context, userID, id uint) (*models.Recipe, error)
	History(ctx context.Context, userID uint, limit, offset int) ([]models.Recipe, int64, error)
	SaveRecipe(ctx context.Context, userID, recipeID uint) (*models.SavedRecipe, error)
	UnsaveRecipe(ctx context.Context, userID, recipeID uint) error
	SavedRecipes(ctx context.Context, userID uint, limit, offset int) ([]models.SavedRecipe, int64, error)
	SearchRecipes(ctx context.Context, query string, limit int) ([]models.Recipe, error)
	CreateImageUpload(ctx context.Context, userID, recipeID uint, contentType string) (*types.ImageUploadResponse, error)
	View(ctx context.Context, recipe *models.Recipe) types.RecipeView
}

// IRecipeGenerator produces recipes from prompts
type IRecipeGenerator interface {
	Generate(ctx context.Context, prompt string, user *models.User, prefs *types.RecipePreferences) (*GenerationResult, error)
	Modify(ctx context.Context, original *models.Recipe, modification string, user *models.User) (*GenerationResult, error)
}

// IJobService defines the interface for background recipe jobs
type IJobService interface {
	CreateGenerateJob(ctx context.Context, userID uint, prompt string, prefs *types.RecipePreferences) (*models.RecipeJob, error)
	CreateModifyJob(ctx context.Context, userID, recipeID uint, modification string) (*models.RecipeJob, error)
	Status(ctx context.Context, userID uint, jobID string) (*models.RecipeJob, error)
	Result(ctx context.Context, userID uint, jobID string) (*models.RecipeJob, *models.Recipe, error)
	Cancel(ctx context.Context, userID uint, jobID string) error
}

// IShoppingListService defines the interface for shopping list operations
type IShoppingListService interface {
	GetList(ctx context.Context, userID uint) (*types.ShoppingListView, error)
	AddRecipe(ctx context.Context, userID, recipeID uint) (*types.ShoppingListView, error)
	RemoveRecipe(ctx context.Context, userID, recipeID uint) (*types.ShoppingListView, error)
	ClearList(ctx context.Context, userID uint) (bool, error)
	UpdateItemStatus(ctx context.Context, userID, itemID uint, isChecked bool) (*types.ShoppingListItemView, error)
}

var (
	_ IAuthService         = (*AuthService)(nil)
	_ IUserService         = (*UserService)(nil)
	_ IRecipeService       = (*RecipeService)(nil)
	_ IRecipeGenerator     = (*RecipeGenerator)(nil)
	_ IJobService          = (*JobService)(nil)
	_ IShoppingListService = (*ShoppingListService)(nil)
)
