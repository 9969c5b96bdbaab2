package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pageza/recipewizard/backend/internal/apperr"
	"github.com/pageza/recipewizard/backend/internal/logger"
	"github.com/pageza/recipewizard/backend/internal/models"
	"github.com/pageza/recipewizard/backend/internal/types"
)

const (
	imageUploadExpiry   = 15 * time.Minute
	imageDownloadExpiry = time.Hour
	defaultSearchLimit  = 20
)

var errNoImageStore = errors.New("no image store configured")

var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// ImageStore issues presigned URLs for recipe images. config.S3Config satisfies it.
type ImageStore interface {
	PresignUpload(ctx context.Context, objectKey, contentType string, expiration time.Duration) (string, error)
	PresignDownload(ctx context.Context, objectKey string, expiration time.Duration) (string, error)
}

// RecipeService handles recipe persistence, history, saving and search
type RecipeService struct {
	db     *gorm.DB
	images ImageStore
	log    *logger.Logger
}

// NewRecipeService creates a new RecipeService. images may be nil when no bucket is configured.
func NewRecipeService(db *gorm.DB, images ImageStore, log *logger.Logger) *RecipeService {
	if log == nil {
		log = logger.NewNop()
	}
	return &RecipeService{db: db, images: images, log: log}
}

// CreateFromGeneration stores a generated recipe with its ingredients in order.
func (s *RecipeService) CreateFromGeneration(ctx context.Context, userID uint, prompt string, result *GenerationResult) (*models.Recipe, error) {
	meta, err := json.Marshal(result.Metadata())
	if err != nil {
		return nil, apperr.Persistence(err, "failed to encode generation metadata")
	}

	gen := result.Recipe
	recipe := &models.Recipe{
		Title:              gen.Title,
		Description:        gen.Description,
		PrepTime:           gen.PrepTime,
		CookTime:           gen.CookTime,
		Servings:           &gen.Servings,
		Difficulty:         gen.Difficulty,
		Instructions:       datatypes.JSONSlice[string](gen.Instructions),
		Tips:               datatypes.JSONSlice[string](gen.Tips),
		Tags:               datatypes.JSONSlice[string]{},
		OriginalPrompt:     prompt,
		LLMModel:           result.Model,
		GenerationMetadata: datatypes.JSON(meta),
		CreatedByID:        &userID,
	}
	for _, ing := range gen.Ingredients {
		ri := models.RecipeIngredient{Name: ing.Name, Amount: ing.Amount, Category: ing.Category}
		if ing.Unit != "" {
			unit := ing.Unit
			ri.Unit = &unit
		}
		recipe.Ingredients = append(recipe.Ingredients, ri)
	}

	if err := s.db.WithContext(ctx).Create(recipe).Error; err != nil {
		return nil, apperr.Persistence(err, "failed to save recipe")
	}

	if err := s.indexRecipe(ctx, recipe); err != nil {
		s.log.Warn("Failed to index recipe for search", "recipe_id", recipe.ID, "error", err)
	}
	return recipe, nil
}

// indexRecipe upserts the search embedding. Only postgres carries the vector table.
func (s *RecipeService) indexRecipe(ctx context.Context, recipe *models.Recipe) error {
	if s.db.Dialector.Name() != "postgres" {
		return nil
	}
	names := make([]string, len(recipe.Ingredients))
	for i, ing := range recipe.Ingredients {
		names[i] = ing.Name
	}
	emb := models.RecipeEmbedding{
		RecipeID:  recipe.ID,
		Embedding: GenerateEmbedding(RecipeEmbeddingText(recipe.Title, recipe.Description, names, recipe.Tags)),
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "recipe_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"embedding", "updated_at"}),
	}).Create(&emb).Error
}

func withIngredients(db *gorm.DB) *gorm.DB {
	return db.Preload("Ingredients", func(db *gorm.DB) *gorm.DB {
		return db.Order("recipe_ingredients.id ASC")
	})
}

// GetRecipe retrieves a recipe with its ingredients
func (s *RecipeService) GetRecipe(ctx context.Context, id uint) (*models.Recipe, error) {
	var recipe models.Recipe
	err := withIngredients(s.db.WithContext(ctx)).First(&recipe, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("Recipe not found")
	}
	if err != nil {
		return nil, apperr.Persistence(err, "failed to load recipe")
	}
	return &recipe, nil
}

// GetOwnedRecipe is GetRecipe restricted to recipes the user created.
func (s *RecipeService) GetOwnedRecipe(ctx context.Context, userID, id uint) (*models.Recipe, error) {
	var recipe models.Recipe
	err := withIngredients(s.db.WithContext(ctx)).
		Where("id = ? AND created_by_id = ?", id, userID).
		First(&recipe).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("Recipe not found or you don't have permission to modify it")
	}
	if err != nil {
		return nil, apperr.Persistence(err, "failed to load recipe")
	}
	return &recipe, nil
}

// History lists the user's recipes, newest first.
func (s *RecipeService) History(ctx context.Context, userID uint, limit, offset int) ([]models.Recipe, int64, error) {
	db := s.db.WithContext(ctx)

	var total int64
	if err := db.Model(&models.Recipe{}).Where("created_by_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, apperr.Persistence(err, "failed to count recipes")
	}

	var recipes []models.Recipe
	err := withIngredients(db).
		Where("created_by_id = ?", userID).
		Order("created_at DESC, id DESC").
		Limit(limit).Offset(offset).
		Find(&recipes).Error
	if err != nil {
		return nil, 0, apperr.Persistence(err, "failed to load recipe history")
	}
	return recipes, total, nil
}

// SaveRecipe bookmarks a recipe for the user.
func (s *RecipeService) SaveRecipe(ctx context.Context, userID, recipeID uint) (*models.SavedRecipe, error) {
	if _, err := s.GetRecipe(ctx, recipeID); err != nil {
		return nil, err
	}

	var saved *models.SavedRecipe
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.SavedRecipe{}).
			Where("user_id = ? AND recipe_id = ?", userID, recipeID).
			Count(&count).Error; err != nil {
			return apperr.Persistence(err, "failed to check saved recipes")
		}
		if count > 0 {
			return apperr.Validation("Recipe already saved")
		}
		saved = &models.SavedRecipe{UserID: userID, RecipeID: recipeID}
		if err := tx.Create(saved).Error; err != nil {
			return apperr.Persistence(err, "failed to save recipe")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return saved, nil
}

// UnsaveRecipe removes a bookmark.
func (s *RecipeService) UnsaveRecipe(ctx context.Context, userID, recipeID uint) error {
	res := s.db.WithContext(ctx).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Delete(&models.SavedRecipe{})
	if res.Error != nil {
		return apperr.Persistence(res.Error, "failed to remove saved recipe")
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("Saved recipe not found")
	}
	return nil
}

// SavedRecipes lists the user's bookmarks, most recently saved first.
func (s *RecipeService) SavedRecipes(ctx context.Context, userID uint, limit, offset int) ([]models.SavedRecipe, int64, error) {
	db := s.db.WithContext(ctx)

	var total int64
	if err := db.Model(&models.SavedRecipe{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, apperr.Persistence(err, "failed to count saved recipes")
	}

	var saved []models.SavedRecipe
	err := db.Preload("Recipe").
		Preload("Recipe.Ingredients", func(db *gorm.DB) *gorm.DB {
			return db.Order("recipe_ingredients.id ASC")
		}).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Limit(limit).Offset(offset).
		Find(&saved).Error
	if err != nil {
		return nil, 0, apperr.Persistence(err, "failed to load saved recipes")
	}
	return saved, total, nil
}

// SearchRecipes ranks recipes by embedding distance on postgres and falls back to
// keyword matching elsewhere.
func (s *RecipeService) SearchRecipes(ctx context.Context, query string, limit int) ([]models.Recipe, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, apperr.Validation("Search query is required")
	}
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	db := withIngredients(s.db.WithContext(ctx)).Limit(limit)
	if s.db.Dialector.Name() == "postgres" {
		db = db.Joins("JOIN recipe_embeddings ON recipe_embeddings.recipe_id = recipes.id").
			Clauses(clause.OrderBy{
				Expression: clause.Expr{SQL: "recipe_embeddings.embedding <-> ?", Vars: []interface{}{GenerateEmbedding(query)}},
			})
	} else {
		like := "%" + strings.ToLower(query) + "%"
		db = db.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ? OR id IN (?)",
			like, like,
			s.db.Model(&models.RecipeIngredient{}).Select("recipe_id").Where("LOWER(name) LIKE ?", like)).
			Order("id DESC")
	}

	var recipes []models.Recipe
	if err := db.Find(&recipes).Error; err != nil {
		return nil, apperr.Persistence(err, "failed to search recipes")
	}
	return recipes, nil
}

// CreateImageUpload presigns an upload for the recipe's image and records the object key.
func (s *RecipeService) CreateImageUpload(ctx context.Context, userID, recipeID uint, contentType string) (*types.ImageUploadResponse, error) {
	if s.images == nil {
		return nil, apperr.Upstream(errNoImageStore, "Image storage is not configured")
	}
	ext, ok := allowedImageTypes[strings.ToLower(contentType)]
	if !ok {
		return nil, apperr.Validation("Unsupported image type %q", contentType)
	}
	if _, err := s.GetOwnedRecipe(ctx, userID, recipeID); err != nil {
		return nil, err
	}

	key := fmt.Sprintf("recipes/%d/%s%s", recipeID, uuid.NewString(), ext)
	url, err := s.images.PresignUpload(ctx, key, contentType, imageUploadExpiry)
	if err != nil {
		return nil, apperr.Upstream(err, "Failed to create image upload URL")
	}
	if err := s.db.WithContext(ctx).Model(&models.Recipe{}).
		Where("id = ?", recipeID).
		Update("image_key", key).Error; err != nil {
		return nil, apperr.Persistence(err, "failed to record image key")
	}
	return &types.ImageUploadResponse{
		UploadURL: url,
		ImageKey:  key,
		ExpiresIn: int(imageUploadExpiry.Seconds()),
	}, nil
}

// View renders a recipe in the API shape, presigning its image when there is one.
func (s *RecipeService) View(ctx context.Context, recipe *models.Recipe) types.RecipeView {
	view := ToRecipeView(recipe)
	if recipe.ImageKey != "" && s.images != nil {
		url, err := s.images.PresignDownload(ctx, recipe.ImageKey, imageDownloadExpiry)
		if err != nil {
			s.log.Warn("Failed to presign recipe image", "recipe_id", recipe.ID, "error", err)
		} else {
			view.ImageURL = url
		}
	}
	return view
}

// ToRecipeView converts a stored recipe into the API shape.
func ToRecipeView(recipe *models.Recipe) types.RecipeView {
	ingredients := make([]types.IngredientView, len(recipe.Ingredients))
	for i, ing := range recipe.Ingredients {
		unit := ""
		if ing.Unit != nil {
			unit = *ing.Unit
		}
		ingredients[i] = types.IngredientView{
			ID:       strconv.FormatUint(uint64(ing.ID), 10),
			Name:     ing.Name,
			Amount:   ing.Amount,
			Unit:     unit,
			Category: ing.Category,
		}
	}
	instructions := []string(recipe.Instructions)
	if instructions == nil {
		instructions = []string{}
	}
	tips := []string(recipe.Tips)
	if tips == nil {
		tips = []string{}
	}
	return types.RecipeView{
		ID: strconv.FormatUint(uint64(recipe.ID), 10),
		Recipe: types.RecipeBody{
			Title:        recipe.Title,
			Description:  recipe.Description,
			Instructions: instructions,
			PrepTime:     recipe.PrepTime,
			CookTime:     recipe.CookTime,
			Servings:     recipe.Servings,
			Difficulty:   recipe.Difficulty,
			Tips:         tips,
		},
		Ingredients: ingredients,
		GeneratedAt: recipe.CreatedAt,
		UserPrompt:  recipe.OriginalPrompt,
	}
}

// GenerationMetadata decodes the metadata stored with a recipe.
func GenerationMetadata(recipe *models.Recipe) map[string]interface{} {
	meta := map[string]interface{}{}
	if len(recipe.GenerationMetadata) > 0 {
		_ = json.Unmarshal(recipe.GenerationMetadata, &meta)
	}
	return meta
}
