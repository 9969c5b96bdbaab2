package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/pageza/recipewizard/backend/internal/logger"
	"github.com/pageza/recipewizard/backend/internal/models"
	"github.com/pageza/recipewizard/backend/internal/service"
	"github.com/pageza/recipewizard/backend/internal/types"
)

// RecipeHandler serves /api/recipes.
type RecipeHandler struct {
	recipes   service.IRecipeService
	generator service.IRecipeGenerator
	users     service.IUserService
	log       *logger.Logger
}

func NewRecipeHandler(recipes service.IRecipeService, generator service.IRecipeGenerator, users service.IUserService, log *logger.Logger) *RecipeHandler {
	return &RecipeHandler{
		recipes:   recipes,
		generator: generator,
		users:     users,
		log:       log.With("handler", "recipes"),
	}
}

// RegisterRoutes mounts the recipe endpoints; limit guards the LLM-backed ones.
func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup, requireAuth, limit gin.HandlerFunc) {
	recipes := router.Group("/recipes", requireAuth)
	{
		recipes.POST("/generate", limit, h.Generate)
		recipes.POST("/modify", limit, h.Modify)
		recipes.GET("/history", h.History)
		recipes.GET("/saved", h.Saved)
		recipes.POST("/save/:recipe_id", h.Save)
		recipes.DELETE("/saved/:recipe_id", h.Unsave)
		recipes.GET("/search", h.Search)
		recipes.GET("/:recipe_id", h.Get)
		recipes.POST("/:recipe_id/image", h.CreateImageUpload)
	}
}

func (h *RecipeHandler) Generate(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req types.GenerateRecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Prompt is required")
		return
	}
	ctx := c.Request.Context()

	user, err := h.users.GetUser(ctx, userID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	result, err := h.generator.Generate(ctx, req.Prompt, user, req.Preferences)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	recipe, err := h.recipes.CreateFromGeneration(ctx, userID, req.Prompt, result)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	h.log.Info("Recipe generated", "user_id", userID, "recipe_id", recipe.ID, "retries", result.RetryCount)
	c.JSON(http.StatusOK, types.RecipeResponse{Success: true, Recipe: h.recipes.View(ctx, recipe)})
}

func (h *RecipeHandler) Modify(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req types.ModifyRecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}
	recipeID, valid := req.RecipeID.Uint()
	if !valid {
		badRequest(c, "Invalid recipe ID format")
		return
	}
	ctx := c.Request.Context()

	original, err := h.recipes.GetOwnedRecipe(ctx, userID, recipeID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	user, err := h.users.GetUser(ctx, userID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	result, err := h.generator.Modify(ctx, original, req.ModificationPrompt, user)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	recipe, err := h.recipes.CreateFromGeneration(ctx, userID, req.ModificationPrompt, result)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	h.log.Info("Recipe modified", "user_id", userID, "original_id", original.ID, "recipe_id", recipe.ID)
	c.JSON(http.StatusOK, types.RecipeResponse{Success: true, Recipe: h.recipes.View(ctx, recipe)})
}

func pagination(total int64, limit, offset int) types.Pagination {
	return types.Pagination{
		Total:   total,
		Offset:  offset,
		Limit:   limit,
		HasMore: int64(offset+limit) < total,
	}
}

func (h *RecipeHandler) History(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	limit, offset := page(c)
	recipes, total, err := h.recipes.History(c.Request.Context(), userID, limit, offset)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, types.RecipeListResponse{
		Success:    true,
		Recipes:    h.views(c, recipes),
		Pagination: pagination(total, limit, offset),
	})
}

func (h *RecipeHandler) views(c *gin.Context, recipes []models.Recipe) []types.RecipeView {
	views := make([]types.RecipeView, len(recipes))
	for i := range recipes {
		views[i] = h.recipes.View(c.Request.Context(), &recipes[i])
	}
	return views
}

func (h *RecipeHandler) Save(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	recipeID, ok := pathID(c, "recipe_id", "recipe")
	if !ok {
		return
	}
	saved, err := h.recipes.SaveRecipe(c.Request.Context(), userID, recipeID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, types.SaveRecipeResponse{
		Success:       true,
		Message:       "Recipe saved successfully",
		SavedRecipeID: strconv.FormatUint(uint64(saved.ID), 10),
	})
}

func (h *RecipeHandler) Unsave(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	recipeID, ok := pathID(c, "recipe_id", "recipe")
	if !ok {
		return
	}
	if err := h.recipes.UnsaveRecipe(c.Request.Context(), userID, recipeID); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, types.MessageResponse{Success: true, Message: "Recipe removed from saved recipes"})
}

func (h *RecipeHandler) Saved(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	limit, offset := page(c)
	saved, total, err := h.recipes.SavedRecipes(c.Request.Context(), userID, limit, offset)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	views := make([]types.SavedRecipeView, len(saved))
	for i := range saved {
		views[i] = types.SavedRecipeView{
			RecipeView:    h.recipes.View(c.Request.Context(), &saved[i].Recipe),
			SavedRecipeID: strconv.FormatUint(uint64(saved[i].ID), 10),
			IsFavorite:    saved[i].IsFavorite,
			SavedAt:       saved[i].CreatedAt,
		}
	}
	c.JSON(http.StatusOK, types.SavedRecipeListResponse{
		Success:    true,
		Recipes:    views,
		Pagination: pagination(total, limit, offset),
	})
}

func (h *RecipeHandler) Search(c *gin.Context) {
	if _, ok := currentUser(c); !ok {
		return
	}
	limit, _ := page(c)
	recipes, err := h.recipes.SearchRecipes(c.Request.Context(), c.Query("q"), limit)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "recipes": h.views(c, recipes)})
}

func (h *RecipeHandler) Get(c *gin.Context) {
	recipeID, ok := pathID(c, "recipe_id", "recipe")
	if !ok {
		return
	}
	recipe, err := h.recipes.GetRecipe(c.Request.Context(), recipeID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, h.recipes.View(c.Request.Context(), recipe))
}

func (h *RecipeHandler) CreateImageUpload(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	recipeID, ok := pathID(c, "recipe_id", "recipe")
	if !ok {
		return
	}
	var req types.ImageUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "content_type is required")
		return
	}
	resp, err := h.recipes.CreateImageUpload(c.Request.Context(), userID, recipeID, req.ContentType)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
