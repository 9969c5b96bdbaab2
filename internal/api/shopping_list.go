package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/recipewizard/backend/internal/logger"
	"github.com/pageza/recipewizard/backend/internal/service"
	"github.com/pageza/recipewizard/backend/internal/types"
)

// ShoppingListHandler serves /api/shopping-list.
type ShoppingListHandler struct {
	lists service.IShoppingListService
	log   *logger.Logger
}

func NewShoppingListHandler(lists service.IShoppingListService, log *logger.Logger) *ShoppingListHandler {
	return &ShoppingListHandler{lists: lists, log: log.With("handler", "shopping_list")}
}

// RegisterRoutes mounts the shopping list endpoints. principal must resolve a user id.
func (h *ShoppingListHandler) RegisterRoutes(router *gin.RouterGroup, principal gin.HandlerFunc) {
	lists := router.Group("/shopping-list", principal)
	{
		lists.GET("", h.GetList)
		lists.GET("/", h.GetList)
		lists.POST("/add-recipe", h.AddRecipe)
		lists.PUT("/items/:item_id", h.UpdateItem)
		lists.DELETE("/clear", h.Clear)
		lists.DELETE("/recipes/:recipe_id", h.RemoveRecipe)
	}
}

func (h *ShoppingListHandler) GetList(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	view, err := h.lists.GetList(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	h.log.Debug("Retrieved shopping list", "user_id", userID, "items", len(view.Items))
	c.JSON(http.StatusOK, view)
}

func (h *ShoppingListHandler) AddRecipe(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req types.AddRecipeToListRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}
	recipeID, valid := req.RecipeID.Uint()
	if !valid {
		badRequest(c, "recipeId must be a numeric recipe ID")
		return
	}

	view, err := h.lists.AddRecipe(c.Request.Context(), userID, recipeID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	h.log.Info("Added recipe to shopping list", "user_id", userID, "recipe_id", recipeID)
	c.JSON(http.StatusOK, view)
}

func (h *ShoppingListHandler) UpdateItem(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	itemID, ok := pathID(c, "item_id", "item")
	if !ok {
		return
	}
	var req types.UpdateShoppingItemRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.IsChecked == nil {
		badRequest(c, "isChecked is required")
		return
	}

	item, err := h.lists.UpdateItemStatus(c.Request.Context(), userID, itemID, *req.IsChecked)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, types.UpdateShoppingItemResponse{Success: true, Item: *item})
}

func (h *ShoppingListHandler) Clear(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	cleared, err := h.lists.ClearList(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	h.log.Info("Cleared shopping list", "user_id", userID)
	c.JSON(http.StatusOK, types.MessageResponse{Success: cleared, Message: "Shopping list cleared successfully"})
}

func (h *ShoppingListHandler) RemoveRecipe(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	recipeID, ok := pathID(c, "recipe_id", "recipe")
	if !ok {
		return
	}
	view, err := h.lists.RemoveRecipe(c.Request.Context(), userID, recipeID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	h.log.Info("Removed recipe from shopping list", "user_id", userID, "recipe_id", recipeID)
	c.JSON(http.StatusOK, view)
}
