package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/recipewizard/backend/internal/logger"
	"github.com/pageza/recipewizard/backend/internal/service"
	"github.com/pageza/recipewizard/backend/internal/types"
)

// UserHandler serves /api/users.
type UserHandler struct {
	users service.IUserService
	log   *logger.Logger
}

func NewUserHandler(users service.IUserService, log *logger.Logger) *UserHandler {
	return &UserHandler{users: users, log: log.With("handler", "users")}
}

func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup, requireAuth gin.HandlerFunc) {
	users := router.Group("/users", requireAuth)
	{
		users.GET("/profile", h.GetProfile)
		users.PUT("/profile", h.UpdateProfile)
		users.GET("/settings", h.GetSettings)
		users.GET("/preferences", h.GetPreferences)
		users.PUT("/preferences", h.UpdatePreferences)
		users.DELETE("/account", h.DeleteAccount)
	}
}

func (h *UserHandler) GetProfile(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	user, err := h.users.GetUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, service.ToUserProfile(user))
}

func (h *UserHandler) UpdateProfile(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req types.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}
	user, err := h.users.UpdateProfile(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, service.ToUserProfile(user))
}

func (h *UserHandler) GetSettings(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	user, err := h.users.GetUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, types.UserSettings{
		Profile:     service.ToUserProfile(user),
		Preferences: service.ToUserPreferences(user),
	})
}

func (h *UserHandler) GetPreferences(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	user, err := h.users.GetUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, service.ToUserPreferences(user))
}

func (h *UserHandler) UpdatePreferences(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req types.UserPreferences
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}
	user, err := h.users.UpdatePreferences(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, service.ToUserPreferences(user))
}

func (h *UserHandler) DeleteAccount(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	if err := h.users.DeleteAccount(c.Request.Context(), userID); err != nil {
		respondError(c, h.log, err)
		return
	}
	h.log.Info("Account deleted", "user_id", userID)
	c.JSON(http.StatusOK, gin.H{
		"message": "Account successfully deleted",
		"detail":  "All user data has been permanently removed",
	})
}
