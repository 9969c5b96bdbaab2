package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/recipewizard/backend/internal/logger"
	"github.com/pageza/recipewizard/backend/internal/middleware"
	"github.com/pageza/recipewizard/backend/internal/models"
	"github.com/pageza/recipewizard/backend/internal/service"
	"github.com/pageza/recipewizard/backend/internal/types"
)

// AuthHandler serves /api/auth.
type AuthHandler struct {
	auth service.IAuthService
	log  *logger.Logger
}

func NewAuthHandler(auth service.IAuthService, log *logger.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, log: log.With("handler", "auth")}
}

func (h *AuthHandler) RegisterRoutes(router *gin.RouterGroup, requireAuth gin.HandlerFunc) {
	auth := router.Group("/auth")
	{
		auth.POST("/register", h.Register)
		auth.POST("/login", h.Login)

		auth.GET("/me", requireAuth, h.Me)
		auth.POST("/refresh", requireAuth, h.Refresh)
		auth.POST("/logout", requireAuth, h.Logout)
		auth.POST("/verify-token", requireAuth, h.VerifyToken)
		auth.POST("/change-password", requireAuth, h.ChangePassword)
	}
}

func (h *AuthHandler) tokenResponse(c *gin.Context, status int, user *models.User) {
	token, expiresIn, err := h.auth.GenerateToken(user)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(status, types.TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresIn:   expiresIn,
		User:        service.ToUserProfile(user),
	})
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req types.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}
	user, err := h.auth.Register(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	h.tokenResponse(c, http.StatusCreated, user)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req types.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}
	user, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	h.log.Info("User logged in", "user_id", user.ID)
	h.tokenResponse(c, http.StatusOK, user)
}

func (h *AuthHandler) loadUser(c *gin.Context) (*models.User, bool) {
	userID, ok := currentUser(c)
	if !ok {
		return nil, false
	}
	user, err := h.auth.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.log, err)
		return nil, false
	}
	return user, true
}

func (h *AuthHandler) Me(c *gin.Context) {
	user, ok := h.loadUser(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, service.ToUserProfile(user))
}

func (h *AuthHandler) Refresh(c *gin.Context) {
	user, ok := h.loadUser(c)
	if !ok {
		return
	}
	h.tokenResponse(c, http.StatusOK, user)
}

func (h *AuthHandler) Logout(c *gin.Context) {
	if claims, ok := middleware.Claims(c); ok {
		if err := h.auth.RevokeToken(c.Request.Context(), claims); err != nil {
			respondError(c, h.log, err)
			return
		}
		h.log.Info("User logged out", "user_id", claims.UserID)
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Successfully logged out",
		"detail":  "Please discard your access token",
	})
}

func (h *AuthHandler) VerifyToken(c *gin.Context) {
	user, ok := h.loadUser(c)
	if !ok {
		return
	}
	profile := service.ToUserProfile(user)
	c.JSON(http.StatusOK, gin.H{
		"valid": true,
		"user": gin.H{
			"id":        profile.ID,
			"email":     profile.Email,
			"username":  profile.Username,
			"is_active": profile.IsActive,
		},
	})
}

func (h *AuthHandler) ChangePassword(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req types.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}
	if err := h.auth.ChangePassword(c.Request.Context(), userID, req.CurrentPassword, req.NewPassword); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password successfully changed"})
}
