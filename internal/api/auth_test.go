package api

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/pageza/recipewizard/backend/internal/apperr"
	"github.com/pageza/recipewizard/backend/internal/middleware"
	"github.com/pageza/recipewizard/backend/internal/mocks"
	"github.com/pageza/recipewizard/backend/internal/models"
	"github.com/pageza/recipewizard/backend/internal/types"
)

func setupAuthRouter(auth *mocks.MockAuthService) *gin.Engine {
	router, api := newTestRouter()
	NewAuthHandler(auth, testLogger()).RegisterRoutes(api, middleware.AuthMiddleware(auth))
	return router
}

func testUser() *models.User {
	username := "cook"
	return &models.User{
		ID:        testUserID,
		Email:     "cook@example.com",
		Username:  &username,
		IsActive:  true,
		CreatedAt: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func authedRequest(t *testing.T, router *gin.Engine, method, path, body string) int {
	t.Helper()
	w := performRequestWithToken(t, router, method, path, body, "good-token")
	return w.Code
}

func TestRegisterReturnsToken(t *testing.T) {
	auth := new(mocks.MockAuthService)
	user := testUser()
	auth.On("Register", mock.Anything, mock.MatchedBy(func(req *types.RegisterRequest) bool {
		return req.Email == "cook@example.com"
	})).Return(user, nil)
	auth.On("GenerateToken", user).Return("signed", 1800, nil)
	router := setupAuthRouter(auth)

	w := performRequest(t, router, http.MethodPost, "/api/auth/register",
		`{"email": "cook@example.com", "password": "Secret123!"}`)

	require.Equal(t, http.StatusCreated, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "signed", body["access_token"])
	assert.Equal(t, "bearer", body["token_type"])
	assert.Equal(t, float64(1800), body["expires_in"])
	assert.Equal(t, "7", body["user"].(map[string]interface{})["id"])
}

func TestRegisterDuplicateEmail(t *testing.T) {
	auth := new(mocks.MockAuthService)
	auth.On("Register", mock.Anything, mock.Anything).Return(nil, apperr.Validation("Email already registered"))
	router := setupAuthRouter(auth)

	w := performRequest(t, router, http.MethodPost, "/api/auth/register",
		`{"email": "cook@example.com", "password": "Secret123!"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Email already registered", decodeBody(t, w)["error"])
}

func TestRegisterRejectsInvalidBody(t *testing.T) {
	auth := new(mocks.MockAuthService)
	router := setupAuthRouter(auth)

	w := performRequest(t, router, http.MethodPost, "/api/auth/register", `{"email": "not-an-email"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	auth.AssertNotCalled(t, "Register", mock.Anything, mock.Anything)
}

func TestLoginWrongPassword(t *testing.T) {
	auth := new(mocks.MockAuthService)
	auth.On("Login", mock.Anything, "cook@example.com", "wrong").
		Return(nil, apperr.Unauthorized("Incorrect email or password"))
	router := setupAuthRouter(auth)

	w := performRequest(t, router, http.MethodPost, "/api/auth/login",
		`{"email": "cook@example.com", "password": "wrong"}`)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Incorrect email or password", decodeBody(t, w)["error"])
}

func TestMeRequiresToken(t *testing.T) {
	auth := new(mocks.MockAuthService)
	router := setupAuthRouter(auth)

	w := performRequest(t, router, http.MethodGet, "/api/auth/me", "")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestMeWithToken(t *testing.T) {
	auth := new(mocks.MockAuthService)
	auth.On("ValidateToken", mock.Anything, "good-token").Return(&types.TokenClaims{UserID: testUserID}, nil)
	auth.On("GetUserByID", mock.Anything, testUserID).Return(testUser(), nil)
	router := setupAuthRouter(auth)

	w := performRequestWithToken(t, router, http.MethodGet, "/api/auth/me", "", "good-token")

	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "cook@example.com", body["email"])
	assert.Equal(t, "cook", body["full_name"])
}

func TestLogoutRevokesToken(t *testing.T) {
	auth := new(mocks.MockAuthService)
	claims := &types.TokenClaims{
		UserID:           testUserID,
		RegisteredClaims: jwt.RegisteredClaims{ID: "jti-1"},
	}
	auth.On("ValidateToken", mock.Anything, "good-token").Return(claims, nil)
	auth.On("RevokeToken", mock.Anything, claims).Return(nil)
	router := setupAuthRouter(auth)

	assert.Equal(t, http.StatusOK, authedRequest(t, router, http.MethodPost, "/api/auth/logout", ""))
	auth.AssertCalled(t, "RevokeToken", mock.Anything, claims)
}

func TestChangePassword(t *testing.T) {
	auth := new(mocks.MockAuthService)
	auth.On("ValidateToken", mock.Anything, "good-token").Return(&types.TokenClaims{UserID: testUserID}, nil)
	auth.On("ChangePassword", mock.Anything, testUserID, "old", "NewSecret1!").Return(nil)
	auth.On("ChangePassword", mock.Anything, testUserID, "bad", "NewSecret1!").
		Return(apperr.Validation("Current password is incorrect"))
	router := setupAuthRouter(auth)

	assert.Equal(t, http.StatusOK, authedRequest(t, router, http.MethodPost, "/api/auth/change-password",
		`{"current_password": "old", "new_password": "NewSecret1!"}`))
	assert.Equal(t, http.StatusBadRequest, authedRequest(t, router, http.MethodPost, "/api/auth/change-password",
		`{"current_password": "bad", "new_password": "NewSecret1!"}`))
}
