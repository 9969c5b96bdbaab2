package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/recipewizard/backend/internal/middleware"
	"github.com/pageza/recipewizard/backend/internal/testhelpers"
)

func TestRateLimiter_Disabled(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rl := middleware.NewRecipeGenerationRateLimiter(nil, 1, time.Minute, nil)
	assert.False(t, rl.Enabled())

	r := gin.New()
	r.POST("/generate", rl.RateLimitMiddleware(), func(c *gin.Context) { c.Status(http.StatusAccepted) })
	for i := 0; i < 3; i++ {
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/generate", nil))
		assert.Equal(t, http.StatusAccepted, rr.Code)
	}
}

func TestRateLimiter_Redis(t *testing.T) {
	client := testhelpers.SetupRedis(t)
	gin.SetMode(gin.TestMode)

	rl := middleware.NewRecipeGenerationRateLimiter(client, 2, time.Hour, nil)
	r := gin.New()
	r.POST("/generate",
		func(c *gin.Context) { c.Set(middleware.ContextUserID, uint(42)) },
		rl.RateLimitMiddleware(),
		func(c *gin.Context) { c.Status(http.StatusAccepted) })

	codes := make([]int, 0, 3)
	var last *httptest.ResponseRecorder
	for i := 0; i < 3; i++ {
		last = httptest.NewRecorder()
		r.ServeHTTP(last, httptest.NewRequest(http.MethodPost, "/generate", nil))
		codes = append(codes, last.Code)
	}
	assert.Equal(t, []int{http.StatusAccepted, http.StatusAccepted, http.StatusTooManyRequests}, codes)
	assert.Equal(t, "2", last.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "0", last.Header().Get("X-RateLimit-Remaining"))

	allowed, remaining, _, err := rl.IsAllowed(context.Background(), "user:99")
	require.NoError(t, err)
	assert.True(t, allowed)
	assert.Equal(t, 1, remaining)
}
