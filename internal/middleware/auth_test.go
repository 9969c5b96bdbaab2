package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/pageza/recipewizard/backend/internal/types"
)

type stubValidator map[string]uint

func (s stubValidator) ValidateToken(_ context.Context, token string) (*types.TokenClaims, error) {
	id, ok := s[token]
	if !ok {
		return nil, errors.New("invalid token")
	}
	return &types.TokenClaims{UserID: id}, nil
}

func whoAmI(c *gin.Context) {
	id, ok := UserID(c)
	_, hasClaims := Claims(c)
	c.JSON(http.StatusOK, gin.H{"user_id": id, "ok": ok, "claims": hasClaims})
}

func serve(h gin.HandlerFunc, authHeader string) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/", h, whoAmI)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func TestAuthMiddleware(t *testing.T) {
	validator := stubValidator{"good": 7}

	tests := []struct {
		name   string
		header string
		status int
		body   string
	}{
		{"valid token", "Bearer good", http.StatusOK, `{"user_id":7,"ok":true,"claims":true}`},
		{"missing header", "", http.StatusUnauthorized, `{"error":"missing authorization header"}`},
		{"wrong scheme", "Basic good", http.StatusUnauthorized, `{"error":"invalid authorization header format"}`},
		{"bad token", "Bearer nope", http.StatusUnauthorized, `{"error":"Could not validate credentials"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := serve(AuthMiddleware(validator), tt.header)
			assert.Equal(t, tt.status, rr.Code)
			assert.JSONEq(t, tt.body, rr.Body.String())
		})
	}
}

func TestPrincipalResolver(t *testing.T) {
	validator := stubValidator{"good": 7}

	rr := serve(PrincipalResolver(validator, 1, true), "Bearer good")
	assert.JSONEq(t, `{"user_id":7,"ok":true,"claims":true}`, rr.Body.String())

	rr = serve(PrincipalResolver(validator, 1, true), "")
	assert.JSONEq(t, `{"user_id":1,"ok":true,"claims":false}`, rr.Body.String())

	rr = serve(PrincipalResolver(validator, 1, true), "Bearer expired")
	assert.JSONEq(t, `{"user_id":1,"ok":true,"claims":false}`, rr.Body.String())

	rr = serve(PrincipalResolver(validator, 1, false), "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = serve(PrincipalResolver(validator, 0, true), "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}
