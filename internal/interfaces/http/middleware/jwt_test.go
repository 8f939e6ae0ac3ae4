package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mitra/backend/internal/infrastructure/auth"
	"github.com/mitra/backend/internal/infrastructure/config"
	"github.com/mitra/backend/internal/interfaces/http/dto"
)

func newMiddlewareJWTService() *auth.JWTService {
	return auth.NewJWTService(config.JWTConfig{
		Secret:                "test-secret-key-that-is-long-enough",
		AccessTokenExpiration: 15 * time.Minute,
		Issuer:                "mitra-backend",
	})
}

func newProtectedRouter(svc *auth.JWTService) *gin.Engine {
	router := gin.New()
	router.Use(JWTAuthMiddleware(svc))
	router.GET("/api/v1/accounts", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": GetJWTUserID(c)})
	})
	router.GET("/health", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return router
}

func TestJWTAuthMiddleware_ValidToken(t *testing.T) {
	svc := newMiddlewareJWTService()
	userID := uuid.New()
	token, _, err := svc.GenerateToken(userID, "budi", []string{"admin"})
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/api/v1/accounts", nil)
	req.Header.Set(AuthHeaderKey, BearerPrefix+token)
	w := httptest.NewRecorder()
	newProtectedRouter(svc).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, userID.String(), body["user_id"])
}

func TestJWTAuthMiddleware_MissingHeader(t *testing.T) {
	svc := newMiddlewareJWTService()

	req := httptest.NewRequest("GET", "/api/v1/accounts", nil)
	w := httptest.NewRecorder()
	newProtectedRouter(svc).ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrCodeUnauthorized, resp.Error.Code)
	assert.Equal(t, "Missing authorization header", resp.Error.Message)
}

func TestJWTAuthMiddleware_MalformedHeader(t *testing.T) {
	svc := newMiddlewareJWTService()

	tests := []struct {
		name            string
		header          string
		expectedMessage string
	}{
		{"no bearer prefix", "Basic abc123", "Invalid authorization header format"},
		{"bearer without token", "Bearer ", "Missing token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/api/v1/accounts", nil)
			req.Header.Set(AuthHeaderKey, tt.header)
			w := httptest.NewRecorder()
			newProtectedRouter(svc).ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)

			var resp dto.Response
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.expectedMessage, resp.Error.Message)
		})
	}
}

func TestJWTAuthMiddleware_InvalidToken(t *testing.T) {
	svc := newMiddlewareJWTService()

	other := auth.NewJWTService(config.JWTConfig{
		Secret:                "a-completely-different-secret-value!",
		AccessTokenExpiration: 15 * time.Minute,
		Issuer:                "mitra-backend",
	})
	token, _, err := other.GenerateToken(uuid.New(), "budi", nil)
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/api/v1/accounts", nil)
	req.Header.Set(AuthHeaderKey, BearerPrefix+token)
	w := httptest.NewRecorder()
	newProtectedRouter(svc).ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJWTAuthMiddleware_SkipPaths(t *testing.T) {
	svc := newMiddlewareJWTService()

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	newProtectedRouter(svc).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestJWTAuthMiddlewareWithConfig_SkipPrefixes(t *testing.T) {
	svc := newMiddlewareJWTService()

	router := gin.New()
	router.Use(JWTAuthMiddlewareWithConfig(JWTMiddlewareConfig{
		JWTService:       svc,
		SkipPathPrefixes: []string{"/public/"},
	}))
	router.GET("/public/docs", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	router.GET("/private", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/public/docs", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/private", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGetJWTClaims(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	assert.Nil(t, GetJWTClaims(c))

	claims := &auth.Claims{UserID: "user-1", Username: "budi"}
	c.Set(JWTClaimsKey, claims)
	got := GetJWTClaims(c)
	require.NotNil(t, got)
	assert.Equal(t, "budi", got.Username)
}
