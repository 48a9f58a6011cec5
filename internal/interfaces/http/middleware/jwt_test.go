package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/JBeggs/fambrifarms-backend-sub002/internal/infrastructure/auth"
	"github.com/JBeggs/fambrifarms-backend-sub002/internal/infrastructure/config"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJWTService(t *testing.T) *auth.JWTService {
	t.Helper()
	return auth.NewJWTService(config.JWTConfig{
		Secret:                strings.Repeat("s", 32),
		AccessTokenExpiration: 15 * time.Minute,
		Issuer:                "fambrifarms-backend",
	})
}

func newAuthRouter(svc *auth.JWTService) *gin.Engine {
	router := gin.New()
	router.Use(JWTAuthMiddleware(svc))
	router.GET("/api/v1/pricing/rules", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"user_id":  GetJWTUserID(c),
			"username": GetJWTUsername(c),
			"role":     GetJWTRole(c),
		})
	})
	router.GET("/health", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return router
}

func TestJWTAuthMiddleware_ValidToken(t *testing.T) {
	svc := newTestJWTService(t)
	userID := uuid.New()
	issued, err := svc.GenerateToken(userID, "karl", auth.RoleAdmin)
	require.NoError(t, err)

	router := newAuthRouter(svc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/pricing/rules", nil)
	req.Header.Set("Authorization", "Bearer "+issued.Token)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), userID.String())
	assert.Contains(t, w.Body.String(), "admin")
}

func TestJWTAuthMiddleware_MissingHeader(t *testing.T) {
	router := newAuthRouter(newTestJWTService(t))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/pricing/rules", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_TOKEN")
}

func TestJWTAuthMiddleware_MalformedHeader(t *testing.T) {
	router := newAuthRouter(newTestJWTService(t))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/pricing/rules", nil)
	req.Header.Set("Authorization", "Token abc")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJWTAuthMiddleware_ExpiredToken(t *testing.T) {
	expiredSvc := auth.NewJWTService(config.JWTConfig{
		Secret:                strings.Repeat("s", 32),
		AccessTokenExpiration: -time.Minute,
		Issuer:                "fambrifarms-backend",
	})
	issued, err := expiredSvc.GenerateToken(uuid.New(), "karl", auth.RoleStaff)
	require.NoError(t, err)

	router := newAuthRouter(newTestJWTService(t))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/pricing/rules", nil)
	req.Header.Set("Authorization", "Bearer "+issued.Token)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "TOKEN_EXPIRED")
}

func TestJWTAuthMiddleware_SkipPath(t *testing.T) {
	router := newAuthRouter(newTestJWTService(t))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireAdmin(t *testing.T) {
	svc := newTestJWTService(t)

	router := gin.New()
	router.Use(JWTAuthMiddleware(svc))
	router.POST("/api/v1/pricing/rules", RequireAdmin(), func(c *gin.Context) {
		c.Status(http.StatusCreated)
	})

	staffToken, err := svc.GenerateToken(uuid.New(), "jess", auth.RoleStaff)
	require.NoError(t, err)
	adminToken, err := svc.GenerateToken(uuid.New(), "karl", auth.RoleAdmin)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/pricing/rules", nil)
	req.Header.Set("Authorization", "Bearer "+staffToken.Token)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/v1/pricing/rules", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken.Token)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusCreated, w.Code)
}
