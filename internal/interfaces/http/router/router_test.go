package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRouterSetup(t *testing.T) {
	engine := gin.New()

	pricing := NewDomainGroup("pricing", "/pricing")
	pricing.GET("/rules", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "rules"})
	})
	pricing.POST("/rules", func(c *gin.Context) {
		c.Status(http.StatusCreated)
	})

	r := NewRouter(engine, WithAPIVersion("v1"))
	r.Register(pricing)
	r.Setup()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/pricing/rules", nil)
	engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/v1/pricing/rules", nil)
	engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestRouterMiddleware(t *testing.T) {
	engine := gin.New()

	called := false
	r := NewRouter(engine)
	r.Use(func(c *gin.Context) {
		called = true
		c.Next()
	})

	market := NewDomainGroup("market", "/market")
	market.GET("/prices", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	r.Register(market).Setup()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/market/prices", nil)
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, called)
}

func TestDomainGroupMiddleware(t *testing.T) {
	engine := gin.New()

	admin := NewDomainGroup("admin", "/admin")
	admin.Use(func(c *gin.Context) {
		c.AbortWithStatus(http.StatusForbidden)
	})
	admin.GET("/rules", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	NewRouter(engine).Register(admin).Setup()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/rules", nil)
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "admin", admin.Name())
	assert.Equal(t, "/admin", admin.Prefix())
}
