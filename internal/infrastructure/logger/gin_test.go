package logger

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"go.uber.org/zap/zapcore"
)

func setupGinTest() {
	gin.SetMode(gin.TestMode)
}

func TestGinMiddleware(t *testing.T) {
	setupGinTest()

	t.Run("logs successful request at info", func(t *testing.T) {
		core, logs := observer.New(zapcore.InfoLevel)
		logger := zap.New(core)

		router := gin.New()
		router.Use(GinMiddleware(logger))
		router.GET("/products", func(c *gin.Context) {
			c.Status(http.StatusOK)
		})

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/products", nil)
		router.ServeHTTP(w, req)

		entries := logs.All()
		assert.Len(t, entries, 1)
		assert.Equal(t, "HTTP Request", entries[0].Message)
		assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
		assert.Equal(t, int64(http.StatusOK), entries[0].ContextMap()["status"])
		assert.Equal(t, "/products", entries[0].ContextMap()["path"])
	})

	t.Run("logs client error at warn", func(t *testing.T) {
		core, logs := observer.New(zapcore.InfoLevel)
		logger := zap.New(core)

		router := gin.New()
		router.Use(GinMiddleware(logger))
		router.GET("/missing", func(c *gin.Context) {
			c.Status(http.StatusNotFound)
		})

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/missing", nil)
		router.ServeHTTP(w, req)

		entries := logs.All()
		assert.Len(t, entries, 1)
		assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	})

	t.Run("logs server error at error level", func(t *testing.T) {
		core, logs := observer.New(zapcore.InfoLevel)
		logger := zap.New(core)

		router := gin.New()
		router.Use(GinMiddleware(logger))
		router.GET("/boom", func(c *gin.Context) {
			c.Status(http.StatusInternalServerError)
		})

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/boom", nil)
		router.ServeHTTP(w, req)

		entries := logs.All()
		assert.Len(t, entries, 1)
		assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
	})

	t.Run("stores request-scoped logger in gin context", func(t *testing.T) {
		logger := zap.NewNop()

		router := gin.New()
		router.Use(GinMiddleware(logger))
		router.GET("/scoped", func(c *gin.Context) {
			assert.NotNil(t, GetGinLogger(c))
			c.Status(http.StatusOK)
		})

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/scoped", nil)
		router.ServeHTTP(w, req)
	})
}

func TestRecovery(t *testing.T) {
	setupGinTest()

	t.Run("recovers from panic and returns 500", func(t *testing.T) {
		core, logs := observer.New(zapcore.ErrorLevel)
		logger := zap.New(core)

		router := gin.New()
		router.Use(Recovery(logger))
		router.GET("/panic", func(c *gin.Context) {
			panic("something broke")
		})

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/panic", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusInternalServerError, w.Code)

		entries := logs.All()
		assert.Len(t, entries, 1)
		assert.Equal(t, "Panic recovered", entries[0].Message)
	})
}

func TestGetGinLogger(t *testing.T) {
	setupGinTest()

	t.Run("returns no-op logger when unset", func(t *testing.T) {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		assert.NotNil(t, GetGinLogger(c))
	})
}
