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

func serve(engine *gin.Engine, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w
}

func TestNewRouter(t *testing.T) {
	r := NewRouter(gin.New())
	assert.Equal(t, "/api/v1", r.Prefix())

	r = NewRouter(gin.New(), WithAPIVersion("v2"))
	assert.Equal(t, "/api/v2", r.Prefix())
}

func TestRouterSetup(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine, WithGroupMiddleware(func(c *gin.Context) {
		c.Header("X-Api", "yes")
		c.Next()
	}))

	group := NewDomainGroup("test", "/test")
	group.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})
	r.Register(group).Setup()

	w := serve(engine, http.MethodGet, "/api/v1/test/ping")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pong", w.Body.String())
	assert.Equal(t, "yes", w.Header().Get("X-Api"))
}

func TestDomainGroup(t *testing.T) {
	t.Run("name and prefix", func(t *testing.T) {
		g := NewDomainGroup("sales", "/sales")
		assert.Equal(t, "sales", g.Name())
		assert.Equal(t, "/sales", g.Prefix())
	})

	t.Run("registers every method", func(t *testing.T) {
		engine := gin.New()
		ok := func(c *gin.Context) { c.Status(http.StatusOK) }
		g := NewDomainGroup("test", "/test").
			GET("/a", ok).
			POST("/b", ok).
			PUT("/c/:id", ok).
			DELETE("/d/:id", ok)
		g.RegisterRoutes(engine.Group("/api/v1"))

		assert.Equal(t, 4, g.RouteCount())
		for _, tt := range []struct{ method, path string }{
			{http.MethodGet, "/api/v1/test/a"},
			{http.MethodPost, "/api/v1/test/b"},
			{http.MethodPut, "/api/v1/test/c/1"},
			{http.MethodDelete, "/api/v1/test/d/1"},
		} {
			assert.Equal(t, http.StatusOK, serve(engine, tt.method, tt.path).Code, "%s %s", tt.method, tt.path)
		}
	})

	t.Run("middleware applies to subgroups", func(t *testing.T) {
		engine := gin.New()
		g := NewDomainGroup("catalog", "/catalog").Use(func(c *gin.Context) {
			c.Header("X-Group", "catalog")
			c.Next()
		})
		g.Group("products", "/products").GET("", func(c *gin.Context) {
			c.String(http.StatusOK, "products")
		})
		g.RegisterRoutes(engine.Group("/api/v1"))

		w := serve(engine, http.MethodGet, "/api/v1/catalog/products")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "catalog", w.Header().Get("X-Group"))
		assert.Equal(t, 1, g.RouteCount())
	})

	t.Run("middleware can abort", func(t *testing.T) {
		engine := gin.New()
		g := NewDomainGroup("locked", "/locked").Use(func(c *gin.Context) {
			c.AbortWithStatus(http.StatusForbidden)
		})
		g.GET("", func(c *gin.Context) { c.Status(http.StatusOK) })
		g.RegisterRoutes(engine.Group(""))

		assert.Equal(t, http.StatusForbidden, serve(engine, http.MethodGet, "/locked").Code)
	})
}
