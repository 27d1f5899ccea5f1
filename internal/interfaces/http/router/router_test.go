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

	assert.Equal(t, "v1", r.apiVersion)
	assert.Empty(t, r.registrars)

	r = NewRouter(gin.New(), WithAPIVersion("v2"))
	assert.Equal(t, "v2", r.apiVersion)
}

func TestRouterSetup(t *testing.T) {
	engine := gin.New()
	guard := func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		c.Next()
	}
	r := NewRouter(engine, WithMiddleware(guard))

	tickets := NewDomainGroup("tickets", "/tickets")
	tickets.GET("/:id", func(c *gin.Context) {
		c.String(http.StatusOK, c.Param("id"))
	})
	r.Register(tickets)
	r.Setup()

	assert.Equal(t, http.StatusOK, serve(engine, http.MethodGet, "/health").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(engine, http.MethodGet, "/api/v1/tickets/7").Code)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/tickets/7", nil)
	req.Header.Set("Authorization", "Bearer x")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "7", w.Body.String())
}

func TestDomainGroup(t *testing.T) {
	t.Run("name and prefix", func(t *testing.T) {
		g := NewDomainGroup("tickets", "/tickets")
		assert.Equal(t, "tickets", g.Name())
		assert.Equal(t, "/tickets", g.Prefix())
	})

	t.Run("registers every method", func(t *testing.T) {
		engine := gin.New()
		ok := func(c *gin.Context) { c.String(http.StatusOK, c.Request.Method) }
		g := NewDomainGroup("tickets", "/tickets").
			GET("", ok).
			POST("/:id/payments", ok).
			PUT("/:id/tags", ok).
			DELETE("/:id/services/:serviceId", ok)
		g.RegisterRoutes(engine.Group("/api/v1"))

		assert.Equal(t, "GET", serve(engine, http.MethodGet, "/api/v1/tickets").Body.String())
		assert.Equal(t, "POST", serve(engine, http.MethodPost, "/api/v1/tickets/1/payments").Body.String())
		assert.Equal(t, "PUT", serve(engine, http.MethodPut, "/api/v1/tickets/1/tags").Body.String())
		assert.Equal(t, "DELETE", serve(engine, http.MethodDelete, "/api/v1/tickets/1/services/2").Body.String())
	})

	t.Run("group middleware and subgroups", func(t *testing.T) {
		engine := gin.New()
		g := NewDomainGroup("tickets", "/tickets").Use(func(c *gin.Context) {
			c.Header("X-Group", "tickets")
			c.Next()
		})
		g.Group("lines", "/:id/lines").GET("", func(c *gin.Context) {
			c.String(http.StatusOK, "lines of "+c.Param("id"))
		})
		g.RegisterRoutes(engine.Group("/api/v1"))

		w := serve(engine, http.MethodGet, "/api/v1/tickets/9/lines")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "lines of 9", w.Body.String())
		assert.Equal(t, "tickets", w.Header().Get("X-Group"))
	})
}
