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

func TestNewRouter(t *testing.T) {
	r := NewRouter(gin.New())
	assert.Equal(t, "v1", r.apiVersion)
	assert.Empty(t, r.registrars)

	r = NewRouter(gin.New(), WithAPIVersion("v2"))
	assert.Equal(t, "v2", r.apiVersion)
}

func TestRouterSetup(t *testing.T) {
	engine := gin.New()
	g := NewDomainGroup("test", "/test").
		GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	NewRouter(engine).Register(g).Setup()

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/test/ping", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pong", w.Body.String())
}

func TestDomainGroup(t *testing.T) {
	ok := func(body string) gin.HandlerFunc {
		return func(c *gin.Context) { c.String(http.StatusOK, body) }
	}

	engine := gin.New()
	g := NewDomainGroup("sync", "/sync").
		Use(func(c *gin.Context) {
			c.Header("X-Group", "sync")
			c.Next()
		}).
		POST("", ok("start")).
		GET("/status", ok("status")).
		PUT("/x", ok("put")).
		DELETE("/x", ok("delete"))
	g.Group("conflict", "/conflict").GET("", ok("view"))
	g.RegisterRoutes(engine.Group("/api/v1"))

	tests := []struct {
		method string
		path   string
		body   string
	}{
		{http.MethodPost, "/api/v1/sync", "start"},
		{http.MethodGet, "/api/v1/sync/status", "status"},
		{http.MethodPut, "/api/v1/sync/x", "put"},
		{http.MethodDelete, "/api/v1/sync/x", "delete"},
		{http.MethodGet, "/api/v1/sync/conflict", "view"},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			engine.ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, nil))
			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, tt.body, w.Body.String())
			assert.Equal(t, "sync", w.Header().Get("X-Group"))
		})
	}

	assert.Equal(t, "sync", g.Name())
	assert.Equal(t, "/sync", g.Prefix())
	assert.Equal(t, []string{
		"POST /sync",
		"GET /sync/status",
		"PUT /sync/x",
		"DELETE /sync/x",
		"GET /sync/conflict",
	}, g.Routes())
}
