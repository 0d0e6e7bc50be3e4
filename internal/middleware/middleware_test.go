package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/team-popo-world/back-repo/internal/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestChildIdentity(t *testing.T) {
	fallback := uuid.MustParse("c1111111-2222-3333-4444-555555555555")

	newRouter := func(seen *uuid.UUID) *gin.Engine {
		r := gin.New()
		r.Use(ChildIdentity(fallback))
		r.GET("/who", func(c *gin.Context) {
			id, ok := ChildIDFromContext(c)
			require.True(t, ok)
			fromCtx, _ := c.Request.Context().Value(models.ChildIDContextKey).(uuid.UUID)
			assert.Equal(t, id, fromCtx)
			*seen = id
			c.Status(http.StatusNoContent)
		})
		return r
	}

	t.Run("Falls back to the placeholder", func(t *testing.T) {
		var seen uuid.UUID
		w := httptest.NewRecorder()
		newRouter(&seen).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/who", nil))
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, fallback, seen)
	})

	t.Run("Uses the header", func(t *testing.T) {
		var seen uuid.UUID
		child := uuid.New()
		req := httptest.NewRequest(http.MethodGet, "/who", nil)
		req.Header.Set(ChildIDHeader, child.String())
		w := httptest.NewRecorder()
		newRouter(&seen).ServeHTTP(w, req)
		assert.Equal(t, child, seen)
	})

	t.Run("Rejects a malformed header", func(t *testing.T) {
		var seen uuid.UUID
		req := httptest.NewRequest(http.MethodGet, "/who", nil)
		req.Header.Set(ChildIDHeader, "not-a-uuid")
		w := httptest.NewRecorder()
		newRouter(&seen).ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, uuid.Nil, seen)
	})
}

func TestGinZapLogger(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	r := gin.New()
	r.Use(GinZapLogger(zap.New(core)))
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/bad", func(c *gin.Context) { c.Status(http.StatusBadRequest) })
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ok?x=1", nil))
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/bad", nil)
	req.Header.Set(RequestIDHeader, "req-42")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "req-42", w.Header().Get(RequestIDHeader))

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "Request completed", entries[0].Message)
	assert.Equal(t, "/ok?x=1", entries[0].ContextMap()["path"])
	assert.Equal(t, "Client error", entries[1].Message)
	assert.Equal(t, "req-42", entries[1].ContextMap()["request_id"])
}
