package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pos/backend/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLimiter(perSecond float64, burst int, clock *time.Time) *RateLimiter {
	rl := NewRateLimiter(perSecond, burst, time.Minute)
	rl.now = func() time.Time { return *clock }
	return rl
}

func TestRateLimiter(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("allows the burst then blocks", func(t *testing.T) {
		rl := newTestLimiter(1, 3, &now)
		for i := 0; i < 3; i++ {
			assert.True(t, rl.Allow("till-1"), "request %d", i+1)
		}
		assert.False(t, rl.Allow("till-1"))
		assert.Equal(t, 0, rl.Remaining("till-1"))
	})

	t.Run("clients are independent", func(t *testing.T) {
		rl := newTestLimiter(1, 1, &now)
		assert.True(t, rl.Allow("a"))
		assert.False(t, rl.Allow("a"))
		assert.True(t, rl.Allow("b"))
		assert.Equal(t, 1, rl.Remaining("unknown"))
	})

	t.Run("tokens refill over time", func(t *testing.T) {
		clock := now
		rl := newTestLimiter(2, 1, &clock)
		assert.True(t, rl.Allow("a"))
		assert.False(t, rl.Allow("a"))

		clock = clock.Add(500 * time.Millisecond)
		assert.True(t, rl.Allow("a"))
	})

	t.Run("idle clients are pruned", func(t *testing.T) {
		clock := now
		rl := newTestLimiter(1, 1, &clock)
		rl.Allow("a")
		require.Len(t, rl.clients, 1)

		clock = clock.Add(2 * time.Minute)
		rl.Allow("b")
		assert.Len(t, rl.clients, 1)
		assert.Contains(t, rl.clients, "b")
	})
}

func TestRateLimitMiddleware(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	engine := gin.New()
	engine.Use(RateLimit(newTestLimiter(1, 2, &now)))
	engine.GET("/api/v1/tickets", func(c *gin.Context) { c.Status(http.StatusOK) })

	do := func() *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/tickets", nil)
		req.RemoteAddr = "10.0.0.7:4242"
		engine.ServeHTTP(w, req)
		return w
	}

	first := do()
	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "2", first.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "1", first.Header().Get("X-RateLimit-Remaining"))

	assert.Equal(t, http.StatusOK, do().Code)

	blocked := do()
	assert.Equal(t, http.StatusTooManyRequests, blocked.Code)
	assert.Equal(t, "1", blocked.Header().Get("Retry-After"))

	var body dto.Response
	require.NoError(t, json.Unmarshal(blocked.Body.Bytes(), &body))
	assert.False(t, body.Success)
	require.NotNil(t, body.Error)
	assert.Equal(t, dto.ErrCodeRateLimited, body.Error.Code)
}

func TestRateLimitByKey(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	engine := gin.New()
	engine.Use(RateLimitByKey(newTestLimiter(1, 1, &now), func(c *gin.Context) string {
		return c.GetHeader("X-Terminal")
	}))
	engine.GET("/x", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	send := func(terminal string) int {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.Header.Set("X-Terminal", terminal)
		engine.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusNoContent, send("bar"))
	assert.Equal(t, http.StatusTooManyRequests, send("bar"))
	assert.Equal(t, http.StatusNoContent, send("kitchen"))
}
