package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	m, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(m.Close)
	client := redis.NewClient(&redis.Options{Addr: m.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return m, client
}

func TestRedisRateLimit_BlocksAndRecovers(t *testing.T) {
	m, client := newTestRedis(t)

	r := gin.New()
	// rps=0, burst=1 => exactly one request per window
	r.Use(RedisRateLimitMiddleware(client, 0, 1, 60*time.Second))
	r.GET("/w", func(c *gin.Context) { c.JSON(200, gin.H{"ok": true}) })

	w1 := httptest.NewRecorder()
	r.ServeHTTP(w1, limitedRequest("/w", "10.2.0.1"))
	require.Equal(t, http.StatusOK, w1.Code)

	w2 := httptest.NewRecorder()
	r.ServeHTTP(w2, limitedRequest("/w", "10.2.0.1"))
	require.Equal(t, http.StatusTooManyRequests, w2.Code)

	// expire the window counter; the next request starts a fresh count
	m.FastForward(61 * time.Second)
	w3 := httptest.NewRecorder()
	r.ServeHTTP(w3, limitedRequest("/w", "10.2.0.1"))
	require.Equal(t, http.StatusOK, w3.Code)
}

func TestRedisRateLimit_SeparateKeysIndependent(t *testing.T) {
	_, client := newTestRedis(t)

	r := gin.New()
	r.Use(RedisRateLimitMiddleware(client, 0, 1, 60*time.Second))
	r.GET("/k", func(c *gin.Context) { c.JSON(200, gin.H{"ok": true}) })

	w1 := httptest.NewRecorder()
	r.ServeHTTP(w1, limitedRequest("/k", "10.2.0.2"))
	require.Equal(t, http.StatusOK, w1.Code)

	// different client IP keeps its own counter
	w2 := httptest.NewRecorder()
	r.ServeHTTP(w2, limitedRequest("/k", "10.2.0.3"))
	require.Equal(t, http.StatusOK, w2.Code)
}

func TestRedisRateLimit_NilClientFallsBackToMemory(t *testing.T) {
	r := gin.New()
	r.Use(RedisRateLimitMiddleware(nil, 10, 2, time.Second))
	r.GET("/f", func(c *gin.Context) { c.JSON(200, gin.H{"ok": true}) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, limitedRequest("/f", "10.2.0.4"))
	require.Equal(t, http.StatusOK, w.Code)
}
