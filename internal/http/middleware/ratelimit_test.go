package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/you/fintrack/domain"
	"github.com/you/fintrack/internal/infrastructure/repositories"
	"github.com/you/fintrack/internal/mocks"
)

func limitedRouter(store domain.CounterStore, limit int) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RateLimit(store, limit, time.Minute))
	r.POST("/auth/login", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"message": "ok"}) })
	return r
}

func hit(r *gin.Engine, ip string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
	req.RemoteAddr = ip + ":40000"
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimit_BlocksAfterLimit(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	r := limitedRouter(repositories.NewCounterStore(client, "rl:"), 10)

	for i := 1; i <= 10; i++ {
		w := hit(r, "10.1.1.1")
		require.Equal(t, http.StatusOK, w.Code, "request %d", i)
		assert.Equal(t, "10", w.Header().Get("RateLimit-Limit"))
		assert.Equal(t, strconv.Itoa(10-i), w.Header().Get("RateLimit-Remaining"))
	}

	w := hit(r, "10.1.1.1")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "0", w.Header().Get("RateLimit-Remaining"))
	assert.Equal(t, "60", w.Header().Get("RateLimit-Reset"))
	assert.Equal(t, "60", w.Header().Get("Retry-After"))

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, RateLimitMessage, body["error"])

	// other clients keep their own budget
	assert.Equal(t, http.StatusOK, hit(r, "10.1.1.2").Code)

	mr.FastForward(time.Minute)
	assert.Equal(t, http.StatusOK, hit(r, "10.1.1.1").Code)
}

func TestRateLimit_FailsOpen(t *testing.T) {
	store := mocks.NewMockCounterStore()
	store.HitFunc = func(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
		return 0, 0, errors.New("redis: connection refused")
	}
	r := limitedRouter(store, 1)

	for i := 0; i < 3; i++ {
		w := hit(r, "10.1.1.1")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Header().Get("RateLimit-Limit"))
	}
}
