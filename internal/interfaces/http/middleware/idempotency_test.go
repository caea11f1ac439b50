package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	redisv9 "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	redispkg "visa-onboarding.backend/pkg/redis"
)

func startMiniRedis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	srv, err := miniredis.Run()
	if err != nil {
		t.Skipf("skip: miniredis unavailable in this environment: %v", err)
	}
	t.Cleanup(srv.Close)

	cli := redisv9.NewClient(&redisv9.Options{Addr: srv.Addr()})
	redispkg.SetClient(cli)
	t.Cleanup(func() {
		redispkg.SetClient(nil)
		_ = cli.Close()
	})
	return srv
}

func idempotentRouter(calls *int, status int) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.PUT("/visa/:type", IdempotencyMiddleware(), func(c *gin.Context) {
		*calls++
		c.JSON(status, gin.H{"call": *calls})
	})
	return r
}

func put(r *gin.Engine, key string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPut, "/visa/i20", nil)
	if key != "" {
		req.Header.Set(IdempotencyHeader, key)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestIdempotencyMiddleware_NoHeaderPassthrough(t *testing.T) {
	startMiniRedis(t)
	calls := 0
	r := idempotentRouter(&calls, http.StatusOK)

	put(r, "")
	put(r, "")
	assert.Equal(t, 2, calls)
}

func TestIdempotencyMiddleware_DisabledWithoutRedis(t *testing.T) {
	redispkg.SetClient(nil)
	calls := 0
	r := idempotentRouter(&calls, http.StatusOK)

	put(r, "k1")
	put(r, "k1")
	assert.Equal(t, 2, calls)
}

func TestIdempotencyMiddleware_ReplaysStoredResponse(t *testing.T) {
	startMiniRedis(t)
	calls := 0
	r := idempotentRouter(&calls, http.StatusCreated)

	first := put(r, "k1")
	require.Equal(t, http.StatusCreated, first.Code)

	second := put(r, "k1")
	assert.Equal(t, http.StatusCreated, second.Code)
	assert.Equal(t, "true", second.Header().Get("X-Idempotency-Hit"))
	assert.JSONEq(t, first.Body.String(), second.Body.String())
	assert.Equal(t, 1, calls)

	put(r, "k2")
	assert.Equal(t, 2, calls)
}

func TestIdempotencyMiddleware_FailedResponseIsNotStored(t *testing.T) {
	startMiniRedis(t)
	calls := 0
	r := idempotentRouter(&calls, http.StatusUnprocessableEntity)

	put(r, "k1")
	put(r, "k1")
	assert.Equal(t, 2, calls)
}

func TestIdempotencyMiddleware_ProcessingConflict(t *testing.T) {
	srv := startMiniRedis(t)
	calls := 0
	r := idempotentRouter(&calls, http.StatusOK)

	key := "idempotency:00000000-0000-0000-0000-000000000000:PUT:/visa/i20:busy"
	require.NoError(t, srv.Set(key, processingMarker))

	w := put(r, "busy")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "ERR_IDEMPOTENCY_CONFLICT")
	assert.Zero(t, calls)
}

func TestIdempotencyMiddleware_CorruptRecordIsDiscarded(t *testing.T) {
	startMiniRedis(t)
	calls := 0
	r := idempotentRouter(&calls, http.StatusOK)

	key := "idempotency:00000000-0000-0000-0000-000000000000:PUT:/visa/i20:bad"
	require.NoError(t, redispkg.Set(context.Background(), key, "not-json", 0))

	w := put(r, "bad")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, calls)
}
