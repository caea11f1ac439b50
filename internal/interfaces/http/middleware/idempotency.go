package middleware

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"visa-onboarding.backend/pkg/logger"
	"visa-onboarding.backend/pkg/redis"
)

const (
	IdempotencyHeader = "Idempotency-Key"
	// LockDuration is the time we hold the lock while processing
	LockDuration = 30 * time.Second
	// RetentionDuration is how long we keep the response
	RetentionDuration = 24 * time.Hour

	processingMarker = "processing"
)

var (
	redisEnabled = redis.Enabled
	redisGet     = redis.Get
	redisSet     = redis.Set
	redisSetNX   = redis.SetNX
	redisDel     = redis.Del
)

type storedResponse struct {
	Status int             `json:"status"`
	Body   json.RawMessage `json:"body"`
}

type responseWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w responseWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// IdempotencyMiddleware replays the stored response for a repeated
// Idempotency-Key from the same user on the same route. Without Redis the
// header is ignored.
func IdempotencyMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(IdempotencyHeader)
		if key == "" || !redisEnabled() {
			c.Next()
			return
		}

		userID, _ := GetUserID(c)
		storageKey := fmt.Sprintf("idempotency:%s:%s:%s:%s", userID, c.Request.Method, c.Request.URL.Path, key)
		ctx := c.Request.Context()

		val, err := redisGet(ctx, storageKey)
		switch {
		case err == nil && val == processingMarker:
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{
				"code":    "ERR_IDEMPOTENCY_CONFLICT",
				"message": "Request already in progress",
				"error":   "Request already in progress",
			})
			return
		case err == nil:
			var stored storedResponse
			if jsonErr := json.Unmarshal([]byte(val), &stored); jsonErr != nil {
				logger.Warn(ctx, "discarding unreadable idempotency record", zap.Error(jsonErr))
				_ = redisDel(ctx, storageKey)
				break
			}
			c.Header("X-Idempotency-Hit", "true")
			c.Data(stored.Status, "application/json; charset=utf-8", stored.Body)
			c.Abort()
			return
		case !redis.IsNil(err):
			logger.Warn(ctx, "idempotency lookup failed", zap.Error(err))
			c.Next()
			return
		}

		acquired, err := redisSetNX(ctx, storageKey, processingMarker, LockDuration)
		if err != nil || !acquired {
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{
				"code":    "ERR_IDEMPOTENCY_CONFLICT",
				"message": "Request in progress",
				"error":   "Request in progress",
			})
			return
		}

		w := &responseWriter{body: &bytes.Buffer{}, ResponseWriter: c.Writer}
		c.Writer = w

		c.Next()

		status := c.Writer.Status()
		if status < 200 || status >= 300 {
			// Remove key so retry is possible
			_ = redisDel(ctx, storageKey)
			return
		}
		payload, err := json.Marshal(storedResponse{Status: status, Body: json.RawMessage(w.body.Bytes())})
		if err != nil {
			_ = redisDel(ctx, storageKey)
			return
		}
		if err := redisSet(ctx, storageKey, string(payload), RetentionDuration); err != nil {
			logger.Warn(ctx, "failed to store idempotent response", zap.Error(err))
		}
	}
}
