package logger

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	log  = zap.NewNop()
	once sync.Once
)

var buildLogger = func(cfg zap.Config) (*zap.Logger, error) {
	return cfg.Build(zap.AddCallerSkip(1))
}

type ContextKey string

const (
	RequestIDKey ContextKey = "request_id"
	UserIDKey    ContextKey = "user_id"
)

// Init builds the process logger. Production emits JSON with an ISO8601
// timestamp; development uses the coloured console encoder.
func Init(env string) {
	once.Do(func() {
		cfg := zap.NewProductionConfig()
		cfg.EncoderConfig.TimeKey = "timestamp"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

		if env == "development" {
			cfg = zap.NewDevelopmentConfig()
			cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		}

		built, err := buildLogger(cfg)
		if err != nil {
			panic(err)
		}
		log = built.With(zap.String("service", "visa-onboarding"))
	})
}

// GetLogger returns the underlying zap logger
func GetLogger() *zap.Logger {
	return log
}

// Sync flushes buffered entries
func Sync() {
	_ = log.Sync()
}

// WithRequestID returns a context carrying the request id
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, RequestIDKey, id)
}

// WithUserID returns a context carrying the authenticated user id
func WithUserID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, UserIDKey, id)
}

// WithContext returns the logger enriched with request and user ids found in ctx
func WithContext(ctx context.Context) *zap.Logger {
	if ctx == nil {
		return log
	}

	fields := make([]zap.Field, 0, 2)
	if reqID, ok := ctx.Value(RequestIDKey).(string); ok && reqID != "" {
		fields = append(fields, zap.String("request_id", reqID))
	}
	if userID, ok := ctx.Value(UserIDKey).(string); ok && userID != "" {
		fields = append(fields, zap.String("user_id", userID))
	}

	if len(fields) > 0 {
		return log.With(fields...)
	}
	return log
}

// Info logs a message at InfoLevel
func Info(ctx context.Context, msg string, fields ...zap.Field) {
	WithContext(ctx).Info(msg, fields...)
}

// Error logs a message at ErrorLevel
func Error(ctx context.Context, msg string, fields ...zap.Field) {
	WithContext(ctx).Error(msg, fields...)
}

// Debug logs a message at DebugLevel
func Debug(ctx context.Context, msg string, fields ...zap.Field) {
	WithContext(ctx).Debug(msg, fields...)
}

// Warn logs a message at WarnLevel
func Warn(ctx context.Context, msg string, fields ...zap.Field) {
	WithContext(ctx).Warn(msg, fields...)
}

// LogRequest writes one access log line
func LogRequest(ctx context.Context, method, route string, status int, latency time.Duration, clientIP string) {
	l := WithContext(ctx)
	fields := []zap.Field{
		zap.String("method", method),
		zap.String("route", route),
		zap.Int("status", status),
		zap.Duration("latency", latency),
		zap.String("client_ip", clientIP),
	}
	switch {
	case status >= 500:
		l.Error("http request", fields...)
	case status >= 400:
		l.Warn("http request", fields...)
	default:
		l.Info("http request", fields...)
	}
}
