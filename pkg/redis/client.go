package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

var client *redis.Client

// ErrNotConfigured is returned by helpers when Init has not run
var ErrNotConfigured = errors.New("redis client not configured")

// Init parses url, connects, and pings the server
func Init(url, password string) error {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return err
	}
	if password != "" {
		opts.Password = password
	}

	c := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pingClient(ctx, c); err != nil {
		_ = c.Close()
		return err
	}

	client = c
	return nil
}

func pingClient(ctx context.Context, c *redis.Client) error {
	return c.Ping(ctx).Err()
}

// SetClient replaces the shared client; tests point it at miniredis
func SetClient(c *redis.Client) {
	client = c
}

// GetClient returns the shared client, nil when Redis is disabled
func GetClient() *redis.Client {
	return client
}

// Enabled reports whether a client is configured
func Enabled() bool {
	return client != nil
}

// Close closes the shared client
func Close() error {
	if client == nil {
		return nil
	}
	err := client.Close()
	client = nil
	return err
}

// IsNil reports whether err is a cache miss
func IsNil(err error) bool {
	return errors.Is(err, redis.Nil)
}

// Set stores a key-value pair with expiration
func Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	if client == nil {
		return ErrNotConfigured
	}
	return client.Set(ctx, key, value, expiration).Err()
}

// Get retrieves a value by key
func Get(ctx context.Context, key string) (string, error) {
	if client == nil {
		return "", ErrNotConfigured
	}
	return client.Get(ctx, key).Result()
}

// Del removes a key
func Del(ctx context.Context, key string) error {
	if client == nil {
		return ErrNotConfigured
	}
	return client.Del(ctx, key).Err()
}

// SetNX sets a key only if it does not exist
func SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) (bool, error) {
	if client == nil {
		return false, ErrNotConfigured
	}
	return client.SetNX(ctx, key, value, expiration).Result()
}
