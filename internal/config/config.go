package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration values
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	JWT        JWTConfig
	Kafka      KafkaConfig
	Invitation InvitationConfig
	Workflow   WorkflowConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port           string
	Env            string
	AllowedOrigins []string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
	TimeZone string
}

// DSN returns the key/value connection string understood by the postgres driver
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode, c.TimeZone)
}

// RedisConfig holds Redis configuration. An empty URL disables the
// workflow lock and request idempotency.
type RedisConfig struct {
	URL      string
	Password string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret        string
	AccessExpiry  time.Duration
	RefreshExpiry time.Duration
}

// KafkaConfig holds the notification broker settings. An empty Broker
// routes events to the log instead.
type KafkaConfig struct {
	Broker   string
	Topic    string
	Username string
	Password string
}

// Enabled reports whether events should be written to Kafka
func (c KafkaConfig) Enabled() bool {
	return c.Broker != ""
}

// Brokers splits the comma separated broker list
func (c KafkaConfig) Brokers() []string {
	var out []string
	for _, b := range strings.Split(c.Broker, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}

// InvitationConfig controls registration invitations
type InvitationConfig struct {
	TTL            time.Duration
	ExpiryInterval time.Duration
	ExpiryBatch    int
	RegisterURL    string
}

// WorkflowConfig controls visa workflow concurrency
type WorkflowConfig struct {
	LockTTL time.Duration
}

// Load loads configuration from environment variables
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:           getEnv("SERVER_PORT", "8080"),
			Env:            getEnv("SERVER_ENV", "development"),
			AllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "onboarding"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			TimeZone: getEnv("DB_TIMEZONE", "UTC"),
		},
		Redis: RedisConfig{
			URL:      getEnv("REDIS_URL", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
		},
		JWT: JWTConfig{
			Secret:        getEnv("JWT_SECRET", "change-this-in-production"),
			AccessExpiry:  getEnvAsDuration("JWT_ACCESS_EXPIRY", 15*time.Minute),
			RefreshExpiry: getEnvAsDuration("JWT_REFRESH_EXPIRY", 7*24*time.Hour),
		},
		Kafka: KafkaConfig{
			Broker:   getEnv("KAFKA_BROKER", ""),
			Topic:    getEnv("KAFKA_TOPIC", "onboarding-notifications"),
			Username: getEnv("KAFKA_USERNAME", ""),
			Password: getEnv("KAFKA_PASSWORD", ""),
		},
		Invitation: InvitationConfig{
			TTL:            getEnvAsDuration("INVITATION_TTL", 3*time.Hour),
			ExpiryInterval: getEnvAsDuration("INVITATION_EXPIRY_INTERVAL", time.Minute),
			ExpiryBatch:    getEnvAsInt("INVITATION_EXPIRY_BATCH", 100),
			RegisterURL:    getEnv("INVITATION_REGISTER_URL", "http://localhost:3000/register"),
		},
		Workflow: WorkflowConfig{
			LockTTL: getEnvAsDuration("WORKFLOW_LOCK_TTL", 5*time.Second),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil && duration > 0 {
			return duration
		}
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
