package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
	"visa-onboarding.backend/internal/config"
)

var (
	sqlOpen = sql.Open
	dbPing  = func(db *sql.DB) error {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return db.PingContext(ctx)
	}
)

// NewConnection opens a pooled lib/pq connection and verifies it
func NewConnection(cfg config.DatabaseConfig) (*sql.DB, error) {
	db, err := sqlOpen("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := dbPing(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

// NewGorm wraps an open connection in GORM
func NewGorm(sqlDB *sql.DB, env string) (*gorm.DB, error) {
	level := gormlogger.Warn
	if env == "development" {
		level = gormlogger.Info
	}
	return gorm.Open(gormpostgres.New(gormpostgres.Config{
		Conn:                 sqlDB,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		Logger:      gormlogger.Default.LogMode(level),
		PrepareStmt: false,
	})
}
