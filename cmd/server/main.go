package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"visa-onboarding.backend/internal/config"
	"visa-onboarding.backend/internal/domain/events"
	"visa-onboarding.backend/internal/domain/repositories"
	"visa-onboarding.backend/internal/infrastructure/datasources/postgres"
	"visa-onboarding.backend/internal/infrastructure/jobs"
	"visa-onboarding.backend/internal/infrastructure/locks"
	"visa-onboarding.backend/internal/infrastructure/messaging"
	"visa-onboarding.backend/internal/infrastructure/models"
	infrarepos "visa-onboarding.backend/internal/infrastructure/repositories"
	"visa-onboarding.backend/internal/interfaces/http/handlers"
	"visa-onboarding.backend/internal/interfaces/http/middleware"
	"visa-onboarding.backend/internal/metrics"
	"visa-onboarding.backend/internal/usecases"
	"visa-onboarding.backend/pkg/jwt"
	"visa-onboarding.backend/pkg/logger"
	"visa-onboarding.backend/pkg/redis"
)

type eventPublisher interface {
	events.Publisher
	Close() error
}

var (
	loadDotenv = godotenv.Load
	loadCfg    = config.Load
	initLog    = logger.Init
	initRedis  = redis.Init
	openDB     = func(cfg *config.Config) (*gorm.DB, error) {
		sqlDB, err := postgres.NewConnection(cfg.Database)
		if err != nil {
			return nil, err
		}
		return postgres.NewGorm(sqlDB, cfg.Server.Env)
	}
	newPublisher = func(cfg config.KafkaConfig) eventPublisher {
		if cfg.Enabled() {
			return messaging.NewKafkaPublisher(cfg)
		}
		return messaging.NewLogPublisher()
	}
	runServer = func(ctx context.Context, srv *http.Server) error {
		errCh := make(chan error, 1)
		go func() { errCh <- srv.ListenAndServe() }()

		select {
		case err := <-errCh:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		}
	}
)

func main() {
	if err := runMainProcess(); err != nil {
		log.Fatal(err)
	}
}

func runMainProcess() error {
	if err := loadDotenv(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := loadCfg()

	initLog(cfg.Server.Env)
	defer logger.Sync()
	ctx := context.Background()
	logger.Info(ctx, "Logger initialized", zap.String("env", cfg.Server.Env))

	// Redis backs the per-employee lock and idempotency replay; both are
	// skipped when no URL is configured.
	var locker repositories.Locker
	if cfg.Redis.URL != "" {
		if err := initRedis(cfg.Redis.URL, cfg.Redis.Password); err != nil {
			logger.Error(ctx, "Failed to initialize Redis", zap.Error(err))
			return fmt.Errorf("failed to initialize redis: %w", err)
		}
		defer redis.Close()
		locker = locks.NewRedisLocker(cfg.Workflow.LockTTL)
		logger.Info(ctx, "Redis initialized")
	} else {
		logger.Warn(ctx, "Redis disabled, workflow locks and idempotency replay are off")
	}

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := openDB(cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}
	if err := db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	logger.Info(ctx, "Database ready")

	jwtService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiry, cfg.JWT.RefreshExpiry)
	m := metrics.New()

	publisher := newPublisher(cfg.Kafka)
	defer func() {
		if err := publisher.Close(); err != nil {
			logger.Warn(ctx, "Failed to close event publisher", zap.Error(err))
		}
	}()

	userRepo := infrarepos.NewUserRepository(db)
	invitationRepo := infrarepos.NewInvitationRepository(db)
	onboardingRepo := infrarepos.NewOnboardingRepository(db)
	visaRepo := infrarepos.NewVisaDocumentRepository(db)
	uow := infrarepos.NewUnitOfWork(db)

	invitationUsecase := usecases.NewInvitationUsecase(invitationRepo, userRepo, publisher, m, cfg.Invitation.TTL, cfg.Invitation.RegisterURL)
	authUsecase := usecases.NewAuthUsecase(userRepo, invitationRepo, invitationUsecase, uow, jwtService)
	onboardingUsecase := usecases.NewOnboardingUsecase(onboardingRepo, userRepo, uow, publisher, m)
	visaUsecase := usecases.NewVisaUsecase(visaRepo, onboardingRepo, userRepo, uow, locker, publisher, m)

	runCtx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	expiryJob := jobs.NewInvitationExpiryJob(invitationRepo, m, cfg.Invitation.ExpiryInterval, cfg.Invitation.ExpiryBatch)
	go expiryJob.Start(runCtx)
	defer expiryJob.Stop()

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.LoggerMiddleware())
	r.Use(middleware.MetricsMiddleware(m))

	applyCORSMiddleware(r, cfg.Server.AllowedOrigins)
	registerHealthRoute(r)
	registerMetricsRoute(r, m)
	registerAPIV1Routes(r, routeDeps{
		authHandler:       handlers.NewAuthHandler(authUsecase),
		invitationHandler: handlers.NewInvitationHandler(invitationUsecase),
		onboardingHandler: handlers.NewOnboardingHandler(onboardingUsecase),
		visaHandler:       handlers.NewVisaHandler(visaUsecase),
		authMiddleware:    middleware.AuthMiddleware(jwtService),
	})

	logger.Debug(ctx, "Routes registered", zap.Int("count", len(r.Routes())))

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info(ctx, "Visa onboarding backend starting", zap.String("port", cfg.Server.Port))
	if err := runServer(runCtx, srv); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	logger.Info(ctx, "Server stopped")
	return nil
}
