package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gorm.io/gorm"

	"visa-onboarding.backend/internal/config"
	"visa-onboarding.backend/internal/domain/entities"
	"visa-onboarding.backend/internal/infrastructure/datasources/postgres"
	"visa-onboarding.backend/internal/infrastructure/models"
	"visa-onboarding.backend/internal/infrastructure/repositories"
	"visa-onboarding.backend/internal/usecases"
)

// passwordEnv lets scripts pass the password without it showing up in ps
const passwordEnv = "HR_PASSWORD"

var openCreateHRDB = func(cfg *config.Config) (*gorm.DB, io.Closer, error) {
	sqlDB, err := postgres.NewConnection(cfg.Database)
	if err != nil {
		return nil, nil, err
	}
	db, err := postgres.NewGorm(sqlDB, cfg.Server.Env)
	if err != nil {
		_ = sqlDB.Close()
		return nil, nil, err
	}
	return db, sqlDB, nil
}

type createHRRuntime interface {
	CreateHR(ctx context.Context, username, email, name, password string) (*entities.User, error)
}

type createHRDeps struct {
	loadEnv func() error
	loadCfg func() *config.Config
	prepare func(cfg *config.Config) (createHRRuntime, io.Closer, error)
	getenv  func(string) string
	out     io.Writer
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

func defaultCreateHRDeps() createHRDeps {
	return createHRDeps{
		loadEnv: func() error { return godotenv.Load() },
		loadCfg: config.Load,
		prepare: func(cfg *config.Config) (createHRRuntime, io.Closer, error) {
			db, closer, err := openCreateHRDB(cfg)
			if err != nil {
				return nil, nil, fmt.Errorf("failed to connect db: %w", err)
			}
			if err := db.AutoMigrate(models.All()...); err != nil {
				_ = closer.Close()
				return nil, nil, fmt.Errorf("failed to migrate: %w", err)
			}
			userRepo := repositories.NewUserRepository(db)
			invitationRepo := repositories.NewInvitationRepository(db)
			auth := usecases.NewAuthUsecase(userRepo, invitationRepo, nil, repositories.NewUnitOfWork(db), nil)
			return auth, closer, nil
		},
		getenv: os.Getenv,
		out:    os.Stdout,
	}
}

type hrAccount struct {
	username string
	email    string
	name     string
	password string
}

func parseFlags(args []string, getenv func(string) string) (hrAccount, error) {
	fs := flag.NewFlagSet("create-hr", flag.ContinueOnError)
	username := fs.String("username", "", "login name (required)")
	email := fs.String("email", "", "email address (required)")
	name := fs.String("name", "", "display name")
	password := fs.String("password", "", "password, or set "+passwordEnv)
	if err := fs.Parse(args); err != nil {
		return hrAccount{}, err
	}

	acc := hrAccount{
		username: strings.TrimSpace(*username),
		email:    strings.TrimSpace(*email),
		name:     strings.TrimSpace(*name),
		password: *password,
	}
	if acc.password == "" {
		acc.password = getenv(passwordEnv)
	}
	if acc.username == "" || acc.email == "" {
		return hrAccount{}, fmt.Errorf("--username and --email are required")
	}
	if acc.password == "" {
		return hrAccount{}, fmt.Errorf("--password or %s is required", passwordEnv)
	}
	if acc.name == "" {
		acc.name = acc.username
	}
	return acc, nil
}

func runCreateHR(args []string, deps createHRDeps) error {
	def := defaultCreateHRDeps()
	if deps.loadEnv == nil {
		deps.loadEnv = def.loadEnv
	}
	if deps.loadCfg == nil {
		deps.loadCfg = def.loadCfg
	}
	if deps.prepare == nil {
		deps.prepare = def.prepare
	}
	if deps.getenv == nil {
		deps.getenv = def.getenv
	}
	if deps.out == nil {
		deps.out = def.out
	}

	if err := deps.loadEnv(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	acc, err := parseFlags(args, deps.getenv)
	if err != nil {
		return err
	}

	cfg := deps.loadCfg()
	runtime, closer, err := deps.prepare(cfg)
	if err != nil {
		return err
	}
	if closer == nil {
		closer = nopCloser{}
	}
	defer closer.Close()

	user, err := runtime.CreateHR(context.Background(), acc.username, acc.email, acc.name, acc.password)
	if err != nil {
		return fmt.Errorf("failed creating hr account: %w", err)
	}

	_, _ = fmt.Fprintln(deps.out, "Created HR account")
	_, _ = fmt.Fprintf(deps.out, "user_id=%s\n", user.ID.String())
	_, _ = fmt.Fprintf(deps.out, "username=%s\n", user.Username)
	_, _ = fmt.Fprintf(deps.out, "email=%s\n", user.Email)
	return nil
}

func main() {
	if err := runCreateHR(os.Args[1:], defaultCreateHRDeps()); err != nil {
		log.Fatal(err)
	}
}
