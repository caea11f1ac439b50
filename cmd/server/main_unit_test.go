package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"visa-onboarding.backend/internal/config"
	infrarepos "visa-onboarding.backend/internal/infrastructure/repositories"
	"visa-onboarding.backend/internal/usecases"
	plog "visa-onboarding.backend/pkg/logger"
)

func withMainHooks(t *testing.T) {
	t.Helper()
	origLoadDotenv := loadDotenv
	origLoadCfg := loadCfg
	origInitLog := initLog
	origInitRedis := initRedis
	origOpenDB := openDB
	origNewPublisher := newPublisher
	origRunServer := runServer

	t.Cleanup(func() {
		loadDotenv = origLoadDotenv
		loadCfg = origLoadCfg
		initLog = origInitLog
		initRedis = origInitRedis
		openDB = origOpenDB
		newPublisher = origNewPublisher
		runServer = origRunServer
	})

	loadDotenv = func(...string) error { return nil }
	loadCfg = baseTestConfig
	initLog = plog.Init
}

func baseTestConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Port: "18080",
			Env:  "development",
		},
		Database: config.DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "postgres",
			Password: "postgres",
			DBName:   "onboarding",
			SSLMode:  "disable",
		},
		JWT: config.JWTConfig{
			Secret:        "secret",
			AccessExpiry:  15 * time.Minute,
			RefreshExpiry: 24 * time.Hour,
		},
		Invitation: config.InvitationConfig{
			TTL:            3 * time.Hour,
			ExpiryInterval: time.Hour,
			ExpiryBatch:    10,
			RegisterURL:    "http://localhost:3000/register",
		},
		Workflow: config.WorkflowConfig{LockTTL: time.Second},
	}
}

func sqliteDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", t.Name(), time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	return db
}

func TestRunMainProcess_RedisInitError(t *testing.T) {
	withMainHooks(t)
	loadCfg = func() *config.Config {
		cfg := baseTestConfig()
		cfg.Redis.URL = "redis://localhost:6379"
		return cfg
	}
	initRedis = func(string, string) error { return errors.New("redis down") }

	if err := runMainProcess(); err == nil {
		t.Fatal("expected redis init error")
	}
}

func TestRunMainProcess_DBOpenError(t *testing.T) {
	withMainHooks(t)
	openDB = func(*config.Config) (*gorm.DB, error) { return nil, errors.New("db open failed") }

	if err := runMainProcess(); err == nil {
		t.Fatal("expected db open error")
	}
}

func TestRunMainProcess_ServerRunError(t *testing.T) {
	withMainHooks(t)
	db := sqliteDB(t)
	openDB = func(*config.Config) (*gorm.DB, error) { return db, nil }
	runServer = func(context.Context, *http.Server) error { return errors.New("listen failed") }

	if err := runMainProcess(); err == nil {
		t.Fatal("expected server run error")
	}
}

func TestRunMainProcess_SuccessPath(t *testing.T) {
	withMainHooks(t)
	db := sqliteDB(t)
	openDB = func(*config.Config) (*gorm.DB, error) { return db, nil }

	var addr string
	runServer = func(_ context.Context, srv *http.Server) error {
		addr = srv.Addr
		rec := httptest.NewRecorder()
		srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
		if rec.Code != http.StatusOK {
			return fmt.Errorf("health returned %d", rec.Code)
		}
		return nil
	}

	if err := runMainProcess(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if addr != ":18080" {
		t.Fatalf("unexpected listen address: %s", addr)
	}
}

func TestRunMainProcess_OnboardingFlowThroughRouter(t *testing.T) {
	withMainHooks(t)
	db := sqliteDB(t)
	openDB = func(*config.Config) (*gorm.DB, error) { return db, nil }

	runServer = func(ctx context.Context, srv *http.Server) error {
		seed := usecases.NewAuthUsecase(infrarepos.NewUserRepository(db), nil, nil, nil, nil)
		if _, err := seed.CreateHR(ctx, "hr-admin", "hr@corp.test", "HR Admin", "hrpassw0rd"); err != nil {
			return fmt.Errorf("seed hr: %w", err)
		}
		h := srv.Handler

		hrToken, err := login(h, "hr@corp.test", "hrpassw0rd")
		if err != nil {
			return err
		}

		rec := do(h, http.MethodPost, "/api/v1/hr/invitations", hrToken, map[string]string{
			"email": "opt@corp.test",
			"name":  "Olivia Park",
		})
		if rec.Code != http.StatusCreated {
			return fmt.Errorf("create invitation: %d %s", rec.Code, rec.Body.String())
		}
		var inv struct {
			Token string `json:"token"`
		}
		_ = json.Unmarshal(rec.Body.Bytes(), &inv)

		if rec := do(h, http.MethodGet, "/api/v1/invitations/"+inv.Token, "", nil); rec.Code != http.StatusOK {
			return fmt.Errorf("validate invitation: %d", rec.Code)
		}

		rec = do(h, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
			"token":    inv.Token,
			"username": "olivia",
			"email":    "opt@corp.test",
			"password": "employee1pass",
		})
		if rec.Code != http.StatusCreated {
			return fmt.Errorf("register: %d %s", rec.Code, rec.Body.String())
		}

		empToken, err := login(h, "olivia", "employee1pass")
		if err != nil {
			return err
		}

		rec = do(h, http.MethodGet, "/api/v1/onboarding", empToken, nil)
		if rec.Code != http.StatusOK || !bytes.Contains(rec.Body.Bytes(), []byte("never-submitted")) {
			return fmt.Errorf("get onboarding: %d %s", rec.Code, rec.Body.String())
		}

		rec = do(h, http.MethodPut, "/api/v1/visa/opt-receipt", empToken, map[string]string{"fileRef": "files/receipt.pdf"})
		if rec.Code != http.StatusUnprocessableEntity {
			return fmt.Errorf("upload before onboarding submit: %d %s", rec.Code, rec.Body.String())
		}

		if rec := do(h, http.MethodGet, "/api/v1/hr/visa", empToken, nil); rec.Code != http.StatusForbidden {
			return fmt.Errorf("employee on hr route: %d", rec.Code)
		}
		if rec := do(h, http.MethodGet, "/api/v1/visa", hrToken, nil); rec.Code != http.StatusForbidden {
			return fmt.Errorf("hr on employee route: %d", rec.Code)
		}
		if rec := do(h, http.MethodGet, "/api/v1/visa", "", nil); rec.Code != http.StatusUnauthorized {
			return fmt.Errorf("anonymous visa: %d", rec.Code)
		}
		return nil
	}

	if err := runMainProcess(); err != nil {
		t.Fatal(err)
	}
}

func do(h http.Handler, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func login(h http.Handler, identifier, password string) (string, error) {
	rec := do(h, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"username": identifier,
		"password": password,
	})
	if rec.Code != http.StatusOK {
		return "", fmt.Errorf("login %s: %d %s", identifier, rec.Code, rec.Body.String())
	}
	var out struct {
		AccessToken string `json:"accessToken"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		return "", err
	}
	return out.AccessToken, nil
}
