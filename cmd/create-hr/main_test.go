package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"visa-onboarding.backend/internal/config"
	"visa-onboarding.backend/internal/domain/entities"
)

func noEnv(string) string { return "" }

func TestParseFlags(t *testing.T) {
	if _, err := parseFlags([]string{"-email", "hr@corp.test", "-password", "passw0rd1"}, noEnv); err == nil {
		t.Fatal("expected error for missing username")
	}
	if _, err := parseFlags([]string{"-username", "hr", "-email", "hr@corp.test"}, noEnv); err == nil {
		t.Fatal("expected error for missing password")
	}
	if _, err := parseFlags([]string{"-bogus"}, noEnv); err == nil {
		t.Fatal("expected flag parse error")
	}

	acc, err := parseFlags([]string{"-username", " hr ", "-email", "hr@corp.test"}, func(key string) string {
		if key == passwordEnv {
			return "fromenv1"
		}
		return ""
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if acc.username != "hr" || acc.password != "fromenv1" || acc.name != "hr" {
		t.Fatalf("unexpected account: %+v", acc)
	}

	acc, err = parseFlags([]string{"-username", "hr", "-email", "hr@corp.test", "-name", "Hana Reyes", "-password", "flagpass1"}, func(string) string { return "fromenv1" })
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if acc.password != "flagpass1" || acc.name != "Hana Reyes" {
		t.Fatalf("flag must win over env: %+v", acc)
	}
}

type fakeRuntime struct {
	user *entities.User
	err  error
	got  []string
}

func (f *fakeRuntime) CreateHR(_ context.Context, username, email, name, password string) (*entities.User, error) {
	f.got = []string{username, email, name, password}
	return f.user, f.err
}

func TestRunCreateHR_Branches(t *testing.T) {
	cfg := &config.Config{}
	args := []string{"-username", "hana", "-email", "hana@corp.test", "-password", "passw0rd1"}

	t.Run("prepare error", func(t *testing.T) {
		err := runCreateHR(args, createHRDeps{
			loadEnv: func() error { return errors.New("no env") },
			loadCfg: func() *config.Config { return cfg },
			prepare: func(*config.Config) (createHRRuntime, io.Closer, error) {
				return nil, nil, errors.New("db failed")
			},
			getenv: noEnv,
		})
		if err == nil || !strings.Contains(err.Error(), "db failed") {
			t.Fatalf("expected prepare error, got %v", err)
		}
	})

	t.Run("create error", func(t *testing.T) {
		err := runCreateHR(args, createHRDeps{
			loadEnv: func() error { return nil },
			loadCfg: func() *config.Config { return cfg },
			prepare: func(*config.Config) (createHRRuntime, io.Closer, error) {
				return &fakeRuntime{err: errors.New("taken")}, nopCloser{}, nil
			},
			getenv: noEnv,
		})
		if err == nil || !strings.Contains(err.Error(), "failed creating hr account") {
			t.Fatalf("expected create error, got %v", err)
		}
	})

	t.Run("success output with nil closer", func(t *testing.T) {
		var out bytes.Buffer
		id := uuid.New()
		rt := &fakeRuntime{user: &entities.User{ID: id, Username: "hana", Email: "hana@corp.test", Role: entities.UserRoleHR}}
		err := runCreateHR(args, createHRDeps{
			loadEnv: func() error { return nil },
			loadCfg: func() *config.Config { return cfg },
			prepare: func(*config.Config) (createHRRuntime, io.Closer, error) {
				return rt, nil, nil
			},
			getenv: noEnv,
			out:    &out,
		})
		if err != nil {
			t.Fatalf("unexpected err: %v", err)
		}
		if !strings.Contains(out.String(), "user_id="+id.String()) {
			t.Fatalf("unexpected output: %s", out.String())
		}
		if strings.Join(rt.got, ",") != "hana,hana@corp.test,hana,passw0rd1" {
			t.Fatalf("unexpected runtime args: %v", rt.got)
		}
	})
}

func TestDefaultCreateHRDeps_PrepareCreatesAccount(t *testing.T) {
	origOpen := openCreateHRDB
	defer func() { openCreateHRDB = origOpen }()
	openCreateHRDB = func(*config.Config) (*gorm.DB, io.Closer, error) {
		dsn := fmt.Sprintf("file:create_hr_%d?mode=memory&cache=shared", time.Now().UnixNano())
		db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
		if err != nil {
			return nil, nil, err
		}
		return db, nopCloser{}, nil
	}

	deps := defaultCreateHRDeps()
	rt, closer, err := deps.prepare(&config.Config{})
	if err != nil {
		t.Fatalf("prepare: %v", err)
	}
	defer closer.Close()

	user, err := rt.CreateHR(context.Background(), "hana", "Hana@Corp.test", "Hana Reyes", "passw0rd1")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if user.Role != entities.UserRoleHR || user.Email != "hana@corp.test" {
		t.Fatalf("unexpected user: %+v", user)
	}

	if _, err := rt.CreateHR(context.Background(), "hana", "other@corp.test", "", "passw0rd1"); err == nil {
		t.Fatal("expected duplicate username to fail")
	}
}

func TestMain_ExitsWhenFlagsMissing(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_CREATE_HR") == "1" {
		os.Args = []string{"create-hr"}
		main()
		return
	}

	cmd := exec.Command(os.Args[0], "-test.run=TestMain_ExitsWhenFlagsMissing")
	cmd.Env = append(os.Environ(), "GO_WANT_HELPER_CREATE_HR=1")
	if err := cmd.Run(); err == nil {
		t.Fatal("expected helper process to fail when flags are missing")
	}
}
