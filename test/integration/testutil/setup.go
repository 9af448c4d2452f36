//go:build integration

package testutil

import (
	"context"
	"fmt"
	"log/slog"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/smashpoint/league/internal/app"
	"github.com/smashpoint/league/internal/auth"
	"github.com/smashpoint/league/internal/infra"
	"github.com/smashpoint/league/internal/ledger"
	"github.com/smashpoint/league/internal/provider"
	"github.com/smashpoint/league/internal/repository"
)

const (
	TestJWTSecret     = "integration-test-secret-0123456789abcdef"
	TestAdminToken    = "integration-admin-token"
	TestDefaultSeason = "2026-S1"
	TestDBHost        = "localhost"
	TestDBPort        = 5435
	TestDBUser        = "league"
	TestDBPass        = "league"
	TestDBName        = "league_test"
)

// TestEnv holds all resources for an integration test.
type TestEnv struct {
	Server *httptest.Server
	Pool   *pgxpool.Pool
	Repo   *repository.PgDocumentRepository
	Gate   *ledger.Gate
	JWTMgr *auth.JWTManager
	t      *testing.T
}

var (
	sharedPool *pgxpool.Pool
	poolOnce   sync.Once
	poolErr    error
)

func testDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		TestDBUser, TestDBPass, TestDBHost, TestDBPort, TestDBName)
}

func bootstrapDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		TestDBUser, TestDBPass, TestDBHost, TestDBPort, "league")
}

func ensureTestDB() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Connect to the main database to create the test database
	bPool, err := pgxpool.New(ctx, bootstrapDSN())
	if err != nil {
		return fmt.Errorf("connect bootstrap db: %w", err)
	}
	defer bPool.Close()

	var exists bool
	err = bPool.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM pg_database WHERE datname = $1)", TestDBName).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check db exists: %w", err)
	}

	if !exists {
		if _, err := bPool.Exec(ctx, fmt.Sprintf("CREATE DATABASE %s", TestDBName)); err != nil {
			return fmt.Errorf("create test db: %w", err)
		}
	}
	return nil
}

func runMigrations() error {
	sourceURL := fmt.Sprintf("file://%s", filepath.Join(findProjectRoot(), "db", "migrations"))

	m, err := newMigrate(sourceURL, testDSN())
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !isNoChange(err) {
		return fmt.Errorf("migrate up: %w", err)
	}
	return nil
}

// findProjectRoot walks up from the working directory to the directory holding go.mod.
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return "."
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "."
		}
		dir = parent
	}
}

func getSharedPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	poolOnce.Do(func() {
		if err := ensureTestDB(); err != nil {
			poolErr = err
			return
		}
		if err := runMigrations(); err != nil {
			poolErr = fmt.Errorf("run migrations: %w", err)
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		poolCfg, err := pgxpool.ParseConfig(testDSN())
		if err != nil {
			poolErr = fmt.Errorf("parse pool config: %w", err)
			return
		}
		poolCfg.MaxConns = 10
		poolCfg.MinConns = 1

		sharedPool, err = pgxpool.NewWithConfig(ctx, poolCfg)
		if err != nil {
			poolErr = fmt.Errorf("create pool: %w", err)
		}
	})

	if poolErr != nil {
		t.Fatalf("failed to initialize test pool: %v", poolErr)
	}
	return sharedPool
}

// NewTestEnv creates a test environment with an httptest.Server backed by the real router
// and the postgres document backend.
func NewTestEnv(t *testing.T) *TestEnv {
	t.Helper()

	pool := getSharedPool(t)

	// Clean before building the gate so every test starts from an empty document
	env := &TestEnv{Pool: pool, t: t}
	env.CleanAll()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	env.Repo = repository.NewPgDocumentRepository(pool)
	env.Gate = ledger.NewGate(env.Repo, logger)
	env.JWTMgr = auth.NewJWTManager(TestJWTSecret, 24*time.Hour)

	cfg := &infra.Config{
		DefaultSeason:      TestDefaultSeason,
		AdminToken:         TestAdminToken,
		ExposeTACCode:      true,
		TACRateLimit:       5,
		TACRateWindow:      10 * time.Minute,
		CORSAllowedOrigins: "*",
	}
	router := app.NewRouter(app.RouterDeps{
		Config:   cfg,
		Gate:     env.Gate,
		JWTMgr:   env.JWTMgr,
		Logger:   logger,
		Notifier: provider.NewWhatsAppClient(provider.WhatsAppConfig{}, nil, logger),
	})
	env.Server = httptest.NewServer(router)

	t.Cleanup(func() {
		env.Server.Close()
		env.CleanAll()
	})
	return env
}
