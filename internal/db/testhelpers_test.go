package db

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/udisondev/hordewave/internal/db/migrations"
)

// testPool: shared connection pool для всех tests в package db
var testPool *pgxpool.Pool

// TestMain настраивает окружение для всех tests/benchmarks в package db.
// С -short контейнер не поднимается и DB тесты пропускаются.
func TestMain(m *testing.M) {
	flag.Parse()
	if testing.Short() {
		os.Exit(m.Run())
	}

	os.Exit(runWithContainer(m))
}

func runWithContainer(m *testing.M) int {
	ctx := context.Background()

	// Запускаем PostgreSQL 16 testcontainer
	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		postgres.BasicWaitStrategies(),
	)
	if err != nil {
		log.Printf("starting postgres container: %v", err)
		return 1
	}
	defer func() {
		_ = testcontainers.TerminateContainer(container)
	}()

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		log.Printf("getting connection string: %v", err)
		return 1
	}

	testPool, err = pgxpool.New(ctx, dsn)
	if err != nil {
		log.Printf("connecting to test db: %v", err)
		return 1
	}
	defer testPool.Close()

	if err := runMigrations(testPool); err != nil {
		log.Printf("running migrations: %v", err)
		return 1
	}

	return m.Run()
}

// setupTestDB возвращает shared pool.
// Очищает таблицы перед каждым тестом для изоляции.
func setupTestDB(tb testing.TB) *pgxpool.Pool {
	tb.Helper()

	if testPool == nil {
		tb.Skip("database tests disabled in -short mode")
	}

	ctx := context.Background()
	queries := []string{
		"TRUNCATE spawn_journal",
		"TRUNCATE monsters",
		"TRUNCATE catalog_meta",
	}

	for _, query := range queries {
		if _, err := testPool.Exec(ctx, query); err != nil {
			tb.Logf("cleanup warning: %v", err) // non-fatal
		}
	}

	return testPool
}

// runMigrations применяет embedded миграции через goose.
func runMigrations(pool *pgxpool.Pool) error {
	// goose требует *sql.DB, получаем его из pgxpool
	connStr := stdlib.RegisterConnConfig(pool.Config().ConnConfig)
	sqlDB, err := sql.Open("pgx", connStr)
	if err != nil {
		return fmt.Errorf("opening sql.DB: %w", err)
	}
	defer sqlDB.Close()

	goose.SetBaseFS(migrations.FS)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("setting goose dialect: %w", err)
	}

	if err := goose.Up(sqlDB, "."); err != nil {
		return fmt.Errorf("running goose up: %w", err)
	}

	return nil
}
