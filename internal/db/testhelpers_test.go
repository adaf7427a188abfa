package db

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// testPool is shared by every test of the package. Nil when Docker is
// unavailable or tests run with -short.
var testPool *pgxpool.Pool

func TestMain(m *testing.M) {
	flag.Parse()
	if testing.Short() {
		os.Exit(m.Run())
	}

	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "testdb",
		},
		WaitingFor: wait.ForListeningPort("5432/tcp"),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		log.Printf("postgres container unavailable, skipping db tests: %v", err)
		os.Exit(m.Run())
	}

	code := runWithContainer(ctx, m, container)
	_ = container.Terminate(ctx)
	os.Exit(code)
}

func runWithContainer(ctx context.Context, m *testing.M, container testcontainers.Container) int {
	host, err := container.Host(ctx)
	if err != nil {
		log.Fatalf("getting container host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		log.Fatalf("getting container port: %v", err)
	}
	dsn := fmt.Sprintf("postgres://test:test@%s:%s/testdb?sslmode=disable", host, port.Port())

	if err := RunMigrations(ctx, dsn); err != nil {
		log.Fatalf("running migrations: %v", err)
	}

	db, err := New(ctx, dsn)
	if err != nil {
		log.Fatalf("connecting to test db: %v", err)
	}
	defer db.Close()
	testPool = db.Pool()

	return m.Run()
}

// setupTestDB returns the shared pool with every table truncated.
func setupTestDB(tb testing.TB) *pgxpool.Pool {
	tb.Helper()
	if testPool == nil {
		tb.Skip("postgres not available")
	}

	ctx := context.Background()
	queries := []string{
		"TRUNCATE companions",
		"TRUNCATE character_stats",
		"TRUNCATE optimizer_runs",
	}
	for _, query := range queries {
		if _, err := testPool.Exec(ctx, query); err != nil {
			tb.Fatalf("truncating: %v", err)
		}
	}
	return testPool
}
