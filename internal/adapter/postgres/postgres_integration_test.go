package postgres

import (
	"context"
	"flag"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// testPool connects as the container superuser and is used for setup and
// cleanup. appPool connects as a plain role, since row-level security does
// not apply to superusers; repositories under test must use appPool.
var (
	testPool *pgxpool.Pool
	appPool  *pgxpool.Pool
)

func TestMain(m *testing.M) {
	flag.Parse()

	// Skip container setup if running in short mode
	if testing.Short() {
		os.Exit(m.Run())
	}

	ctx := context.Background()

	postgresContainer, err := postgres.Run(ctx,
		"postgres:17-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start postgres container: %v\n", err)
		os.Exit(1)
	}

	defer func() {
		if err := postgresContainer.Terminate(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to terminate postgres container: %v\n", err)
		}
	}()

	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to get connection string: %v\n", err)
		os.Exit(1)
	}

	testPool, err = Connect(ctx, connStr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect: %v\n", err)
		os.Exit(1)
	}
	defer testPool.Close()

	if err := RunMigrations(ctx, testPool); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to run migrations: %v\n", err)
		os.Exit(1)
	}

	grants := []string{
		`CREATE ROLE app_user LOGIN PASSWORD 'apppass'`,
		`GRANT SELECT, INSERT, UPDATE, DELETE ON ALL TABLES IN SCHEMA public TO app_user`,
	}
	for _, stmt := range grants {
		if _, err := testPool.Exec(ctx, stmt); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to set up app role: %v\n", err)
			os.Exit(1)
		}
	}

	appConfig := testPool.Config().Copy()
	appConfig.ConnConfig.User = "app_user"
	appConfig.ConnConfig.Password = "apppass"
	appPool, err = pgxpool.NewWithConfig(ctx, appConfig)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect as app role: %v\n", err)
		os.Exit(1)
	}
	defer appPool.Close()

	os.Exit(m.Run())
}

func setupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	// Wipe scoped tables between tests; organizations are seeded data.
	ctx := context.Background()
	_, err := testPool.Exec(ctx, `TRUNCATE assessments, tasks, interactions, clients CASCADE`)
	if err != nil {
		t.Fatalf("failed to truncate tables: %v", err)
	}
	return appPool
}

func testSession() *TenantSession {
	return NewTenantSession(2*time.Second, false)
}
