// Package testutil provides test helpers for container-backed storage.
package testutil

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/cory-johannsen/taberneiros/internal/config"
	"github.com/cory-johannsen/taberneiros/internal/storage/postgres"
)

// Postgres is a disposable PostgreSQL server for tests.
type Postgres struct {
	Config config.DatabaseConfig
	Pool   *postgres.Pool
}

// StartPostgres runs postgres:16-alpine and connects a Pool to it. When
// migrate is true the embedded schema is applied first.
//
// The test is skipped under -short, when TABERNA_SKIP_CONTAINERS is set, or
// when Docker is unreachable. The pool and container are released at cleanup.
func StartPostgres(t *testing.T, migrate bool) *Postgres {
	t.Helper()
	if testing.Short() || os.Getenv("TABERNA_SKIP_CONTAINERS") != "" {
		t.Skip("container tests disabled")
	}
	ctx := context.Background()
	start := time.Now()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "taberna",
				"POSTGRES_PASSWORD": "taberna",
				"POSTGRES_DB":       "taberna_test",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Skipf("docker unavailable: %v", err)
	}
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("container host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("container port: %v", err)
	}

	pg := &Postgres{Config: config.DatabaseConfig{
		Host:            host,
		Port:            port.Int(),
		User:            "taberna",
		Password:        "taberna",
		Name:            "taberna_test",
		SSLMode:         "disable",
		MaxConns:        4,
		MinConns:        1,
		MaxConnLifetime: time.Minute,
	}}
	if migrate {
		if err := postgres.Migrate(pg.Config.DSN()); err != nil {
			t.Fatalf("migrating: %v", err)
		}
	}
	pg.Pool, err = postgres.NewPool(ctx, pg.Config)
	if err != nil {
		t.Fatalf("connecting: %v", err)
	}
	t.Cleanup(pg.Pool.Close)
	t.Logf("postgres ready on %s:%d [%s]", host, port.Int(), time.Since(start))
	return pg
}

// Truncate empties every document table.
func (p *Postgres) Truncate(t *testing.T) {
	t.Helper()
	if _, err := p.Pool.DB().Exec(context.Background(), `TRUNCATE items, characters`); err != nil {
		t.Fatalf("truncating: %v", err)
	}
}
