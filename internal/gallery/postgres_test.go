//go:build integration

package gallery

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/kozaktomas/face-attendance/internal/config"
)

func setupPostgresRepository(t *testing.T, dim int) (*PostgresRepository, func()) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "pgvector/pgvector:pg16",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "testdb",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Skipf("Docker not available or container failed to start, skipping integration test: %v", err)
		return nil, func() {}
	}

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	cfg := &config.GalleryConfig{
		DatabaseURL:  fmt.Sprintf("postgres://test:test@%s:%s/testdb?sslmode=disable", host, port.Port()),
		MaxOpenConns: 5,
		MaxIdleConns: 2,
	}

	repo, err := NewPostgresRepository(cfg, dim)
	if err != nil {
		container.Terminate(ctx)
		t.Fatalf("Failed to create repository: %v", err)
	}

	cleanup := func() {
		repo.Close()
		container.Terminate(ctx)
	}
	return repo, cleanup
}

func TestPostgresRepository_AddAndList(t *testing.T) {
	repo, cleanup := setupPostgresRepository(t, 3)
	defer cleanup()
	ctx := context.Background()

	if err := repo.Add(ctx, Entry{Name: "Alice", Embedding: []float32{0.1, 0.2, 0.3}}); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if err := repo.Add(ctx, Entry{Name: "Bob", Embedding: []float32{0.9, 0.8, 0.7}}); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	entries, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Name != "Alice" || entries[1].Name != "Bob" {
		t.Errorf("unexpected order: %v, %v", entries[0].Name, entries[1].Name)
	}
	if len(entries[0].Embedding) != 3 {
		t.Errorf("expected dim 3, got %d", len(entries[0].Embedding))
	}
}

func TestPostgresRepository_DimMismatchRejected(t *testing.T) {
	repo, cleanup := setupPostgresRepository(t, 3)
	defer cleanup()

	err := repo.Add(context.Background(), Entry{Name: "Alice", Embedding: []float32{0.1, 0.2}})
	if err == nil {
		t.Error("expected error for wrong embedding dimensionality")
	}
}

func TestPostgresRepository_DeleteByName(t *testing.T) {
	repo, cleanup := setupPostgresRepository(t, 3)
	defer cleanup()
	ctx := context.Background()

	for range 2 {
		if err := repo.Add(ctx, Entry{Name: "Alice", Embedding: []float32{0.1, 0.2, 0.3}}); err != nil {
			t.Fatalf("add failed: %v", err)
		}
	}

	n, err := repo.DeleteByName(ctx, "Alice")
	if err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 deleted rows, got %d", n)
	}

	count, err := repo.Count(ctx)
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 0 {
		t.Errorf("expected empty gallery, got %d", count)
	}
}
