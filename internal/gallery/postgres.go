package gallery

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"github.com/pgvector/pgvector-go"

	"github.com/kozaktomas/face-attendance/internal/config"
)

// PostgresRepository stores gallery entries in PostgreSQL with pgvector
// embeddings, for multi-camera deployments that share one enrollment set.
type PostgresRepository struct {
	db  *sql.DB
	dim int
}

// NewPostgresRepository opens a connection pool and runs migrations.
func NewPostgresRepository(cfg *config.GalleryConfig, dim int) (*PostgresRepository, error) {
	if cfg.DatabaseURL == "" {
		return nil, errors.New("gallery database URL is required")
	}

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	r := &PostgresRepository{db: db, dim: dim}
	if err := r.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return r, nil
}

// Close closes the connection pool.
func (r *PostgresRepository) Close() error {
	if err := r.db.Close(); err != nil {
		return fmt.Errorf("closing database connection: %w", err)
	}
	return nil
}

func (r *PostgresRepository) migrate(ctx context.Context) error {
	statements := []string{
		"CREATE EXTENSION IF NOT EXISTS vector",
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS gallery_faces (
				id         BIGSERIAL PRIMARY KEY,
				name       TEXT NOT NULL,
				embedding  vector(%d) NOT NULL,
				created_at TIMESTAMPTZ NOT NULL DEFAULT now()
			)
		`, r.dim),
		"CREATE INDEX IF NOT EXISTS gallery_faces_name_idx ON gallery_faces (name)",
	}
	for _, stmt := range statements {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("running gallery migration: %w", err)
		}
	}
	return nil
}

// Add inserts one reference embedding for an identity.
func (r *PostgresRepository) Add(ctx context.Context, entry Entry) error {
	if entry.Name == "" {
		return errors.New("entry name is required")
	}
	if len(entry.Embedding) != r.dim {
		return fmt.Errorf("embedding has dim %d, expected %d", len(entry.Embedding), r.dim)
	}

	vec := pgvector.NewVector(entry.Embedding)
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO gallery_faces (name, embedding) VALUES ($1, $2)", entry.Name, vec)
	if err != nil {
		return fmt.Errorf("inserting gallery entry: %w", err)
	}
	return nil
}

// List returns all enrolled entries ordered by insertion.
func (r *PostgresRepository) List(ctx context.Context) ([]Entry, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT name, embedding FROM gallery_faces ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("querying gallery entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var entry Entry
		var vec pgvector.Vector
		if err := rows.Scan(&entry.Name, &vec); err != nil {
			return nil, fmt.Errorf("scanning gallery entry: %w", err)
		}
		entry.Embedding = vec.Slice()
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating gallery entries: %w", err)
	}
	return entries, nil
}

// DeleteByName removes all entries for an identity and reports how many were
// deleted.
func (r *PostgresRepository) DeleteByName(ctx context.Context, name string) (int64, error) {
	result, err := r.db.ExecContext(ctx, "DELETE FROM gallery_faces WHERE name = $1", name)
	if err != nil {
		return 0, fmt.Errorf("deleting gallery entries: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("reading affected rows: %w", err)
	}
	return n, nil
}

// Count returns the number of stored reference embeddings.
func (r *PostgresRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM gallery_faces").Scan(&count); err != nil {
		return 0, fmt.Errorf("counting gallery entries: %w", err)
	}
	return count, nil
}
