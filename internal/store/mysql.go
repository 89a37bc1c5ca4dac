package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

// MySQL implements Store on a single documents table, for deployments that
// keep attendance on-premises instead of in a cloud database. Each appended
// child is one row keyed by (node path, push key); wholesale writes use an
// empty key and hold the full JSON document.
type MySQL struct {
	db  *sql.DB
	ids *PushIDGenerator
}

// NewMySQL opens a MySQL-backed store and creates the documents table if
// missing.
func NewMySQL(dsn string) (*MySQL, error) {
	if dsn == "" {
		return nil, errors.New("MySQL DSN is required")
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL: %w", err)
	}

	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: ping MySQL: %v", ErrUnavailable, err)
	}

	s := &MySQL{db: db, ids: NewPushIDGenerator()}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying connection pool.
func (s *MySQL) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("closing database connection: %w", err)
	}
	return nil
}

func (s *MySQL) migrate(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS documents (
			path VARCHAR(512) NOT NULL,
			k    VARCHAR(32)  NOT NULL DEFAULT '',
			doc  JSON         NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (path, k)
		)
	`
	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("creating documents table: %w", err)
	}
	return nil
}

// wrapDBErr maps driver/transport failures to ErrUnavailable.
func wrapDBErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrUnavailable, op, err)
}

func (s *MySQL) Exists(ctx context.Context, path string) (bool, error) {
	path = normalizePath(path)

	var exists bool
	query := "SELECT EXISTS(SELECT 1 FROM documents WHERE path = ? OR path LIKE ?)"
	err := s.db.QueryRowContext(ctx, query, path, path+"/%").Scan(&exists)
	if err != nil {
		return false, wrapDBErr("checking existence", err)
	}
	return exists, nil
}

func (s *MySQL) Read(ctx context.Context, path string) (json.RawMessage, error) {
	path = normalizePath(path)

	query := "SELECT path, k, doc FROM documents WHERE path = ? OR path LIKE ? ORDER BY path, k"
	rows, err := s.db.QueryContext(ctx, query, path, path+"/%")
	if err != nil {
		return nil, wrapDBErr("querying documents", err)
	}
	defer rows.Close()

	tree := make(map[string]any)
	found := false

	for rows.Next() {
		var rowPath, key string
		var doc []byte
		if err := rows.Scan(&rowPath, &key, &doc); err != nil {
			return nil, wrapDBErr("scanning document row", err)
		}
		found = true

		var value any
		if err := json.Unmarshal(doc, &value); err != nil {
			return nil, fmt.Errorf("corrupt document at %s[%s]: %w", rowPath, key, err)
		}

		rel := strings.TrimPrefix(strings.TrimPrefix(rowPath, path), "/")
		segs := splitPath(rel)
		if key != "" {
			segs = append(segs, key)
		}
		if len(segs) == 0 {
			// Wholesale document at the requested path itself.
			if obj, ok := value.(map[string]any); ok {
				for k, v := range obj {
					tree[k] = v
				}
			} else {
				raw, err := json.Marshal(value)
				if err != nil {
					return nil, fmt.Errorf("marshaling document at %s: %w", path, err)
				}
				return raw, rows.Err()
			}
			continue
		}
		placeInTree(tree, segs, value)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBErr("iterating document rows", err)
	}

	if !found {
		return nil, nil
	}

	raw, err := json.Marshal(tree)
	if err != nil {
		return nil, fmt.Errorf("marshaling subtree at %s: %w", path, err)
	}
	return raw, nil
}

func (s *MySQL) Write(ctx context.Context, path string, doc any) error {
	path = normalizePath(path)

	payload, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshaling document for %s: %w", path, err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return wrapDBErr("beginning transaction", err)
	}
	defer tx.Rollback()

	// Full replace: drop the node and everything below it.
	if _, err := tx.ExecContext(ctx,
		"DELETE FROM documents WHERE path = ? OR path LIKE ?", path, path+"/%"); err != nil {
		return wrapDBErr("clearing node", err)
	}

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO documents (path, k, doc) VALUES (?, '', ?)", path, payload); err != nil {
		return wrapDBErr("writing node", err)
	}

	if err := tx.Commit(); err != nil {
		return wrapDBErr("committing write", err)
	}
	return nil
}

func (s *MySQL) Append(ctx context.Context, path string, doc any) (string, error) {
	path = normalizePath(path)

	payload, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("marshaling document for %s: %w", path, err)
	}

	key := s.ids.Next()
	if _, err := s.db.ExecContext(ctx,
		"INSERT INTO documents (path, k, doc) VALUES (?, ?, ?)", path, key, payload); err != nil {
		return "", wrapDBErr("appending document", err)
	}
	return key, nil
}

// normalizePath strips the trailing slash so prefix queries behave.
func normalizePath(path string) string {
	if path != "/" {
		path = strings.TrimSuffix(path, "/")
	}
	return path
}

// placeInTree inserts value at the nested position given by segs, creating
// intermediate maps as needed.
func placeInTree(tree map[string]any, segs []string, value any) {
	cur := tree
	for _, seg := range segs[:len(segs)-1] {
		next, ok := cur[seg].(map[string]any)
		if !ok {
			next = make(map[string]any)
			cur[seg] = next
		}
		cur = next
	}
	cur[segs[len(segs)-1]] = value
}
