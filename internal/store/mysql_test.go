//go:build integration

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupMySQLContainer(t *testing.T) (*MySQL, func()) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "mysql:8.4",
		ExposedPorts: []string{"3306/tcp"},
		Env: map[string]string{
			"MYSQL_ROOT_PASSWORD": "test",
			"MYSQL_DATABASE":      "attendance",
		},
		WaitingFor: wait.ForLog("port: 3306  MySQL Community Server").
			WithStartupTimeout(120 * time.Second),
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
	port, err := container.MappedPort(ctx, "3306")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	dsn := fmt.Sprintf("root:test@tcp(%s:%s)/attendance", host, port.Port())

	st, err := NewMySQL(dsn)
	if err != nil {
		container.Terminate(ctx)
		t.Fatalf("Failed to create MySQL store: %v", err)
	}

	cleanup := func() {
		st.Close()
		container.Terminate(ctx)
	}
	return st, cleanup
}

func TestMySQL_AppendAndRead(t *testing.T) {
	st, cleanup := setupMySQLContainer(t)
	defer cleanup()
	ctx := context.Background()

	path := "/attendance/2024/January/01/Alice"
	if _, err := st.Append(ctx, path, map[string]string{
		"date": "24/01/01 09:00:00", "name": "Alice", "status": "Clock In",
	}); err != nil {
		t.Fatalf("append failed: %v", err)
	}
	if _, err := st.Append(ctx, path, map[string]string{
		"date": "24/01/01 17:00:00", "name": "Alice", "status": "Clock Out",
	}); err != nil {
		t.Fatalf("append failed: %v", err)
	}

	raw, err := st.Read(ctx, path)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}

	var bucket map[string]map[string]string
	if err := json.Unmarshal(raw, &bucket); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if len(bucket) != 2 {
		t.Errorf("expected 2 events, got %d", len(bucket))
	}
}

func TestMySQL_ReadAncestorAssemblesTree(t *testing.T) {
	st, cleanup := setupMySQLContainer(t)
	defer cleanup()
	ctx := context.Background()

	if _, err := st.Append(ctx, "/attendance/2024/January/01/Alice", map[string]string{"name": "Alice"}); err != nil {
		t.Fatalf("append failed: %v", err)
	}
	if _, err := st.Append(ctx, "/attendance/2024/January/02/Bob", map[string]string{"name": "Bob"}); err != nil {
		t.Fatalf("append failed: %v", err)
	}

	raw, err := st.Read(ctx, "/attendance/2024/January")
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}

	var month map[string]map[string]map[string]map[string]string
	if err := json.Unmarshal(raw, &month); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if _, ok := month["01"]["Alice"]; !ok {
		t.Error("expected Alice bucket under day 01")
	}
	if _, ok := month["02"]["Bob"]; !ok {
		t.Error("expected Bob bucket under day 02")
	}
}

func TestMySQL_WriteReplaces(t *testing.T) {
	st, cleanup := setupMySQLContainer(t)
	defer cleanup()
	ctx := context.Background()

	path := "/consolidated_attendance/2024/January"
	if err := st.Write(ctx, path, []map[string]string{{"name": "Alice"}}); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if err := st.Write(ctx, path, []map[string]string{{"name": "Bob"}}); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	raw, err := st.Read(ctx, path)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}

	var list []map[string]string
	if err := json.Unmarshal(raw, &list); err != nil {
		t.Fatalf("expected a list, got %s: %v", raw, err)
	}
	if len(list) != 1 || list[0]["name"] != "Bob" {
		t.Errorf("unexpected replacement content: %s", raw)
	}
}

func TestMySQL_ExistsPrefix(t *testing.T) {
	st, cleanup := setupMySQLContainer(t)
	defer cleanup()
	ctx := context.Background()

	if _, err := st.Append(ctx, "/attendance/2024/January/01/Alice", map[string]string{"name": "Alice"}); err != nil {
		t.Fatalf("append failed: %v", err)
	}

	ok, err := st.Exists(ctx, "/attendance/2024/January")
	if err != nil {
		t.Fatalf("exists failed: %v", err)
	}
	if !ok {
		t.Error("expected ancestor path to exist")
	}

	ok, err = st.Exists(ctx, "/attendance/2024/February")
	if err != nil {
		t.Fatalf("exists failed: %v", err)
	}
	if ok {
		t.Error("expected absent month to not exist")
	}
}
