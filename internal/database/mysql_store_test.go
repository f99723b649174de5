package database

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/mysql"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupMySQL starts MySQL in a container.  Skipped unless TEST_INTEGRATION is set.
func setupMySQL(t *testing.T) *MySQLStore {
	t.Helper()

	if os.Getenv("TEST_INTEGRATION") == "" {
		t.Skip("skipping integration test: TEST_INTEGRATION not set")
	}

	ctx := context.Background()
	container, err := mysql.Run(ctx,
		"mysql:8.0.36",
		mysql.WithDatabase("leads_test"),
		mysql.WithUsername("leads"),
		mysql.WithPassword("test-password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("port: 3306  MySQL Community Server").
				WithStartupTimeout(90*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("start mysql container: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("terminate container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("container host: %v", err)
	}
	port, err := container.MappedPort(ctx, "3306")
	if err != nil {
		t.Fatalf("container port: %v", err)
	}

	db, err := Open(ctx, "leads", "test-password", host, port.Port(), "leads_test")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	s := NewMySQLStore(db)
	if err := s.EnsureSchema(ctx); err != nil {
		t.Fatalf("EnsureSchema: %v", err)
	}
	return s
}

func TestMySQLStore(t *testing.T) {
	s := setupMySQL(t)
	ctx := context.Background()

	ids := seed(t, s,
		doc{Name: "a", Status: "New", Created: "2024-01-01T00:00:00.000Z"},
		doc{Name: "b", Status: "Lost", Created: "2024-01-03T00:00:00.000Z"},
		doc{Name: "c", Status: "New", Created: "2024-01-02T00:00:00.000Z"},
	)

	var got doc
	if err := s.Get(ctx, "things", ids[1], &got); err != nil || got.Name != "b" || got.ID != ids[1] {
		t.Fatalf("Get = %+v, %v", got, err)
	}
	if err := s.Get(ctx, "things", "missing", &got); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	docs, err := s.Find(ctx, "things", Query{OrderBy: "created_at", Desc: true}.Where("status", Eq, "New"))
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if len(docs) != 2 || docs[0].ID != ids[2] || docs[1].ID != ids[0] {
		t.Errorf("unexpected order: %+v", docs)
	}

	if err := s.Merge(ctx, "things", ids[0], map[string]any{"status": "New"}); err != nil {
		t.Errorf("Merge with unchanged value: %v", err)
	}
	if err := s.Merge(ctx, "things", ids[0], map[string]any{"status": "Converted", "count": 2}); err != nil {
		t.Fatalf("Merge: %v", err)
	}
	_ = s.Get(ctx, "things", ids[0], &got)
	if got.Status != "Converted" || got.Count != 2 || got.Name != "a" {
		t.Errorf("after merge: %+v", got)
	}
	if err := s.Merge(ctx, "things", "missing", map[string]any{"status": "x"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	if err := s.Set(ctx, "users", "u1", doc{Name: "first"}); err != nil {
		t.Fatal(err)
	}
	if err := s.Set(ctx, "users", "u1", doc{Name: "second"}); err != nil {
		t.Fatal(err)
	}
	_ = s.Get(ctx, "users", "u1", &got)
	if got.Name != "second" {
		t.Errorf("Set did not replace: %+v", got)
	}
}
