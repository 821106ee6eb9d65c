// store_test.go provides a shared test database helper for all store
// integration tests. Tests are skipped if PostgreSQL is not available.
package store

import (
	"context"
	"database/sql"
	"os"
	"testing"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"inkpress/internal/database"
	"inkpress/internal/models"
)

// testDSN returns the PostgreSQL connection string for testing.
// Uses environment variables with defaults matching docker-compose.yml.
func testDSN() string {
	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "inkpress")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "inkpress")
	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens a connection to the test database and runs migrations.
// If the database is unavailable, the test is skipped. A cleanup
// function is registered to close the connection when the test finishes.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	dsn := testDSN()
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Skipf("skipping integration test: cannot open DB: %v", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping integration test: DB not reachable: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	// Reset goose global state.
	goose.SetBaseFS(nil)

	t.Cleanup(func() { db.Close() })
	return db
}

// testAuthor creates a throwaway author for post creation and registers
// cleanup of the user and any posts it owns.
func testAuthor(t *testing.T, db *sql.DB) uuid.UUID {
	t.Helper()

	created, err := NewUserStore(db).Create(t.Context(), &models.User{
		Email:       "test-author-" + uuid.NewString()[:8] + "@example.test",
		DisplayName: "Test Author",
		Role:        models.RoleAuthor,
	})
	if err != nil {
		t.Fatalf("create test author: %v", err)
	}
	id := created.ID

	t.Cleanup(func() {
		db.Exec("DELETE FROM posts WHERE author_id = $1", id)
		db.Exec("DELETE FROM users WHERE id = $1", id)
	})
	return id
}

// createTestPost creates a draft post for the given author.
func createTestPost(t *testing.T, db *sql.DB, authorID uuid.UUID) *models.Post {
	t.Helper()

	s := NewPostStore(db)
	created, err := s.Create(context.Background(), &models.Post{
		AuthorID: authorID,
		Title:    "Test Post " + uuid.NewString()[:8],
		Body:     "<p>Test body</p>",
	})
	if err != nil {
		t.Fatalf("create test post: %v", err)
	}
	return created
}
