// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// handler_test.go provides shared test infrastructure for handler
// integration tests. Tests are skipped when PostgreSQL is unavailable.
package handlers

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"inkpress/internal/database"
	"inkpress/internal/lifecycle"
	"inkpress/internal/middleware"
	"inkpress/internal/models"
	"inkpress/internal/store"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func testDSN() string {
	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "inkpress")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "inkpress")
	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"
}

// testDB opens a connection to the test database and runs migrations.
// If the database is unavailable, the test is skipped.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("pgx", testDSN())
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
	goose.SetBaseFS(nil)

	t.Cleanup(func() { db.Close() })
	return db
}

// testEnv wires real stores and handlers onto a chi router, the same
// shape the production router builds. No Valkey and no gateway: cache
// and notification behavior have their own tests.
type testEnv struct {
	db     *sql.DB
	router chi.Router
	posts  *store.PostStore
	users  *store.UserStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := testDB(t)

	posts := store.NewPostStore(db)
	contacts := store.NewContactStore(db)
	subscribers := store.NewSubscriberStore(db)
	notifLog := store.NewNotificationLogStore(db)
	users := store.NewUserStore(db)
	lc := lifecycle.NewService(posts, nil)

	author := NewAuthor(posts, lc, nil)
	moderation := NewModeration(posts, contacts, subscribers, notifLog, users, lc, nil, nil)
	public := NewPublic(posts, contacts, subscribers, nil)

	r := chi.NewRouter()
	r.Use(middleware.Identity)

	r.Get("/api/feed", public.Feed)
	r.Get("/api/feed/{slug}", public.PostBySlug)
	r.Post("/api/contact", public.Contact)
	r.Post("/api/newsletter/subscribe", public.Subscribe)
	r.Get("/api/newsletter/confirm", public.ConfirmSubscription)
	r.Post("/api/newsletter/unsubscribe", public.Unsubscribe)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireUser)
		r.Post("/api/posts", author.CreatePost)
		r.Get("/api/posts", author.ListPosts)
		r.Get("/api/posts/{id}", author.GetPost)
		r.Put("/api/posts/{id}", author.UpdatePost)
		r.Post("/api/posts/{id}/transition", author.Transition)
		r.Get("/api/dashboard", author.Dashboard)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireModerator)
		r.Get("/api/moderation/queue", moderation.Queue)
		r.Post("/api/moderation/posts/{id}/approve", moderation.Approve)
		r.Post("/api/moderation/posts/{id}/reject", moderation.Reject)
		r.Get("/api/moderation/contacts", moderation.Contacts)
		r.Post("/api/moderation/contacts/{id}/status", moderation.TriageContact)
		r.Get("/api/moderation/subscribers", moderation.Subscribers)
		r.Get("/api/moderation/notifications", moderation.Notifications)
		r.Get("/api/moderation/users", moderation.Users)
	})

	return &testEnv{db: db, router: r, posts: posts, users: users}
}

// newTestUser creates a user with the given role and registers cleanup
// of the user and any posts it owns.
func (e *testEnv) newTestUser(t *testing.T, role models.Role) uuid.UUID {
	t.Helper()

	created, err := e.users.Create(t.Context(), &models.User{
		Email:       "test-" + string(role) + "-" + uuid.NewString()[:8] + "@example.test",
		DisplayName: "Test User",
		Role:        role,
	})
	if err != nil {
		t.Fatalf("create test user: %v", err)
	}
	id := created.ID

	t.Cleanup(func() {
		e.db.Exec("DELETE FROM posts WHERE author_id = $1", id)
		e.db.Exec("DELETE FROM users WHERE id = $1", id)
	})
	return id
}

// do issues a request through the router. A zero actor id sends the
// request anonymously.
func (e *testEnv) do(t *testing.T, method, path string, body any, actorID uuid.UUID, role models.Role) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if actorID != uuid.Nil {
		req.Header.Set("X-User-Id", actorID.String())
		req.Header.Set("X-User-Role", string(role))
	}

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

// decodeBody unmarshals a recorded JSON response into dst.
func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), dst); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}

// createDraft creates a draft post through the API on behalf of authorID.
func (e *testEnv) createDraft(t *testing.T, authorID uuid.UUID) *models.Post {
	t.Helper()

	rec := e.do(t, http.MethodPost, "/api/posts", map[string]string{
		"title": "Draft " + uuid.NewString()[:8],
		"body":  "<p>Body</p>",
	}, authorID, models.RoleAuthor)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create draft: got %d: %s", rec.Code, rec.Body.String())
	}

	var post models.Post
	decodeBody(t, rec, &post)
	return &post
}

// transition moves a post through the API and asserts the expected code.
func (e *testEnv) transition(t *testing.T, postID uuid.UUID, target string, reason string, actorID uuid.UUID, role models.Role, wantCode int) *httptest.ResponseRecorder {
	t.Helper()

	rec := e.do(t, http.MethodPost, "/api/posts/"+postID.String()+"/transition",
		map[string]string{"status": target, "reason": reason}, actorID, role)
	if rec.Code != wantCode {
		t.Fatalf("transition to %s: got %d, want %d: %s", target, rec.Code, wantCode, rec.Body.String())
	}
	return rec
}
