// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"inkpress/internal/lifecycle"
	"inkpress/internal/models"
	"inkpress/internal/slug"
)

// postColumns is the canonical column list for scanning posts.
const postColumns = `id, author_id, title, slug, body, excerpt, status,
       rejected_reason, archived_from, created_at, updated_at`

// PostStore handles all post persistence. It implements lifecycle.Store:
// CompareAndSet is the optimistic-concurrency write the lifecycle service
// commits transitions through.
type PostStore struct {
	db *sql.DB
}

// NewPostStore creates a new PostStore with the given database connection.
func NewPostStore(db *sql.DB) *PostStore {
	return &PostStore{db: db}
}

// scanner matches both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanPost(s scanner) (*models.Post, error) {
	p := &models.Post{}
	err := s.Scan(
		&p.ID, &p.AuthorID, &p.Title, &p.Slug, &p.Body, &p.Excerpt,
		&p.Status, &p.RejectedReason, &p.ArchivedFrom, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Create inserts a new post in draft status. The slug is derived from the
// title and suffixed until unique.
func (s *PostStore) Create(ctx context.Context, post *models.Post) (*models.Post, error) {
	unique, err := s.uniqueSlug(ctx, slug.Generate(post.Title))
	if err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `
		INSERT INTO posts (author_id, title, slug, body, excerpt, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+postColumns,
		post.AuthorID, post.Title, unique, post.Body, post.Excerpt, models.StatusDraft,
	)

	created, err := scanPost(row)
	if err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	return created, nil
}

// Get retrieves a post by id, including soft-deleted ones so they can be
// restored. Returns nil if not found.
func (s *PostStore) Get(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+postColumns+` FROM posts WHERE id = $1`, id)
	post, err := scanPost(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get post: %w", err)
	}
	return post, nil
}

// CompareAndSet writes a status change only if the stored status still
// matches expected. Returns lifecycle.ErrConflict when the post moved
// under us and lifecycle.ErrNotFound when the id is gone. updated_at is
// stamped by the database so all writers agree on the clock.
func (s *PostStore) CompareAndSet(ctx context.Context, id uuid.UUID, expected models.PostStatus, change models.StatusChange) (*models.Post, error) {
	row := s.db.QueryRowContext(ctx, `
		UPDATE posts
		SET status = $1, rejected_reason = $2, archived_from = $3, updated_at = NOW()
		WHERE id = $4 AND status = $5
		RETURNING `+postColumns,
		change.Status, change.RejectedReason, change.ArchivedFrom, id, expected,
	)

	updated, err := scanPost(row)
	if err == sql.ErrNoRows {
		// Zero rows: either the post vanished or its status moved on.
		var exists bool
		if probeErr := s.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM posts WHERE id = $1)`, id).Scan(&exists); probeErr != nil {
			return nil, fmt.Errorf("compare-and-set probe: %w", probeErr)
		}
		if exists {
			return nil, lifecycle.ErrConflict
		}
		return nil, lifecycle.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("compare-and-set: %w", err)
	}
	return updated, nil
}

// Update saves the editable fields of a post. Status, slug, and the
// lifecycle bookkeeping columns are deliberately not touched here.
func (s *PostStore) Update(ctx context.Context, post *models.Post) (*models.Post, error) {
	row := s.db.QueryRowContext(ctx, `
		UPDATE posts
		SET title = $1, body = $2, excerpt = $3, updated_at = NOW()
		WHERE id = $4
		RETURNING `+postColumns,
		post.Title, post.Body, post.Excerpt, post.ID,
	)

	updated, err := scanPost(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("update post: %w", err)
	}
	return updated, nil
}

// ListByAuthor returns an author's posts, newest first. Soft-deleted posts
// are excluded unless includeDeleted is set (the trash view asks for them).
func (s *PostStore) ListByAuthor(ctx context.Context, authorID uuid.UUID, includeDeleted bool) ([]models.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE author_id = $1`
	if !includeDeleted {
		query += ` AND status <> 'deleted'`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, authorID)
	if err != nil {
		return nil, fmt.Errorf("list posts by author: %w", err)
	}
	defer rows.Close()

	return collectPosts(rows)
}

// ListByStatus returns all posts in the given status, oldest update first.
// The moderation queue uses this so the longest-waiting post is on top.
func (s *PostStore) ListByStatus(ctx context.Context, status models.PostStatus) ([]models.Post, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+postColumns+` FROM posts
		WHERE status = $1
		ORDER BY updated_at ASC
	`, status)
	if err != nil {
		return nil, fmt.Errorf("list posts by status: %w", err)
	}
	defer rows.Close()

	return collectPosts(rows)
}

// ListPublished returns approved posts for the public feed, newest first.
func (s *PostStore) ListPublished(ctx context.Context) ([]models.Post, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+postColumns+` FROM posts
		WHERE status = 'approved'
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list published posts: %w", err)
	}
	defer rows.Close()

	return collectPosts(rows)
}

// FindPublishedBySlug retrieves an approved post by its slug. Used for
// public addressing; non-approved posts are invisible here.
func (s *PostStore) FindPublishedBySlug(ctx context.Context, slugValue string) (*models.Post, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+postColumns+` FROM posts
		WHERE slug = $1 AND status = 'approved'
	`, slugValue)

	post, err := scanPost(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find published post by slug: %w", err)
	}
	return post, nil
}

// CountByStatusForAuthor returns the author's post count per status plus
// an "all" total. SQL mirror of lifecycle.CountByStatus for when loading
// the full collection would be wasteful.
func (s *PostStore) CountByStatusForAuthor(ctx context.Context, authorID uuid.UUID) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT status, COUNT(*) FROM posts
		WHERE author_id = $1
		GROUP BY status
	`, authorID)
	if err != nil {
		return nil, fmt.Errorf("count posts by status: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int, len(models.AllStatuses)+1)
	for _, st := range models.AllStatuses {
		counts[string(st)] = 0
	}

	total := 0
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("scan status count: %w", err)
		}
		counts[status] = n
		total += n
	}
	counts[lifecycle.StatusFilterAll] = total
	return counts, rows.Err()
}

// uniqueSlug appends a numeric suffix until the slug is unused.
func (s *PostStore) uniqueSlug(ctx context.Context, base string) (string, error) {
	if base == "" {
		base = "post"
	}

	candidate := base
	for i := 2; ; i++ {
		var exists bool
		if err := s.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM posts WHERE slug = $1)`, candidate).Scan(&exists); err != nil {
			return "", fmt.Errorf("check slug: %w", err)
		}
		if !exists {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
}

func collectPosts(rows *sql.Rows) ([]models.Post, error) {
	var posts []models.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		posts = append(posts, *p)
	}
	return posts, rows.Err()
}
