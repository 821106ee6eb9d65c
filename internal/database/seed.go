package database

import (
	"database/sql"
	"fmt"
	"log/slog"
)

// Seed populates the database with initial development data: one
// moderator, one author, and a handful of posts spread across the
// lifecycle so the moderation queue and dashboard have something to show.
// No-op if users already exist.
func Seed(db *sql.DB) error {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		return fmt.Errorf("seed check users: %w", err)
	}

	if count > 0 {
		slog.Info("database already seeded, skipping")
		return nil
	}

	var moderatorID, authorID string
	err := db.QueryRow(`
		INSERT INTO users (email, display_name, role)
		VALUES ('moderator@inkpress.local', 'Moderator', 'moderator')
		RETURNING id
	`).Scan(&moderatorID)
	if err != nil {
		return fmt.Errorf("seed insert moderator: %w", err)
	}

	err = db.QueryRow(`
		INSERT INTO users (email, display_name, role)
		VALUES ('author@inkpress.local', 'First Author', 'author')
		RETURNING id
	`).Scan(&authorID)
	if err != nil {
		return fmt.Errorf("seed insert author: %w", err)
	}

	posts := []struct {
		title, slug, status string
		reason              sql.NullString
	}{
		{"Welcome to Inkpress", "welcome-to-inkpress", "approved", sql.NullString{}},
		{"Drafting in the open", "drafting-in-the-open", "draft", sql.NullString{}},
		{"Awaiting review", "awaiting-review", "pending_review", sql.NullString{}},
		{"Needs another pass", "needs-another-pass", "rejected", sql.NullString{String: "Please expand the introduction.", Valid: true}},
	}
	for _, p := range posts {
		_, err := db.Exec(`
			INSERT INTO posts (author_id, title, slug, body, status, rejected_reason)
			VALUES ($1, $2, $3, '<p>Sample content.</p>', $4, $5)
		`, authorID, p.title, p.slug, p.status, p.reason)
		if err != nil {
			return fmt.Errorf("seed insert post %q: %w", p.slug, err)
		}
	}

	slog.Info("database seeded with development data",
		"moderator", "moderator@inkpress.local",
		"author", "author@inkpress.local",
		"posts", len(posts),
	)

	return nil
}
