// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// notification_log.go records notification delivery attempts in the
// database for audit and debugging. Notifications are advisory — a failed
// delivery is visible here but never affects the post transition itself.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// NotificationLogStore handles notification delivery log operations.
type NotificationLogStore struct {
	db *sql.DB
}

// NewNotificationLogStore creates a new NotificationLogStore.
func NewNotificationLogStore(db *sql.DB) *NotificationLogStore {
	return &NotificationLogStore{db: db}
}

// Log records a delivery attempt. Best-effort: failures are logged, not
// returned, so delivery bookkeeping never breaks the calling path.
func (s *NotificationLogStore) Log(ctx context.Context, postID uuid.UUID, channel, outcome, detail string) {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO notification_log (post_id, channel, outcome, detail)
		VALUES ($1, $2, $3, $4)
	`, postID, channel, outcome, detail)
	if err != nil {
		slog.Warn("failed to log notification delivery",
			"post_id", postID,
			"channel", channel,
			"outcome", outcome,
			"error", err,
		)
		return
	}
	slog.Debug("notification delivery logged",
		"post_id", postID,
		"channel", channel,
		"outcome", outcome,
	)
}

// RecentEntries returns the most recent delivery attempts for the admin
// console. Limited to the specified count.
func (s *NotificationLogStore) RecentEntries(ctx context.Context, limit int) ([]NotificationLogEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, post_id, channel, outcome, detail, attempted_at
		FROM notification_log
		ORDER BY attempted_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query notification log: %w", err)
	}
	defer rows.Close()

	var entries []NotificationLogEntry
	for rows.Next() {
		var e NotificationLogEntry
		if err := rows.Scan(&e.ID, &e.PostID, &e.Channel, &e.Outcome, &e.Detail, &e.AttemptedAt); err != nil {
			return nil, fmt.Errorf("scan notification log: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// NotificationLogEntry represents a single delivery attempt.
type NotificationLogEntry struct {
	ID          int64
	PostID      uuid.UUID
	Channel     string
	Outcome     string
	Detail      string
	AttemptedAt time.Time
}
