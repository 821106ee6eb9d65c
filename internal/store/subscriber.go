package store

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"fmt"

	"inkpress/internal/models"
)

const subscriberColumns = `id, email, confirmed, unsubscribe_token, created_at`

// SubscriberStore handles newsletter subscriber persistence.
type SubscriberStore struct {
	db *sql.DB
}

// NewSubscriberStore creates a new SubscriberStore.
func NewSubscriberStore(db *sql.DB) *SubscriberStore {
	return &SubscriberStore{db: db}
}

func scanSubscriber(s scanner) (*models.Subscriber, error) {
	sub := &models.Subscriber{}
	err := s.Scan(&sub.ID, &sub.Email, &sub.Confirmed, &sub.UnsubscribeToken, &sub.CreatedAt)
	if err != nil {
		return nil, err
	}
	return sub, nil
}

// Subscribe registers an email address, generating an unsubscribe token.
// Re-subscribing an existing address is a no-op that returns the existing
// row, so the endpoint stays idempotent and leaks nothing.
func (s *SubscriberStore) Subscribe(ctx context.Context, email string) (*models.Subscriber, error) {
	token, err := newToken()
	if err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `
		INSERT INTO subscribers (email, confirmed, unsubscribe_token)
		VALUES ($1, FALSE, $2)
		ON CONFLICT (email) DO UPDATE SET email = EXCLUDED.email
		RETURNING `+subscriberColumns,
		email, token,
	)

	sub, err := scanSubscriber(row)
	if err != nil {
		return nil, fmt.Errorf("subscribe: %w", err)
	}
	return sub, nil
}

// Confirm marks a subscriber as confirmed by its token. Returns nil if
// no subscriber matches.
func (s *SubscriberStore) Confirm(ctx context.Context, token string) (*models.Subscriber, error) {
	row := s.db.QueryRowContext(ctx, `
		UPDATE subscribers SET confirmed = TRUE
		WHERE unsubscribe_token = $1
		RETURNING `+subscriberColumns,
		token,
	)

	sub, err := scanSubscriber(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("confirm subscriber: %w", err)
	}
	return sub, nil
}

// Unsubscribe removes the subscriber holding the given token. Returns
// true if a row was deleted.
func (s *SubscriberStore) Unsubscribe(ctx context.Context, token string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM subscribers WHERE unsubscribe_token = $1`, token)
	if err != nil {
		return false, fmt.Errorf("unsubscribe: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("unsubscribe rows affected: %w", err)
	}
	return n > 0, nil
}

// ListConfirmed returns the emails of all confirmed subscribers, used for
// the broadcast fan-out when a post is approved.
func (s *SubscriberStore) ListConfirmed(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT email FROM subscribers WHERE confirmed ORDER BY created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("list confirmed subscribers: %w", err)
	}
	defer rows.Close()

	var emails []string
	for rows.Next() {
		var email string
		if err := rows.Scan(&email); err != nil {
			return nil, fmt.Errorf("scan subscriber email: %w", err)
		}
		emails = append(emails, email)
	}
	return emails, rows.Err()
}

// newToken generates an opaque unsubscribe token.
func newToken() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
