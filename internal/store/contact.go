// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"inkpress/internal/models"
)

const contactColumns = `id, name, email, subject, body, status, created_at, updated_at`

// ContactStore handles contact-form submissions and their triage status.
type ContactStore struct {
	db *sql.DB
}

// NewContactStore creates a new ContactStore.
func NewContactStore(db *sql.DB) *ContactStore {
	return &ContactStore{db: db}
}

func scanContact(s scanner) (*models.ContactMessage, error) {
	m := &models.ContactMessage{}
	err := s.Scan(&m.ID, &m.Name, &m.Email, &m.Subject, &m.Body, &m.Status, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// Create inserts a new contact message in open status.
func (s *ContactStore) Create(ctx context.Context, msg *models.ContactMessage) (*models.ContactMessage, error) {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO contact_messages (name, email, subject, body, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+contactColumns,
		msg.Name, msg.Email, msg.Subject, msg.Body, models.ContactStatusOpen,
	)

	created, err := scanContact(row)
	if err != nil {
		return nil, fmt.Errorf("create contact message: %w", err)
	}
	return created, nil
}

// List returns contact messages, optionally filtered by triage status.
// Pass an empty status to list everything. Oldest open messages first so
// the triage queue surfaces what has waited longest.
func (s *ContactStore) List(ctx context.Context, status models.ContactStatus) ([]models.ContactMessage, error) {
	query := `SELECT ` + contactColumns + ` FROM contact_messages`
	var args []any
	if status != "" {
		query += ` WHERE status = $1`
		args = append(args, status)
	}
	query += ` ORDER BY created_at ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list contact messages: %w", err)
	}
	defer rows.Close()

	var msgs []models.ContactMessage
	for rows.Next() {
		m, err := scanContact(rows)
		if err != nil {
			return nil, fmt.Errorf("scan contact message: %w", err)
		}
		msgs = append(msgs, *m)
	}
	return msgs, rows.Err()
}

// UpdateStatus moves a message to a new triage status. Returns nil if the
// message does not exist.
func (s *ContactStore) UpdateStatus(ctx context.Context, id uuid.UUID, status models.ContactStatus) (*models.ContactMessage, error) {
	row := s.db.QueryRowContext(ctx, `
		UPDATE contact_messages
		SET status = $1, updated_at = NOW()
		WHERE id = $2
		RETURNING `+contactColumns,
		status, id,
	)

	updated, err := scanContact(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("update contact status: %w", err)
	}
	return updated, nil
}
