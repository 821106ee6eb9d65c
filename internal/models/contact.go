// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// ContactStatus is the triage state of a contact-form submission.
type ContactStatus string

const (
	ContactStatusOpen     ContactStatus = "open"
	ContactStatusResolved ContactStatus = "resolved"
	ContactStatusSpam     ContactStatus = "spam"
)

// ValidContactStatus reports whether s is a known triage status.
func ValidContactStatus(s ContactStatus) bool {
	return s == ContactStatusOpen || s == ContactStatusResolved || s == ContactStatusSpam
}

// ContactMessage is a contact-form submission awaiting moderator triage.
type ContactMessage struct {
	ID        uuid.UUID     `json:"id"`
	Name      string        `json:"name"`
	Email     string        `json:"email"`
	Subject   string        `json:"subject"`
	Body      string        `json:"body"`
	Status    ContactStatus `json:"status"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}
