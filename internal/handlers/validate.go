// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/mail"
	"strings"
	"unicode/utf8"
)

// Validation limits for post and contact form fields.
const (
	maxTitleLen   = 300
	maxBodyLen    = 100_000
	maxExcerptLen = 1_000
	maxNameLen    = 200
	maxSubjectLen = 300
	maxMessageLen = 10_000
	maxReasonLen  = 2_000
)

// validatePost checks post inputs and returns the first error found.
func validatePost(title, body, excerpt string) string {
	if strings.TrimSpace(title) == "" {
		return "Title is required."
	}
	if utf8.RuneCountInString(title) > maxTitleLen {
		return "Title is too long (max 300 characters)."
	}
	if strings.TrimSpace(body) == "" {
		return "Body is required."
	}
	if utf8.RuneCountInString(body) > maxBodyLen {
		return "Body is too long (max 100,000 characters)."
	}
	if utf8.RuneCountInString(excerpt) > maxExcerptLen {
		return "Excerpt is too long (max 1,000 characters)."
	}
	return ""
}

// validateContact checks contact form inputs and returns the first error found.
func validateContact(name, email, subject, body string) string {
	if strings.TrimSpace(name) == "" {
		return "Name is required."
	}
	if utf8.RuneCountInString(name) > maxNameLen {
		return "Name is too long (max 200 characters)."
	}
	if !validEmail(email) {
		return "A valid email address is required."
	}
	if utf8.RuneCountInString(subject) > maxSubjectLen {
		return "Subject is too long (max 300 characters)."
	}
	if strings.TrimSpace(body) == "" {
		return "Message is required."
	}
	if utf8.RuneCountInString(body) > maxMessageLen {
		return "Message is too long (max 10,000 characters)."
	}
	return ""
}

func validEmail(email string) bool {
	email = strings.TrimSpace(email)
	if email == "" || len(email) > 254 {
		return false
	}
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}
