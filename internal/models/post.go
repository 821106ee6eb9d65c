// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// PostStatus represents the lifecycle state of a post. It is a closed
// enumeration — a post holds exactly one of these values at any time.
type PostStatus string

const (
	StatusDraft         PostStatus = "draft"
	StatusPendingReview PostStatus = "pending_review"
	StatusApproved      PostStatus = "approved"
	StatusRejected      PostStatus = "rejected"
	StatusPrivate       PostStatus = "private"
	StatusArchived      PostStatus = "archived"
	StatusDeleted       PostStatus = "deleted"
)

// AllStatuses lists every post status in display order. Used by the
// dashboard counts and by status validation.
var AllStatuses = []PostStatus{
	StatusDraft,
	StatusPendingReview,
	StatusApproved,
	StatusRejected,
	StatusPrivate,
	StatusArchived,
	StatusDeleted,
}

// ValidStatus reports whether s is one of the enumerated post statuses.
func ValidStatus(s PostStatus) bool {
	for _, known := range AllStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// Post is a blog post under lifecycle control. Status changes go through
// the lifecycle service exclusively — nothing else writes the Status,
// RejectedReason, or ArchivedFrom columns.
type Post struct {
	ID       uuid.UUID  `json:"id"`
	AuthorID uuid.UUID  `json:"author_id"`
	Title    string     `json:"title"`
	Slug     string     `json:"slug"`
	Body     string     `json:"body"`
	Excerpt  *string    `json:"excerpt,omitempty"`
	Status   PostStatus `json:"status"`

	// RejectedReason holds the moderator-supplied reason while the post is
	// in rejected status. Cleared on any transition away from rejected.
	RejectedReason *string `json:"rejected_reason,omitempty"`

	// ArchivedFrom records the status the post held when it entered
	// archived, so unarchiving can restore it. Nil outside archived.
	ArchivedFrom *PostStatus `json:"archived_from,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// StatusChange describes the fields a lifecycle transition writes.
// A nil RejectedReason or ArchivedFrom clears the stored value — either
// is only meaningful in rejected / archived respectively.
type StatusChange struct {
	Status         PostStatus
	RejectedReason *string
	ArchivedFrom   *PostStatus
}

// IsPublic returns true if the post is publicly visible and indexable.
// Approved is the only public status.
func (p *Post) IsPublic() bool {
	return p.Status == StatusApproved
}

// IsDeleted returns true if the post is soft-deleted (in the trash).
func (p *Post) IsDeleted() bool {
	return p.Status == StatusDeleted
}
