// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package lifecycle is the single authority for post status changes.
// It validates a requested transition against the transition table,
// commits it with a compare-and-swap write, and triggers best-effort
// notifications for moderation outcomes.
package lifecycle

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"inkpress/internal/models"
)

// notifyTimeout bounds the post-commit notification call. The transition
// is already committed by then; a slow gateway must not hold anything up.
const notifyTimeout = 15 * time.Second

// Actor is the identity and role attempting a transition.
type Actor struct {
	ID   uuid.UUID
	Role models.Role
}

// CanModerate returns true if the actor may approve or reject posts.
func (a Actor) CanModerate() bool {
	return a.Role == models.RoleModerator || a.Role == models.RoleAdmin
}

// Store is the persistence the lifecycle depends on. Implementations must
// make CompareAndSet conditional on the status still matching expected,
// returning ErrConflict when it no longer does and ErrNotFound when the
// post is gone. Get returns (nil, nil) for an unknown id.
type Store interface {
	Get(ctx context.Context, id uuid.UUID) (*models.Post, error)
	CompareAndSet(ctx context.Context, id uuid.UUID, expected models.PostStatus, change models.StatusChange) (*models.Post, error)
}

// Notifier delivers transition notifications. Calls happen after the
// status write has committed; failures are logged, never propagated.
type Notifier interface {
	Notify(ctx context.Context, post *models.Post, newStatus models.PostStatus, reason string) error
}

// Service validates and applies post status transitions.
type Service struct {
	store    Store
	notifier Notifier
}

// NewService creates a lifecycle service. notifier may be nil when no
// gateway is configured.
func NewService(store Store, notifier Notifier) *Service {
	return &Service{store: store, notifier: notifier}
}

// RequestTransition applies a status change on behalf of an actor.
//
// The post is always read fresh from the store — never trusted from a
// client-held copy — and the write is conditioned on the status still
// matching the value read here. Validation order: existence, legality of
// the (from, to) pair, actor authorization, rejection reason.
func (s *Service) RequestTransition(ctx context.Context, postID uuid.UUID, target models.PostStatus, actor Actor, reason string) (*models.Post, error) {
	post, err := s.store.Get(ctx, postID)
	if err != nil {
		return nil, storageErr("get", err)
	}
	if post == nil {
		return nil, ErrNotFound
	}

	tr, ok := allowedTransition(post.Status, target)
	if !ok {
		return nil, &IllegalTransitionError{From: post.Status, To: target}
	}

	if err := authorize(tr, post, actor); err != nil {
		return nil, err
	}

	reason = strings.TrimSpace(reason)
	if target == models.StatusRejected && reason == "" {
		return nil, ErrMissingReason
	}

	change := buildChange(post, target, reason)

	updated, err := s.store.CompareAndSet(ctx, postID, post.Status, change)
	if err != nil {
		if err == ErrConflict || err == ErrNotFound {
			return nil, err
		}
		return nil, storageErr("compare-and-set", err)
	}

	// Moderation outcomes notify the author. The write is committed;
	// gateway failures are observed but never reverted or retried here.
	if s.notifier != nil && (target == models.StatusApproved || target == models.StatusRejected) {
		go func(p models.Post) {
			nctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
			defer cancel()
			if err := s.notifier.Notify(nctx, &p, target, reason); err != nil {
				slog.Warn("transition notification failed",
					"post_id", p.ID,
					"status", target,
					"error", err,
				)
			}
		}(*updated)
	}

	return updated, nil
}

// authorize checks the actor against the transition's actor class.
func authorize(tr transition, post *models.Post, actor Actor) error {
	switch tr.actor {
	case byOwner:
		if actor.ID != post.AuthorID {
			return ErrUnauthorized
		}
	case byModerator:
		if !actor.CanModerate() {
			return ErrUnauthorized
		}
	case byOwnerOrModerator:
		if actor.ID != post.AuthorID && !actor.CanModerate() {
			return ErrUnauthorized
		}
	}
	return nil
}

// buildChange computes the fields the transition writes. Entering rejected
// stores the reason, entering archived records the source status, and both
// are cleared on the way out.
func buildChange(post *models.Post, target models.PostStatus, reason string) models.StatusChange {
	change := models.StatusChange{Status: target}

	// Unarchive restores the status recorded when the post was archived,
	// regardless of the nominal target. Posts archived before that column
	// existed fall back to draft.
	if post.Status == models.StatusArchived && target != models.StatusDeleted {
		if post.ArchivedFrom != nil {
			change.Status = *post.ArchivedFrom
		} else {
			change.Status = models.StatusDraft
		}
	}

	if target == models.StatusRejected {
		change.RejectedReason = &reason
	}
	if target == models.StatusArchived {
		from := post.Status
		change.ArchivedFrom = &from
	}

	return change
}

// storageErr wraps infrastructure failures, passing through errors that
// are already part of the lifecycle taxonomy.
func storageErr(op string, err error) error {
	return &StorageError{Op: op, Err: err}
}
