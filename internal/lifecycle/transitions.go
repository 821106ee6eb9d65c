// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// transitions.go is the single source of truth for which status changes
// are legal and who may perform them. Nothing outside this file encodes
// status pairs.
package lifecycle

import "inkpress/internal/models"

// actorClass describes who may perform a given transition.
type actorClass int

const (
	// byOwner: only the post's owning author.
	byOwner actorClass = iota
	// byModerator: any user with moderator capability.
	byModerator
	// byOwnerOrModerator: the owning author or any moderator.
	byOwnerOrModerator
)

// transition is one legal edge in the lifecycle graph.
type transition struct {
	to    models.PostStatus
	actor actorClass
}

// transitionTable maps each source status to its legal targets.
// Soft-delete is reachable from every non-deleted status; restore from
// deleted always lands on draft (archived is the state that remembers
// where it came from, deleted is not).
var transitionTable = map[models.PostStatus][]transition{
	models.StatusDraft: {
		{models.StatusPendingReview, byOwner},
		{models.StatusArchived, byOwner},
		{models.StatusDeleted, byOwnerOrModerator},
	},
	models.StatusPendingReview: {
		{models.StatusApproved, byModerator},
		{models.StatusRejected, byModerator},
		{models.StatusDeleted, byOwnerOrModerator},
	},
	models.StatusRejected: {
		{models.StatusPendingReview, byOwner},
		{models.StatusDeleted, byOwnerOrModerator},
	},
	models.StatusApproved: {
		{models.StatusPrivate, byOwner},
		{models.StatusArchived, byOwner},
		{models.StatusDeleted, byOwnerOrModerator},
	},
	models.StatusPrivate: {
		{models.StatusPendingReview, byOwner},
		{models.StatusArchived, byOwner},
		{models.StatusDeleted, byOwnerOrModerator},
	},
	models.StatusArchived: {
		// Unarchive: the nominal target must be a restorable visible
		// status; the committed status is the recorded archived_from.
		{models.StatusDraft, byOwner},
		{models.StatusPrivate, byOwner},
		{models.StatusApproved, byOwner},
		{models.StatusDeleted, byOwnerOrModerator},
	},
	models.StatusDeleted: {
		{models.StatusDraft, byOwner}, // restore from trash
	},
}

// allowedTransition looks up the rule for a (from, to) pair.
func allowedTransition(from, to models.PostStatus) (transition, bool) {
	for _, tr := range transitionTable[from] {
		if tr.to == to {
			return tr, true
		}
	}
	return transition{}, false
}

// AllowedTargets returns the legal next statuses from a given status.
// Consumers use it to decide which action buttons to offer.
func AllowedTargets(from models.PostStatus) []models.PostStatus {
	edges := transitionTable[from]
	targets := make([]models.PostStatus, 0, len(edges))
	for _, tr := range edges {
		targets = append(targets, tr.to)
	}
	return targets
}
