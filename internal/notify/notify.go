// Package notify delivers transition notifications to an external push
// gateway. Delivery is advisory: the post status write has already
// committed by the time anything here runs, and failures are recorded
// but never propagated back into the lifecycle.
package notify

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"inkpress/internal/models"
)

// Gateway sends notifications about post transitions.
type Gateway interface {
	// Notify tells the post's author about a moderation outcome.
	Notify(ctx context.Context, post *models.Post, newStatus models.PostStatus, reason string) error

	// Broadcast fans a newly approved post out to newsletter subscribers.
	Broadcast(ctx context.Context, post *models.Post, emails []string) error
}

// DeliveryLog records delivery attempts. Satisfied by
// store.NotificationLogStore; a nil log disables recording.
type DeliveryLog interface {
	Log(ctx context.Context, postID uuid.UUID, channel, outcome, detail string)
}

// NullGateway acknowledges everything without delivering. Used when no
// push endpoint is configured so the rest of the app needs no nil checks.
type NullGateway struct{}

func (NullGateway) Notify(ctx context.Context, post *models.Post, newStatus models.PostStatus, reason string) error {
	slog.Debug("notification skipped, no gateway configured",
		"post_id", post.ID,
		"status", newStatus,
	)
	return nil
}

func (NullGateway) Broadcast(ctx context.Context, post *models.Post, emails []string) error {
	slog.Debug("broadcast skipped, no gateway configured",
		"post_id", post.ID,
		"recipients", len(emails),
	)
	return nil
}
