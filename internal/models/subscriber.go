package models

import (
	"time"

	"github.com/google/uuid"
)

// Subscriber is a newsletter subscriber. New posts that get approved are
// broadcast to confirmed subscribers.
type Subscriber struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Confirmed bool      `json:"confirmed"`
	// UnsubscribeToken is an opaque token embedded in newsletter emails so
	// recipients can unsubscribe without logging in.
	UnsubscribeToken string    `json:"-"`
	CreatedAt        time.Time `json:"created_at"`
}
