// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package lifecycle

import (
	"errors"
	"fmt"

	"inkpress/internal/models"
)

var (
	// ErrNotFound means the post id does not exist in the store.
	ErrNotFound = errors.New("lifecycle: post not found")

	// ErrUnauthorized means the actor lacks the role or ownership required
	// for the requested transition.
	ErrUnauthorized = errors.New("lifecycle: actor not authorized for transition")

	// ErrMissingReason means a rejection was attempted without a non-empty
	// reason. Retry with a reason supplied.
	ErrMissingReason = errors.New("lifecycle: rejection requires a reason")

	// ErrConflict means the post's status changed between read and write.
	// The caller should re-fetch and retry.
	ErrConflict = errors.New("lifecycle: post status changed concurrently")
)

// IllegalTransitionError reports a (from, to) pair that is not in the
// transition table. The attempted pair is carried for diagnostics.
type IllegalTransitionError struct {
	From models.PostStatus
	To   models.PostStatus
}

func (e *IllegalTransitionError) Error() string {
	return fmt.Sprintf("lifecycle: illegal transition %s -> %s", e.From, e.To)
}

// StorageError wraps a transient persistence failure. No partial write
// occurred, so the caller may safely retry with backoff.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("lifecycle: storage unavailable during %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// Retryable reports whether the caller may retry the operation. Conflicts
// are retryable after a re-fetch; storage failures after a backoff.
// Validation failures are not — the inputs must change first.
func Retryable(err error) bool {
	if errors.Is(err, ErrConflict) {
		return true
	}
	var se *StorageError
	return errors.As(err, &se)
}
