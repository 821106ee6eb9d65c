// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"inkpress/internal/cache"
	"inkpress/internal/lifecycle"
	"inkpress/internal/middleware"
	"inkpress/internal/models"
	"inkpress/internal/notify"
	"inkpress/internal/store"
)

// broadcastTimeout bounds the post-approval newsletter broadcast.
const broadcastTimeout = 30 * time.Second

// Moderation groups handlers behind the moderator role: the review
// queue, approve/reject decisions, contact triage, and the user,
// subscriber and notification views.
type Moderation struct {
	posts       *store.PostStore
	contacts    *store.ContactStore
	subscribers *store.SubscriberStore
	notifLog    *store.NotificationLogStore
	users       *store.UserStore
	lifecycle   *lifecycle.Service
	gateway     notify.Gateway
	feedCache   *cache.FeedCache
}

// NewModeration creates the moderation handler group. gateway and
// feedCache may be nil when the corresponding backends are not configured.
func NewModeration(posts *store.PostStore, contacts *store.ContactStore, subscribers *store.SubscriberStore, notifLog *store.NotificationLogStore, users *store.UserStore, lc *lifecycle.Service, gateway notify.Gateway, feedCache *cache.FeedCache) *Moderation {
	return &Moderation{
		posts:       posts,
		contacts:    contacts,
		subscribers: subscribers,
		notifLog:    notifLog,
		users:       users,
		lifecycle:   lc,
		gateway:     gateway,
		feedCache:   feedCache,
	}
}

// Queue handles GET /api/moderation/queue: posts waiting for review,
// oldest submission first.
func (h *Moderation) Queue(w http.ResponseWriter, r *http.Request) {
	posts, err := h.posts.ListByStatus(r.Context(), models.StatusPendingReview)
	if err != nil {
		respondLifecycleErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"posts": posts})
}

// Approve handles POST /api/moderation/posts/{id}/approve. On success the
// post becomes publicly visible and confirmed subscribers are told about
// it, without holding up the response.
func (h *Moderation) Approve(w http.ResponseWriter, r *http.Request) {
	updated, ok := h.decide(w, r, models.StatusApproved, "")
	if !ok {
		return
	}
	h.broadcast(updated)
	writeJSON(w, http.StatusOK, updated)
}

type rejectInput struct {
	Reason string `json:"reason"`
}

// Reject handles POST /api/moderation/posts/{id}/reject. The reason is
// mandatory and is stored on the post for the author to read.
func (h *Moderation) Reject(w http.ResponseWriter, r *http.Request) {
	var in rejectInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if len(in.Reason) > maxReasonLen {
		writeError(w, http.StatusBadRequest, "Reason is too long (max 2,000 characters).")
		return
	}

	updated, ok := h.decide(w, r, models.StatusRejected, in.Reason)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// decide runs a moderation transition for the {id} post and invalidates
// the feed cache. Error responses are written here; ok reports whether
// the transition committed.
func (h *Moderation) decide(w http.ResponseWriter, r *http.Request, target models.PostStatus, reason string) (*models.Post, bool) {
	actor, _ := middleware.ActorFromCtx(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid post id")
		return nil, false
	}

	updated, err := h.lifecycle.RequestTransition(r.Context(), id, target, actor, reason)
	if err != nil {
		respondLifecycleErr(w, r, err)
		return nil, false
	}

	if h.feedCache != nil {
		h.feedCache.InvalidatePost(r.Context(), updated.Slug)
	}
	return updated, true
}

// broadcast announces a newly approved post to confirmed subscribers.
// The approval is already committed; delivery problems are logged and
// never surface to the moderator.
func (h *Moderation) broadcast(post *models.Post) {
	if h.gateway == nil {
		return
	}
	go func(p models.Post) {
		ctx, cancel := context.WithTimeout(context.Background(), broadcastTimeout)
		defer cancel()

		emails, err := h.subscribers.ListConfirmed(ctx)
		if err != nil {
			slog.Warn("broadcast skipped, subscriber list unavailable", "post_id", p.ID, "error", err)
			return
		}
		if err := h.gateway.Broadcast(ctx, &p, emails); err != nil {
			slog.Warn("subscriber broadcast failed", "post_id", p.ID, "recipients", len(emails), "error", err)
		}
	}(*post)
}

// Contacts handles GET /api/moderation/contacts?status=. Defaults to the
// open inbox.
func (h *Moderation) Contacts(w http.ResponseWriter, r *http.Request) {
	status := models.ContactStatus(r.URL.Query().Get("status"))
	if status == "" {
		status = models.ContactStatusOpen
	}
	if !models.ValidContactStatus(status) {
		writeError(w, http.StatusBadRequest, "unknown contact status")
		return
	}

	msgs, err := h.contacts.List(r.Context(), status)
	if err != nil {
		respondLifecycleErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"messages": msgs})
}

type contactTriageInput struct {
	Status string `json:"status"`
}

// TriageContact handles POST /api/moderation/contacts/{id}/status,
// moving a message between open, resolved, and spam.
func (h *Moderation) TriageContact(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid message id")
		return
	}

	var in contactTriageInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	status := models.ContactStatus(in.Status)
	if !models.ValidContactStatus(status) {
		writeError(w, http.StatusBadRequest, "unknown contact status")
		return
	}

	msg, err := h.contacts.UpdateStatus(r.Context(), id, status)
	if err != nil {
		respondLifecycleErr(w, r, err)
		return
	}
	if msg == nil {
		writeError(w, http.StatusNotFound, "message not found")
		return
	}
	writeJSON(w, http.StatusOK, msg)
}

// Subscribers handles GET /api/moderation/subscribers: confirmed
// newsletter recipients.
func (h *Moderation) Subscribers(w http.ResponseWriter, r *http.Request) {
	emails, err := h.subscribers.ListConfirmed(r.Context())
	if err != nil {
		respondLifecycleErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"subscribers": emails})
}

// Users handles GET /api/moderation/users: every registered account,
// newest first, for the staff roster.
func (h *Moderation) Users(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context())
	if err != nil {
		respondLifecycleErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"users": users})
}

// Notifications handles GET /api/moderation/notifications?limit=: the
// recent delivery log for debugging gateway trouble.
func (h *Moderation) Notifications(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 500 {
			writeError(w, http.StatusBadRequest, "limit must be between 1 and 500")
			return
		}
		limit = n
	}

	entries, err := h.notifLog.RecentEntries(r.Context(), limit)
	if err != nil {
		respondLifecycleErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": entries})
}
