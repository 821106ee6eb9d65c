// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"inkpress/internal/cache"
	"inkpress/internal/models"
	"inkpress/internal/store"
)

// Public groups the unauthenticated endpoints: the published feed,
// single posts by slug, the contact form, and newsletter signup. Feed
// responses are served from the Valkey cache when warm.
type Public struct {
	posts       *store.PostStore
	contacts    *store.ContactStore
	subscribers *store.SubscriberStore
	feedCache   *cache.FeedCache
}

// NewPublic creates the public handler group. feedCache may be nil when
// Valkey is not configured.
func NewPublic(posts *store.PostStore, contacts *store.ContactStore, subscribers *store.SubscriberStore, feedCache *cache.FeedCache) *Public {
	return &Public{posts: posts, contacts: contacts, subscribers: subscribers, feedCache: feedCache}
}

// feedItem is the public projection of a post. Body is included for
// single-post responses and omitted from the feed listing.
type feedItem struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Slug      string    `json:"slug"`
	Excerpt   *string   `json:"excerpt,omitempty"`
	Body      string    `json:"body,omitempty"`
	Author    string    `json:"author_id"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toFeedItem(p *models.Post, withBody bool) feedItem {
	item := feedItem{
		ID:        p.ID.String(),
		Title:     p.Title,
		Slug:      p.Slug,
		Excerpt:   p.Excerpt,
		Author:    p.AuthorID.String(),
		UpdatedAt: p.UpdatedAt,
	}
	if withBody {
		item.Body = p.Body
	}
	return item
}

// Feed handles GET /api/feed: all approved posts, newest first.
func (h *Public) Feed(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if h.feedCache != nil {
		if payload, ok := h.feedCache.Get(ctx, cache.FeedKey()); ok {
			w.Header().Set("Content-Type", "application/json; charset=utf-8")
			w.Write(payload)
			return
		}
	}

	posts, err := h.posts.ListPublished(ctx)
	if err != nil {
		respondLifecycleErr(w, r, err)
		return
	}

	items := make([]feedItem, 0, len(posts))
	for i := range posts {
		items = append(items, toFeedItem(&posts[i], false))
	}

	payload, err := json.Marshal(map[string]any{"posts": items})
	if err != nil {
		respondLifecycleErr(w, r, err)
		return
	}
	if h.feedCache != nil {
		h.feedCache.Set(ctx, cache.FeedKey(), payload)
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Write(payload)
}

// PostBySlug handles GET /api/feed/{slug}: a single approved post with
// its full body. Drafts, private, and archived posts 404 here no matter
// who asks.
func (h *Public) PostBySlug(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	slugValue := chi.URLParam(r, "slug")

	if h.feedCache != nil {
		if payload, ok := h.feedCache.Get(ctx, cache.SlugKey(slugValue)); ok {
			w.Header().Set("Content-Type", "application/json; charset=utf-8")
			w.Write(payload)
			return
		}
	}

	post, err := h.posts.FindPublishedBySlug(ctx, slugValue)
	if err != nil {
		respondLifecycleErr(w, r, err)
		return
	}
	if post == nil {
		writeError(w, http.StatusNotFound, "post not found")
		return
	}

	payload, err := json.Marshal(toFeedItem(post, true))
	if err != nil {
		respondLifecycleErr(w, r, err)
		return
	}
	if h.feedCache != nil {
		h.feedCache.Set(ctx, cache.SlugKey(slugValue), payload)
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Write(payload)
}

type contactInput struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Contact handles POST /api/contact. Messages land in the moderation
// inbox as open.
func (h *Public) Contact(w http.ResponseWriter, r *http.Request) {
	var in contactInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if msg := validateContact(in.Name, in.Email, in.Subject, in.Body); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	created, err := h.contacts.Create(r.Context(), &models.ContactMessage{
		Name:    strings.TrimSpace(in.Name),
		Email:   strings.TrimSpace(in.Email),
		Subject: strings.TrimSpace(in.Subject),
		Body:    in.Body,
	})
	if err != nil {
		respondLifecycleErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

type subscribeInput struct {
	Email string `json:"email"`
}

// Subscribe handles POST /api/newsletter/subscribe. Subscribing an
// address that is already on the list is not an error.
func (h *Public) Subscribe(w http.ResponseWriter, r *http.Request) {
	var in subscribeInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if !validEmail(in.Email) {
		writeError(w, http.StatusBadRequest, "A valid email address is required.")
		return
	}

	sub, err := h.subscribers.Subscribe(r.Context(), strings.ToLower(strings.TrimSpace(in.Email)))
	if err != nil {
		respondLifecycleErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, sub)
}

// ConfirmSubscription handles GET /api/newsletter/confirm?token=.
func (h *Public) ConfirmSubscription(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		writeError(w, http.StatusBadRequest, "token is required")
		return
	}

	sub, err := h.subscribers.Confirm(r.Context(), token)
	if err != nil {
		respondLifecycleErr(w, r, err)
		return
	}
	if sub == nil {
		writeError(w, http.StatusNotFound, "unknown confirmation token")
		return
	}
	writeJSON(w, http.StatusOK, sub)
}

// Unsubscribe handles POST /api/newsletter/unsubscribe?token=.
func (h *Public) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		writeError(w, http.StatusBadRequest, "token is required")
		return
	}

	removed, err := h.subscribers.Unsubscribe(r.Context(), token)
	if err != nil {
		respondLifecycleErr(w, r, err)
		return
	}
	if !removed {
		writeError(w, http.StatusNotFound, "unknown unsubscribe token")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "unsubscribed"})
}
