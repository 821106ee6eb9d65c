// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"inkpress/internal/cache"
	"inkpress/internal/lifecycle"
	"inkpress/internal/middleware"
	"inkpress/internal/models"
	"inkpress/internal/store"
)

// Author groups handlers for an author working on their own posts:
// drafting, editing, listing, and requesting status transitions.
type Author struct {
	posts     *store.PostStore
	lifecycle *lifecycle.Service
	feedCache *cache.FeedCache
}

// NewAuthor creates the author handler group. feedCache may be nil when
// Valkey is not configured.
func NewAuthor(posts *store.PostStore, lc *lifecycle.Service, feedCache *cache.FeedCache) *Author {
	return &Author{posts: posts, lifecycle: lc, feedCache: feedCache}
}

type postInput struct {
	Title   string `json:"title"`
	Body    string `json:"body"`
	Excerpt string `json:"excerpt"`
}

// CreatePost handles POST /api/posts. New posts always start as drafts.
func (h *Author) CreatePost(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.ActorFromCtx(r.Context())

	var in postInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if msg := validatePost(in.Title, in.Body, in.Excerpt); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	post := &models.Post{
		AuthorID: actor.ID,
		Title:    in.Title,
		Body:     in.Body,
	}
	if in.Excerpt != "" {
		post.Excerpt = &in.Excerpt
	}

	created, err := h.posts.Create(r.Context(), post)
	if err != nil {
		respondLifecycleErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// GetPost handles GET /api/posts/{id}. Authors see their own posts in any
// status; moderators may inspect anyone's.
func (h *Author) GetPost(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.ActorFromCtx(r.Context())

	post, ok := h.loadPost(w, r)
	if !ok {
		return
	}
	if post.AuthorID != actor.ID && !actor.CanModerate() {
		writeError(w, http.StatusForbidden, "not your post")
		return
	}
	writeJSON(w, http.StatusOK, post)
}

// UpdatePost handles PUT /api/posts/{id}. Only the owner may edit, and
// only while the post's status permits editing. Approved, rejected, and
// trashed posts must be moved to an editable status first.
func (h *Author) UpdatePost(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.ActorFromCtx(r.Context())

	post, ok := h.loadPost(w, r)
	if !ok {
		return
	}
	if post.AuthorID != actor.ID {
		writeError(w, http.StatusForbidden, "not your post")
		return
	}
	if !lifecycle.IsEditable(post.Status) {
		writeError(w, http.StatusUnprocessableEntity,
			fmt.Sprintf("a %s post cannot be edited", post.Status))
		return
	}

	var in postInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if msg := validatePost(in.Title, in.Body, in.Excerpt); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	post.Title = in.Title
	post.Body = in.Body
	post.Excerpt = nil
	if in.Excerpt != "" {
		post.Excerpt = &in.Excerpt
	}

	updated, err := h.posts.Update(r.Context(), post)
	if err != nil {
		respondLifecycleErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// ListPosts handles GET /api/posts?status=. It returns the actor's own
// posts filtered by the optional status query, alongside per-status
// counts for the workbench sidebar. Counts come from one fetch spanning
// the trash, so the badges hold the same values in every view; trashed
// posts themselves only appear under the deleted filter.
func (h *Author) ListPosts(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.ActorFromCtx(r.Context())

	filter := r.URL.Query().Get("status")
	if filter == "" {
		filter = lifecycle.StatusFilterAll
	}
	if filter != lifecycle.StatusFilterAll && !models.ValidStatus(models.PostStatus(filter)) {
		writeError(w, http.StatusBadRequest, "unknown status filter")
		return
	}

	posts, err := h.posts.ListByAuthor(r.Context(), actor.ID, true)
	if err != nil {
		respondLifecycleErr(w, r, err)
		return
	}

	visible := lifecycle.FilterByStatus(posts, filter)
	if filter == lifecycle.StatusFilterAll {
		visible = withoutDeleted(visible)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"posts":  visible,
		"counts": lifecycle.CountByStatus(posts),
	})
}

// withoutDeleted drops trashed posts from a listing, preserving order.
func withoutDeleted(posts []models.Post) []models.Post {
	kept := make([]models.Post, 0, len(posts))
	for _, p := range posts {
		if !p.IsDeleted() {
			kept = append(kept, p)
		}
	}
	return kept
}

type transitionInput struct {
	Status string `json:"status"`
	Reason string `json:"reason"`
}

// Transition handles POST /api/posts/{id}/transition. The lifecycle
// service owns all validation; this handler only parses, delegates, and
// keeps the public feed cache honest afterwards.
func (h *Author) Transition(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.ActorFromCtx(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid post id")
		return
	}

	var in transitionInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	target := models.PostStatus(in.Status)
	if !models.ValidStatus(target) {
		writeError(w, http.StatusBadRequest, "unknown target status")
		return
	}

	updated, err := h.lifecycle.RequestTransition(r.Context(), id, target, actor, in.Reason)
	if err != nil {
		respondLifecycleErr(w, r, err)
		return
	}

	h.invalidateFeed(r.Context(), updated)
	writeJSON(w, http.StatusOK, updated)
}

// Dashboard handles GET /api/dashboard: per-status post counts for the
// signed-in author, computed by the database.
func (h *Author) Dashboard(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.ActorFromCtx(r.Context())

	counts, err := h.posts.CountByStatusForAuthor(r.Context(), actor.ID)
	if err != nil {
		respondLifecycleErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"counts": counts})
}

// loadPost parses {id} and fetches the post, writing the error response
// itself when either step fails.
func (h *Author) loadPost(w http.ResponseWriter, r *http.Request) (*models.Post, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid post id")
		return nil, false
	}
	post, err := h.posts.Get(r.Context(), id)
	if err != nil {
		respondLifecycleErr(w, r, err)
		return nil, false
	}
	if post == nil {
		writeError(w, http.StatusNotFound, "post not found")
		return nil, false
	}
	return post, true
}

// invalidateFeed drops cached public views for a post after any
// transition, whether or not the post was publicly visible before it.
func (h *Author) invalidateFeed(ctx context.Context, post *models.Post) {
	if h.feedCache == nil {
		return
	}
	h.feedCache.InvalidatePost(ctx, post.Slug)
}
