// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router sets up all HTTP routes and middleware chains for the
// Inkpress API. It organizes routes into public, author, and moderation
// groups with appropriate middleware stacks.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"inkpress/internal/handlers"
	"inkpress/internal/middleware"
)

// New creates and returns the configured Chi router with all middleware
// and route groups wired up. contactLimiter throttles the unauthenticated
// write endpoints; pass nil to disable throttling (tests do).
func New(author *handlers.Author, moderation *handlers.Moderation, public *handlers.Public, contactLimiter *middleware.RateLimiter) chi.Router {
	r := chi.NewRouter()

	// Global middleware — applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)
	r.Use(middleware.Identity)

	// Health check — no identity required.
	r.Get("/health", healthHandler)

	r.Route("/api", func(r chi.Router) {
		// Public read surface.
		r.Get("/feed", public.Feed)
		r.Get("/feed/{slug}", public.PostBySlug)

		// Public write surface — rate limited.
		r.Group(func(r chi.Router) {
			if contactLimiter != nil {
				r.Use(contactLimiter.Middleware)
			}
			r.Post("/contact", public.Contact)
			r.Post("/newsletter/subscribe", public.Subscribe)
			r.Post("/newsletter/unsubscribe", public.Unsubscribe)
		})
		r.Get("/newsletter/confirm", public.ConfirmSubscription)

		// Author workbench — any signed-in user.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireUser)

			r.Get("/dashboard", author.Dashboard)
			r.Route("/posts", func(r chi.Router) {
				r.Post("/", author.CreatePost)
				r.Get("/", author.ListPosts)
				r.Get("/{id}", author.GetPost)
				r.Put("/{id}", author.UpdatePost)
				r.Post("/{id}/transition", author.Transition)
			})
		})

		// Moderation — moderators and admins only.
		r.Route("/moderation", func(r chi.Router) {
			r.Use(middleware.RequireModerator)

			r.Get("/queue", moderation.Queue)
			r.Post("/posts/{id}/approve", moderation.Approve)
			r.Post("/posts/{id}/reject", moderation.Reject)

			r.Get("/contacts", moderation.Contacts)
			r.Post("/contacts/{id}/status", moderation.TriageContact)

			r.Get("/subscribers", moderation.Subscribers)
			r.Get("/notifications", moderation.Notifications)
			r.Get("/users", moderation.Users)
		})
	})

	return r
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
