// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"inkpress/internal/lifecycle"
	"inkpress/internal/models"
)

// contextKey is an unexported type for context keys to prevent collisions.
type contextKey string

const (
	// actorKey is the context key for the authenticated actor.
	actorKey contextKey = "actor"
)

// Identity reads the verified identity injected by the upstream auth
// proxy (X-User-Id and X-User-Role headers) and stores it in the request
// context. Authentication itself happens upstream; this middleware does
// NOT enforce a user being present — it just loads one if the headers
// are well-formed.
func Identity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(r.Header.Get("X-User-Id"))
		role := models.Role(r.Header.Get("X-User-Role"))

		if err == nil && models.ValidRole(role) {
			actor := lifecycle.Actor{ID: id, Role: role}
			ctx := context.WithValue(r.Context(), actorKey, actor)
			r = r.WithContext(ctx)
		}

		next.ServeHTTP(w, r)
	})
}

// RequireUser returns 401 when no identity was loaded.
// Must be applied after Identity in the middleware chain.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := actorFrom(r.Context()); !ok {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireModerator returns 403 unless the actor carries moderator
// capability. Must be applied after Identity.
func RequireModerator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, ok := actorFrom(r.Context())
		if !ok {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		if !actor.CanModerate() {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ActorFromCtx extracts the actor from the request context. The second
// return is false for anonymous requests.
func ActorFromCtx(ctx context.Context) (lifecycle.Actor, bool) {
	return actorFrom(ctx)
}

func actorFrom(ctx context.Context) (lifecycle.Actor, bool) {
	actor, ok := ctx.Value(actorKey).(lifecycle.Actor)
	return actor, ok
}
