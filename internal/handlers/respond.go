// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers contains the HTTP handlers for the Inkpress API.
// Handlers are grouped by concern (author, moderation, public) and
// receive their dependencies through the handler struct.
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"inkpress/internal/lifecycle"
)

// apiError is the JSON body for all non-2xx responses. Retryable tells
// clients whether re-submitting the same request can succeed.
type apiError struct {
	Error     string `json:"error"`
	Retryable bool   `json:"retryable"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, apiError{Error: msg})
}

// respondLifecycleErr maps the lifecycle error taxonomy onto HTTP status
// codes. Validation failures carry the specific problem; infrastructure
// failures are reported without internal detail.
func respondLifecycleErr(w http.ResponseWriter, r *http.Request, err error) {
	var illegal *lifecycle.IllegalTransitionError
	var storage *lifecycle.StorageError

	switch {
	case errors.Is(err, lifecycle.ErrNotFound):
		writeError(w, http.StatusNotFound, "post not found")
	case errors.Is(err, lifecycle.ErrUnauthorized):
		writeError(w, http.StatusForbidden, "not authorized for this transition")
	case errors.Is(err, lifecycle.ErrMissingReason):
		writeError(w, http.StatusBadRequest, "rejection requires a reason")
	case errors.Is(err, lifecycle.ErrConflict):
		writeJSON(w, http.StatusConflict, apiError{
			Error:     "post changed concurrently, re-fetch and retry",
			Retryable: true,
		})
	case errors.As(err, &illegal):
		writeError(w, http.StatusUnprocessableEntity,
			fmt.Sprintf("cannot move a %s post to %s", illegal.From, illegal.To))
	case errors.As(err, &storage):
		slog.Error("storage failure", "path", r.URL.Path, "op", storage.Op, "error", storage.Err)
		writeJSON(w, http.StatusServiceUnavailable, apiError{
			Error:     "storage temporarily unavailable",
			Retryable: true,
		})
	default:
		slog.Error("handler error", "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// decodeJSON reads a request body into dst, rejecting unknown fields.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}
