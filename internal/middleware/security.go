// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import "net/http"

// SecureHeaders stamps every response with the headers a JSON API should
// carry even though it renders no HTML: nosniff keeps browsers from
// reinterpreting feed payloads, DENY stops the endpoints from being
// framed, and the rest keep referrer and interest-cohort data from
// leaking when a response is opened directly in a browser.
func SecureHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()

		h.Set("X-Content-Type-Options", "nosniff")

		// Nothing here is meant to be embedded anywhere.
		h.Set("X-Frame-Options", "DENY")

		// Legacy XSS filter off; it misfires on JSON bodies.
		h.Set("X-XSS-Protection", "0")

		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		h.Set("Permissions-Policy", "interest-cohort=()")

		next.ServeHTTP(w, r)
	})
}
