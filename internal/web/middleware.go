// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Emberhost Contributors

package web

import (
	"context"
	"net/http"

	"github.com/emberhost/emberhost/internal/auth"
)

type contextKey int

const sessionKey contextKey = iota

// requireSession rejects requests without a valid session cookie and
// stores the validated session in the request context for handlers.
func (s *Server) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(SessionCookie)
		if err != nil || cookie.Value == "" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Not signed in"})
			return
		}

		session, err := s.flow.ValidateSession(r.Context(), cookie.Value)
		if err != nil {
			s.clearSessionCookie(w)
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Not signed in"})
			return
		}

		ctx := context.WithValue(r.Context(), sessionKey, session)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// sessionFrom returns the session stored by requireSession. It panics
// if called outside a route wrapped by that middleware.
func sessionFrom(ctx context.Context) *auth.Session {
	return ctx.Value(sessionKey).(*auth.Session)
}
