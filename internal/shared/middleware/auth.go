package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"doughjo/internal/domain/session"
	"doughjo/internal/shared/auth"
)

type contextKey string

// UserIDKey and SessionIDKey carry the authenticated identity through the
// request context.
const (
	UserIDKey    contextKey = "userID"
	SessionIDKey contextKey = "sessionID"
)

// Auth validates the JWT and records the request as session activity. A
// token whose session has expired or been superseded is rejected even when
// the JWT itself is still valid.
func Auth(jwtService *auth.JWT, sessions *session.Manager) func(http.Handler) http.Handler {
	return authenticate(jwtService, sessions, true)
}

// AuthPassive validates the JWT and session without counting the request as
// activity. Used for session status polling, which must not keep an idle
// session alive.
func AuthPassive(jwtService *auth.JWT, sessions *session.Manager) func(http.Handler) http.Handler {
	return authenticate(jwtService, sessions, false)
}

func authenticate(jwtService *auth.JWT, sessions *session.Manager, touch bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractToken(r)
			if token == "" {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			claims, err := jwtService.Validate(token)
			if err != nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			if touch {
				err = sessions.Touch(claims.SessionID)
			} else {
				_, err = sessions.Status(claims.SessionID)
			}
			if err != nil {
				if errors.Is(err, session.ErrSessionExpired) || errors.Is(err, session.ErrSessionNotFound) {
					http.Error(w, "Session expired", http.StatusUnauthorized)
					return
				}
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), UserIDKey, claims.UserID)
			ctx = context.WithValue(ctx, SessionIDKey, claims.SessionID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractToken pulls the JWT from the access_token cookie or the
// Authorization header.
func extractToken(r *http.Request) string {
	if cookie, err := r.Cookie("access_token"); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return ""
}
