// Package middleware provides HTTP middleware for recruiter authentication.
package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// ContextKey is a typed key for context values to avoid collisions.
type ContextKey string

const recruiterIDKey ContextKey = "recruiterID"

// TokenValidator validates a bearer token and returns its claims.
type TokenValidator interface {
	ValidateToken(tokenString string) (RecruiterIDGetter, error)
}

// RecruiterIDGetter extracts the recruiter ID from token claims.
type RecruiterIDGetter interface {
	GetRecruiterID() uuid.UUID
}

// RequireAuth rejects requests without a valid bearer token and stores the
// recruiter ID in the request context.
func RequireAuth(validator TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				unauthorized(w)
				return
			}

			claims, err := validator.ValidateToken(token)
			if err != nil {
				unauthorized(w)
				return
			}

			ctx := WithRecruiterID(r.Context(), claims.GetRecruiterID())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// bearerToken parses "Bearer <token>"; the scheme is case-insensitive.
func bearerToken(header string) (string, bool) {
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", "Bearer")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": "unauthorized"})
}

// WithRecruiterID returns a copy of ctx carrying the recruiter ID.
func WithRecruiterID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, recruiterIDKey, id)
}

// RecruiterID returns the authenticated recruiter ID, if any.
func RecruiterID(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(recruiterIDKey).(uuid.UUID)
	return id, ok
}
