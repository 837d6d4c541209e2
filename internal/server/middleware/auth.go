// Package middleware provides HTTP middleware for authentication and authorization.
package middleware

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/jonathan/cvmaker/internal/auth"
)

// ContextKey is a typed key for context values to avoid collisions.
type ContextKey string

// identityKey is the context key for storing the authenticated identity.
const identityKey ContextKey = "identity"

// TokenValidator turns a raw token into an identity.
type TokenValidator interface {
	ValidateToken(tokenString string) (*auth.Identity, error)
}

// AuthMiddleware rejects requests without a valid token and adds the identity to
// the request context. The token is read from cookieName, then the Authorization header.
func AuthMiddleware(validator TokenValidator, cookieName string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := identify(validator, cookieName, r)
			if !ok {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

// OptionalAuth adds the identity to the context when a valid token is present and
// passes anonymous requests through unchanged.
func OptionalAuth(validator TokenValidator, cookieName string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if id, ok := identify(validator, cookieName, r); ok {
				r = r.WithContext(WithIdentity(r.Context(), id))
			}
			next.ServeHTTP(w, r)
		})
	}
}

func identify(validator TokenValidator, cookieName string, r *http.Request) (*auth.Identity, bool) {
	token, err := auth.TokenFromRequest(r, cookieName)
	if err != nil {
		return nil, false
	}
	id, err := validator.ValidateToken(token)
	if err != nil || id == nil {
		return nil, false
	}
	return id, true
}

// WithIdentity returns a context carrying id.
func WithIdentity(ctx context.Context, id *auth.Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// GetIdentity extracts the authenticated identity from the request context.
func GetIdentity(r *http.Request) (*auth.Identity, error) {
	id, ok := r.Context().Value(identityKey).(*auth.Identity)
	if !ok || id == nil {
		return nil, fmt.Errorf("identity not found in request context")
	}
	return id, nil
}

// GetUserID extracts the authenticated user ID from the request context.
func GetUserID(r *http.Request) (uuid.UUID, error) {
	id, err := GetIdentity(r)
	if err != nil {
		return uuid.Nil, err
	}
	if id.UserID == uuid.Nil {
		return uuid.Nil, fmt.Errorf("token subject is not a user ID")
	}
	return id.UserID, nil
}

// IdentityKey returns the context key for the identity (for testing purposes).
func IdentityKey() ContextKey {
	return identityKey
}
