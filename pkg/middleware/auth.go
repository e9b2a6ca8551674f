package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/coursehq/courseapi/pkg/auth"
	"github.com/coursehq/courseapi/pkg/httputil"
)

type contextKey string

const principalKey contextKey = "principal"

// AuthMiddleware verifies bearer tokens and installs the resulting principal
// in the request context
type AuthMiddleware struct {
	tokens   *auth.TokenManager
	optional bool // if true, requests without an Authorization header pass through unauthenticated
}

// NewAuthMiddleware creates an authentication middleware. With optional set,
// a missing header yields a nil principal and the role gates downstream
// decide what that means; a present but invalid token is always rejected.
func NewAuthMiddleware(tokens *auth.TokenManager, optional bool) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, optional: optional}
}

// Handler wraps an HTTP handler with bearer-token authentication
func (m *AuthMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			if m.optional {
				next.ServeHTTP(w, r)
				return
			}
			httputil.WriteUnauthorized(w, "missing authorization header")
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			httputil.WriteUnauthorized(w, "invalid authorization header format")
			return
		}

		principal, err := m.tokens.Verify(parts[1])
		if err != nil {
			httputil.WriteUnauthorized(w, "invalid or expired token")
			return
		}

		next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), principal)))
	})
}

// WithPrincipal stores a principal in the context
func WithPrincipal(ctx context.Context, p *auth.Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// PrincipalFrom extracts the authenticated principal from a request, or nil
// when the request carried no valid token
func PrincipalFrom(r *http.Request) *auth.Principal {
	p, ok := r.Context().Value(principalKey).(*auth.Principal)
	if !ok {
		return nil
	}
	return p
}
