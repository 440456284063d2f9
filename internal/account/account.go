// Package account carries the caller's account ID, set by an upstream
// authenticator in the X-Account-ID header, through request contexts.
package account

import (
	"context"
	"net/http"
	"strings"
)

// Header is the request header holding the authenticated account ID
const Header = "X-Account-ID"

type contextKey struct{}

// WithID returns a context carrying id
func WithID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

// FromContext returns the account ID stored in ctx, if any
func FromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(contextKey{}).(string)
	return id, ok && id != ""
}

// Require rejects requests without an account header with 401 and stores the
// account ID in the request context otherwise.
func Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(Header))
		if id == "" {
			http.Error(w, "missing "+Header+" header", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithID(r.Context(), id)))
	})
}
