package httpx

import (
	"context"
	"net/http"
	"strings"

	"surveysphere/internal/domains"

	"github.com/gorilla/mux"
)

type contextKey string

const principalContextKey contextKey = "principal"

type Authenticator interface {
	Authenticate(ctx context.Context, token string) (domains.Principal, error)
}

// Protected rejects requests without a valid bearer access token.
func Protected(auth Authenticator) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := BearerToken(r)
			if !ok {
				Error(w, http.StatusUnauthorized, "Unauthorized")
				return
			}
			principal, err := auth.Authenticate(r.Context(), token)
			if err != nil {
				Error(w, http.StatusUnauthorized, "Unauthorized")
				return
			}
			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), principal)))
		})
	}
}

// Authenticated attaches the caller when a valid token is present and lets anonymous requests through.
func Authenticated(auth Authenticator) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token, ok := BearerToken(r); ok {
				if principal, err := auth.Authenticate(r.Context(), token); err == nil {
					r = r.WithContext(WithPrincipal(r.Context(), principal))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func BearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	return token, token != ""
}

func WithPrincipal(ctx context.Context, principal domains.Principal) context.Context {
	return context.WithValue(ctx, principalContextKey, principal)
}

func PrincipalFromContext(ctx context.Context) (domains.Principal, bool) {
	principal, ok := ctx.Value(principalContextKey).(domains.Principal)
	return principal, ok
}
