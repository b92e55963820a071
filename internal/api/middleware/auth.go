// internal/api/middleware/auth.go
package middleware

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"pocketcash-wallet/internal/auth"
	"pocketcash-wallet/internal/domain"
	"pocketcash-wallet/internal/util"
)

type contextKey struct{ name string }

var claimsKey = &contextKey{"claims"}

// TokenVerifier verifies bearer tokens. auth.TokenManager implements it.
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

// UserLookup fetches the live account for an authenticated email.
type UserLookup interface {
	CurrentUser(ctx context.Context, email string) (*domain.User, error)
}

// WithClaims returns a copy of ctx carrying claims.
func WithClaims(ctx context.Context, claims *auth.Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

// ClaimsFromContext returns the claims stored by Authenticate.
func ClaimsFromContext(ctx context.Context) (*auth.Claims, bool) {
	claims, ok := ctx.Value(claimsKey).(*auth.Claims)
	return claims, ok && claims != nil
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" header.
func BearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", false
	}
	return strings.TrimSpace(parts[1]), true
}

// Authenticate enforces a valid bearer token and stores its claims in the request context.
func Authenticate(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := BearerToken(r)
			if !ok {
				writeError(w, http.StatusUnauthorized, util.ErrUnauthenticated.Error())
				return
			}
			claims, err := verifier.Verify(token)
			if err != nil {
				writeError(w, http.StatusUnauthorized, util.ErrUnauthenticated.Error())
				return
			}
			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

// RequireAdmin re-reads the caller's live record and lets only active admins through.
// The role in the token is not trusted since it may predate a change.
func RequireAdmin(users UserLookup, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok {
				writeError(w, http.StatusUnauthorized, util.ErrUnauthenticated.Error())
				return
			}

			user, err := users.CurrentUser(r.Context(), claims.Email)
			switch {
			case util.IsError(err, util.ErrUserNotFound):
				writeError(w, http.StatusUnauthorized, util.ErrUnauthenticated.Error())
				return
			case err != nil:
				logger.Error("Admin check failed", "error", err)
				writeError(w, http.StatusInternalServerError, "Internal server error")
				return
			}

			if !user.IsAdmin() || user.Status == domain.UserStatusBlocked {
				writeError(w, http.StatusForbidden, util.ErrForbidden.Error())
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeError(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
