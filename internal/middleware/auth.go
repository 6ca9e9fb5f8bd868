package middleware

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/hongminglow/storefront/internal/http/respond"
)

type contextKey string

const userIDKey contextKey = "user_id"

// SubjectVerifier validates a bearer token and returns its subject.
type SubjectVerifier interface {
	Subject(token string) (string, error)
}

// RequireAuth rejects requests without a valid bearer token and stores the
// numeric subject in the request context.
func RequireAuth(tokens SubjectVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			parts := strings.SplitN(r.Header.Get("Authorization"), " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" || strings.TrimSpace(parts[1]) == "" {
				respond.Error(w, http.StatusUnauthorized, "missing bearer token")
				return
			}
			sub, err := tokens.Subject(strings.TrimSpace(parts[1]))
			if err != nil {
				respond.Error(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}
			id, err := strconv.ParseInt(sub, 10, 64)
			if err != nil {
				respond.Error(w, http.StatusUnauthorized, "invalid token subject")
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userIDKey, id)))
		})
	}
}

// UserID returns the authenticated user id set by RequireAuth.
func UserID(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(userIDKey).(int64)
	return id, ok
}
