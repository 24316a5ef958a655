package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/taskdeck/taskdeck/internal/apperr"
)

type userIDKey struct{}

// WithUser returns a context carrying the authenticated user id.
func WithUser(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, userIDKey{}, userID)
}

// CurrentUser reads the authenticated user id established by the
// Authenticate middleware. Handlers call this before touching any DAO
// so an unauthenticated request never reaches the store.
func CurrentUser(ctx context.Context) (int64, error) {
	if id, ok := ctx.Value(userIDKey{}).(int64); ok && id > 0 {
		return id, nil
	}
	return 0, apperr.ErrUnauthenticated
}

// TokenVerifier validates a bearer token and yields the user id it
// was issued to.
type TokenVerifier interface {
	Verify(ctx context.Context, rawToken string) (int64, error)
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "Bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

// Authenticate rejects requests without a valid bearer token and
// stores the resolved user id in the request context.
func Authenticate(verifier TokenVerifier, env string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			token := bearerToken(r)
			if token == "" {
				writeError(ctx, w, env, apperr.ErrUnauthenticated)
				return
			}
			userID, err := verifier.Verify(ctx, token)
			if err != nil {
				writeError(ctx, w, env, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUser(ctx, userID)))
		})
	}
}
