package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/mgoto/recipelog/internal/domain"
	"github.com/mgoto/recipelog/pkg/ctxutil"
)

type authenticator interface {
	Authenticate(ctx context.Context, token string) (*domain.Account, *domain.Session, error)
}

// Auth resolves the bearer token into an account and session and stores
// both in the request context. Requests without a token pass through
// anonymously; requests with a bad token are refused outright.
func Auth(auth authenticator) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractBearerToken(r)
			if token == "" {
				next.ServeHTTP(w, r) // Anonymous
				return
			}
			account, sess, err := auth.Authenticate(r.Context(), token)
			if err != nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			ctx := ctxutil.WithAccount(r.Context(), account)
			ctx = ctxutil.WithSession(ctx, sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func extractBearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if !strings.HasPrefix(auth, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(auth, "Bearer ")
}
