// Package ctxutil carries request-scoped identifiers through contexts.
package ctxutil

import (
	"context"

	"github.com/mgoto/recipelog/internal/domain"
)

type ctxKey string

const (
	accountKey   ctxKey = "account"
	sessionKey   ctxKey = "session"
	requestIDKey ctxKey = "request_id"
)

// WithAccount stores the authenticated account in the context.
func WithAccount(ctx context.Context, a *domain.Account) context.Context {
	return context.WithValue(ctx, accountKey, a)
}

// AccountFromCtx extracts the authenticated account from the context.
// Returns nil and false when absent.
func AccountFromCtx(ctx context.Context) (*domain.Account, bool) {
	a, ok := ctx.Value(accountKey).(*domain.Account)
	if !ok || a == nil {
		return nil, false
	}
	return a, true
}

// WithSession stores the server-side session in the context.
func WithSession(ctx context.Context, s *domain.Session) context.Context {
	return context.WithValue(ctx, sessionKey, s)
}

// SessionFromCtx extracts the session from the context.
// Returns nil and false when absent.
func SessionFromCtx(ctx context.Context) (*domain.Session, bool) {
	s, ok := ctx.Value(sessionKey).(*domain.Session)
	if !ok || s == nil {
		return nil, false
	}
	return s, true
}

// WithRequestID stores the request ID in the context.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromCtx extracts the request ID from the context.
// Returns an empty string if absent.
func RequestIDFromCtx(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}
