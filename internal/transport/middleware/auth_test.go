package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mgoto/recipelog/internal/domain"
	"github.com/mgoto/recipelog/pkg/ctxutil"
)

type fakeAuthenticator struct {
	account *domain.Account
	session *domain.Session
	err     error
	gotTok  string
}

func (f *fakeAuthenticator) Authenticate(_ context.Context, token string) (*domain.Account, *domain.Session, error) {
	f.gotTok = token
	if f.err != nil {
		return nil, nil, f.err
	}
	return f.account, f.session, nil
}

func TestAuth_ValidToken(t *testing.T) {
	fake := &fakeAuthenticator{
		account: &domain.Account{ID: 5, Username: "chef"},
		session: &domain.Session{ID: "sess-1", AccountID: 5},
	}

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		account, ok := ctxutil.AccountFromCtx(r.Context())
		if !ok || account.ID != 5 {
			t.Errorf("expected account 5 in context, got %+v", account)
		}
		sess, ok := ctxutil.SessionFromCtx(r.Context())
		if !ok || sess.ID != "sess-1" {
			t.Errorf("expected session sess-1 in context, got %+v", sess)
		}
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	rec := httptest.NewRecorder()

	Auth(fake)(handler).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	if fake.gotTok != "good-token" {
		t.Errorf("expected token %q, got %q", "good-token", fake.gotTok)
	}
}

func TestAuth_NoTokenIsAnonymous(t *testing.T) {
	fake := &fakeAuthenticator{}

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := ctxutil.AccountFromCtx(r.Context()); ok {
			t.Error("expected no account in context")
		}
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()

	Auth(fake)(handler).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
}

func TestAuth_InvalidToken(t *testing.T) {
	fake := &fakeAuthenticator{err: domain.ErrUnauthorized}

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not be called")
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer expired")
	rec := httptest.NewRecorder()

	Auth(fake)(handler).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected status %d, got %d", http.StatusUnauthorized, rec.Code)
	}
}
