package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/mgoto/recipelog/internal/domain"
)

// Login authenticates an account with username + password and opens a new
// session. Returns ErrUnauthorized when the username is unknown, the
// password is wrong, or the account is a claim-created placeholder without
// credentials.
func (s *Service) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	input.Username = strings.TrimSpace(input.Username)

	if err := input.Validate(); err != nil {
		return nil, err
	}

	account, err := s.accounts.GetByUsername(ctx, input.Username)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrUnauthorized
		}
		return nil, fmt.Errorf("auth.Login get account: %w", err)
	}

	if !account.CanLogin() {
		return nil, domain.ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*account.PasswordHash), []byte(input.Password)); err != nil {
		return nil, domain.ErrUnauthorized
	}

	result, err := s.openSession(ctx, account)
	if err != nil {
		return nil, fmt.Errorf("auth.Login open session: %w", err)
	}

	s.log.InfoContext(ctx, "account logged in",
		slog.Int64("account_id", account.ID))

	return result, nil
}

// Logout deletes the session behind the given token. A token that no longer
// resolves to a session is not an error.
func (s *Service) Logout(ctx context.Context, token string) error {
	_, sessionID, err := s.tokens.Validate(token)
	if err != nil {
		return domain.ErrUnauthorized
	}
	if err := s.sessions.Delete(ctx, sessionID); err != nil && !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("auth.Logout delete session: %w", err)
	}
	return nil
}

// Authenticate resolves a bearer token to its account and live session.
// Used by the HTTP auth middleware.
func (s *Service) Authenticate(ctx context.Context, token string) (*domain.Account, *domain.Session, error) {
	accountID, sessionID, err := s.tokens.Validate(token)
	if err != nil {
		return nil, nil, domain.ErrUnauthorized
	}

	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil, domain.ErrUnauthorized
		}
		return nil, nil, fmt.Errorf("auth.Authenticate get session: %w", err)
	}
	if sess.AccountID != accountID || sess.IsExpired(s.now()) {
		return nil, nil, domain.ErrUnauthorized
	}

	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil, domain.ErrUnauthorized
		}
		return nil, nil, fmt.Errorf("auth.Authenticate get account: %w", err)
	}

	return account, sess, nil
}

// openSession creates a session row and signs a token bound to it.
func (s *Service) openSession(ctx context.Context, account *domain.Account) (*AuthResult, error) {
	now := s.now()
	sess := &domain.Session{
		ID:        uuid.NewString(),
		AccountID: account.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.tokens.TTL()),
	}
	if err := s.sessions.Create(ctx, sess); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	token, err := s.tokens.Generate(account.ID, sess.ID)
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}

	return &AuthResult{Token: token, Account: account, Session: sess}, nil
}
