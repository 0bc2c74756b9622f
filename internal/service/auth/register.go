package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/mgoto/recipelog/internal/domain"
)

// Register creates a new account with username + password and opens a
// session for it. Returns ErrAlreadyExists if the username is taken.
func (s *Service) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	// Normalize input before validation.
	input.Username = strings.TrimSpace(input.Username)

	if err := input.Validate(); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), s.cfg.PasswordHashCost)
	if err != nil {
		return nil, fmt.Errorf("auth.Register hash password: %w", err)
	}
	hashStr := string(hash)

	// Username uniqueness is enforced by the DB constraint.
	account, err := s.accounts.Create(ctx, &domain.Account{
		Username:     input.Username,
		PasswordHash: &hashStr,
		CreatedAt:    s.now(),
	})
	if err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			return nil, fmt.Errorf("auth.Register: %w", domain.ErrAlreadyExists)
		}
		return nil, fmt.Errorf("auth.Register: %w", err)
	}

	result, err := s.openSession(ctx, account)
	if err != nil {
		return nil, fmt.Errorf("auth.Register open session: %w", err)
	}

	s.log.InfoContext(ctx, "account registered",
		slog.Int64("account_id", account.ID),
		slog.String("username", account.Username))

	return result, nil
}
