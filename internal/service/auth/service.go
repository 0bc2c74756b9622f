// Package auth implements username/password registration, login and logout.
package auth

import (
	"context"
	"log/slog"
	"time"

	"github.com/mgoto/recipelog/internal/config"
	"github.com/mgoto/recipelog/internal/domain"
)

// accountRepo defines the account repository interface needed by the auth
// service.
type accountRepo interface {
	Create(ctx context.Context, a *domain.Account) (*domain.Account, error)
	GetByID(ctx context.Context, id int64) (*domain.Account, error)
	GetByUsername(ctx context.Context, username string) (*domain.Account, error)
}

// sessionRepo defines the session repository interface needed by the auth
// service.
type sessionRepo interface {
	Create(ctx context.Context, s *domain.Session) error
	Get(ctx context.Context, id string) (*domain.Session, error)
	Delete(ctx context.Context, id string) error
}

// tokenManager signs and validates access tokens.
type tokenManager interface {
	Generate(accountID int64, sessionID string) (string, error)
	Validate(tokenString string) (accountID int64, sessionID string, err error)
	TTL() time.Duration
}

// Service provides authentication operations.
type Service struct {
	cfg      config.AuthConfig
	accounts accountRepo
	sessions sessionRepo
	tokens   tokenManager
	log      *slog.Logger
	now      func() time.Time
}

// New creates an auth service.
func New(cfg config.AuthConfig, accounts accountRepo, sessions sessionRepo, tokens tokenManager, logger *slog.Logger) *Service {
	return &Service{
		cfg:      cfg,
		accounts: accounts,
		sessions: sessions,
		tokens:   tokens,
		log:      logger,
		now:      time.Now,
	}
}
