// Package catalog serves the read and curation side of the dish log:
// listing, the public gallery, tag browsing, favorites and edit-token claims.
package catalog

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mgoto/recipelog/internal/adapter/sqlite/dish"
	"github.com/mgoto/recipelog/internal/domain"
)

type dishRepo interface {
	GetByID(ctx context.Context, id int64) (*domain.Dish, error)
	List(ctx context.Context, f dish.Filter) ([]domain.Dish, error)
	ToggleFavorite(ctx context.Context, id int64, value bool) error
	Claim(ctx context.Context, dishID int64, editToken, username string) error
	AllTags(ctx context.Context) ([]string, error)
}

// Service exposes catalog operations over the dish repository.
type Service struct {
	dishes dishRepo
	log    *slog.Logger
}

func New(dishes dishRepo, logger *slog.Logger) *Service {
	return &Service{dishes: dishes, log: logger}
}

// Get returns one dish by id.
func (s *Service) Get(ctx context.Context, id int64) (*domain.Dish, error) {
	return s.dishes.GetByID(ctx, id)
}

// List returns dishes matching the filter, newest first.
func (s *Service) List(ctx context.Context, f dish.Filter) ([]domain.Dish, error) {
	return s.dishes.List(ctx, f)
}

// Gallery returns the public subset regardless of what the caller asked
// for: the filter's visibility flag is forced on.
func (s *Service) Gallery(ctx context.Context, f dish.Filter) ([]domain.Dish, error) {
	f.PublicOnly = true
	return s.dishes.List(ctx, f)
}

// AllTags returns every distinct tag in use, sorted.
func (s *Service) AllTags(ctx context.Context) ([]string, error) {
	return s.dishes.AllTags(ctx)
}

// SetFavorite sets the favorite flag unconditionally, so repeated requests
// with the same value are harmless.
func (s *Service) SetFavorite(ctx context.Context, id int64, value bool) error {
	if err := s.dishes.ToggleFavorite(ctx, id, value); err != nil {
		return fmt.Errorf("toggle favorite: %w", err)
	}
	return nil
}

// Claim attaches an ownerless dish to account using its single-use edit
// token. A wrong token and a missing dish are indistinguishable to the
// caller: both come back as domain.ErrNotFound.
func (s *Service) Claim(ctx context.Context, dishID int64, editToken string, account *domain.Account) error {
	if account == nil {
		return domain.ErrUnauthorized
	}
	if err := s.dishes.Claim(ctx, dishID, editToken, account.Username); err != nil {
		return fmt.Errorf("claim dish %d: %w", dishID, err)
	}
	s.log.InfoContext(ctx, "dish claimed",
		slog.Int64("dish_id", dishID),
		slog.Int64("account_id", account.ID))
	return nil
}
