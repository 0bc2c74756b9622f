// Package submission implements the admission pipeline: the ordered sequence
// of gates that decides whether one inbound submission is persisted as a dish
// or rejected with a reason.
package submission

import (
	"context"
	"log/slog"
	"time"

	"github.com/mgoto/recipelog/internal/adapter/sqlite/dish"
	"github.com/mgoto/recipelog/internal/config"
	"github.com/mgoto/recipelog/internal/domain"
)

// dishRepo is the persistence interface needed by the pipeline.
type dishRepo interface {
	Insert(ctx context.Context, d *domain.Dish, photo *dish.Photo) (int64, error)
	CountByOwnerSince(ctx context.Context, ownerID int64, since time.Time) (int, error)
}

// sessionRepo mutates per-session admission state.
type sessionRepo interface {
	IncrementSubmitCount(ctx context.Context, id string) error
	SetVerifiedAt(ctx context.Context, id string, at time.Time) error
}

// auditLog records submission attempts. All calls are best-effort.
type auditLog interface {
	Append(ctx context.Context, author string) error
}

// verifier calls the external bot-verification API.
type verifier interface {
	Verify(ctx context.Context, responseToken string) (bool, error)
}

// Service runs the admission pipeline.
type Service struct {
	verifyCfg config.VerifyConfig
	submitCfg config.SubmitConfig
	dishes    dishRepo
	sessions  sessionRepo
	audit     auditLog
	verify    verifier
	log       *slog.Logger
	now       func() time.Time

	gates []gate
}

// New creates the pipeline service. verify may be nil when server-side
// verification is not configured.
func New(
	verifyCfg config.VerifyConfig,
	submitCfg config.SubmitConfig,
	dishes dishRepo,
	sessions sessionRepo,
	audit auditLog,
	verify verifier,
	logger *slog.Logger,
) *Service {
	s := &Service{
		verifyCfg: verifyCfg,
		submitCfg: submitCfg,
		dishes:    dishes,
		sessions:  sessions,
		audit:     audit,
		verify:    verify,
		log:       logger,
		now:       time.Now,
	}
	s.gates = s.buildGates()
	return s
}
