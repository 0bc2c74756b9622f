package submission

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mgoto/recipelog/internal/domain"
)

// Submit runs sub through the admission pipeline and, on acceptance,
// persists it as a dish owned by account. Rejections come back as
// *domain.RejectionError wrapping domain.ErrRejected; account and sess may
// be nil for anonymous requests, which the authentication gate refuses.
func (s *Service) Submit(ctx context.Context, sub Submission, account *domain.Account, sess *domain.Session) (int64, error) {
	sub.normalize()
	st := &requestState{account: account, session: sess}

	if err := s.runGates(ctx, &sub, st); err != nil {
		if rej, ok := rejection(err); ok {
			s.log.InfoContext(ctx, "submission rejected",
				slog.String("gate", rej.Gate))
		}
		return 0, err
	}

	d := &domain.Dish{
		Name:      sub.Name,
		Memo:      sub.Memo,
		Tags:      domain.TagsToText(domain.ParseTags(sub.TagsRaw)),
		Favorite:  sub.Favorite,
		IsPublic:  sub.IsPublic,
		OwnerID:   &account.ID,
		CreatedAt: s.now(),
	}
	if sub.RecipeURL != "" {
		d.RecipeURL = &sub.RecipeURL
	}

	id, err := s.dishes.Insert(ctx, d, sub.Photo)
	if err != nil {
		return 0, fmt.Errorf("insert dish: %w", err)
	}

	if err := s.audit.Append(ctx, account.Username); err != nil {
		s.log.WarnContext(ctx, "failed to append submission log",
			slog.Any("error", err))
	}
	if err := s.sessions.IncrementSubmitCount(ctx, sess.ID); err != nil {
		s.log.WarnContext(ctx, "failed to increment session submit counter",
			slog.Any("error", err))
	} else {
		sess.SubmitCount++
	}

	s.log.InfoContext(ctx, "submission accepted",
		slog.Int64("dish_id", id),
		slog.Int64("account_id", account.ID))
	return id, nil
}
