package submission

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mgoto/recipelog/internal/domain"
)

// User-facing rejection messages. The honeypot gate reuses msgInvalidInput
// so its response does not reveal which check caught the request.
const (
	msgNameOrMemoRequired = "料理名かメモのどちらかは必須です。"
	msgLoginRequired      = "投稿にはログインが必要です。"
	msgVerifyRequired     = "ボット確認が完了していません。もう一度お試しください。"
	msgInvalidInput       = "入力内容を確認してください。"
	msgSessionLimit       = "このセッションでの投稿数が上限に達しました。"
	msgInvalidRecipeURL   = "参考レシピ URL は http:// または https:// から始めてください。"
	msgDailyLimit         = "24時間以内の投稿数が上限に達しました。"
)

// requestState is the request-scoped context a gate may consult: who is
// submitting and the server-side session state. Nil fields mean anonymous.
type requestState struct {
	account *domain.Account
	session *domain.Session
}

// gate is one admission check. check returns nil to pass, a
// *domain.RejectionError to reject, or any other error when the check itself
// broke. failOpen decides what a broken check means: true lets the
// submission proceed (availability over strict enforcement), false rejects.
type gate struct {
	name     string
	failOpen bool
	check    func(ctx context.Context, sub *Submission, st *requestState) error
}

// buildGates assembles the pipeline in its fixed order. First failing gate
// wins; later gates never run.
func (s *Service) buildGates() []gate {
	return []gate{
		{name: "required_fields", check: s.checkRequiredFields},
		{name: "authentication", check: s.checkAuthenticated},
		{name: "verification", check: s.checkVerified},
		{name: "verification_token", check: s.checkVerifyToken},
		{name: "honeypot", check: s.checkHoneypot},
		{name: "session_rate", check: s.checkSessionRate},
		{name: "url_format", check: s.checkRecipeURL},
		{name: "account_rate", failOpen: s.submitCfg.RateFailOpen, check: s.checkAccountRate},
	}
}

// runGates evaluates the pipeline with short-circuit on the first rejection.
func (s *Service) runGates(ctx context.Context, sub *Submission, st *requestState) error {
	for _, g := range s.gates {
		err := g.check(ctx, sub, st)
		if err == nil {
			continue
		}
		if _, ok := rejection(err); ok {
			return err
		}
		// The check itself failed.
		if g.failOpen {
			s.log.WarnContext(ctx, "admission gate check failed, allowing submission",
				slog.String("gate", g.name),
				slog.Any("error", err))
			continue
		}
		s.log.WarnContext(ctx, "admission gate check failed, rejecting submission",
			slog.String("gate", g.name),
			slog.Any("error", err))
		return &domain.RejectionError{Gate: g.name, Message: msgInvalidInput}
	}
	return nil
}

func rejection(err error) (*domain.RejectionError, bool) {
	var rej *domain.RejectionError
	if errors.As(err, &rej) {
		return rej, true
	}
	return nil, false
}

// Gate 1: at least one of name or memo must be non-empty after trimming.
func (s *Service) checkRequiredFields(_ context.Context, sub *Submission, _ *requestState) error {
	if sub.Name == "" && sub.Memo == "" {
		return &domain.RejectionError{Gate: "required_fields", Message: msgNameOrMemoRequired}
	}
	return nil
}

// Gate 2: anonymous submission is disallowed under current policy.
func (s *Service) checkAuthenticated(_ context.Context, _ *Submission, st *requestState) error {
	if st.account == nil || st.session == nil {
		return &domain.RejectionError{Gate: "authentication", Message: msgLoginRequired}
	}
	return nil
}

// Gate 3: when server-side verification is enforced, the session must hold a
// verification timestamp younger than the configured TTL, or carry a one-shot
// token for the next gate to check. Without a secret, enforcement is off and
// this gate only surfaces a warning.
func (s *Service) checkVerified(ctx context.Context, sub *Submission, st *requestState) error {
	if !s.verifyCfg.Enforced() {
		s.log.WarnContext(ctx, "bot verification not configured, submission accepted unverified")
		return nil
	}
	if st.session.VerifiedWithin(s.now(), s.verifyCfg.TTL) {
		return nil
	}
	if sub.VerifyToken != "" {
		// Deferred to the verification_token gate.
		return nil
	}
	return &domain.RejectionError{Gate: "verification", Message: msgVerifyRequired}
}

// Gate 4: a one-shot token is checked synchronously against the external
// API. Fail-closed: an unreachable API or any call error rejects. A
// confirmed token stamps the session so later submissions within the TTL
// skip the round trip.
func (s *Service) checkVerifyToken(ctx context.Context, sub *Submission, st *requestState) error {
	if !s.verifyCfg.Enforced() || sub.VerifyToken == "" {
		return nil
	}
	if st.session.VerifiedWithin(s.now(), s.verifyCfg.TTL) {
		return nil
	}

	ok, err := s.verify.Verify(ctx, sub.VerifyToken)
	if err != nil || !ok {
		if err != nil {
			s.log.WarnContext(ctx, "verification API call failed",
				slog.Any("error", err))
		}
		return &domain.RejectionError{Gate: "verification_token", Message: msgVerifyRequired}
	}

	now := s.now()
	if err := s.sessions.SetVerifiedAt(ctx, st.session.ID, now); err != nil {
		s.log.WarnContext(ctx, "failed to persist verification timestamp",
			slog.Any("error", err))
	}
	st.session.VerifiedAt = &now
	return nil
}

// Gate 5: a filled honeypot field marks an automated client. The rejection
// message is deliberately generic, and the attempt is logged with a tagged
// sentinel; a logging failure never blocks the rejection.
func (s *Service) checkHoneypot(ctx context.Context, sub *Submission, st *requestState) error {
	if sub.Honeypot == "" {
		return nil
	}
	if err := s.audit.Append(ctx, domain.HoneypotAuthor+sub.Honeypot); err != nil {
		s.log.WarnContext(ctx, "failed to log honeypot hit", slog.Any("error", err))
	}
	return &domain.RejectionError{Gate: "honeypot", Message: msgInvalidInput}
}

// Gate 6: the session counter tracks accepted submissions only; once it
// reaches the limit, further submissions in this session are refused.
func (s *Service) checkSessionRate(_ context.Context, _ *Submission, st *requestState) error {
	if st.session.SubmitCount >= s.submitCfg.SessionMax {
		return &domain.RejectionError{Gate: "session_rate", Message: msgSessionLimit}
	}
	return nil
}

// Gate 7: a non-empty recipe URL must start with http:// or https://.
func (s *Service) checkRecipeURL(_ context.Context, sub *Submission, _ *requestState) error {
	if sub.RecipeURL != "" && !domain.IsValidRecipeURL(sub.RecipeURL) {
		return &domain.RejectionError{Gate: "url_format", Message: msgInvalidRecipeURL}
	}
	return nil
}

// Gate 8: trailing 24-hour per-account limit, backed by a COUNT query.
// When the query itself fails the configured fail-open/fail-closed policy
// applies (see runGates); a broken rate check defaulting to fail-open must
// never be a total outage.
func (s *Service) checkAccountRate(ctx context.Context, _ *Submission, st *requestState) error {
	n, err := s.dishes.CountByOwnerSince(ctx, st.account.ID, s.now().Add(-24*time.Hour))
	if err != nil {
		return fmt.Errorf("count recent dishes: %w", err)
	}
	if n >= s.submitCfg.DailyMax {
		return &domain.RejectionError{Gate: "account_rate", Message: msgDailyLimit}
	}
	return nil
}
