package domain

import "time"

// Account is an application user. PasswordHash is nil for placeholder
// accounts created implicitly by the claim flow; those accounts cannot
// log in until a password is set.
type Account struct {
	ID           int64
	Username     string
	PasswordHash *string
	CreatedAt    time.Time
}

// CanLogin reports whether the account has password credentials.
func (a *Account) CanLogin() bool {
	return a.PasswordHash != nil && *a.PasswordHash != ""
}

// Session is the server-side state behind one issued access token. The
// admission pipeline reads and updates the per-session submission counter
// and the bot-verification timestamp through it.
type Session struct {
	ID          string
	AccountID   int64
	SubmitCount int
	VerifiedAt  *time.Time
	CreatedAt   time.Time
	ExpiresAt   time.Time
}

// IsExpired reports whether the session has expired relative to now.
func (s *Session) IsExpired(now time.Time) bool {
	return s.ExpiresAt.Before(now)
}

// VerifiedWithin reports whether the session holds a bot-verification
// timestamp younger than ttl relative to now.
func (s *Session) VerifiedWithin(now time.Time, ttl time.Duration) bool {
	if s.VerifiedAt == nil {
		return false
	}
	return now.Sub(*s.VerifiedAt) < ttl
}
