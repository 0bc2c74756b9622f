// Package session implements the server-side session repository on SQLite.
// A session row backs one issued access token and carries the per-session
// submission counter and bot-verification timestamp that the admission
// pipeline reads.
package session

import (
	"context"
	"database/sql"
	"time"

	"github.com/mgoto/recipelog/internal/adapter/sqlite"
	"github.com/mgoto/recipelog/internal/domain"
)

// Repo provides session persistence backed by SQLite.
type Repo struct {
	db *sql.DB
}

// New creates a session repository.
func New(db *sql.DB) *Repo {
	return &Repo{db: db}
}

// Create inserts a new session row.
func (r *Repo) Create(ctx context.Context, s *domain.Session) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO sessions (id, account_id, submit_count, verified_at, created_at, expires_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		s.ID, s.AccountID, s.SubmitCount,
		sqlite.FormatTimePtr(s.VerifiedAt),
		sqlite.FormatTime(s.CreatedAt),
		sqlite.FormatTime(s.ExpiresAt),
	)
	return sqlite.MapError(err, "session")
}

// Get returns a session by id.
func (r *Repo) Get(ctx context.Context, id string) (*domain.Session, error) {
	var s domain.Session
	var verifiedAt *string
	var createdAt, expiresAt string

	err := r.db.QueryRowContext(ctx,
		`SELECT id, account_id, submit_count, verified_at, created_at, expires_at
		 FROM sessions WHERE id = ?`, id,
	).Scan(&s.ID, &s.AccountID, &s.SubmitCount, &verifiedAt, &createdAt, &expiresAt)
	if err != nil {
		return nil, sqlite.MapError(err, "session")
	}

	if s.VerifiedAt, err = sqlite.ParseTimePtr(verifiedAt); err != nil {
		return nil, sqlite.MapError(err, "session")
	}
	if s.CreatedAt, err = sqlite.ParseTime(createdAt); err != nil {
		return nil, sqlite.MapError(err, "session")
	}
	if s.ExpiresAt, err = sqlite.ParseTime(expiresAt); err != nil {
		return nil, sqlite.MapError(err, "session")
	}
	return &s, nil
}

// IncrementSubmitCount bumps the session's submission counter by one.
// Only called after an accepted submission; rejected attempts do not count.
func (r *Repo) IncrementSubmitCount(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE sessions SET submit_count = submit_count + 1 WHERE id = ?`, id)
	return sqlite.MapError(err, "session")
}

// SetVerifiedAt records a successful bot verification on the session.
func (r *Repo) SetVerifiedAt(ctx context.Context, id string, at time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE sessions SET verified_at = ? WHERE id = ?`, sqlite.FormatTime(at), id)
	return sqlite.MapError(err, "session")
}

// Delete removes a session (logout).
func (r *Repo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	return sqlite.MapError(err, "session")
}

// DeleteExpired removes sessions past their expiry, returning how many were
// dropped. Run opportunistically; session expiry is otherwise enforced at
// read time.
func (r *Repo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM sessions WHERE expires_at < ?`, sqlite.FormatTime(now))
	if err != nil {
		return 0, sqlite.MapError(err, "session")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, sqlite.MapError(err, "session")
	}
	return n, nil
}
