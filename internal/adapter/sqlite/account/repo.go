// Package account implements the account repository on SQLite.
package account

import (
	"context"
	"database/sql"

	sq "github.com/Masterminds/squirrel"

	"github.com/mgoto/recipelog/internal/adapter/sqlite"
	"github.com/mgoto/recipelog/internal/domain"
)

// Repo provides account persistence backed by SQLite.
type Repo struct {
	db *sql.DB
}

// New creates an account repository.
func New(db *sql.DB) *Repo {
	return &Repo{db: db}
}

// Create inserts a new account. Returns ErrAlreadyExists when the username
// is taken.
func (r *Repo) Create(ctx context.Context, a *domain.Account) (*domain.Account, error) {
	query, args, err := sq.Insert("accounts").
		Columns("username", "password_hash", "created_at").
		Values(a.Username, a.PasswordHash, sqlite.FormatTime(a.CreatedAt)).
		ToSql()
	if err != nil {
		return nil, sqlite.MapError(err, "account")
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, sqlite.MapError(err, "account")
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, sqlite.MapError(err, "account")
	}

	created := *a
	created.ID = id
	return &created, nil
}

// GetByID returns an account by primary key.
func (r *Repo) GetByID(ctx context.Context, id int64) (*domain.Account, error) {
	return r.get(ctx, sq.Eq{"id": id})
}

// GetByUsername returns an account by its unique username.
func (r *Repo) GetByUsername(ctx context.Context, username string) (*domain.Account, error) {
	return r.get(ctx, sq.Eq{"username": username})
}

// SetPassword stores a new password hash, turning a claim-created
// placeholder account into one that can log in.
func (r *Repo) SetPassword(ctx context.Context, id int64, passwordHash string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE accounts SET password_hash = ? WHERE id = ?`, passwordHash, id)
	return sqlite.MapError(err, "account")
}

func (r *Repo) get(ctx context.Context, pred any) (*domain.Account, error) {
	query, args, err := sq.Select("id", "username", "password_hash", "created_at").
		From("accounts").
		Where(pred).
		ToSql()
	if err != nil {
		return nil, sqlite.MapError(err, "account")
	}

	var a domain.Account
	var createdAt string
	err = r.db.QueryRowContext(ctx, query, args...).
		Scan(&a.ID, &a.Username, &a.PasswordHash, &createdAt)
	if err != nil {
		return nil, sqlite.MapError(err, "account")
	}
	if a.CreatedAt, err = sqlite.ParseTime(createdAt); err != nil {
		return nil, sqlite.MapError(err, "account")
	}
	return &a, nil
}
