// Package submissionlog implements the append-only submission audit log.
package submissionlog

import (
	"context"
	"database/sql"
	"time"

	"github.com/mgoto/recipelog/internal/adapter/sqlite"
	"github.com/mgoto/recipelog/internal/domain"
)

// Repo provides submission-log persistence backed by SQLite.
type Repo struct {
	db *sql.DB
}

// New creates a submission-log repository.
func New(db *sql.DB) *Repo {
	return &Repo{db: db}
}

// Append records one submission attempt. Callers treat failures as
// best-effort: a lost audit row never blocks the admission decision.
func (r *Repo) Append(ctx context.Context, author string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO submission_log (author, created_at) VALUES (?, ?)`,
		author, sqlite.FormatTime(time.Now()),
	)
	return sqlite.MapError(err, "submission_log")
}

// Recent returns the newest records, capped at limit.
func (r *Repo) Recent(ctx context.Context, limit int) ([]domain.SubmissionLogRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, author, created_at FROM submission_log ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, sqlite.MapError(err, "submission_log")
	}
	defer rows.Close()

	var records []domain.SubmissionLogRecord
	for rows.Next() {
		var rec domain.SubmissionLogRecord
		var createdAt string
		if err := rows.Scan(&rec.ID, &rec.Author, &createdAt); err != nil {
			return nil, sqlite.MapError(err, "submission_log")
		}
		if rec.CreatedAt, err = sqlite.ParseTime(createdAt); err != nil {
			return nil, sqlite.MapError(err, "submission_log")
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
