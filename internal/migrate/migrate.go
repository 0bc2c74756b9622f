// Package migrate applies versioned schema-change scripts to the database
// exactly once each, in lexicographic filename order, tracked by a persistent
// ledger table.
//
// A script's effect and its ledger insert are committed together, one
// transaction per script. A crash between script execution and commit causes
// the script to be replayed on the next start, so scripts must either use
// idempotent DDL (CREATE TABLE IF NOT EXISTS and friends) or accept manual
// repair; see the note in 003_add_owner_and_edit_token.sql.
package migrate

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"log/slog"
	"sort"
	"strings"
	"time"
)

const ledgerTable = `
CREATE TABLE IF NOT EXISTS schema_migrations (
    version TEXT PRIMARY KEY,
    applied_at TEXT NOT NULL
)`

// Record is one ledger row: an applied migration version and when it landed.
type Record struct {
	Version   string
	AppliedAt time.Time
}

// Runner applies migration scripts from a filesystem to a database.
type Runner struct {
	db   *sql.DB
	fsys fs.FS
	log  *slog.Logger
}

// New creates a Runner reading scripts from fsys. Only files matching *.sql
// at the root of fsys are considered; the version of a script is its filename
// without the .sql suffix.
func New(db *sql.DB, fsys fs.FS, logger *slog.Logger) *Runner {
	return &Runner{db: db, fsys: fsys, log: logger}
}

// Apply runs every unapplied script in order. It is idempotent and safe to
// call on every process start. On the first script error it stops and returns
// the error; later scripts are never attempted past an unresolved failure.
func (r *Runner) Apply(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, ledgerTable); err != nil {
		return fmt.Errorf("migrate: create ledger: %w", err)
	}

	names, err := listScripts(r.fsys)
	if err != nil {
		return fmt.Errorf("migrate: list scripts: %w", err)
	}

	applied, err := r.appliedSet(ctx)
	if err != nil {
		return err
	}

	for _, name := range names {
		version := strings.TrimSuffix(name, ".sql")
		if _, ok := applied[version]; ok {
			continue
		}

		script, err := fs.ReadFile(r.fsys, name)
		if err != nil {
			return fmt.Errorf("migrate: read %s: %w", name, err)
		}

		if err := r.applyOne(ctx, version, string(script)); err != nil {
			return fmt.Errorf("migrate: apply %s: %w", version, err)
		}

		r.log.Info("migration applied", slog.String("version", version))
	}

	return nil
}

// applyOne executes the whole script as one multi-statement unit and records
// the version in the ledger within the same transaction.
func (r *Runner) applyOne(ctx context.Context, version, script string) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, script); err != nil {
		return err
	}

	appliedAt := time.Now().UTC().Format(time.RFC3339Nano)
	if _, err = tx.ExecContext(ctx,
		`INSERT INTO schema_migrations (version, applied_at) VALUES (?, ?)`,
		version, appliedAt,
	); err != nil {
		return err
	}

	return tx.Commit()
}

// Applied returns the ledger contents ordered by version.
func (r *Runner) Applied(ctx context.Context) ([]Record, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT version, applied_at FROM schema_migrations ORDER BY version`)
	if err != nil {
		return nil, fmt.Errorf("migrate: read ledger: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		var appliedAt string
		if err := rows.Scan(&rec.Version, &appliedAt); err != nil {
			return nil, fmt.Errorf("migrate: scan ledger: %w", err)
		}
		if rec.AppliedAt, err = time.Parse(time.RFC3339Nano, appliedAt); err != nil {
			return nil, fmt.Errorf("migrate: ledger timestamp %q: %w", appliedAt, err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (r *Runner) appliedSet(ctx context.Context) (map[string]struct{}, error) {
	records, err := r.Applied(ctx)
	if err != nil {
		return nil, err
	}
	set := make(map[string]struct{}, len(records))
	for _, rec := range records {
		set[rec.Version] = struct{}{}
	}
	return set, nil
}

func listScripts(fsys fs.FS) ([]string, error) {
	names, err := fs.Glob(fsys, "*.sql")
	if err != nil {
		return nil, err
	}
	sort.Strings(names)
	return names, nil
}
