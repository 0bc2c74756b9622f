// Package dish implements the dish repository on SQLite.
package dish

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/mgoto/recipelog/internal/adapter/sqlite"
	"github.com/mgoto/recipelog/internal/domain"
	"github.com/mgoto/recipelog/internal/migrate"
)

// pathResolver computes the on-disk location for a dish photo and ensures
// its containing directories exist.
type pathResolver interface {
	DishPhotoPath(dishID int64, originalFilename string, ownerID *int64) (string, error)
}

// Photo is an uploaded photo handed to Insert.
type Photo struct {
	Filename string
	Data     []byte
}

// Repo provides dish persistence backed by SQLite. The Schema passed at
// construction tells the repo whether the owner/edit-token columns exist;
// against older databases those columns are simply never touched.
type Repo struct {
	db     *sql.DB
	schema migrate.Schema
	paths  pathResolver
}

// New creates a dish repository.
func New(db *sql.DB, schema migrate.Schema, paths pathResolver) *Repo {
	return &Repo{db: db, schema: schema, paths: paths}
}

const baseColumns = "id, name, memo_user, recipe_url, tags, favorite, is_public, photo_path, created_at"
const ownerColumns = "owner_id, edit_token, edit_token_created_at"

func (r *Repo) selectColumns() string {
	if r.schema.OwnerColumns {
		return baseColumns + ", " + ownerColumns
	}
	return baseColumns
}

// Insert persists a dish and, when photo is non-nil, writes its bytes to the
// resolved storage path and records that path on the row. The row insert and
// the photo-path update happen in one transaction; if anything after the row
// insert fails, the transaction is rolled back and a partially written photo
// file is removed best-effort.
func (r *Repo) Insert(ctx context.Context, d *domain.Dish, photo *Photo) (int64, error) {
	var id int64
	var photoPath string

	err := sqlite.WithTx(ctx, r.db, func(ctx context.Context, tx sqlite.DBTX) error {
		cols := []string{"name", "memo_user", "recipe_url", "tags", "favorite", "is_public", "created_at"}
		vals := []any{d.Name, d.Memo, d.RecipeURL, d.Tags, d.Favorite, d.IsPublic, sqlite.FormatTime(d.CreatedAt)}
		if r.schema.OwnerColumns {
			cols = append(cols, "owner_id", "edit_token", "edit_token_created_at")
			vals = append(vals, d.OwnerID, d.EditToken, sqlite.FormatTimePtr(d.EditTokenCreatedAt))
		}

		query, args, err := sq.Insert("dishes").Columns(cols...).Values(vals...).ToSql()
		if err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return err
		}
		if id, err = res.LastInsertId(); err != nil {
			return err
		}

		if photo == nil {
			return nil
		}

		var ownerID *int64
		if r.schema.OwnerColumns {
			ownerID = d.OwnerID
		}
		path, err := r.paths.DishPhotoPath(id, photo.Filename, ownerID)
		if err != nil {
			return err
		}
		// Record the path before writing so the cleanup below also catches
		// a write that fails after creating the file.
		photoPath = path
		if err := os.WriteFile(path, photo.Data, 0o644); err != nil {
			return fmt.Errorf("write photo: %w", err)
		}

		_, err = tx.ExecContext(ctx, `UPDATE dishes SET photo_path = ? WHERE id = ?`, path, id)
		return err
	})
	if err != nil {
		if photoPath != "" {
			_ = os.Remove(photoPath)
		}
		return 0, sqlite.MapError(err, "dish")
	}

	if photoPath != "" {
		d.PhotoPath = &photoPath
	}
	d.ID = id
	return id, nil
}

// GetByID returns a dish by primary key.
func (r *Repo) GetByID(ctx context.Context, id int64) (*domain.Dish, error) {
	query, args, err := sq.Select(strings.Split(r.selectColumns(), ", ")...).
		From("dishes").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, sqlite.MapError(err, "dish")
	}

	d, err := r.scanDish(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, sqlite.MapError(err, "dish")
	}
	return d, nil
}

// List returns dishes matching the filter, newest first, capped at the
// filter's limit.
func (r *Repo) List(ctx context.Context, f Filter) ([]domain.Dish, error) {
	f.normalize()

	builder := sq.Select(strings.Split(r.selectColumns(), ", ")...).
		From("dishes").
		OrderBy("created_at DESC").
		Limit(uint64(f.Limit))

	if f.Keyword != "" {
		like := "%" + strings.ToLower(f.Keyword) + "%"
		builder = builder.Where(
			"(LOWER(name) LIKE ? OR LOWER(memo_user) LIKE ? OR LOWER(COALESCE(recipe_url, '')) LIKE ?)",
			like, like, like,
		)
	}
	for _, tag := range f.Tags {
		builder = builder.Where("LOWER(tags) LIKE ?", "%"+strings.ToLower(tag)+"%")
	}
	if f.FavoriteOnly {
		builder = builder.Where(sq.Eq{"favorite": true})
	}
	if f.PublicOnly {
		builder = builder.Where(sq.Eq{"is_public": true})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, sqlite.MapError(err, "dish")
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, sqlite.MapError(err, "dish")
	}
	defer rows.Close()

	var dishes []domain.Dish
	for rows.Next() {
		d, err := r.scanDish(rows)
		if err != nil {
			return nil, sqlite.MapError(err, "dish")
		}
		dishes = append(dishes, *d)
	}
	return dishes, rows.Err()
}

// PhotoRef is a dish's photo reference as consumed by the image audit.
type PhotoRef struct {
	ID        int64
	PhotoPath *string
}

// PublicPhotoRefs returns the id and photo path of every public dish. It
// deliberately applies no limit: the image audit must see the whole gallery,
// not the first page of it.
func (r *Repo) PublicPhotoRefs(ctx context.Context) ([]PhotoRef, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, photo_path FROM dishes WHERE is_public = 1 ORDER BY id`)
	if err != nil {
		return nil, sqlite.MapError(err, "dish")
	}
	defer rows.Close()

	var refs []PhotoRef
	for rows.Next() {
		var ref PhotoRef
		if err := rows.Scan(&ref.ID, &ref.PhotoPath); err != nil {
			return nil, sqlite.MapError(err, "dish")
		}
		refs = append(refs, ref)
	}
	return refs, rows.Err()
}

// ToggleFavorite sets the favorite flag. The update is unconditional and
// succeeds silently when the id does not exist.
func (r *Repo) ToggleFavorite(ctx context.Context, id int64, value bool) error {
	_, err := r.db.ExecContext(ctx, `UPDATE dishes SET favorite = ? WHERE id = ?`, value, id)
	return sqlite.MapError(err, "dish")
}

// Claim binds an ownerless dish to the account named username, creating a
// placeholder account (no password) when none exists. It succeeds only when
// the row matches both id and the current edit token exactly; any mismatch
// reports ErrNotFound and leaves the row unmodified. The edit token is the
// sole access control here, so callers must treat it as a capability secret.
func (r *Repo) Claim(ctx context.Context, dishID int64, editToken, username string) error {
	if !r.schema.OwnerColumns {
		return fmt.Errorf("dish: %w", domain.ErrNotFound)
	}
	if editToken == "" {
		return fmt.Errorf("dish: %w", domain.ErrNotFound)
	}

	err := sqlite.WithTx(ctx, r.db, func(ctx context.Context, tx sqlite.DBTX) error {
		var id int64
		err := tx.QueryRowContext(ctx,
			`SELECT id FROM dishes WHERE id = ? AND edit_token = ?`,
			dishID, editToken,
		).Scan(&id)
		if err != nil {
			return err
		}

		var accountID int64
		err = tx.QueryRowContext(ctx,
			`SELECT id FROM accounts WHERE username = ?`, username,
		).Scan(&accountID)
		if errors.Is(err, sql.ErrNoRows) {
			res, insErr := tx.ExecContext(ctx,
				`INSERT INTO accounts (username, password_hash, created_at) VALUES (?, NULL, ?)`,
				username, sqlite.FormatTime(time.Now()),
			)
			if insErr != nil {
				return insErr
			}
			if accountID, insErr = res.LastInsertId(); insErr != nil {
				return insErr
			}
		} else if err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx,
			`UPDATE dishes SET owner_id = ?, edit_token = NULL, edit_token_created_at = NULL WHERE id = ?`,
			accountID, id,
		)
		return err
	})
	return sqlite.MapError(err, "dish")
}

// CountByOwnerSince counts the owner's dishes created at or after since.
// Used by the account rate gate.
func (r *Repo) CountByOwnerSince(ctx context.Context, ownerID int64, since time.Time) (int, error) {
	if !r.schema.OwnerColumns {
		return 0, fmt.Errorf("dish: owner columns not migrated: %w", domain.ErrNotFound)
	}

	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM dishes WHERE owner_id = ? AND created_at >= ?`,
		ownerID, sqlite.FormatTime(since),
	).Scan(&n)
	if err != nil {
		return 0, sqlite.MapError(err, "dish")
	}
	return n, nil
}

// AllTags returns every distinct tag across all dishes, sorted
// case-insensitively. Used to populate the tag filter.
func (r *Repo) AllTags(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT tags FROM dishes WHERE tags <> ''`)
	if err != nil {
		return nil, sqlite.MapError(err, "dish")
	}
	defer rows.Close()

	seen := make(map[string]string)
	for rows.Next() {
		var field string
		if err := rows.Scan(&field); err != nil {
			return nil, sqlite.MapError(err, "dish")
		}
		for _, tag := range domain.SplitTagField(field) {
			lowered := strings.ToLower(tag)
			if _, ok := seen[lowered]; !ok {
				seen[lowered] = tag
			}
		}
	}
	if err := rows.Err(); err != nil {
		return nil, sqlite.MapError(err, "dish")
	}

	tags := make([]string, 0, len(seen))
	for _, tag := range seen {
		tags = append(tags, tag)
	}
	sort.Slice(tags, func(i, j int) bool {
		return strings.ToLower(tags[i]) < strings.ToLower(tags[j])
	})
	return tags, nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func (r *Repo) scanDish(row rowScanner) (*domain.Dish, error) {
	var d domain.Dish
	var favorite, isPublic int
	var createdAt string
	var editTokenCreatedAt *string

	dest := []any{
		&d.ID, &d.Name, &d.Memo, &d.RecipeURL, &d.Tags,
		&favorite, &isPublic, &d.PhotoPath, &createdAt,
	}
	if r.schema.OwnerColumns {
		dest = append(dest, &d.OwnerID, &d.EditToken, &editTokenCreatedAt)
	}

	if err := row.Scan(dest...); err != nil {
		return nil, err
	}

	d.Favorite = favorite != 0
	d.IsPublic = isPublic != 0

	var err error
	if d.CreatedAt, err = sqlite.ParseTime(createdAt); err != nil {
		return nil, err
	}
	if d.EditTokenCreatedAt, err = sqlite.ParseTimePtr(editTokenCreatedAt); err != nil {
		return nil, err
	}
	return &d, nil
}
