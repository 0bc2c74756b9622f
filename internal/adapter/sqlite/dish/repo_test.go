package dish

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mgoto/recipelog/internal/adapter/sqlite/testhelper"
	"github.com/mgoto/recipelog/internal/domain"
	"github.com/mgoto/recipelog/internal/storage"
)

func newRepo(t *testing.T) *Repo {
	t.Helper()
	db, schema := testhelper.OpenMigrated(t)
	return New(db, schema, storage.NewResolver(t.TempDir()))
}

func strPtr(s string) *string { return &s }
func i64Ptr(v int64) *int64   { return &v }

func sampleDish(name string) *domain.Dish {
	return &domain.Dish{
		Name:      name,
		Memo:      "memo for " + name,
		Tags:      "和食,10分",
		CreatedAt: time.Now(),
	}
}

func TestRepo_Insert_NoPhoto(t *testing.T) {
	ctx := context.Background()
	r := newRepo(t)

	d := sampleDish("teriyaki")
	d.RecipeURL = strPtr("https://example.com/teriyaki")
	d.OwnerID = i64Ptr(mustCreateAccount(t, r, "alice"))

	id, err := r.Insert(ctx, d, nil)
	require.NoError(t, err)
	require.Positive(t, id)

	got, err := r.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "teriyaki", got.Name)
	assert.Equal(t, "和食,10分", got.Tags)
	assert.Equal(t, []string{"和食", "10分"}, got.TagList())
	assert.Nil(t, got.PhotoPath)
	require.NotNil(t, got.OwnerID)
}

func TestRepo_Insert_WithPhoto_RoundTrip(t *testing.T) {
	ctx := context.Background()
	r := newRepo(t)

	photo := &Photo{Filename: "dinner.PNG", Data: []byte("fake png bytes")}
	id, err := r.Insert(ctx, sampleDish("curry"), photo)
	require.NoError(t, err)

	got, err := r.GetByID(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, got.PhotoPath)

	// The stored path must exist on disk with the uploaded bytes.
	data, err := os.ReadFile(*got.PhotoPath)
	require.NoError(t, err)
	assert.Equal(t, []byte("fake png bytes"), data)
	assert.Contains(t, *got.PhotoPath, "cover.png")
}

func TestRepo_Insert_PhotoWriteFailureRollsBack(t *testing.T) {
	ctx := context.Background()
	db, schema := testhelper.OpenMigrated(t)
	r := New(db, schema, failingResolver{})

	_, err := r.Insert(ctx, sampleDish("lost"), &Photo{Filename: "a.jpg", Data: []byte("x")})
	require.Error(t, err)

	// The row insert must have been rolled back with the photo step.
	dishes, err := r.List(ctx, Filter{})
	require.NoError(t, err)
	assert.Empty(t, dishes)
}

type failingResolver struct{}

func (failingResolver) DishPhotoPath(int64, string, *int64) (string, error) {
	return "", os.ErrPermission
}

func TestRepo_List_Filters(t *testing.T) {
	ctx := context.Background()
	r := newRepo(t)

	base := time.Now().Add(-time.Hour)
	insert := func(name, memo, tags string, favorite, public bool, at time.Time) int64 {
		id, err := r.Insert(ctx, &domain.Dish{
			Name: name, Memo: memo, Tags: tags,
			Favorite: favorite, IsPublic: public, CreatedAt: at,
		}, nil)
		require.NoError(t, err)
		return id
	}

	insert("鶏むね肉の照り焼き", "weeknight staple", "和食,鶏肉", true, false, base)
	insert("carbonara", "pasta night", "洋食,パスタ", false, true, base.Add(time.Minute))
	insert("udon", "quick lunch", "和食,10分", false, false, base.Add(2*time.Minute))

	// No filter: newest first.
	all, err := r.List(ctx, Filter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "udon", all[0].Name)
	assert.Equal(t, "鶏むね肉の照り焼き", all[2].Name)

	// Keyword matches name/memo/url case-insensitively.
	byKeyword, err := r.List(ctx, Filter{Keyword: "PASTA"})
	require.NoError(t, err)
	require.Len(t, byKeyword, 1)
	assert.Equal(t, "carbonara", byKeyword[0].Name)

	// Tag filter is a substring test on the joined tag text.
	byTag, err := r.List(ctx, Filter{Tags: []string{"和食"}})
	require.NoError(t, err)
	assert.Len(t, byTag, 2)

	favorites, err := r.List(ctx, Filter{FavoriteOnly: true})
	require.NoError(t, err)
	require.Len(t, favorites, 1)
	assert.Equal(t, "鶏むね肉の照り焼き", favorites[0].Name)

	public, err := r.List(ctx, Filter{PublicOnly: true})
	require.NoError(t, err)
	require.Len(t, public, 1)
	assert.Equal(t, "carbonara", public[0].Name)

	limited, err := r.List(ctx, Filter{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestRepo_PublicPhotoRefs_Unbounded(t *testing.T) {
	ctx := context.Background()
	r := newRepo(t)

	// One more public entry than List ever returns in a single page.
	const n = MaxLimit + 1
	for i := 0; i < n; i++ {
		d := sampleDish(fmt.Sprintf("gallery-%d", i))
		d.IsPublic = true
		id, err := r.Insert(ctx, d, nil)
		require.NoError(t, err)
		_, err = r.db.ExecContext(ctx,
			`UPDATE dishes SET photo_path = ? WHERE id = ?`,
			fmt.Sprintf("/media/dishes/%d/cover.jpg", id), id)
		require.NoError(t, err)
	}
	_, err := r.Insert(ctx, sampleDish("private"), nil)
	require.NoError(t, err)

	refs, err := r.PublicPhotoRefs(ctx)
	require.NoError(t, err)
	require.Len(t, refs, n)

	// The first entry is part of the result, not truncated away.
	assert.Equal(t, int64(1), refs[0].ID)
	require.NotNil(t, refs[0].PhotoPath)
	assert.Equal(t, "/media/dishes/1/cover.jpg", *refs[0].PhotoPath)
}

func TestRepo_Insert_PhotoRemovedWhenTxFails(t *testing.T) {
	ctx := context.Background()
	db, schema := testhelper.OpenMigrated(t)
	media := t.TempDir()
	r := New(db, schema, storage.NewResolver(media))

	// Make the photo-path update fail after the file has reached the disk.
	_, err := db.ExecContext(ctx, `
		CREATE TRIGGER reject_photo_path BEFORE UPDATE OF photo_path ON dishes
		BEGIN SELECT RAISE(ABORT, 'photo path rejected'); END`)
	require.NoError(t, err)

	_, err = r.Insert(ctx, sampleDish("ghost"), &Photo{Filename: "a.jpg", Data: []byte("x")})
	require.Error(t, err)

	// The written file must have been cleaned up with the rollback.
	var files []string
	err = filepath.WalkDir(media, func(path string, d fs.DirEntry, err error) error {
		if err == nil && !d.IsDir() {
			files = append(files, path)
		}
		return err
	})
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestRepo_ToggleFavorite(t *testing.T) {
	ctx := context.Background()
	r := newRepo(t)

	id, err := r.Insert(ctx, sampleDish("soup"), nil)
	require.NoError(t, err)

	require.NoError(t, r.ToggleFavorite(ctx, id, true))
	got, err := r.GetByID(ctx, id)
	require.NoError(t, err)
	assert.True(t, got.Favorite)

	require.NoError(t, r.ToggleFavorite(ctx, id, false))
	got, err = r.GetByID(ctx, id)
	require.NoError(t, err)
	assert.False(t, got.Favorite)

	// Absent id: silently succeeds.
	assert.NoError(t, r.ToggleFavorite(ctx, 99999, true))
}

func TestRepo_Claim(t *testing.T) {
	ctx := context.Background()
	r := newRepo(t)

	d := sampleDish("anonymous dish")
	d.EditToken = strPtr("secret-token-abc")
	now := time.Now()
	d.EditTokenCreatedAt = &now
	id, err := r.Insert(ctx, d, nil)
	require.NoError(t, err)

	// Wrong token: not found, row untouched.
	err = r.Claim(ctx, id, "wrong", "alice")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	got, err := r.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, got.OwnerID)
	require.NotNil(t, got.EditToken)

	// Exact token: owner set, token cleared, placeholder account created.
	require.NoError(t, r.Claim(ctx, id, "secret-token-abc", "alice"))

	got, err = r.GetByID(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, got.OwnerID)
	assert.Nil(t, got.EditToken)
	assert.Nil(t, got.EditTokenCreatedAt)

	// Token is single-use: replay fails.
	err = r.Claim(ctx, id, "secret-token-abc", "mallory")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRepo_Claim_EmptyTokenNeverMatches(t *testing.T) {
	ctx := context.Background()
	r := newRepo(t)

	id, err := r.Insert(ctx, sampleDish("tokenless"), nil)
	require.NoError(t, err)

	// A row whose edit_token is NULL must not be claimable with "".
	err = r.Claim(ctx, id, "", "alice")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRepo_CountByOwnerSince(t *testing.T) {
	ctx := context.Background()
	r := newRepo(t)

	owner := mustCreateAccount(t, r, "bob")
	now := time.Now()

	for i := 0; i < 3; i++ {
		d := sampleDish("recent")
		d.OwnerID = &owner
		d.CreatedAt = now.Add(-time.Duration(i) * time.Hour)
		_, err := r.Insert(ctx, d, nil)
		require.NoError(t, err)
	}
	old := sampleDish("old")
	old.OwnerID = &owner
	old.CreatedAt = now.Add(-25 * time.Hour)
	_, err := r.Insert(ctx, old, nil)
	require.NoError(t, err)

	n, err := r.CountByOwnerSince(ctx, owner, now.Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestRepo_AllTags(t *testing.T) {
	ctx := context.Background()
	r := newRepo(t)

	for _, tags := range []string{"和食,鶏肉", "Pasta,和食", ""} {
		d := sampleDish("x")
		d.Tags = tags
		_, err := r.Insert(ctx, d, nil)
		require.NoError(t, err)
	}

	tags, err := r.AllTags(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Pasta", "和食", "鶏肉"}, tags)
}

// mustCreateAccount inserts an account row directly; the dish repo only
// references accounts, it does not manage them.
func mustCreateAccount(t *testing.T, r *Repo, username string) int64 {
	t.Helper()
	res, err := r.db.ExecContext(context.Background(),
		`INSERT INTO accounts (username, password_hash, created_at) VALUES (?, NULL, ?)`,
		username, time.Now().UTC().Format(time.RFC3339Nano))
	require.NoError(t, err)
	id, err := res.LastInsertId()
	require.NoError(t, err)
	return id
}
