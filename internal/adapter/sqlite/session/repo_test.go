package session

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mgoto/recipelog/internal/adapter/sqlite/testhelper"
	"github.com/mgoto/recipelog/internal/domain"
)

func newRepo(t *testing.T) (*Repo, *sql.DB) {
	t.Helper()
	db, _ := testhelper.OpenMigrated(t)
	return New(db), db
}

func createAccount(t *testing.T, db *sql.DB) int64 {
	t.Helper()
	res, err := db.Exec(
		`INSERT INTO accounts (username, created_at) VALUES (?, ?)`,
		"alice", time.Now().UTC().Format(time.RFC3339Nano))
	require.NoError(t, err)
	id, err := res.LastInsertId()
	require.NoError(t, err)
	return id
}

func TestRepo_Create_Get(t *testing.T) {
	ctx := context.Background()
	r, db := newRepo(t)
	accountID := createAccount(t, db)

	now := time.Now()
	s := &domain.Session{
		ID:        "sess-1",
		AccountID: accountID,
		CreatedAt: now,
		ExpiresAt: now.Add(30 * 24 * time.Hour),
	}
	require.NoError(t, r.Create(ctx, s))

	got, err := r.Get(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, accountID, got.AccountID)
	assert.Zero(t, got.SubmitCount)
	assert.Nil(t, got.VerifiedAt)
	assert.False(t, got.IsExpired(now))
}

func TestRepo_IncrementSubmitCount(t *testing.T) {
	ctx := context.Background()
	r, db := newRepo(t)
	accountID := createAccount(t, db)

	now := time.Now()
	require.NoError(t, r.Create(ctx, &domain.Session{
		ID: "sess-1", AccountID: accountID, CreatedAt: now, ExpiresAt: now.Add(time.Hour),
	}))

	for i := 0; i < 3; i++ {
		require.NoError(t, r.IncrementSubmitCount(ctx, "sess-1"))
	}

	got, err := r.Get(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, 3, got.SubmitCount)
}

func TestRepo_SetVerifiedAt(t *testing.T) {
	ctx := context.Background()
	r, db := newRepo(t)
	accountID := createAccount(t, db)

	now := time.Now()
	require.NoError(t, r.Create(ctx, &domain.Session{
		ID: "sess-1", AccountID: accountID, CreatedAt: now, ExpiresAt: now.Add(time.Hour),
	}))

	verifiedAt := now.Add(-time.Minute)
	require.NoError(t, r.SetVerifiedAt(ctx, "sess-1", verifiedAt))

	got, err := r.Get(ctx, "sess-1")
	require.NoError(t, err)
	require.NotNil(t, got.VerifiedAt)
	assert.True(t, got.VerifiedWithin(now, time.Hour))
}

func TestRepo_Delete(t *testing.T) {
	ctx := context.Background()
	r, db := newRepo(t)
	accountID := createAccount(t, db)

	now := time.Now()
	require.NoError(t, r.Create(ctx, &domain.Session{
		ID: "sess-1", AccountID: accountID, CreatedAt: now, ExpiresAt: now.Add(time.Hour),
	}))
	require.NoError(t, r.Delete(ctx, "sess-1"))

	_, err := r.Get(ctx, "sess-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRepo_DeleteExpired(t *testing.T) {
	ctx := context.Background()
	r, db := newRepo(t)
	accountID := createAccount(t, db)

	now := time.Now()
	require.NoError(t, r.Create(ctx, &domain.Session{
		ID: "live", AccountID: accountID, CreatedAt: now, ExpiresAt: now.Add(time.Hour),
	}))
	require.NoError(t, r.Create(ctx, &domain.Session{
		ID: "stale", AccountID: accountID, CreatedAt: now.Add(-2 * time.Hour), ExpiresAt: now.Add(-time.Hour),
	}))

	n, err := r.DeleteExpired(ctx, now)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	_, err = r.Get(ctx, "stale")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = r.Get(ctx, "live")
	assert.NoError(t, err)
}
