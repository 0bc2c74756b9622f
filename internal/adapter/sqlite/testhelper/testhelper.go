// Package testhelper opens fully migrated in-memory databases for
// repository tests.
package testhelper

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/mgoto/recipelog/internal/migrate"
	"github.com/mgoto/recipelog/internal/migrate/migrations"
)

var seq atomic.Int64

// OpenMigrated returns an in-memory SQLite database with every shipped
// migration applied, plus the derived schema capabilities. The database is
// closed via t.Cleanup.
func OpenMigrated(t *testing.T) (*sql.DB, migrate.Schema) {
	t.Helper()

	dsn := fmt.Sprintf("file:repo_test_%d?mode=memory&cache=shared", seq.Add(1))
	db, err := sql.Open("sqlite", dsn)
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	ctx := context.Background()
	runner := migrate.New(db, migrations.FS, slog.New(slog.DiscardHandler))
	require.NoError(t, runner.Apply(ctx))

	records, err := runner.Applied(ctx)
	require.NoError(t, err)
	return db, migrate.SchemaFromRecords(records)
}
