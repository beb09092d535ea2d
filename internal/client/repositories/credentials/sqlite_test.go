package credentials

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", "file:credrepo?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE credentials (
  key   TEXT PRIMARY KEY,
  value BLOB NOT NULL
);
`)
	require.NoError(t, err)
	return db
}

func TestGet_MissingKeyReturnsNil(t *testing.T) {
	repo := NewSQLiteRepository(setupDB(t))

	v, err := repo.Get(context.Background(), "nope")
	require.NoError(t, err)
	require.Nil(t, v)
}

func TestSetGet_RoundTripAndOverwrite(t *testing.T) {
	repo := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, "access_token", []byte("one")))

	v, err := repo.Get(ctx, "access_token")
	require.NoError(t, err)
	require.Equal(t, []byte("one"), v)

	require.NoError(t, repo.Set(ctx, "access_token", []byte("two")))

	v, err = repo.Get(ctx, "access_token")
	require.NoError(t, err)
	require.Equal(t, []byte("two"), v)
}

func TestDelete(t *testing.T) {
	repo := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, "k", []byte("v")))
	require.NoError(t, repo.Delete(ctx, "k"))

	v, err := repo.Get(ctx, "k")
	require.NoError(t, err)
	require.Nil(t, v)

	// Deleting a missing key is not an error.
	require.NoError(t, repo.Delete(ctx, "k"))
}

func TestClear_RemovesAllAndIsIdempotent(t *testing.T) {
	repo := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, "a", []byte("1")))
	require.NoError(t, repo.Set(ctx, "b", []byte("2")))

	require.NoError(t, repo.Clear(ctx))

	all, err := repo.List(ctx)
	require.NoError(t, err)
	require.Empty(t, all)

	require.NoError(t, repo.Clear(ctx))
}

func TestList(t *testing.T) {
	repo := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, "a", []byte("1")))
	require.NoError(t, repo.Set(ctx, "b", []byte("2")))

	all, err := repo.List(ctx)
	require.NoError(t, err)
	require.Equal(t, map[string][]byte{"a": []byte("1"), "b": []byte("2")}, all)
}

func TestOpen_RunsMigrations(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "creds.db")

	db, err := Open(context.Background(), dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	repo := NewSQLiteRepository(db)
	require.NoError(t, repo.Set(context.Background(), "k", []byte("v")))
}
