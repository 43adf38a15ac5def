package tokenstore_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jrsteele09/sgo-connect/internal/config"
	"github.com/jrsteele09/sgo-connect/profiles"
	"github.com/jrsteele09/sgo-connect/tokenstore"
	"github.com/stretchr/testify/require"
)

func sampleSnapshot() tokenstore.Snapshot {
	record := tokenstore.NewTokenRecord("access", "refresh",
		time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC),
		[]profiles.UserProfile{{
			ID:       1,
			IsParent: true,
			Organizations: []profiles.OrganizationMembership{{
				Organization: profiles.Organization{ID: 10, Name: "School"},
				IsActive:     true,
				Classes:      []profiles.Class{{ClassID: 3, ClassName: "3B"}},
			}},
			Children: []profiles.UserProfile{{ID: 2, IsStudent: true}},
		}},
	)
	user := 2
	return tokenstore.Snapshot{
		Tokens:    []tokenstore.TokenRecord{record},
		Selection: tokenstore.Selection{SelectedTokenID: &record.ID, SelectedUserID: &user},
	}
}

func exerciseRepo(t *testing.T, repo tokenstore.Repo) {
	t.Helper()
	ctx := context.Background()

	empty, err := repo.Load(ctx)
	require.NoError(t, err)
	require.Empty(t, empty.Tokens)
	require.Nil(t, empty.Selection.SelectedTokenID)

	want := sampleSnapshot()
	require.NoError(t, repo.Save(ctx, want))
	got, err := repo.Load(ctx)
	require.NoError(t, err)
	require.Len(t, got.Tokens, 1)
	require.Equal(t, want.Tokens[0].ID, got.Tokens[0].ID)
	require.True(t, want.Tokens[0].ExpiresAt.Equal(got.Tokens[0].ExpiresAt))
	require.Equal(t, want.Tokens[0].Users, got.Tokens[0].Users)
	require.Equal(t, *want.Selection.SelectedTokenID, *got.Selection.SelectedTokenID)
	require.Equal(t, 2, *got.Selection.SelectedUserID)

	require.NoError(t, repo.Save(ctx, tokenstore.Snapshot{}))
	got, err = repo.Load(ctx)
	require.NoError(t, err)
	require.Empty(t, got.Tokens)
	require.Nil(t, got.Selection.SelectedUserID)
}

func TestMemoryRepo(t *testing.T) {
	exerciseRepo(t, tokenstore.NewMemoryRepo())
}

func TestFileRepo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "tokens.json")
	repo, err := tokenstore.NewFileRepo(path)
	require.NoError(t, err)
	exerciseRepo(t, repo)

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	require.Len(t, entries, 1, "no temp files left behind")
}

func TestFileRepo_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tokens.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	repo, err := tokenstore.NewFileRepo(path)
	require.NoError(t, err)
	_, err = repo.Load(context.Background())
	require.Error(t, err)
}

func TestSQLiteRepo(t *testing.T) {
	repo, err := tokenstore.OpenSQLite(filepath.Join(t.TempDir(), "tokens.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	exerciseRepo(t, repo)
}

func TestRedisRepo(t *testing.T) {
	addr := os.Getenv("SGO_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("SGO_TEST_REDIS_ADDR not set")
	}
	repo, err := tokenstore.OpenRedis(context.Background(), addr, "", 0, "sgoconnect:test:"+t.Name())
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	exerciseRepo(t, repo)
}

func TestOpenRepo(t *testing.T) {
	dir := t.TempDir()
	for _, tc := range []struct {
		backend string
		path    string
	}{
		{backend: "memory"},
		{backend: "file", path: filepath.Join(dir, "tokens.json")},
		{backend: "sqlite", path: filepath.Join(dir, "tokens.db")},
	} {
		t.Run(tc.backend, func(t *testing.T) {
			cfg, err := config.NewFromMap(map[string]string{
				"SGO_STORE_BACKEND": tc.backend,
				"SGO_STORE_PATH":    tc.path,
			})
			require.NoError(t, err)

			repo, closeRepo, err := tokenstore.OpenRepo(context.Background(), cfg)
			require.NoError(t, err)
			t.Cleanup(func() { _ = closeRepo() })

			store, err := tokenstore.New(repo)
			require.NoError(t, err)
			require.NoError(t, store.AddToken(context.Background(), tokenstore.NewTokenRecord("a", "r", time.Now(), nil)))
		})
	}

	t.Run("unknown backend", func(t *testing.T) {
		cfg, err := config.NewFromMap(map[string]string{"SGO_STORE_BACKEND": "etcd"})
		require.NoError(t, err)
		_, closeRepo, err := tokenstore.OpenRepo(context.Background(), cfg)
		require.Error(t, err)
		require.NotNil(t, closeRepo)
	})
}
