package mirror_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stickylist/internal/config"
	"stickylist/internal/mirror"
)

func drivers(t *testing.T) map[string]func(t *testing.T) mirror.Store {
	return map[string]func(t *testing.T) mirror.Store{
		"file": func(t *testing.T) mirror.Store {
			return mirror.NewFileStore(filepath.Join(t.TempDir(), "storage.json"))
		},
		"sqlite": func(t *testing.T) mirror.Store {
			s, err := mirror.OpenSQLite(filepath.Join(t.TempDir(), "storage.db"))
			require.NoError(t, err)
			t.Cleanup(func() { _ = s.Close() })
			return s
		},
		"redis": func(t *testing.T) mirror.Store {
			srv := miniredis.RunT(t)
			s := mirror.NewRedisStore(redis.NewClient(&redis.Options{Addr: srv.Addr()}), "")
			t.Cleanup(func() { _ = s.Close() })
			return s
		},
		"memory": func(t *testing.T) mirror.Store {
			return mirror.NewMemoryStore()
		},
	}
}

func TestStoreContract(t *testing.T) {
	for name, open := range drivers(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := open(t)

			_, ok, err := s.Get(ctx, "missing")
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, s.Set(ctx, mirror.KeyToken, "abc"))
			v, ok, err := s.Get(ctx, mirror.KeyToken)
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, "abc", v)

			require.NoError(t, s.Set(ctx, mirror.KeyToken, "def"))
			v, _, err = s.Get(ctx, mirror.KeyToken)
			require.NoError(t, err)
			assert.Equal(t, "def", v)

			require.NoError(t, s.Set(ctx, mirror.KeyToken, ""))
			v, ok, err = s.Get(ctx, mirror.KeyToken)
			require.NoError(t, err)
			assert.True(t, ok, "empty values are still present")
			assert.Equal(t, "", v)

			require.NoError(t, s.Delete(ctx, mirror.KeyToken))
			_, ok, err = s.Get(ctx, mirror.KeyToken)
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, s.Delete(ctx, "never-set"))
		})
	}
}

func TestJSONHelpers(t *testing.T) {
	ctx := context.Background()
	s := mirror.NewMemoryStore()

	type item struct {
		ID string `json:"id"`
	}
	require.NoError(t, mirror.PutJSON(ctx, s, mirror.TasksKey("c1"), []item{{ID: "t1"}}))
	assert.Equal(t, []string{`[{"id":"t1"}]`}, s.WritesTo("tasks_c1"))

	var got []item
	ok, err := mirror.GetJSON(ctx, s, "tasks_c1", &got)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []item{{ID: "t1"}}, got)

	ok, err = mirror.GetJSON(ctx, s, "tasks_c2", &got)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set(ctx, "broken", "{"))
	_, err = mirror.GetJSON(ctx, s, "broken", &got)
	assert.Error(t, err)
}

func TestFileStore_PersistsAcrossInstances(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "storage.json")

	require.NoError(t, mirror.NewFileStore(path).Set(ctx, "checklists", "[]"))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	v, ok, err := mirror.NewFileStore(path).Get(ctx, "checklists")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "[]", v)
}

func TestFileStore_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storage.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0600))

	_, _, err := mirror.NewFileStore(path).Get(context.Background(), "token")
	assert.Error(t, err)
}

func TestRedisStore_Prefix(t *testing.T) {
	srv := miniredis.RunT(t)
	s := mirror.NewRedisStore(redis.NewClient(&redis.Options{Addr: srv.Addr()}), "")
	defer s.Close()

	require.NoError(t, s.Set(context.Background(), mirror.KeyChecklists, "[]"))
	v, err := srv.Get(mirror.DefaultRedisPrefix + mirror.KeyChecklists)
	require.NoError(t, err)
	assert.Equal(t, "[]", v)
}

func TestDialRedis(t *testing.T) {
	ctx := context.Background()
	srv := miniredis.RunT(t)

	s, err := mirror.DialRedis(ctx, srv.Addr(), 0)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Set(ctx, mirror.KeyToken, "abc"))
	v, err := srv.Get(mirror.DefaultRedisPrefix + mirror.KeyToken)
	require.NoError(t, err)
	assert.Equal(t, "abc", v)

	srv.Close()
	_, err = mirror.DialRedis(ctx, srv.Addr(), 0)
	assert.Error(t, err)
}

func TestMemoryStore_ErrorInjection(t *testing.T) {
	ctx := context.Background()
	s := mirror.NewMemoryStore()
	s.SetErr = errors.New("disk full")

	assert.Error(t, s.Set(ctx, "k", "v"))
	assert.Empty(t, s.Writes())
	_, ok, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	cfg := config.Default(t.TempDir())

	s, err := mirror.Open(ctx, cfg)
	require.NoError(t, err)
	assert.IsType(t, &mirror.FileStore{}, s)

	cfg.Mirror = config.MirrorSQLite
	s, err = mirror.Open(ctx, cfg)
	require.NoError(t, err)
	assert.IsType(t, &mirror.SQLiteStore{}, s)
	require.NoError(t, s.Close())

	srv := miniredis.RunT(t)
	cfg.Mirror = config.MirrorRedis
	cfg.RedisAddr = srv.Addr()
	s, err = mirror.Open(ctx, cfg)
	require.NoError(t, err)
	assert.IsType(t, &mirror.RedisStore{}, s)
	require.NoError(t, s.Close())

	cfg.Mirror = "tape"
	_, err = mirror.Open(ctx, cfg)
	assert.Error(t, err)
}
