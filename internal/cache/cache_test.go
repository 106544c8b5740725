package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*Redis, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	c := NewRedisWithClient(client, DefaultConfig())
	t.Cleanup(func() { c.Close() })
	return c, mr
}

func TestMemory_SetGetDelete(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(DefaultConfig())

	require.NoError(t, m.Set(ctx, "k", []byte("v"), 0))

	got, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got)

	require.NoError(t, m.Delete(ctx, "k"))
	_, err = m.Get(ctx, "k")
	assert.True(t, IsMiss(err))
}

func TestMemory_Expiry(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(DefaultConfig())
	now := time.Now()
	m.now = func() time.Time { return now }

	require.NoError(t, m.Set(ctx, "k", []byte("v"), time.Minute))

	now = now.Add(2 * time.Minute)
	_, err := m.Get(ctx, "k")
	assert.True(t, IsMiss(err))
	assert.Equal(t, 0, m.Len())
}

func TestMemory_Clear(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(DefaultConfig())

	require.NoError(t, m.Set(ctx, "a", []byte("1"), 0))
	require.NoError(t, m.Set(ctx, "b", []byte("2"), 0))
	require.NoError(t, m.Clear(ctx))
	assert.Equal(t, 0, m.Len())
}

func TestMemory_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewMemory(DefaultConfig()).Get(ctx, "k")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRedis_SetGet(t *testing.T) {
	c, mr := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))
	assert.True(t, mr.Exists("ormschema:k"))

	got, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got)

	mr.FastForward(2 * time.Minute)
	_, err = c.Get(ctx, "k")
	assert.True(t, IsMiss(err))
}

func TestRedis_Clear(t *testing.T) {
	c, mr := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "a", []byte("1"), 0))
	require.NoError(t, c.Set(ctx, "b", []byte("2"), 0))
	require.NoError(t, mr.Set("other:key", "x"))

	require.NoError(t, c.Clear(ctx))

	assert.False(t, mr.Exists("ormschema:a"))
	assert.False(t, mr.Exists("ormschema:b"))
	assert.True(t, mr.Exists("other:key"))
}

func TestNewRedis_ConnectionError(t *testing.T) {
	_, err := NewRedis(context.Background(), RedisOptions{Addr: "localhost:1"}, DefaultConfig())
	assert.Error(t, err)
}

func TestTreeStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewTreeStore(NewMemory(DefaultConfig()), 0)

	_, ok, err := store.Load(ctx, "abc")
	require.NoError(t, err)
	assert.False(t, ok)

	tree := map[string]any{
		"entityDefs": map[string]any{
			"Account": map[string]any{
				"fields": map[string]any{"name": map[string]any{"type": "varchar", "required": true}},
			},
		},
		"list": []any{"a", "b"},
	}
	require.NoError(t, store.Save(ctx, "abc", tree))

	got, ok, err := store.Load(ctx, "abc")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, tree, got)
}

func TestTreeStore_CorruptEntry(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(DefaultConfig())
	require.NoError(t, m.Set(ctx, TreeKey("abc"), []byte{0xc1}, 0))

	_, _, err := NewTreeStore(m, 0).Load(ctx, "abc")
	assert.Error(t, err)
}
