package store

import (
	"context"
	"os"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/seqkit/core"
	"github.com/rushteam/seqkit/dataset"
)

// 需要真实的 Redis：REDIS_ADDR=127.0.0.1:6379 go test ./store/
func newTestRedis(t *testing.T) *RedisStore {
	t.Helper()
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	s, err := NewRedisStore(addr, 15)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestRedisStore_Hash(t *testing.T) {
	ctx := context.Background()
	s := newTestRedis(t)
	key := "seqkit:test:hash"
	t.Cleanup(func() { _ = s.Delete(ctx, key) })

	require.NoError(t, s.HMSet(ctx, key, map[string][]byte{"a": []byte("1"), "b": []byte("2")}))
	v, err := s.HGet(ctx, key, "a")
	require.NoError(t, err)
	assert.Equal(t, []byte("1"), v)

	_, err = s.HGet(ctx, key, "missing")
	assert.True(t, core.IsStoreNotFound(err))
}

func TestRedisStore_VocabRoundTrip(t *testing.T) {
	ctx := context.Background()
	vocab := &Vocab{KV: newTestRedis(t), Prefix: "seqkit:test"}
	t.Cleanup(func() { _ = vocab.Delete(ctx, "items") })

	reg := dataset.NewRegistry()
	for i := 0; i < 2500; i++ {
		reg.Encode("item" + strconv.Itoa(i))
	}
	require.NoError(t, vocab.Save(ctx, "items", reg))

	got, err := vocab.Load(ctx, "items")
	require.NoError(t, err)
	assert.Equal(t, reg.Map(), got.Map())
}
