package redisstore_test

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhouzirui/persona-studio/backend/internal/apperr"
	"github.com/zhouzirui/persona-studio/backend/internal/model/persona"
	"github.com/zhouzirui/persona-studio/backend/internal/model/share"
	"github.com/zhouzirui/persona-studio/backend/internal/store/redisstore"
	"github.com/zhouzirui/persona-studio/backend/internal/store/storetest"
)

func newTestStore(t *testing.T) (*redisstore.Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	s := redisstore.New(client, "test")
	t.Cleanup(func() { _ = s.Close() })
	return s, mr
}

func TestRedisStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) storetest.Backend {
		s, _ := newTestStore(t)
		return s
	})
}

func TestRedisStoreKeyLayout(t *testing.T) {
	s, mr := newTestStore(t)
	ctx := t.Context()
	now := time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)

	require.NoError(t, s.CreateSession(ctx, persona.Session{ID: "abc", CreatedAt: now}))
	require.NoError(t, s.CreateShare(ctx, share.Record{ID: "xyz", CreatedAt: now, ExpiresAt: now.Add(share.DefaultTTL)}))
	_, err := s.RecordShareAccess(ctx, "xyz", now)
	require.NoError(t, err)

	assert.True(t, mr.Exists("test:session:abc"))
	assert.Equal(t, "1", mr.HGet("test:share:xyz", "access_count"))
	assert.False(t, mr.Exists("test:share:missing"))

	_, err = s.RecordShareAccess(ctx, "missing", now)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.False(t, mr.Exists("test:share:missing"), "access on a missing share must not create it")
}

func TestOpenUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := redisstore.Open(t.Context(), redisstore.Options{Addr: addr})
	require.Error(t, err)
}
