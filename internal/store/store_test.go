package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhouzirui/persona-studio/backend/internal/config"
	"github.com/zhouzirui/persona-studio/backend/internal/store/memory"
)

func TestOpenBackends(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)

	cases := map[string]config.StoreConfig{
		"default": {},
		"memory":  {Backend: config.StoreMemory},
		"redis":   {Backend: config.StoreRedis, RedisAddr: mr.Addr()},
		"libsql":  {Backend: config.StoreLibSQL, LibSQLPath: filepath.Join(t.TempDir(), "persona.db")},
	}
	for name, cfg := range cases {
		t.Run(name, func(t *testing.T) {
			st, err := Open(ctx, cfg)
			require.NoError(t, err)
			require.NotNil(t, st)
			assert.NoError(t, st.Close())
		})
	}

	st, err := Open(ctx, config.StoreConfig{})
	require.NoError(t, err)
	assert.IsType(t, &memory.Store{}, st)
}

func TestOpenErrors(t *testing.T) {
	st, err := Open(context.Background(), config.StoreConfig{Backend: "mongo"})
	assert.Error(t, err)
	assert.Nil(t, st)

	st, err = Open(context.Background(), config.StoreConfig{Backend: config.StoreRedis, RedisAddr: "127.0.0.1:1"})
	assert.Error(t, err)
	assert.Nil(t, st)
}
