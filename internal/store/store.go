// Package store selects the record store backing every persisted collection.
package store

import (
	"context"
	"fmt"
	"io"

	"github.com/zhouzirui/persona-studio/backend/internal/config"
	"github.com/zhouzirui/persona-studio/backend/internal/model/chat"
	"github.com/zhouzirui/persona-studio/backend/internal/model/persona"
	"github.com/zhouzirui/persona-studio/backend/internal/model/share"
	"github.com/zhouzirui/persona-studio/backend/internal/model/upload"
	"github.com/zhouzirui/persona-studio/backend/internal/store/memory"
	"github.com/zhouzirui/persona-studio/backend/internal/store/redisstore"
	"github.com/zhouzirui/persona-studio/backend/internal/store/sqlstore"
)

// Store is the full set of collections the service persists.
type Store interface {
	persona.SessionStore
	share.Store
	chat.TurnStore
	upload.Store
	io.Closer
}

var (
	_ Store = (*memory.Store)(nil)
	_ Store = (*redisstore.Store)(nil)
	_ Store = (*sqlstore.Store)(nil)
)

// Open builds the backend named by cfg.Backend.
func Open(ctx context.Context, cfg config.StoreConfig) (Store, error) {
	switch cfg.Backend {
	case "", config.StoreMemory:
		return memory.New(), nil
	case config.StoreRedis:
		s, err := redisstore.Open(ctx, redisstore.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Prefix:   cfg.RedisPrefix,
		})
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.StoreLibSQL:
		s, err := sqlstore.Open(ctx, cfg.LibSQLPath)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}
