// Package redisstore keeps the service collections in Redis.
//
// Keys are namespaced as "{prefix}:session:{id}", "{prefix}:share:{id}"
// (a hash), "{prefix}:turns:{personaID}" (a list) and "{prefix}:file:{id}".
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/zhouzirui/persona-studio/backend/internal/apperr"
	"github.com/zhouzirui/persona-studio/backend/internal/model/chat"
	"github.com/zhouzirui/persona-studio/backend/internal/model/persona"
	"github.com/zhouzirui/persona-studio/backend/internal/model/share"
	"github.com/zhouzirui/persona-studio/backend/internal/model/upload"
)

const defaultPrefix = "persona"

// Share hash fields.
const (
	fieldData         = "data"
	fieldAccessCount  = "access_count"
	fieldLastAccessed = "last_accessed"
)

// recordAccess increments the counter and stamps last_accessed in one
// server-side step. A missing key yields a nil reply.
var recordAccess = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
  return false
end
redis.call('HINCRBY', KEYS[1], 'access_count', 1)
redis.call('HSET', KEYS[1], 'last_accessed', ARGV[1])
return redis.call('HMGET', KEYS[1], 'data', 'access_count', 'last_accessed')
`)

// Options configures Open.
type Options struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

// Store implements every collection on top of a go-redis client.
type Store struct {
	client redis.UniversalClient
	prefix string
}

// Open dials Redis and verifies the connection with PING.
func Open(ctx context.Context, opts Options) (*Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("%w: ping redis at %s: %v", apperr.ErrPersistence, opts.Addr, err)
	}
	return New(client, opts.Prefix), nil
}

// New wraps an existing client. An empty prefix falls back to "persona".
func New(client redis.UniversalClient, prefix string) *Store {
	if prefix == "" {
		prefix = defaultPrefix
	}
	return &Store{client: client, prefix: prefix}
}

func (s *Store) key(kind, id string) string {
	return fmt.Sprintf("%s:%s:%s", s.prefix, kind, id)
}

func (s *Store) CreateSession(ctx context.Context, session persona.Session) error {
	return s.putJSON(ctx, s.key("session", session.ID), session)
}

func (s *Store) GetSession(ctx context.Context, id string) (persona.Session, error) {
	var session persona.Session
	if err := s.getJSON(ctx, s.key("session", id), &session); err != nil {
		return persona.Session{}, fmt.Errorf("session %s: %w", id, err)
	}
	return session, nil
}

func (s *Store) CreateShare(ctx context.Context, rec share.Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("%w: encode share: %v", apperr.ErrPersistence, err)
	}

	fields := map[string]any{
		fieldData:        data,
		fieldAccessCount: rec.AccessCount,
	}
	if rec.LastAccessed != nil {
		fields[fieldLastAccessed] = rec.LastAccessed.UTC().Format(time.RFC3339Nano)
	}
	if err := s.client.HSet(ctx, s.key("share", rec.ID), fields).Err(); err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrPersistence, err)
	}
	return nil
}

func (s *Store) GetShare(ctx context.Context, id string) (share.Record, error) {
	vals, err := s.client.HMGet(ctx, s.key("share", id), fieldData, fieldAccessCount, fieldLastAccessed).Result()
	if err != nil {
		return share.Record{}, fmt.Errorf("%w: %v", apperr.ErrPersistence, err)
	}
	if len(vals) == 0 || vals[0] == nil {
		return share.Record{}, fmt.Errorf("%w: share %s", apperr.ErrNotFound, id)
	}
	return decodeShare(vals)
}

// RecordShareAccess runs the increment script so concurrent resolutions
// never lose an update.
func (s *Store) RecordShareAccess(ctx context.Context, id string, at time.Time) (share.Record, error) {
	stamp := at.UTC().Format(time.RFC3339Nano)
	vals, err := recordAccess.Run(ctx, s.client, []string{s.key("share", id)}, stamp).Slice()
	if errors.Is(err, redis.Nil) {
		return share.Record{}, fmt.Errorf("%w: share %s", apperr.ErrNotFound, id)
	}
	if err != nil {
		return share.Record{}, fmt.Errorf("%w: %v", apperr.ErrPersistence, err)
	}
	return decodeShare(vals)
}

func (s *Store) AppendTurn(ctx context.Context, turn chat.Turn) error {
	b, err := json.Marshal(turn)
	if err != nil {
		return fmt.Errorf("%w: encode turn: %v", apperr.ErrPersistence, err)
	}
	if err := s.client.RPush(ctx, s.key("turns", turn.PersonaID), b).Err(); err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrPersistence, err)
	}
	return nil
}

func (s *Store) ListTurns(ctx context.Context, personaID string) ([]chat.Turn, error) {
	items, err := s.client.LRange(ctx, s.key("turns", personaID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrPersistence, err)
	}

	turns := make([]chat.Turn, 0, len(items))
	for _, item := range items {
		var turn chat.Turn
		if err := json.Unmarshal([]byte(item), &turn); err != nil {
			return nil, fmt.Errorf("%w: decode turn: %v", apperr.ErrPersistence, err)
		}
		turns = append(turns, turn)
	}
	return turns, nil
}

func (s *Store) SaveFile(ctx context.Context, f upload.File) error {
	return s.putJSON(ctx, s.key("file", f.ID), f)
}

func (s *Store) GetFile(ctx context.Context, id string) (upload.File, error) {
	var f upload.File
	if err := s.getJSON(ctx, s.key("file", id), &f); err != nil {
		return upload.File{}, fmt.Errorf("file %s: %w", id, err)
	}
	return f, nil
}

// Close releases the underlying client.
func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) putJSON(ctx context.Context, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("%w: encode %s: %v", apperr.ErrPersistence, key, err)
	}
	if err := s.client.Set(ctx, key, b, 0).Err(); err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrPersistence, err)
	}
	return nil
}

func (s *Store) getJSON(ctx context.Context, key string, dst any) error {
	b, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return apperr.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrPersistence, err)
	}
	if err := json.Unmarshal(b, dst); err != nil {
		return fmt.Errorf("%w: decode %s: %v", apperr.ErrPersistence, key, err)
	}
	return nil
}

// decodeShare rebuilds a record from [data, access_count, last_accessed].
func decodeShare(vals []any) (share.Record, error) {
	if len(vals) != 3 {
		return share.Record{}, fmt.Errorf("%w: unexpected share reply of %d fields", apperr.ErrPersistence, len(vals))
	}

	data, _ := vals[0].(string)
	var rec share.Record
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		return share.Record{}, fmt.Errorf("%w: decode share: %v", apperr.ErrPersistence, err)
	}

	if raw, ok := vals[1].(string); ok && raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return share.Record{}, fmt.Errorf("%w: access_count %q: %v", apperr.ErrPersistence, raw, err)
		}
		rec.AccessCount = n
	}

	rec.LastAccessed = nil
	if raw, ok := vals[2].(string); ok && raw != "" {
		at, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			return share.Record{}, fmt.Errorf("%w: last_accessed %q: %v", apperr.ErrPersistence, raw, err)
		}
		rec.LastAccessed = &at
	}
	return rec, nil
}
