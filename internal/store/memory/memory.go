// Package memory is the in-process record store used in development and tests.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/zhouzirui/persona-studio/backend/internal/apperr"
	"github.com/zhouzirui/persona-studio/backend/internal/model/chat"
	"github.com/zhouzirui/persona-studio/backend/internal/model/persona"
	"github.com/zhouzirui/persona-studio/backend/internal/model/share"
	"github.com/zhouzirui/persona-studio/backend/internal/model/upload"
)

// Store keeps every collection in maps guarded by one RWMutex. Records are
// held in encoded form so callers never share memory with the store.
type Store struct {
	mu       sync.RWMutex
	sessions map[string][]byte
	shares   map[string]share.Record
	turns    map[string][]chat.Turn
	files    map[string]upload.File
}

// New returns an empty store.
func New() *Store {
	return &Store{
		sessions: make(map[string][]byte),
		shares:   make(map[string]share.Record),
		turns:    make(map[string][]chat.Turn),
		files:    make(map[string]upload.File),
	}
}

func (s *Store) CreateSession(_ context.Context, session persona.Session) error {
	b, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("%w: encode session: %v", apperr.ErrPersistence, err)
	}

	s.mu.Lock()
	s.sessions[session.ID] = b
	s.mu.Unlock()
	return nil
}

func (s *Store) GetSession(_ context.Context, id string) (persona.Session, error) {
	s.mu.RLock()
	b, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return persona.Session{}, fmt.Errorf("%w: session %s", apperr.ErrNotFound, id)
	}

	var session persona.Session
	if err := json.Unmarshal(b, &session); err != nil {
		return persona.Session{}, fmt.Errorf("%w: decode session: %v", apperr.ErrPersistence, err)
	}
	return session, nil
}

func (s *Store) CreateShare(_ context.Context, rec share.Record) error {
	rec, err := cloneShare(rec)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.shares[rec.ID] = rec
	s.mu.Unlock()
	return nil
}

func (s *Store) GetShare(_ context.Context, id string) (share.Record, error) {
	s.mu.RLock()
	rec, ok := s.shares[id]
	s.mu.RUnlock()
	if !ok {
		return share.Record{}, fmt.Errorf("%w: share %s", apperr.ErrNotFound, id)
	}
	return cloneShare(rec)
}

// RecordShareAccess bumps the counter under the write lock.
func (s *Store) RecordShareAccess(_ context.Context, id string, at time.Time) (share.Record, error) {
	s.mu.Lock()
	rec, ok := s.shares[id]
	if !ok {
		s.mu.Unlock()
		return share.Record{}, fmt.Errorf("%w: share %s", apperr.ErrNotFound, id)
	}
	at = at.UTC()
	rec.AccessCount++
	rec.LastAccessed = &at
	s.shares[id] = rec
	s.mu.Unlock()

	return cloneShare(rec)
}

func (s *Store) AppendTurn(_ context.Context, turn chat.Turn) error {
	s.mu.Lock()
	s.turns[turn.PersonaID] = append(s.turns[turn.PersonaID], turn)
	s.mu.Unlock()
	return nil
}

func (s *Store) ListTurns(_ context.Context, personaID string) ([]chat.Turn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	turns := s.turns[personaID]
	copied := make([]chat.Turn, len(turns))
	copy(copied, turns)
	sort.SliceStable(copied, func(i, j int) bool {
		return copied[i].CreatedAt.Before(copied[j].CreatedAt)
	})
	return copied, nil
}

func (s *Store) SaveFile(_ context.Context, f upload.File) error {
	f.ProcessedData = append(json.RawMessage(nil), f.ProcessedData...)

	s.mu.Lock()
	s.files[f.ID] = f
	s.mu.Unlock()
	return nil
}

func (s *Store) GetFile(_ context.Context, id string) (upload.File, error) {
	s.mu.RLock()
	f, ok := s.files[id]
	s.mu.RUnlock()
	if !ok {
		return upload.File{}, fmt.Errorf("%w: file %s", apperr.ErrNotFound, id)
	}
	f.ProcessedData = append(json.RawMessage(nil), f.ProcessedData...)
	return f, nil
}

// Close is a no-op.
func (s *Store) Close() error { return nil }

func cloneShare(rec share.Record) (share.Record, error) {
	b, err := json.Marshal(rec)
	if err != nil {
		return share.Record{}, fmt.Errorf("%w: encode share: %v", apperr.ErrPersistence, err)
	}
	var out share.Record
	if err := json.Unmarshal(b, &out); err != nil {
		return share.Record{}, fmt.Errorf("%w: decode share: %v", apperr.ErrPersistence, err)
	}
	return out, nil
}
