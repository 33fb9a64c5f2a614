// Package storetest holds the behaviour every record store backend must share.
package storetest

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhouzirui/persona-studio/backend/internal/apperr"
	"github.com/zhouzirui/persona-studio/backend/internal/model/chat"
	"github.com/zhouzirui/persona-studio/backend/internal/model/persona"
	"github.com/zhouzirui/persona-studio/backend/internal/model/share"
	"github.com/zhouzirui/persona-studio/backend/internal/model/upload"
)

// Backend is the union of collections exercised here.
type Backend interface {
	persona.SessionStore
	share.Store
	chat.TurnStore
	upload.Store
}

// Run exercises a fresh backend from newStore in every subtest.
func Run(t *testing.T, newStore func(t *testing.T) Backend) {
	t.Run("SessionRoundTrip", func(t *testing.T) { testSessionRoundTrip(t, newStore(t)) })
	t.Run("SessionNotFound", func(t *testing.T) { testSessionNotFound(t, newStore(t)) })
	t.Run("ShareAccessCounts", func(t *testing.T) { testShareAccessCounts(t, newStore(t)) })
	t.Run("ShareAccessMissing", func(t *testing.T) { testShareAccessMissing(t, newStore(t)) })
	t.Run("ShareConcurrentAccess", func(t *testing.T) { testShareConcurrentAccess(t, newStore(t)) })
	t.Run("TurnsInOrder", func(t *testing.T) { testTurnsInOrder(t, newStore(t)) })
	t.Run("FileRoundTrip", func(t *testing.T) { testFileRoundTrip(t, newStore(t)) })
}

func samplePersonas(t *testing.T) []persona.Persona {
	t.Helper()
	var out []persona.Persona
	raw := `[{"id":"persona_0a1b2c3d","name":"Sarah Chen","demographics":{"age":32,"location":"Seattle"},
		"traits":["curious"],"psychographics":{"values":["craft"]}}]`
	require.NoError(t, json.Unmarshal([]byte(raw), &out))
	return out
}

func baseTime() time.Time {
	return time.Date(2025, 3, 14, 9, 26, 53, 589000000, time.UTC)
}

func testSessionRoundTrip(t *testing.T, s Backend) {
	ctx := context.Background()
	in := persona.Session{
		ID:       "session-1",
		Personas: samplePersonas(t),
		OriginalRequest: &persona.GenerationRequest{
			ProductPositioning: "Smart water bottle",
			Industry:           "Health",
			TargetRegion:       "US",
			ProductCategory:    "Hardware",
		},
		CreatedAt: baseTime(),
	}
	require.NoError(t, s.CreateSession(ctx, in))

	got, err := s.GetSession(ctx, "session-1")
	require.NoError(t, err)
	assert.Equal(t, in.ID, got.ID)
	assert.True(t, in.CreatedAt.Equal(got.CreatedAt))
	require.NotNil(t, got.OriginalRequest)
	assert.Equal(t, "Health", got.OriginalRequest.Industry)
	require.Len(t, got.Personas, 1)
	assert.Equal(t, "Sarah Chen", got.Personas[0].Name)
	assert.Contains(t, got.Personas[0].Extra, "psychographics")
}

func testSessionNotFound(t *testing.T, s Backend) {
	_, err := s.GetSession(context.Background(), "missing")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func newShare(t *testing.T) share.Record {
	return share.Record{
		ID:        "share-1",
		Personas:  samplePersonas(t),
		Settings:  share.Settings{Password: "hunter2"},
		CreatedAt: baseTime(),
		ExpiresAt: baseTime().Add(share.DefaultTTL),
	}
}

func testShareAccessCounts(t *testing.T, s Backend) {
	ctx := context.Background()
	require.NoError(t, s.CreateShare(ctx, newShare(t)))

	got, err := s.GetShare(ctx, "share-1")
	require.NoError(t, err)
	assert.Zero(t, got.AccessCount)
	assert.Nil(t, got.LastAccessed)
	assert.Equal(t, "hunter2", got.Settings.Password)

	first := baseTime().Add(time.Hour)
	rec, err := s.RecordShareAccess(ctx, "share-1", first)
	require.NoError(t, err)
	assert.EqualValues(t, 1, rec.AccessCount)
	require.NotNil(t, rec.LastAccessed)
	assert.True(t, first.Equal(*rec.LastAccessed))

	second := first.Add(time.Minute)
	rec, err = s.RecordShareAccess(ctx, "share-1", second)
	require.NoError(t, err)
	assert.EqualValues(t, 2, rec.AccessCount)
	assert.True(t, second.Equal(*rec.LastAccessed))
	assert.True(t, baseTime().Add(share.DefaultTTL).Equal(rec.ExpiresAt))
	require.Len(t, rec.Personas, 1)
}

func testShareAccessMissing(t *testing.T, s Backend) {
	_, err := s.RecordShareAccess(context.Background(), "missing", baseTime())
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = s.GetShare(context.Background(), "missing")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func testShareConcurrentAccess(t *testing.T, s Backend) {
	ctx := context.Background()
	require.NoError(t, s.CreateShare(ctx, newShare(t)))

	const workers = 8
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.RecordShareAccess(ctx, "share-1", baseTime())
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := s.GetShare(ctx, "share-1")
	require.NoError(t, err)
	assert.EqualValues(t, workers, got.AccessCount)
}

func testTurnsInOrder(t *testing.T, s Backend) {
	ctx := context.Background()
	for i, msg := range []string{"hi", "how much would you pay?"} {
		require.NoError(t, s.AppendTurn(ctx, chat.Turn{
			ID:              "turn-" + msg,
			PersonaID:       "persona_0a1b2c3d",
			UserMessage:     msg,
			PersonaResponse: "reply",
			CreatedAt:       baseTime().Add(time.Duration(i) * time.Second),
		}))
	}
	require.NoError(t, s.AppendTurn(ctx, chat.Turn{
		ID: "other", PersonaID: "persona_ffffffff", UserMessage: "x", PersonaResponse: "y", CreatedAt: baseTime(),
	}))

	turns, err := s.ListTurns(ctx, "persona_0a1b2c3d")
	require.NoError(t, err)
	require.Len(t, turns, 2)
	assert.Equal(t, "hi", turns[0].UserMessage)
	assert.Equal(t, "how much would you pay?", turns[1].UserMessage)

	none, err := s.ListTurns(ctx, "persona_unknown")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func testFileRoundTrip(t *testing.T, s Backend) {
	ctx := context.Background()
	in := upload.File{
		ID:            "file-1",
		Filename:      "survey.csv",
		FileType:      upload.KindCSV,
		Size:          42,
		ProcessedData: json.RawMessage(`{"headers":["a"],"rows":[]}`),
		CreatedAt:     baseTime(),
	}
	require.NoError(t, s.SaveFile(ctx, in))

	got, err := s.GetFile(ctx, "file-1")
	require.NoError(t, err)
	assert.Equal(t, in.Filename, got.Filename)
	assert.Equal(t, in.FileType, got.FileType)
	assert.EqualValues(t, 42, got.Size)
	assert.JSONEq(t, string(in.ProcessedData), string(got.ProcessedData))

	_, err = s.GetFile(ctx, "missing")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}
