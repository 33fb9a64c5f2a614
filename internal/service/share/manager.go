// Package share manages time-bounded, optionally password-gated links to a
// snapshot of personas.
package share

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/zhouzirui/persona-studio/backend/internal/apperr"
	"github.com/zhouzirui/persona-studio/backend/internal/model/persona"
	"github.com/zhouzirui/persona-studio/backend/internal/model/share"
	"github.com/zhouzirui/persona-studio/backend/internal/observability"
)

// Filler assigns missing persona ids and avatars.
type Filler interface {
	Fill(personas []persona.Persona) []persona.Persona
}

// Manager creates and resolves share records.
type Manager struct {
	store  share.Store
	filler Filler
	now    func() time.Time
	ttl    time.Duration
}

// Option customises a Manager.
type Option func(*Manager)

// WithClock replaces the wall clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// NewManager returns a Manager with the default 30 day TTL.
func NewManager(store share.Store, filler Filler, opts ...Option) *Manager {
	m := &Manager{
		store:  store,
		filler: filler,
		now:    time.Now,
		ttl:    share.DefaultTTL,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Create stores a new link that expires after the TTL. Personas are copied
// and given ids and avatars before they are stored.
func (m *Manager) Create(ctx context.Context, personas []persona.Persona, settings share.Settings) (share.Record, error) {
	if len(personas) == 0 {
		return share.Record{}, fmt.Errorf("%w: at least one persona is required", apperr.ErrValidation)
	}
	personas = m.filler.Fill(append([]persona.Persona(nil), personas...))

	now := m.now().UTC()
	rec := share.Record{
		ID:        uuid.NewString(),
		Personas:  personas,
		Settings:  settings,
		CreatedAt: now,
		ExpiresAt: now.Add(m.ttl),
	}
	if err := m.store.CreateShare(ctx, rec); err != nil {
		return share.Record{}, err
	}

	log := observability.FromContext(ctx)
	log.Info().
		Str("share_id", rec.ID).
		Int("personas", len(personas)).
		Bool("password", settings.Password != "").
		Time("expires_at", rec.ExpiresAt).
		Msg("created share link")
	return rec, nil
}

// Resolve checks existence, then expiry, then the password, and only then
// records the access. The returned record carries the post-increment count.
//
// Passwords are stored and compared as plain text.
func (m *Manager) Resolve(ctx context.Context, id, password string) (share.Record, error) {
	rec, err := m.store.GetShare(ctx, id)
	if err != nil {
		return share.Record{}, err
	}

	now := m.now().UTC()
	if rec.Expired(now) {
		return share.Record{}, fmt.Errorf("%w: expired at %s", apperr.ErrExpired, rec.ExpiresAt.Format(time.RFC3339))
	}
	if rec.Settings.Password != "" && password != rec.Settings.Password {
		return share.Record{}, apperr.ErrUnauthorized
	}

	rec, err = m.store.RecordShareAccess(ctx, id, now)
	if err != nil {
		return share.Record{}, err
	}

	log := observability.FromContext(ctx)
	log.Debug().
		Str("share_id", id).
		Int64("access_count", rec.AccessCount).
		Msg("resolved share link")
	return rec, nil
}
