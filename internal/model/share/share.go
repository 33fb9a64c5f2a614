package share

import (
	"context"
	"time"

	"github.com/zhouzirui/persona-studio/backend/internal/model/persona"
)

// DefaultTTL is how long a share link stays resolvable.
const DefaultTTL = 30 * 24 * time.Hour

// Settings are the owner's options for a share link.
type Settings struct {
	Password     string `json:"password,omitempty"`
	PublicAccess bool   `json:"public_access,omitempty"`
}

// Record is a persisted share link (the "shared_personas" collection).
type Record struct {
	ID           string            `json:"id"`
	Personas     []persona.Persona `json:"personas"`
	Settings     Settings          `json:"settings"`
	CreatedAt    time.Time         `json:"created_at"`
	ExpiresAt    time.Time         `json:"expires_at"`
	AccessCount  int64             `json:"access_count"`
	LastAccessed *time.Time        `json:"last_accessed,omitempty"`
}

// Expired reports whether the link is past its expiry at the given instant.
func (r Record) Expired(now time.Time) bool {
	return now.After(r.ExpiresAt)
}

// Store persists share records.
//
// RecordShareAccess must increment access_count and set last_accessed in a
// single atomic step and return the record as it is after the update.
type Store interface {
	CreateShare(ctx context.Context, rec Record) error
	GetShare(ctx context.Context, id string) (Record, error)
	RecordShareAccess(ctx context.Context, id string, at time.Time) (Record, error)
}
