package persona

import "context"

// SessionStore persists generated persona sets keyed by session id
// (the "persona_sessions" collection).
type SessionStore interface {
	CreateSession(ctx context.Context, session Session) error
	GetSession(ctx context.Context, id string) (Session, error)
}
