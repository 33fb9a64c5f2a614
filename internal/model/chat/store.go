package chat

import "context"

// TurnStore persists chat turns (the "conversations" collection).
type TurnStore interface {
	AppendTurn(ctx context.Context, turn Turn) error
	ListTurns(ctx context.Context, personaID string) ([]Turn, error)
}
