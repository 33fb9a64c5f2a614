package chat

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/zhouzirui/persona-studio/backend/internal/apperr"
	"github.com/zhouzirui/persona-studio/backend/internal/model/chat"
	"github.com/zhouzirui/persona-studio/backend/internal/model/persona"
	"github.com/zhouzirui/persona-studio/backend/internal/observability"
)

// MaxMessageLength bounds a single user message.
const MaxMessageLength = 1000

// Service answers chat messages through a Responder and logs every turn.
type Service struct {
	responder Responder
	turns     chat.TurnStore
	strategy  string
	now       func() time.Time
}

// NewService wraps responder. strategy is a label used in logs only.
func NewService(responder Responder, turns chat.TurnStore, strategy string) *Service {
	return &Service{
		responder: responder,
		turns:     turns,
		strategy:  strategy,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Strategy reports which responder is active.
func (s *Service) Strategy() string {
	return s.strategy
}

// Reply answers message as p and appends the exchange to the turn log.
func (s *Service) Reply(ctx context.Context, p persona.Persona, message string, history []chat.HistoryMessage) (chat.Turn, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return chat.Turn{}, fmt.Errorf("%w: message is required", apperr.ErrValidation)
	}
	if utf8.RuneCountInString(message) > MaxMessageLength {
		return chat.Turn{}, fmt.Errorf("%w: message must be at most %d characters", apperr.ErrValidation, MaxMessageLength)
	}
	if strings.TrimSpace(p.Name) == "" {
		return chat.Turn{}, fmt.Errorf("%w: persona name is required", apperr.ErrValidation)
	}

	reply, err := s.responder.Reply(ctx, p, message, history)
	if err != nil {
		return chat.Turn{}, err
	}

	turn := chat.Turn{
		ID:              uuid.NewString(),
		PersonaID:       p.ID,
		UserMessage:     message,
		PersonaResponse: strings.TrimSpace(reply),
		CreatedAt:       s.now(),
	}

	log := observability.FromContext(ctx)
	if turn.PersonaID != "" {
		if err := s.turns.AppendTurn(ctx, turn); err != nil {
			return chat.Turn{}, err
		}
	}
	log.Info().
		Str("persona_id", turn.PersonaID).
		Str("strategy", s.strategy).
		Int("history", len(history)).
		Int("reply_length", len(turn.PersonaResponse)).
		Msg("chat reply")
	return turn, nil
}

// Turns lists the logged exchanges for a persona, oldest first.
func (s *Service) Turns(ctx context.Context, personaID string) ([]chat.Turn, error) {
	if strings.TrimSpace(personaID) == "" {
		return nil, fmt.Errorf("%w: persona id is required", apperr.ErrValidation)
	}
	return s.turns.ListTurns(ctx, personaID)
}
