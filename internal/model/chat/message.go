package chat

import "time"

// Turn is one logged exchange with a persona. Turns are append-only.
type Turn struct {
	ID              string    `json:"id"`
	PersonaID       string    `json:"persona_id"`
	UserMessage     string    `json:"user_message"`
	PersonaResponse string    `json:"persona_response"`
	CreatedAt       time.Time `json:"created_at"`
}

// HistoryMessage is a prior message supplied by the client for context.
type HistoryMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
