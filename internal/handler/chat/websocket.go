package chat

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/zhouzirui/persona-studio/backend/internal/apperr"
	"github.com/zhouzirui/persona-studio/backend/internal/model/chat"
	"github.com/zhouzirui/persona-studio/backend/internal/model/persona"
	"github.com/zhouzirui/persona-studio/backend/internal/observability"
)

const (
	defaultReadTimeout = 60 * time.Second
	pingInterval       = 54 * time.Second
)

func newUpgrader() websocket.Upgrader {
	return websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
	}
}

type inboundMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// chatPayload 是"chat"消息的数据，persona只需在第一条消息中提供
type chatPayload struct {
	Persona   *persona.Persona `json:"persona"`
	PersonaID string           `json:"persona_id"`
	Message   string           `json:"message"`
}

type outgoingMessage struct {
	Type      string `json:"type"`
	Data      any    `json:"data,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

// connectionState 每个连接独立保存persona与对话历史
type connectionState struct {
	persona *persona.Persona
	history []chat.HistoryMessage
}

func (s *connectionState) remember(userMessage, reply string) {
	s.history = append(s.history,
		chat.HistoryMessage{Role: "user", Content: userMessage},
		chat.HistoryMessage{Role: "assistant", Content: reply},
	)
}

// handleWebSocket 处理WebSocket聊天连接
func (h *Handler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	log := observability.FromContext(r.Context())

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	conn.SetReadDeadline(time.Now().Add(h.readTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(h.readTimeout))
	})

	writes := make(chan outgoingMessage, 8)
	go h.writeLoop(ctx, cancel, conn, writes, log)

	send := func(msgType string, data any) {
		select {
		case writes <- outgoingMessage{Type: msgType, Data: data, Timestamp: time.Now().Unix()}:
		case <-ctx.Done():
		}
	}

	send("connected", map[string]any{"strategy": h.chatSvc.Strategy()})

	state := &connectionState{}
	for {
		var msg inboundMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Msg("websocket read failed")
			}
			return
		}
		switch msg.Type {
		case "chat":
			h.handleChatMessage(ctx, state, msg.Data, send)
		case "reset":
			state.history = nil
			send("reset", nil)
		default:
			send("error", map[string]string{"message": "unknown message type"})
		}

		// a reply can take as long as the AI timeout, so the idle window
		// starts once it is sent
		conn.SetReadDeadline(time.Now().Add(h.readTimeout))
	}
}

func (h *Handler) handleChatMessage(ctx context.Context, state *connectionState, raw json.RawMessage, send func(string, any)) {
	var payload chatPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		send("error", map[string]string{"message": "invalid chat payload"})
		return
	}

	if payload.Persona != nil {
		p := *payload.Persona
		if p.ID == "" {
			p.ID = payload.PersonaID
		}
		if state.persona == nil || state.persona.ID != p.ID {
			state.history = nil
		}
		state.persona = &p
	}
	if state.persona == nil {
		send("error", map[string]string{"message": "persona is required"})
		return
	}

	turn, err := h.chatSvc.Reply(ctx, *state.persona, payload.Message, state.history)
	if err != nil {
		message := apperr.PublicMessage(err)
		if apperr.Status(err) >= http.StatusInternalServerError {
			log := observability.FromContext(ctx)
			log.Error().Err(err).Msg("websocket chat failed")
		}
		send("error", map[string]string{"message": message})
		return
	}

	state.remember(turn.UserMessage, turn.PersonaResponse)
	send("reply", map[string]any{
		"reply":      turn.PersonaResponse,
		"turn_id":    turn.ID,
		"persona_id": turn.PersonaID,
	})
}

// writeLoop 串行化所有写操作并定期发送ping，写失败时关闭连接
func (h *Handler) writeLoop(ctx context.Context, cancel context.CancelFunc, conn *websocket.Conn, writes <-chan outgoingMessage, log zerolog.Logger) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	defer conn.Close()
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-writes:
			if err := conn.WriteJSON(msg); err != nil {
				if !errors.Is(err, websocket.ErrCloseSent) {
					log.Warn().Err(err).Str("type", msg.Type).Msg("websocket write failed")
				}
				return
			}
		case <-ticker.C:
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
