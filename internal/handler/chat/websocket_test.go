package chat

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/persona-studio/backend/internal/config"
	"github.com/zhouzirui/persona-studio/backend/internal/model/chat"
	"github.com/zhouzirui/persona-studio/backend/internal/model/persona"
	chatservice "github.com/zhouzirui/persona-studio/backend/internal/service/chat"
	"github.com/zhouzirui/persona-studio/backend/internal/store/memory"
)

type wsReply struct {
	Type string         `json:"type"`
	Data map[string]any `json:"data"`
}

func dial(t *testing.T) *websocket.Conn {
	t.Helper()
	r, _ := setupRouter()
	return dialHandler(t, r)
}

func dialHandler(t *testing.T, r http.Handler) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/chat/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func read(t *testing.T, conn *websocket.Conn) wsReply {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var msg wsReply
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func TestWebSocketChat(t *testing.T) {
	conn := dial(t)

	hello := read(t, conn)
	assert.Equal(t, "connected", hello.Type)
	assert.Equal(t, "canned", hello.Data["strategy"])

	require.NoError(t, conn.WriteJSON(map[string]any{
		"type": "chat",
		"data": map[string]any{
			"persona": map[string]any{"id": "persona_emma0001", "name": "Emma Thompson"},
			"message": "How do you pick brands?",
		},
	}))
	reply := read(t, conn)
	assert.Equal(t, "reply", reply.Type)
	assert.Equal(t, chatservice.CannedLines("Emma Thompson")[0], reply.Data["reply"])
	assert.Equal(t, "persona_emma0001", reply.Data["persona_id"])

	// persona is remembered for the rest of the connection
	require.NoError(t, conn.WriteJSON(map[string]any{
		"type": "chat",
		"data": map[string]any{"message": "And price?"},
	}))
	reply = read(t, conn)
	assert.Equal(t, "reply", reply.Type)
}

func TestWebSocketErrors(t *testing.T) {
	conn := dial(t)
	read(t, conn)

	require.NoError(t, conn.WriteJSON(map[string]any{"type": "chat", "data": map[string]any{"message": "hi"}}))
	msg := read(t, conn)
	assert.Equal(t, "error", msg.Type)
	assert.Equal(t, "persona is required", msg.Data["message"])

	require.NoError(t, conn.WriteJSON(map[string]any{"type": "dance"}))
	msg = read(t, conn)
	assert.Equal(t, "error", msg.Type)

	require.NoError(t, conn.WriteJSON(map[string]any{
		"type": "chat",
		"data": map[string]any{"persona": map[string]any{"name": "Sarah Chen"}, "message": ""},
	}))
	msg = read(t, conn)
	assert.Equal(t, "error", msg.Type)
	assert.Contains(t, msg.Data["message"], "message is required")
}

func TestConnectionStateRemember(t *testing.T) {
	state := &connectionState{}
	state.remember("hi", "hello")
	require.Len(t, state.history, 2)
	assert.Equal(t, "user", state.history[0].Role)
	assert.Equal(t, "assistant", state.history[1].Role)
	assert.Equal(t, "hello", state.history[1].Content)
}

type slowResponder struct{ delay time.Duration }

func (s slowResponder) Reply(ctx context.Context, p persona.Persona, message string, history []chat.HistoryMessage) (string, error) {
	select {
	case <-time.After(s.delay):
		return "took a while", nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func TestWebSocketSlowReplyKeepsConnection(t *testing.T) {
	chatSvc := chatservice.NewService(slowResponder{delay: 600 * time.Millisecond}, memory.New(), config.ChatStrategyAI)
	handler := New(chatSvc)
	handler.readTimeout = 300 * time.Millisecond

	r := chi.NewRouter()
	handler.RegisterRoutes(r)
	conn := dialHandler(t, r)
	read(t, conn)

	for i := 0; i < 2; i++ {
		require.NoError(t, conn.WriteJSON(map[string]any{
			"type": "chat",
			"data": map[string]any{
				"persona": map[string]any{"id": "persona_slow0001", "name": "Sam"},
				"message": "still there?",
			},
		}))
		reply := read(t, conn)
		assert.Equal(t, "reply", reply.Type, "message %d", i)
		assert.Equal(t, "took a while", reply.Data["reply"])
	}
}
