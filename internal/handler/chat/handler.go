package chat

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/zhouzirui/persona-studio/backend/internal/apperr"
	"github.com/zhouzirui/persona-studio/backend/internal/model/chat"
	"github.com/zhouzirui/persona-studio/backend/internal/model/persona"
	chatservice "github.com/zhouzirui/persona-studio/backend/internal/service/chat"
	"github.com/zhouzirui/persona-studio/backend/internal/validation"
	"github.com/zhouzirui/persona-studio/backend/pkg/utils"
)

// Handler 与persona对话的HTTP处理器
type Handler struct {
	chatSvc     *chatservice.Service
	upgrader    websocket.Upgrader
	readTimeout time.Duration
}

// New 创建聊天处理器
func New(chatSvc *chatservice.Service) *Handler {
	return &Handler{
		chatSvc:     chatSvc,
		upgrader:    newUpgrader(),
		readTimeout: defaultReadTimeout,
	}
}

// RegisterRoutes 注册聊天相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/chat", h.handleChat)
	r.Get("/chat/ws", h.handleWebSocket)
	r.Get("/{personaID}/conversations", h.handleListTurns)
}

type chatRequest struct {
	Persona             *persona.Persona      `json:"persona"`
	PersonaContext      *persona.Persona      `json:"persona_context"`
	PersonaID           string                `json:"persona_id"`
	Message             string                `json:"message"`
	ConversationHistory []chat.HistoryMessage `json:"conversation_history"`
}

// target picks the persona being addressed; persona_id fills a missing id.
func (req chatRequest) target() (persona.Persona, error) {
	var p persona.Persona
	switch {
	case req.Persona != nil:
		p = *req.Persona
	case req.PersonaContext != nil:
		p = *req.PersonaContext
	default:
		return p, apperr.ErrValidation
	}
	if p.ID == "" {
		p.ID = req.PersonaID
	}
	return p, nil
}

// handleChat 以persona身份回复一条消息
func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := validation.DecodeRequest(w, r, validation.Chat, &req); err != nil {
		utils.RespondAppError(w, r, err)
		return
	}

	p, err := req.target()
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "persona is required")
		return
	}

	turn, err := h.chatSvc.Reply(r.Context(), p, req.Message, req.ConversationHistory)
	if err != nil {
		utils.RespondAppError(w, r, err)
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"reply":     turn.PersonaResponse,
		"response":  turn.PersonaResponse,
		"turn_id":   turn.ID,
		"timestamp": turn.CreatedAt,
	})
}

// handleListTurns 列出某个persona的历史对话
func (h *Handler) handleListTurns(w http.ResponseWriter, r *http.Request) {
	turns, err := h.chatSvc.Turns(r.Context(), chi.URLParam(r, "personaID"))
	if err != nil {
		utils.RespondAppError(w, r, err)
		return
	}
	if turns == nil {
		turns = []chat.Turn{}
	}

	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"turns":   turns,
	})
}
