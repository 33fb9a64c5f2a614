package persona

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/persona-studio/backend/internal/model/persona"
	personaservice "github.com/zhouzirui/persona-studio/backend/internal/service/persona"
	"github.com/zhouzirui/persona-studio/backend/internal/validation"
	"github.com/zhouzirui/persona-studio/backend/pkg/utils"
)

// Handler persona生成与优化的HTTP处理器
type Handler struct {
	personas      *personaservice.Service
	refineEnabled bool
}

// New 创建persona处理器
func New(personas *personaservice.Service, refineEnabled bool) *Handler {
	return &Handler{
		personas:      personas,
		refineEnabled: refineEnabled,
	}
}

// RegisterRoutes 注册persona相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/generate", h.handleGenerate)
	r.Get("/sessions/{sessionID}", h.handleGetSession)
	if h.refineEnabled {
		r.Post("/refine", h.handleRefine)
	}
}

type refineRequest struct {
	Personas        []persona.Persona `json:"personas"`
	Refinements     map[string]any    `json:"refinements"`
	OriginalContext map[string]any    `json:"original_context"`
}

// handleGenerate 根据营销上下文生成persona
func (h *Handler) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req persona.GenerationRequest
	if err := validation.DecodeRequest(w, r, validation.Generate, &req); err != nil {
		utils.RespondAppError(w, r, err)
		return
	}

	session, err := h.personas.Generate(r.Context(), req)
	if err != nil {
		utils.RespondAppError(w, r, err)
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"session_id": session.ID,
		"personas":   session.Personas,
	})
}

// handleGetSession 获取已生成的persona会话
func (h *Handler) handleGetSession(w http.ResponseWriter, r *http.Request) {
	session, err := h.personas.GetSession(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		utils.RespondAppError(w, r, err)
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"session": session,
	})
}

// handleRefine 按用户指令优化persona
func (h *Handler) handleRefine(w http.ResponseWriter, r *http.Request) {
	var req refineRequest
	if err := validation.DecodeRequest(w, r, validation.Refine, &req); err != nil {
		utils.RespondAppError(w, r, err)
		return
	}

	personas, err := h.personas.Refine(r.Context(), req.Personas, req.Refinements, req.OriginalContext)
	if err != nil {
		utils.RespondAppError(w, r, err)
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"personas":   personas,
		"refined_at": time.Now().UTC(),
	})
}
