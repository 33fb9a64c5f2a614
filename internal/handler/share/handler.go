package share

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/persona-studio/backend/internal/model/persona"
	"github.com/zhouzirui/persona-studio/backend/internal/model/share"
	shareservice "github.com/zhouzirui/persona-studio/backend/internal/service/share"
	"github.com/zhouzirui/persona-studio/backend/internal/validation"
	"github.com/zhouzirui/persona-studio/backend/pkg/utils"
)

// Handler 分享链接处理器
type Handler struct {
	shares        *shareservice.Manager
	publicBaseURL string
}

// New 创建分享处理器；publicBaseURL是前端地址，用于拼接分享链接
func New(shares *shareservice.Manager, publicBaseURL string) *Handler {
	return &Handler{
		shares:        shares,
		publicBaseURL: publicBaseURL,
	}
}

// RegisterRoutes 注册分享路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/", h.handleCreate)
	r.Get("/", h.handleResolveByQuery)
	r.Get("/{shareID}", h.handleResolve)
}

type createRequest struct {
	Personas []persona.Persona `json:"personas"`
	Settings *share.Settings   `json:"settings"`
}

// handleCreate 创建分享链接
func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := validation.DecodeRequest(w, r, validation.Share, &req); err != nil {
		utils.RespondAppError(w, r, err)
		return
	}

	var settings share.Settings
	if req.Settings != nil {
		settings = *req.Settings
	}

	rec, err := h.shares.Create(r.Context(), req.Personas, settings)
	if err != nil {
		utils.RespondAppError(w, r, err)
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"share_id":   rec.ID,
		"share_url":  h.publicBaseURL + "/shared/" + rec.ID,
		"expires_at": rec.ExpiresAt,
	})
}

// handleResolve 访问分享链接
func (h *Handler) handleResolve(w http.ResponseWriter, r *http.Request) {
	h.resolve(w, r, chi.URLParam(r, "shareID"))
}

// handleResolveByQuery 兼容 ?id= 形式的旧链接
func (h *Handler) handleResolveByQuery(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		utils.RespondError(w, http.StatusBadRequest, "share id required")
		return
	}
	h.resolve(w, r, id)
}

func (h *Handler) resolve(w http.ResponseWriter, r *http.Request, id string) {
	rec, err := h.shares.Resolve(r.Context(), id, r.URL.Query().Get("password"))
	if err != nil {
		utils.RespondAppError(w, r, err)
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"personas": rec.Personas,
		"metadata": map[string]any{
			"created_at":    rec.CreatedAt,
			"expires_at":    rec.ExpiresAt,
			"access_count":  rec.AccessCount,
			"last_accessed": rec.LastAccessed,
		},
	})
}
