package export

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/persona-studio/backend/internal/model/persona"
	"github.com/zhouzirui/persona-studio/backend/internal/observability"
	exportservice "github.com/zhouzirui/persona-studio/backend/internal/service/export"
	"github.com/zhouzirui/persona-studio/backend/internal/validation"
	"github.com/zhouzirui/persona-studio/backend/pkg/utils"
)

// Handler persona导出处理器
type Handler struct {
	exporter *exportservice.Exporter
}

// New 创建导出处理器
func New(exporter *exportservice.Exporter) *Handler {
	return &Handler{exporter: exporter}
}

// RegisterRoutes 注册导出路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/personas", h.handleExport)
}

type exportRequest struct {
	Personas []persona.Persona `json:"personas"`
	Format   string            `json:"format"`
}

// handleExport 以附件形式返回CSV或JSON文件
func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	var req exportRequest
	if err := validation.DecodeRequest(w, r, validation.Export, &req); err != nil {
		utils.RespondAppError(w, r, err)
		return
	}

	file, err := h.exporter.Export(req.Personas, req.Format)
	if err != nil {
		utils.RespondAppError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", file.ContentType)
	w.Header().Set("Content-Disposition", file.Disposition())
	w.Header().Set("Content-Length", strconv.Itoa(len(file.Body)))
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(file.Body); err != nil {
		log := observability.FromContext(r.Context())
		log.Warn().Err(err).Str("file", file.Filename).Msg("failed to write export")
	}
}
