package trends

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	trendservice "github.com/zhouzirui/persona-studio/backend/internal/service/trends"
	"github.com/zhouzirui/persona-studio/backend/pkg/utils"
)

// Handler 市场趋势处理器
type Handler struct {
	now func() time.Time
}

// New 创建趋势处理器
func New() *Handler {
	return &Handler{now: func() time.Time { return time.Now().UTC() }}
}

// RegisterRoutes 注册趋势路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.handleTrends)
}

// handleTrends 按行业、地区与时间范围返回趋势数据
func (h *Handler) handleTrends(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	report, filters, err := trendservice.Query(trendservice.Filters{
		Industry:  q.Get("industry"),
		Region:    q.Get("region"),
		Timeframe: q.Get("timeframe"),
	})
	if err != nil {
		utils.RespondAppError(w, r, err)
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"success":      true,
		"data":         report,
		"filters":      filters,
		"last_updated": h.now(),
	})
}
