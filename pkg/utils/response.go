package utils

import (
	"encoding/json"
	"net/http"

	"github.com/zhouzirui/persona-studio/backend/internal/apperr"
	"github.com/zhouzirui/persona-studio/backend/internal/observability"
)

// RespondJSON 发送JSON响应
func RespondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log := observability.Logger()
		log.Warn().Err(err).Msg("failed to encode response")
	}
}

// RespondError 发送错误响应
func RespondError(w http.ResponseWriter, status int, message string) {
	RespondJSON(w, status, map[string]any{"success": false, "error": message})
}

// RespondAppError maps err onto its HTTP status. Server-side failures are
// logged in full and the client only sees the sentinel message.
func RespondAppError(w http.ResponseWriter, r *http.Request, err error) {
	status := apperr.Status(err)
	if status >= http.StatusInternalServerError {
		log := observability.FromContext(r.Context())
		log.Error().Err(err).Str("path", r.URL.Path).Int("status", status).Msg("request failed")
	}
	RespondError(w, status, apperr.PublicMessage(err))
}
