package upload

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"

	uploadservice "github.com/zhouzirui/persona-studio/backend/internal/service/upload"
	"github.com/zhouzirui/persona-studio/backend/pkg/utils"
)

// multipartOverhead leaves room for boundaries and part headers around a
// maximum-size file.
const multipartOverhead = 1 << 20

// 浏览器未提供类型时按扩展名推断
var typesByExtension = map[string]string{
	".csv":  "text/csv",
	".json": "application/json",
	".txt":  "text/plain",
}

// Handler 数据文件上传处理器
type Handler struct {
	uploads *uploadservice.Service
}

// New 创建上传处理器
func New(uploads *uploadservice.Service) *Handler {
	return &Handler{uploads: uploads}
}

// RegisterRoutes 注册上传路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/", h.handleUpload)
}

// handleUpload 以流式方式读取multipart中的file字段
func (h *Handler) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, uploadservice.MaxFileSize+multipartOverhead)

	mr, err := r.MultipartReader()
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "expected multipart/form-data body")
		return
	}

	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			utils.RespondError(w, http.StatusBadRequest, "no file provided")
			return
		}
		if err != nil {
			utils.RespondError(w, http.StatusBadRequest, "invalid multipart body")
			return
		}
		if part.FormName() != "file" || part.FileName() == "" {
			part.Close()
			continue
		}

		f, err := h.uploads.Upload(r.Context(), part.FileName(), contentTypeOf(part), part)
		part.Close()
		if err != nil {
			utils.RespondAppError(w, r, err)
			return
		}

		utils.RespondJSON(w, http.StatusOK, map[string]any{
			"success":        true,
			"file_id":        f.ID,
			"file_name":      f.Filename,
			"file_size":      f.Size,
			"file_type":      f.FileType,
			"processed_data": f.ProcessedData,
			"uploaded_at":    f.CreatedAt,
		})
		return
	}
}

func contentTypeOf(part *multipart.Part) string {
	ct := strings.TrimSpace(part.Header.Get("Content-Type"))
	if ct != "" && ct != "application/octet-stream" {
		return ct
	}
	if byExt, ok := typesByExtension[strings.ToLower(filepath.Ext(part.FileName()))]; ok {
		return byExt
	}
	return ct
}
