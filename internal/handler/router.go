package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/zhouzirui/persona-studio/backend/internal/config"
	"github.com/zhouzirui/persona-studio/backend/internal/handler/chat"
	"github.com/zhouzirui/persona-studio/backend/internal/handler/export"
	"github.com/zhouzirui/persona-studio/backend/internal/handler/persona"
	"github.com/zhouzirui/persona-studio/backend/internal/handler/share"
	"github.com/zhouzirui/persona-studio/backend/internal/handler/trends"
	"github.com/zhouzirui/persona-studio/backend/internal/handler/upload"
	middlewarePkg "github.com/zhouzirui/persona-studio/backend/internal/middleware"
	chatService "github.com/zhouzirui/persona-studio/backend/internal/service/chat"
	exportService "github.com/zhouzirui/persona-studio/backend/internal/service/export"
	personaService "github.com/zhouzirui/persona-studio/backend/internal/service/persona"
	shareService "github.com/zhouzirui/persona-studio/backend/internal/service/share"
	uploadService "github.com/zhouzirui/persona-studio/backend/internal/service/upload"
)

// Services bundles the core services the HTTP layer depends on.
type Services struct {
	Personas *personaService.Service
	Chat     *chatService.Service
	Uploads  *uploadService.Service
	Exporter *exportService.Exporter
	Shares   *shareService.Manager
}

// NewRouter wires HTTP routes to core services.
func NewRouter(cfg config.Config, svc Services) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middlewarePkg.RequestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS(cfg.Server.AllowedOrigins))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	personaHandler := persona.New(svc.Personas, cfg.Persona.RefineEnabled)
	chatHandler := chat.New(svc.Chat)

	r.Route("/api", func(api chi.Router) {
		api.Route("/personas", func(pr chi.Router) {
			personaHandler.RegisterRoutes(pr)
			chatHandler.RegisterRoutes(pr)
		})
		api.Route("/upload", upload.New(svc.Uploads).RegisterRoutes)
		api.Route("/export", export.New(svc.Exporter).RegisterRoutes)
		api.Route("/share", share.New(svc.Shares, cfg.Server.PublicBaseURL).RegisterRoutes)
		api.Route("/trends", trends.New().RegisterRoutes)
	})

	return r
}
