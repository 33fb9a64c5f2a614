package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/zhouzirui/persona-studio/backend/internal/config"
	"github.com/zhouzirui/persona-studio/backend/internal/handler"
	"github.com/zhouzirui/persona-studio/backend/internal/observability"
	"github.com/zhouzirui/persona-studio/backend/internal/service/ai"
	"github.com/zhouzirui/persona-studio/backend/internal/service/chat"
	"github.com/zhouzirui/persona-studio/backend/internal/service/export"
	"github.com/zhouzirui/persona-studio/backend/internal/service/persona"
	"github.com/zhouzirui/persona-studio/backend/internal/service/share"
	"github.com/zhouzirui/persona-studio/backend/internal/service/upload"
	"github.com/zhouzirui/persona-studio/backend/internal/store"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		bootLog := observability.Logger()
		bootLog.Fatal().Err(err).Msg("failed to load configuration")
	}

	log := observability.Init(cfg.Log.Level, cfg.Log.Pretty)
	if envErr != nil {
		log.Warn().Err(envErr).Msg("no .env file loaded, continuing with system environment variables only")
	}

	st, err := store.Open(ctx, cfg.Store)
	if err != nil {
		log.Fatal().Err(err).Str("backend", cfg.Store.Backend).Msg("failed to open store")
	}
	defer st.Close()
	log.Info().Str("backend", cfg.Store.Backend).Msg("store ready")

	// Initialize AI client
	var gen ai.TextGenerator
	if cfg.AI.Enabled() {
		client, err := ai.NewClient(ctx, cfg.AI)
		if err != nil {
			log.Warn().Err(err).Str("provider", cfg.AI.Provider).Msg("failed to initialize AI client, continuing without AI functionality")
		} else {
			defer client.Close()
			gen = ai.WithTimeout(client, cfg.AI.Timeout)
			log.Info().Str("provider", cfg.AI.Provider).Dur("timeout", cfg.AI.Timeout).Msg("AI client initialized")
		}
	} else {
		log.Warn().Msg("AI 凭证未配置，persona生成与优化将返回503")
	}

	responder, err := newResponder(cfg.Chat, gen)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to select chat strategy")
	}
	log.Info().Str("strategy", cfg.Chat.Strategy).Int("history_limit", cfg.Chat.HistoryLimit).Msg("chat responder selected")

	uploads := upload.NewService(st)
	normalizer := persona.NewNormalizer(cfg.Persona.AvatarBaseURL)
	services := handler.Services{
		Personas: persona.NewService(gen, st, normalizer, uploads),
		Chat:     chat.NewService(responder, st, cfg.Chat.Strategy),
		Uploads:  uploads,
		Exporter: export.NewExporter(),
		Shares:   share.NewManager(st, normalizer),
	}
	if !cfg.Persona.RefineEnabled {
		log.Info().Msg("persona refinement disabled by configuration")
	}

	router := handler.NewRouter(*cfg, services)

	startServer(ctx, cfg.Server, router, log)
}

// newResponder 按配置选择聊天策略，ai策略缺少模型时直接报错而不是静默降级
func newResponder(cfg config.ChatConfig, gen ai.TextGenerator) (chat.Responder, error) {
	switch cfg.Strategy {
	case config.ChatStrategyAI:
		if gen == nil {
			return nil, errors.New("CHAT_STRATEGY=ai requires a working AI provider; set CHAT_STRATEGY=canned to run without one")
		}
		return chat.NewAIResponder(gen, cfg.HistoryLimit), nil
	case config.ChatStrategyCanned:
		return chat.NewCannedResponder(nil), nil
	default:
		return nil, errors.New("unknown chat strategy " + cfg.Strategy)
	}
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler, log zerolog.Logger) {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Info().Str("addr", addr).Msg("Persona Studio backend listening")
	if err := runServer(ctx, srv); err != nil {
		log.Fatal().Err(err).Msg("server error")
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
