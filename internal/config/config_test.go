package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "PUBLIC_BASE_URL", "CORS_ALLOWED_ORIGINS",
		"AI_PROVIDER", "ARK_API_KEY", "ARK_ACCESS_KEY", "ARK_SECRET_KEY", "ARK_MODEL",
		"GEMINI_API_KEY", "GEMINI_MODEL", "AI_TEMPERATURE", "AI_TOP_P", "AI_MAX_TOKENS", "AI_TIMEOUT",
		"STORE_BACKEND", "REDIS_ADDR", "REDIS_DB", "LIBSQL_PATH",
		"REFINE_ENABLED", "AVATAR_BASE_URL", "CHAT_STRATEGY", "CHAT_HISTORY_LIMIT",
		"LOG_LEVEL", "LOG_PRETTY",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8000", cfg.Server.Addr)
	assert.Equal(t, "http://localhost:3000", cfg.Server.PublicBaseURL)
	assert.Empty(t, cfg.Server.AllowedOrigins)
	assert.Empty(t, cfg.AI.Provider)
	assert.False(t, cfg.AI.Enabled())
	assert.Equal(t, 60*time.Second, cfg.AI.Timeout)
	assert.Equal(t, StoreMemory, cfg.Store.Backend)
	assert.True(t, cfg.Persona.RefineEnabled)
	assert.Equal(t, "https://api.dicebear.com/7.x/avataaars/svg", cfg.Persona.AvatarBaseURL)
	assert.Equal(t, ChatStrategyCanned, cfg.Chat.Strategy)
	assert.Equal(t, 5, cfg.Chat.HistoryLimit)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadInfersProvider(t *testing.T) {
	clearEnv(t)
	t.Setenv("GEMINI_API_KEY", "key")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ProviderGemini, cfg.AI.Provider)
	assert.True(t, cfg.AI.Enabled())
	assert.Equal(t, ChatStrategyAI, cfg.Chat.Strategy)

	t.Setenv("ARK_API_KEY", "ark-key")
	t.Setenv("ARK_MODEL", "doubao-pro")
	cfg, err = Load()
	require.NoError(t, err)
	assert.Equal(t, ProviderArk, cfg.AI.Provider)
}

func TestLoadExplicitCannedChat(t *testing.T) {
	clearEnv(t)
	t.Setenv("GEMINI_API_KEY", "key")
	t.Setenv("CHAT_STRATEGY", "canned")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ChatStrategyCanned, cfg.Chat.Strategy)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"PORT":           "80 80",
		"AI_PROVIDER":    "openai",
		"STORE_BACKEND":  "mongo",
		"CHAT_STRATEGY":  "psychic",
		"AI_TIMEOUT":     "-5",
		"REFINE_ENABLED": "maybe",
		"AI_TEMPERATURE": "warm",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(key, value)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestParseDurationEnv(t *testing.T) {
	t.Setenv("X_TIMEOUT", "90")
	d, err := parseDurationEnv("X_TIMEOUT", time.Second)
	require.NoError(t, err)
	assert.Equal(t, 90*time.Second, d)

	t.Setenv("X_TIMEOUT", "1m30s")
	d, err = parseDurationEnv("X_TIMEOUT", time.Second)
	require.NoError(t, err)
	assert.Equal(t, 90*time.Second, d)
}

func TestServerConfigOrigins(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "127.0.0.1:9000")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test, http://b.test ,")
	t.Setenv("PUBLIC_BASE_URL", "https://personas.example/")

	cfg, err := loadServerConfig()
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9000", cfg.Addr)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.AllowedOrigins)
	assert.Equal(t, "https://personas.example", cfg.PublicBaseURL)
}
