package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
llm:
  base_url: https://router.example.com/v1
  model: deepseek-v3
  summary:
    max_tokens: 600
search:
  provider: searxng
  searxng:
    base_url: http://localhost:8888
budget:
  chat_chars: 1000
fetch:
  parallel: true
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	t.Setenv("LLM_API_KEY", "sk-from-env")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "https://router.example.com/v1", cfg.LLM.BaseURL)
	assert.Equal(t, "sk-from-env", cfg.LLM.APIKey)
	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.Equal(t, 600, cfg.LLM.Summary.MaxTokens)
	assert.InDelta(t, 0.3, cfg.LLM.Summary.Temperature, 1e-6)
	assert.Equal(t, 800, cfg.LLM.Chat.MaxTokens)
	assert.Equal(t, "searxng", cfg.Search.Provider)
	assert.Equal(t, 1000, cfg.Budget.ChatChars)
	assert.Equal(t, 30000, cfg.Budget.SummaryChars)
	assert.Equal(t, 8, cfg.Budget.HistoryWindow)
	assert.True(t, cfg.Fetch.Parallel)
	assert.Equal(t, DefaultUserAgent, cfg.Fetch.UserAgent)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "google", cfg.Search.Provider)
	assert.Equal(t, 100000, cfg.Fetch.MaxWebsiteChars)
	assert.Equal(t, 5*time.Second, Seconds(cfg.Fetch.LogoTimeout))
	assert.Greater(t, cfg.Budget.ChatChars, cfg.Budget.SummaryChars)
}
