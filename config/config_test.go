package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "4000", cfg.ServerPort)
	assert.Equal(t, "data", cfg.DataDir)
	assert.Equal(t, "auto", cfg.AIProvider)
	assert.Equal(t, "gpt-4o-mini", cfg.GitHubModel)
	assert.False(t, cfg.RedisConfigured())
}

func TestLoadConfigAgentModelFallbacks(t *testing.T) {
	t.Setenv("GITHUB_MODEL", "gpt-4o")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o", cfg.GitHubNutritionModel)
	assert.Equal(t, "gpt-4o", cfg.GitHubMedsModel)
}

func TestLoadConfigSplitsModelLists(t *testing.T) {
	t.Setenv("HF_MODELS", "model-a, model-b ,,model-c")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, []string{"model-a", "model-b", "model-c"}, cfg.HFModels)
}

func TestLoadConfigGitHubKeyAliases(t *testing.T) {
	t.Setenv("GITHUB_TOKEN", "alias-token")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "alias-token", cfg.GitHubAPIKey)
}

func TestLoadConfigRejectsUnknownProvider(t *testing.T) {
	t.Setenv("AI_PROVIDER", "bedrock")

	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestLoadConfigRejectsBadRedisDB(t *testing.T) {
	t.Setenv("REDIS_DB", "not-a-number")

	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestRedisAddr(t *testing.T) {
	t.Setenv("REDIS_HOST", "cache.internal")
	t.Setenv("REDIS_PORT", "6380")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.True(t, cfg.RedisConfigured())
	assert.Equal(t, "cache.internal:6380", cfg.RedisAddr())
}
