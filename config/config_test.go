package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BaSui01/contextflow/types"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8000, cfg.Compaction.HardLimitTokens)
	assert.Equal(t, 4, cfg.Compaction.KeepLast)
	assert.Equal(t, types.CompressAll, cfg.Compaction.CompressTarget)
	assert.Equal(t, "gpt-4o-mini", cfg.Tokenizer.Model)
	assert.Equal(t, 30*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_YAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
compaction:
  hard_limit_tokens: 12000
  keep_last: 6
  compress_target: human
  summarization_enabled: true
  tool_preserve_max: 4
tokenizer:
  model: gpt-4o
llm:
  base_url: http://localhost:8080/v1
  model: local-llama
log:
  level: debug
  development: true
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 12000, cfg.Compaction.HardLimitTokens)
	assert.Equal(t, 6, cfg.Compaction.KeepLast)
	assert.Equal(t, types.CompressHuman, cfg.Compaction.CompressTarget)
	assert.True(t, cfg.Compaction.SummarizationEnabled)
	assert.Equal(t, 4, cfg.Compaction.ToolPreserveMax)
	assert.Equal(t, "gpt-4o", cfg.Tokenizer.Model)
	assert.Equal(t, "http://localhost:8080/v1", cfg.LLM.BaseURL)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("CONTEXTFLOW_COMPACTION_HARD_LIMIT_TOKENS", "500")
	t.Setenv("CONTEXTFLOW_COMPACTION_COMPRESS_TARGET", "assistant")
	t.Setenv("CONTEXTFLOW_LLM_API_KEY", "sk-test")
	t.Setenv("CONTEXTFLOW_LLM_TIMEOUT", "5s")
	t.Setenv("CONTEXTFLOW_LOG_LEVEL", "warn")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 500, cfg.Compaction.HardLimitTokens)
	assert.Equal(t, types.CompressAssistant, cfg.Compaction.CompressTarget)
	assert.Equal(t, "sk-test", cfg.LLM.APIKey)
	assert.Equal(t, 5*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoad_InvalidPolicyRejected(t *testing.T) {
	t.Setenv("CONTEXTFLOW_COMPACTION_HARD_LIMIT_TOKENS", "-1")

	_, err := Load("")
	require.Error(t, err)
	assert.Equal(t, types.ErrInvalidPolicy, types.GetErrorCode(err))
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLogConfig_BuildLogger(t *testing.T) {
	logger, err := LogConfig{Level: "debug", Development: true}.BuildLogger()
	require.NoError(t, err)
	require.NotNil(t, logger)

	_, err = LogConfig{Level: "nonsense"}.BuildLogger()
	require.Error(t, err)
}
