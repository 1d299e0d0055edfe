// Package config 提供统一配置加载，支持 YAML 文件 + 环境变量覆盖。
//
// 配置优先级: 默认值 → YAML 文件 → 环境变量 (CONTEXTFLOW_*)
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/BaSui01/contextflow/compaction"
	"github.com/BaSui01/contextflow/llm"
)

// EnvPrefix 是环境变量覆盖的前缀。
const EnvPrefix = "CONTEXTFLOW"

// Config 是模块的完整配置结构。
type Config struct {
	// Compaction 压缩策略配置
	Compaction compaction.Policy `yaml:"compaction"`

	// Tokenizer 分词器配置
	Tokenizer TokenizerConfig `yaml:"tokenizer"`

	// LLM 摘要所用的 LLM 客户端配置
	LLM llm.OpenAIConfig `yaml:"llm"`

	// Log 日志配置
	Log LogConfig `yaml:"log"`
}

// TokenizerConfig 分词器配置。
type TokenizerConfig struct {
	// Model 决定主分词器（OpenAI 家族走 tiktoken，否则走估算器）。
	Model string `yaml:"model"`
}

// LogConfig 日志配置。
type LogConfig struct {
	// Level: debug / info / warn / error
	Level string `yaml:"level"`
	// Development 使用开发模式编码（彩色、可读）。
	Development bool `yaml:"development"`
}

// Default 返回默认配置。
func Default() Config {
	return Config{
		Compaction: compaction.DefaultPolicy(8000, 4),
		Tokenizer:  TokenizerConfig{Model: "gpt-4o-mini"},
		LLM: llm.OpenAIConfig{
			Model:   "gpt-4o-mini",
			Timeout: 30 * time.Second,
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load 读取 YAML 配置文件并应用环境变量覆盖。
// path 为空时只使用默认值 + 环境变量。
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	applyEnv(&cfg)

	if err := cfg.Compaction.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// applyEnv 应用环境变量覆盖。
func applyEnv(cfg *Config) {
	envInt(&cfg.Compaction.HardLimitTokens, "COMPACTION_HARD_LIMIT_TOKENS")
	envInt(&cfg.Compaction.KeepLast, "COMPACTION_KEEP_LAST")
	envInt(&cfg.Compaction.ToolPreserveMax, "COMPACTION_TOOL_PRESERVE_MAX")
	envInt(&cfg.Compaction.SummarizationInputCap, "COMPACTION_SUMMARIZATION_INPUT_CAP")
	envBool(&cfg.Compaction.SummarizationEnabled, "COMPACTION_SUMMARIZATION_ENABLED")
	envStr((*string)(&cfg.Compaction.CompressTarget), "COMPACTION_COMPRESS_TARGET")

	envStr(&cfg.Tokenizer.Model, "TOKENIZER_MODEL")

	envStr(&cfg.LLM.BaseURL, "LLM_BASE_URL")
	envStr(&cfg.LLM.APIKey, "LLM_API_KEY")
	envStr(&cfg.LLM.Model, "LLM_MODEL")
	envDuration(&cfg.LLM.Timeout, "LLM_TIMEOUT")

	envStr(&cfg.Log.Level, "LOG_LEVEL")
	envBool(&cfg.Log.Development, "LOG_DEVELOPMENT")
}

func envStr(dst *string, key string) {
	if v, ok := os.LookupEnv(EnvPrefix + "_" + key); ok {
		*dst = v
	}
}

func envInt(dst *int, key string) {
	if v, ok := os.LookupEnv(EnvPrefix + "_" + key); ok {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func envBool(dst *bool, key string) {
	if v, ok := os.LookupEnv(EnvPrefix + "_" + key); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func envDuration(dst *time.Duration, key string) {
	if v, ok := os.LookupEnv(EnvPrefix + "_" + key); ok {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}

// BuildLogger 根据日志配置创建 zap.Logger。
func (c LogConfig) BuildLogger() (*zap.Logger, error) {
	level, err := zap.ParseAtomicLevel(c.Level)
	if err != nil {
		return nil, fmt.Errorf("parse log level %q: %w", c.Level, err)
	}

	var zcfg zap.Config
	if c.Development {
		zcfg = zap.NewDevelopmentConfig()
	} else {
		zcfg = zap.NewProductionConfig()
	}
	zcfg.Level = level
	return zcfg.Build()
}
