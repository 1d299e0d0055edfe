// Package contextflow provides a top-level convenience entry point for
// bounded conversational context with minimal boilerplate.
//
// Usage:
//
//	import "github.com/BaSui01/contextflow"
//
//	mgr, err := contextflow.New(contextflow.WithConfigFile("config.yaml"))
//	thread := mgr.NewThread()
//	window, stats, err := thread.Step(ctx, userMsg, assistantMsg)
//
// The returned session.Manager wires together the configured tokenizer,
// the LLM-backed summarizer, the compaction engine, and prometheus
// metrics. Callers who need finer control can assemble the packages
// directly.
package contextflow

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/BaSui01/contextflow/compaction"
	"github.com/BaSui01/contextflow/config"
	"github.com/BaSui01/contextflow/internal/metrics"
	"github.com/BaSui01/contextflow/llm"
	"github.com/BaSui01/contextflow/session"
	"github.com/BaSui01/contextflow/summary"
	"github.com/BaSui01/contextflow/tokenizer"
)

type options struct {
	configFile string
	cfg        *config.Config
	logger     *zap.Logger
	provider   llm.Provider
	registerer prometheus.Registerer
}

// Option configures the manager created by [New].
type Option func(*options)

// WithConfigFile loads configuration from a YAML file
// (plus CONTEXTFLOW_* environment overrides).
func WithConfigFile(path string) Option {
	return func(o *options) { o.configFile = path }
}

// WithConfig supplies a pre-built configuration, skipping file loading.
func WithConfig(cfg config.Config) Option {
	return func(o *options) { o.cfg = &cfg }
}

// WithLogger sets a custom zap logger. Defaults to the logger built
// from the Log configuration section.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithProvider sets a pre-built LLM provider for summarization,
// replacing the OpenAI-compatible client built from the LLM section.
func WithProvider(provider llm.Provider) Option {
	return func(o *options) { o.provider = provider }
}

// WithMetrics enables prometheus metrics on the given registerer
// (nil uses the default registerer).
func WithMetrics(reg prometheus.Registerer) Option {
	return func(o *options) {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		o.registerer = reg
	}
}

// New creates a fully wired [session.Manager].
func New(opts ...Option) (*session.Manager, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	var cfg config.Config
	if o.cfg != nil {
		cfg = *o.cfg
		if err := cfg.Compaction.Validate(); err != nil {
			return nil, err
		}
	} else {
		loaded, err := config.Load(o.configFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	logger := o.logger
	if logger == nil {
		built, err := cfg.Log.BuildLogger()
		if err != nil {
			return nil, err
		}
		logger = built
	}

	tokenizer.RegisterOpenAITokenizers()
	tok := tokenizer.GetTokenizerOrEstimator(cfg.Tokenizer.Model)

	provider := o.provider
	if provider == nil && cfg.Compaction.SummarizationEnabled {
		provider = llm.NewOpenAIClient(cfg.LLM, logger)
	}
	summarizer := summary.New(provider, cfg.Compaction.SummarizationEnabled,
		summary.WithModel(cfg.LLM.Model),
		summary.WithLogger(logger),
	)

	engineOpts := []compaction.Option{compaction.WithLogger(logger)}
	if o.registerer != nil {
		engineOpts = append(engineOpts,
			compaction.WithObserver(metrics.NewCollector("contextflow", o.registerer, logger)))
	}
	engine := compaction.New(tok, summarizer, engineOpts...)

	return session.NewManager(engine, cfg.Compaction, logger), nil
}
