package summary

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/BaSui01/contextflow/llm"
	"github.com/BaSui01/contextflow/types"
)

// Request carries the bounded summarization input and the counts the
// deterministic fallback template needs. The engine has already filtered
// and capped Messages; the summarizer never re-filters.
type Request struct {
	Messages []types.Message
	Target   types.CompressTarget
	Omitted  int // early messages dropped from the window
	Retained int // tail messages kept verbatim
}

// Summarizer compresses a bounded set of early messages into a short text.
// Implementations never fail: any degradation yields the deterministic
// fallback text and degraded=true.
type Summarizer interface {
	Summarize(ctx context.Context, req Request) (text string, degraded bool)
}

// instruction is the fixed summarization prompt.
const instruction = "Compress the following conversation excerpt to at most ~120 words. " +
	"Preserve facts, entities, numbers, and conclusions. " +
	"When messages conflict, resolve in favor of the most recent message."

// FallbackText is the deterministic template substituted when
// summarization is disabled or degraded.
func FallbackText(omitted, retained int) string {
	return fmt.Sprintf("[earlier context omitted: %d messages dropped, %d most recent messages retained verbatim]",
		omitted, retained)
}

// LLMSummarizer summarizes via an llm.Provider. A nil provider or
// Enabled=false skips the external call entirely.
type LLMSummarizer struct {
	provider  llm.Provider
	model     string
	maxTokens int
	enabled   bool
	logger    *zap.Logger
}

// Option configures an LLMSummarizer.
type Option func(*LLMSummarizer)

// WithModel overrides the provider's default model for summary calls.
func WithModel(model string) Option {
	return func(s *LLMSummarizer) { s.model = model }
}

// WithMaxTokens bounds the summary completion length.
func WithMaxTokens(n int) Option {
	return func(s *LLMSummarizer) { s.maxTokens = n }
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *LLMSummarizer) { s.logger = logger }
}

// New creates an LLMSummarizer. enabled=false (or provider==nil) makes
// Summarize return the deterministic fallback without any external call.
func New(provider llm.Provider, enabled bool, opts ...Option) *LLMSummarizer {
	s := &LLMSummarizer{
		provider:  provider,
		maxTokens: 256,
		enabled:   enabled,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *LLMSummarizer) Summarize(ctx context.Context, req Request) (string, bool) {
	if !s.enabled || s.provider == nil {
		return FallbackText(req.Omitted, req.Retained), false
	}

	prompt := make([]types.Message, 0, len(req.Messages)+1)
	prompt = append(prompt, types.Message{Role: types.RoleSystem, Content: s.prompt(req.Target)})
	prompt = append(prompt, req.Messages...)

	resp, err := s.provider.Complete(ctx, &llm.ChatRequest{
		Model:     s.model,
		Messages:  prompt,
		MaxTokens: s.maxTokens,
	})
	if err != nil {
		s.logger.Warn("summarization degraded, using fallback",
			zap.String("provider", s.provider.Name()),
			zap.Error(err),
		)
		return FallbackText(req.Omitted, req.Retained), true
	}
	text := strings.TrimSpace(resp.Content)
	if text == "" {
		s.logger.Warn("summarization returned empty content, using fallback")
		return FallbackText(req.Omitted, req.Retained), true
	}
	return text, false
}

// prompt annotates the fixed instruction with the compression target.
func (s *LLMSummarizer) prompt(target types.CompressTarget) string {
	if label := target.Label(); label != "" {
		return instruction + " Only the excerpt's " + string(target) + " messages are included " + label + "."
	}
	return instruction
}
