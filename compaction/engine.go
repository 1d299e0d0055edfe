package compaction

import (
	"context"

	"go.uber.org/zap"

	"github.com/BaSui01/contextflow/summary"
	"github.com/BaSui01/contextflow/tokenizer"
	"github.com/BaSui01/contextflow/types"
)

// Engine decides, once per turn, whether the committed context window
// exceeds the token budget and, if so, rebuilds it as
// [summary, preserved tools..., verbatim tail...].
//
// The engine is pure with respect to its inputs: history is read-only,
// the returned window is freshly allocated, and the only state lives in
// the caller's previousWindow threading.
type Engine struct {
	tokenizer  tokenizer.Tokenizer
	summarizer summary.Summarizer
	logger     *zap.Logger
	observer   Observer
}

// Observer receives compaction telemetry. Implementations must tolerate
// concurrent calls.
type Observer interface {
	ObserveCompaction(fired bool, tokensBefore, tokensAfter int)
	ObserveSummaryDegraded()
	ObserveTokenizerFallback()
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// WithObserver attaches a telemetry observer.
func WithObserver(observer Observer) Option {
	return func(e *Engine) { e.observer = observer }
}

// New creates an Engine. tok may be nil (falls back to the generic
// estimator); summarizer may be nil (every summary uses the
// deterministic fallback text).
func New(tok tokenizer.Tokenizer, summarizer summary.Summarizer, opts ...Option) *Engine {
	e := &Engine{
		tokenizer:  tok,
		summarizer: summarizer,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.tokenizer == nil {
		e.tokenizer = tokenizer.NewEstimatorTokenizer("")
	}
	if e.summarizer == nil {
		e.summarizer = summary.New(nil, false)
	}
	return e
}

// EstimateTokens returns a non-negative token estimate for the messages.
// When the primary tokenizer fails the whitespace word count is used
// transparently; estimation itself never fails.
func (e *Engine) EstimateTokens(msgs []types.Message) int {
	n, err := e.tokenizer.CountMessages(msgs)
	if err != nil || n < 0 {
		e.logger.Debug("tokenizer degraded, using word-count fallback",
			zap.String("tokenizer", e.tokenizer.Name()),
			zap.Error(err),
		)
		if e.observer != nil {
			e.observer.ObserveTokenizerFallback()
		}
		return tokenizer.CountWords(msgs)
	}
	return n
}

// Compact runs one turn's compaction decision.
//
// history is the caller's full append-only record sequence, assumed to
// already contain the new turn. prevWindow is the window committed on
// the previous turn, or nil on the first call; when present, newTurn is
// appended onto it to form the baseline, so the committed window tracks
// the conversation between compactions.
//
// The only returned error is an invalid policy; tokenizer and summarizer
// failures degrade internally and never surface here.
func (e *Engine) Compact(
	ctx context.Context,
	history []types.Record,
	prevWindow []types.Message,
	newTurn []types.Message,
	policy Policy,
) ([]types.Message, Stats, error) {
	if err := policy.Validate(); err != nil {
		return nil, Stats{}, err
	}
	p := policy.sanitize()

	// Deciding: measure the baseline.
	var baseline []types.Message
	if prevWindow != nil {
		baseline = make([]types.Message, 0, len(prevWindow)+len(newTurn))
		baseline = append(baseline, prevWindow...)
		baseline = append(baseline, newTurn...)
	} else {
		baseline = Normalize(history)
	}

	tokensBefore := e.EstimateTokens(baseline)
	stats := Stats{
		MessagesBefore: len(baseline),
		TokensBefore:   tokensBefore,
		CompressTarget: p.CompressTarget,
	}

	if tokensBefore <= p.HardLimitTokens {
		stats.MessagesAfter = stats.MessagesBefore
		stats.TokensAfter = tokensBefore
		if e.observer != nil {
			e.observer.ObserveCompaction(false, tokensBefore, tokensBefore)
		}
		return baseline, stats, nil
	}

	// Compacting: partition history into early segment and verbatim tail.
	keep := p.KeepLast
	if keep > len(history) {
		keep = len(history)
	}
	earlyRecords := history[:len(history)-keep]
	tail := Normalize(history[len(history)-keep:])

	// Tool records in the early segment are exempt from summarization
	// and role filtering; keep the most recent ToolPreserveMax.
	var toolEarly []types.Message
	for _, r := range earlyRecords {
		if r.IsTool() {
			toolEarly = append(toolEarly, r.Normalize())
		}
	}
	if len(toolEarly) > p.ToolPreserveMax {
		toolEarly = toolEarly[len(toolEarly)-p.ToolPreserveMax:]
	}

	// Role-filter the normalized early segment, then cap the summarizer
	// input to the most recent SummarizationInputCap entries.
	selected := filterByTarget(Normalize(earlyRecords), p.CompressTarget)
	focus := selected
	if len(focus) > p.SummarizationInputCap {
		focus = focus[len(focus)-p.SummarizationInputCap:]
	}

	omitted := len(earlyRecords) - len(toolEarly)
	text, degraded := e.summarizer.Summarize(ctx, summary.Request{
		Messages: focus,
		Target:   p.CompressTarget,
		Omitted:  omitted,
		Retained: len(tail),
	})
	if degraded && e.observer != nil {
		e.observer.ObserveSummaryDegraded()
	}

	window := make([]types.Message, 0, 1+len(toolEarly)+len(tail))
	window = append(window, summaryMessage(text, p.CompressTarget))
	window = append(window, toolEarly...)
	window = append(window, tail...)

	tokensAfter := e.EstimateTokens(window)
	stats.Compressed = true
	stats.MessagesAfter = len(window)
	stats.TokensAfter = tokensAfter
	stats.SummaryText = text
	stats.SummaryDegraded = degraded
	stats.SelectedForSummary = len(selected)

	if e.observer != nil {
		e.observer.ObserveCompaction(true, tokensBefore, tokensAfter)
	}
	e.logger.Info("context compacted",
		zap.Int("messages_before", stats.MessagesBefore),
		zap.Int("messages_after", stats.MessagesAfter),
		zap.Int("tokens_before", tokensBefore),
		zap.Int("tokens_after", tokensAfter),
		zap.Int("tools_preserved", len(toolEarly)),
		zap.Bool("summary_degraded", degraded),
	)

	return window, stats, nil
}

// filterByTarget applies the compress-target role filter. Tool messages
// never feed the summarizer, regardless of target.
func filterByTarget(msgs []types.Message, target types.CompressTarget) []types.Message {
	selected := make([]types.Message, 0, len(msgs))
	for _, m := range msgs {
		keep := false
		switch target {
		case types.CompressHuman:
			keep = m.Role == types.RoleHuman
		case types.CompressAssistant:
			keep = m.Role == types.RoleAssistant
		default:
			keep = m.Role != types.RoleTool
		}
		if keep {
			selected = append(selected, m)
		}
	}
	return selected
}

// summaryMessage wraps the summary text in a system message annotated
// with the compress-target label.
func summaryMessage(text string, target types.CompressTarget) types.Message {
	header := "Conversation summary"
	if label := target.Label(); label != "" {
		header += " " + label
	}
	return types.NewSystemMessage(header + ":\n" + text)
}
