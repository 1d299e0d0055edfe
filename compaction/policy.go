package compaction

import (
	"github.com/BaSui01/contextflow/types"
)

// Defaults applied by Policy.sanitize when the optional knobs are zero.
const (
	DefaultToolPreserveMax       = 8
	DefaultSummarizationInputCap = 40
)

// Policy is the immutable per-run compaction configuration.
type Policy struct {
	// HardLimitTokens triggers compaction when the baseline window's
	// estimated token count exceeds it. Must be > 0.
	HardLimitTokens int `json:"hard_limit_tokens" yaml:"hard_limit_tokens"`

	// KeepLast is the number of most-recent history messages always
	// retained verbatim. Must be >= 0.
	KeepLast int `json:"keep_last" yaml:"keep_last"`

	// CompressTarget selects which roles feed the summarizer.
	// Empty means CompressAll.
	CompressTarget types.CompressTarget `json:"compress_target" yaml:"compress_target"`

	// SummarizationEnabled gates the external LLM call. When false the
	// deterministic fallback text is used instead.
	SummarizationEnabled bool `json:"summarization_enabled" yaml:"summarization_enabled"`

	// ToolPreserveMax bounds how many early tool messages are carried
	// into the window (most recent first). Zero means the default (8);
	// negative means preserve none.
	ToolPreserveMax int `json:"tool_preserve_max" yaml:"tool_preserve_max"`

	// SummarizationInputCap bounds how many filtered early messages are
	// sent to the summarizer. Zero means the default (40); negative
	// means none.
	SummarizationInputCap int `json:"summarization_input_cap" yaml:"summarization_input_cap"`
}

// DefaultPolicy returns a policy with all optional knobs at their defaults.
func DefaultPolicy(hardLimitTokens, keepLast int) Policy {
	return Policy{
		HardLimitTokens:       hardLimitTokens,
		KeepLast:              keepLast,
		CompressTarget:        types.CompressAll,
		ToolPreserveMax:       DefaultToolPreserveMax,
		SummarizationInputCap: DefaultSummarizationInputCap,
	}
}

// Validate rejects misconfigured policies. Misconfiguration is a caller
// error and is never silently clamped.
func (p Policy) Validate() error {
	if p.HardLimitTokens <= 0 {
		return types.NewErrorf(types.ErrInvalidPolicy, "hard_limit_tokens must be > 0, got %d", p.HardLimitTokens)
	}
	if p.KeepLast < 0 {
		return types.NewErrorf(types.ErrInvalidPolicy, "keep_last must be >= 0, got %d", p.KeepLast)
	}
	if !p.CompressTarget.Valid() {
		return types.NewErrorf(types.ErrInvalidPolicy, "unknown compress_target %q", p.CompressTarget)
	}
	return nil
}

// sanitize fills the zero-valued optional knobs with their defaults and
// clamps negatives to zero.
func (p Policy) sanitize() Policy {
	if p.CompressTarget == "" {
		p.CompressTarget = types.CompressAll
	}
	switch {
	case p.ToolPreserveMax == 0:
		p.ToolPreserveMax = DefaultToolPreserveMax
	case p.ToolPreserveMax < 0:
		p.ToolPreserveMax = 0
	}
	switch {
	case p.SummarizationInputCap == 0:
		p.SummarizationInputCap = DefaultSummarizationInputCap
	case p.SummarizationInputCap < 0:
		p.SummarizationInputCap = 0
	}
	return p
}
