package compaction

import "github.com/BaSui01/contextflow/types"

// Stats reports one compaction decision. Produced fresh each turn and
// never persisted by this package.
type Stats struct {
	// Compressed reports whether compaction fired this turn.
	Compressed bool `json:"compressed"`

	// MessagesBefore/After and TokensBefore/After describe the baseline
	// window and the committed window.
	MessagesBefore int `json:"messages_before"`
	MessagesAfter  int `json:"messages_after"`
	TokensBefore   int `json:"tokens_before"`
	TokensAfter    int `json:"tokens_after"`

	// SummaryText is the produced summary (empty when not compressed).
	SummaryText string `json:"summary_text,omitempty"`

	// SummaryDegraded reports that the deterministic fallback replaced a
	// failed or disabled LLM summary.
	SummaryDegraded bool `json:"summary_degraded,omitempty"`

	// CompressTarget echoes the policy's role filter.
	CompressTarget types.CompressTarget `json:"compress_target,omitempty"`

	// SelectedForSummary counts the early messages that passed the role
	// filter before the input cap was applied.
	SelectedForSummary int `json:"selected_for_summary,omitempty"`
}
