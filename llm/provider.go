package llm

import (
	"context"
	"time"

	"github.com/BaSui01/contextflow/types"
)

// ChatRequest is a single non-streaming completion request.
type ChatRequest struct {
	Model       string          `json:"model"`
	Messages    []types.Message `json:"messages"`
	MaxTokens   int             `json:"max_tokens,omitempty"`
	Temperature float32         `json:"temperature,omitempty"`
	Timeout     time.Duration   `json:"timeout,omitempty"`
}

// ChatResponse is the provider's completion result.
type ChatResponse struct {
	Content      string `json:"content"`
	FinishReason string `json:"finish_reason,omitempty"`
	PromptTokens int    `json:"prompt_tokens,omitempty"`
	TotalTokens  int    `json:"total_tokens,omitempty"`
}

// Provider is the minimal completion capability the summarizer consumes.
// Implementations must honor ctx cancellation and deadlines.
type Provider interface {
	Name() string
	Complete(ctx context.Context, req *ChatRequest) (*ChatResponse, error)
}
