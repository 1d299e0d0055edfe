package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/BaSui01/contextflow/types"
)

// OpenAIConfig configures the OpenAI-compatible client.
// Any endpoint speaking the /chat/completions dialect works
// (OpenAI, DashScope, DeepSeek, vLLM, ...).
type OpenAIConfig struct {
	BaseURL string        `json:"base_url" yaml:"base_url"`
	APIKey  string        `json:"api_key" yaml:"api_key"`
	Model   string        `json:"model" yaml:"model"`
	Timeout time.Duration `json:"timeout" yaml:"timeout"`
}

// OpenAIClient implements Provider over the OpenAI-compatible chat API.
type OpenAIClient struct {
	cfg    OpenAIConfig
	client *http.Client
	logger *zap.Logger
}

// NewOpenAIClient creates a new OpenAI-compatible provider instance.
func NewOpenAIClient(cfg OpenAIConfig, logger *zap.Logger) *OpenAIClient {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &OpenAIClient{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

func (c *OpenAIClient) Name() string { return "openai-compatible" }

// OpenAI-compatible wire types.
type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content,omitempty"`
	Name    string `json:"name,omitempty"`
}

type openAIRequest struct {
	Model       string          `json:"model"`
	Messages    []openAIMessage `json:"messages"`
	MaxTokens   int             `json:"max_tokens,omitempty"`
	Temperature float32         `json:"temperature,omitempty"`
}

type openAIResponse struct {
	Choices []struct {
		Message      openAIMessage `json:"message"`
		FinishReason string        `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens int `json:"prompt_tokens"`
		TotalTokens  int `json:"total_tokens"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// toWireRole maps canonical roles onto the OpenAI role vocabulary.
func toWireRole(role types.Role) string {
	switch role {
	case types.RoleHuman:
		return "user"
	case types.RoleAssistant:
		return "assistant"
	case types.RoleTool:
		return "tool"
	default:
		return "system"
	}
}

func (c *OpenAIClient) Complete(ctx context.Context, req *ChatRequest) (*ChatResponse, error) {
	model := req.Model
	if model == "" {
		model = c.cfg.Model
	}

	wireMsgs := make([]openAIMessage, len(req.Messages))
	for i, m := range req.Messages {
		wireMsgs[i] = openAIMessage{Role: toWireRole(m.Role), Content: m.Content, Name: m.Name}
	}

	body, err := json.Marshal(openAIRequest{
		Model:       model,
		Messages:    wireMsgs,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	})
	if err != nil {
		return nil, types.NewError(types.ErrInvalidRequest, "marshal chat request").WithCause(err)
	}

	endpoint := fmt.Sprintf("%s/chat/completions", strings.TrimRight(c.cfg.BaseURL, "/"))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, types.NewError(types.ErrInvalidRequest, "build chat request").WithCause(err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	start := time.Now()
	resp, err := c.client.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return nil, types.NewError(types.ErrUpstreamTimeout, "chat request canceled").WithCause(ctx.Err())
		}
		return nil, types.NewError(types.ErrUpstreamError, "chat request failed").WithCause(err).WithRetryable(true)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, types.NewError(types.ErrUpstreamError, "read chat response").WithCause(err).WithRetryable(true)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, mapHTTPError(resp.StatusCode, raw)
	}

	var parsed openAIResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, types.NewError(types.ErrUpstreamError, "decode chat response").WithCause(err)
	}
	if parsed.Error != nil {
		return nil, types.NewErrorf(types.ErrUpstreamError, "upstream error: %s", parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 || parsed.Choices[0].Message.Content == "" {
		return nil, types.NewError(types.ErrEmptyCompletion, "empty completion")
	}

	c.logger.Debug("chat completion",
		zap.String("model", model),
		zap.Duration("latency", time.Since(start)),
		zap.Int("total_tokens", parsed.Usage.TotalTokens),
	)

	return &ChatResponse{
		Content:      parsed.Choices[0].Message.Content,
		FinishReason: parsed.Choices[0].FinishReason,
		PromptTokens: parsed.Usage.PromptTokens,
		TotalTokens:  parsed.Usage.TotalTokens,
	}, nil
}

// mapHTTPError maps upstream status codes onto the unified error codes.
func mapHTTPError(status int, body []byte) error {
	msg := strings.TrimSpace(string(body))
	if len(msg) > 256 {
		msg = msg[:256]
	}
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return types.NewErrorf(types.ErrAuthentication, "status=%d msg=%s", status, msg)
	case status == http.StatusTooManyRequests:
		return types.NewErrorf(types.ErrRateLimited, "status=%d msg=%s", status, msg).WithRetryable(true)
	case status == http.StatusRequestTimeout || status == http.StatusGatewayTimeout:
		return types.NewErrorf(types.ErrUpstreamTimeout, "status=%d msg=%s", status, msg).WithRetryable(true)
	case status >= 500:
		return types.NewErrorf(types.ErrServiceUnavailable, "status=%d msg=%s", status, msg).WithRetryable(true)
	default:
		return types.NewErrorf(types.ErrInvalidRequest, "status=%d msg=%s", status, msg)
	}
}
