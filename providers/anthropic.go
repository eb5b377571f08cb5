package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	anthropicProvider = "anthropic"
	anthropicVersion  = "2023-06-01"
)

// AnthropicConfig configures the code-generation client.
type AnthropicConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration // zero means no client-side timeout
}

// DefaultAnthropicConfig returns the defaults used by the service.
func DefaultAnthropicConfig(apiKey string) AnthropicConfig {
	return AnthropicConfig{
		APIKey:  apiKey,
		BaseURL: "https://api.anthropic.com/v1",
		Model:   "claude-sonnet-4-20250514",
	}
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicRequest struct {
	Model       string             `json:"model"`
	MaxTokens   int                `json:"max_tokens"`
	Messages    []anthropicMessage `json:"messages"`
	Temperature *float64           `json:"temperature,omitempty"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
	Usage      struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// defaultAnthropicMaxTokens is used when a Request leaves MaxTokens unset;
// the Messages API requires the field.
const defaultAnthropicMaxTokens = 8192

// AnthropicClient implements TextGenerator against the Anthropic Messages API.
type AnthropicClient struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewAnthropicClient creates a client; the underlying http.Client is reused
// across requests.
func NewAnthropicClient(cfg AnthropicConfig, logger *zap.Logger) *AnthropicClient {
	defaults := DefaultAnthropicConfig(cfg.APIKey)
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaults.BaseURL
	}
	if cfg.Model == "" {
		cfg.Model = defaults.Model
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnthropicClient{
		apiKey:     cfg.APIKey,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		model:      cfg.Model,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger.Named(anthropicProvider),
	}
}

// GenerateText sends req.Prompt as a single user message and returns the
// concatenated text blocks of the reply.
func (c *AnthropicClient) GenerateText(ctx context.Context, req Request) (string, error) {
	startTime := time.Now()
	if c.apiKey == "" {
		return "", providerError(anthropicProvider, "API key not configured")
	}

	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultAnthropicMaxTokens
	}
	reqBody := anthropicRequest{
		Model:       c.model,
		MaxTokens:   maxTokens,
		Messages:    []anthropicMessage{{Role: "user", Content: req.Prompt}},
		Temperature: req.Temperature,
	}
	c.logger.Debug("create message",
		zap.String("model", c.model),
		zap.Int("max_tokens", maxTokens),
		zap.Int("prompt_len", len(req.Prompt)))

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", providerError(anthropicProvider, "failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/messages", bytes.NewReader(jsonData))
	if err != nil {
		return "", providerError(anthropicProvider, "failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", c.apiKey)
	httpReq.Header.Set("anthropic-version", anthropicVersion)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", providerError(anthropicProvider, "request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", providerError(anthropicProvider, "failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", providerError(anthropicProvider, "API request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var result anthropicResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", providerError(anthropicProvider, "failed to parse response: %w", err)
	}
	if result.Error != nil {
		return "", providerError(anthropicProvider, "API error: %s", result.Error.Message)
	}

	var text strings.Builder
	for _, block := range result.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return "", providerError(anthropicProvider, "no completion returned")
	}

	if result.StopReason == "max_tokens" {
		c.logger.Warn("response stopped at max_tokens", zap.Int("max_tokens", maxTokens))
	}
	c.logger.Info("create message completed",
		zap.Duration("elapsed", time.Since(startTime)),
		zap.Int("input_tokens", result.Usage.InputTokens),
		zap.Int("output_tokens", result.Usage.OutputTokens),
		zap.Int("response_len", text.Len()))
	return text.String(), nil
}
