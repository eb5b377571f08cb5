package providers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

const geminiProvider = "gemini"

// GeminiConfig configures the prompt-refinement client.
type GeminiConfig struct {
	APIKey  string
	Model   string
	BaseURL string        // empty uses the SDK default endpoint
	Timeout time.Duration // zero means no client-side timeout
}

// DefaultGeminiConfig returns the defaults used by the service.
func DefaultGeminiConfig(apiKey string) GeminiConfig {
	return GeminiConfig{
		APIKey: apiKey,
		Model:  "gemini-3-flash-preview",
	}
}

// GeminiClient implements TextGenerator on top of the Google GenAI SDK.
type GeminiClient struct {
	client *genai.Client
	model  string
	logger *zap.Logger
}

// NewGeminiClient creates a Gemini client. The SDK client is created once
// and reused across requests.
func NewGeminiClient(ctx context.Context, cfg GeminiConfig, logger *zap.Logger) (*GeminiClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("Gemini API key is required")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultGeminiConfig(cfg.APIKey).Model
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	clientConfig := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: &http.Client{Timeout: cfg.Timeout},
	}
	if cfg.BaseURL != "" {
		clientConfig.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return &GeminiClient{
		client: client,
		model:  cfg.Model,
		logger: logger.Named(geminiProvider),
	}, nil
}

// GenerateText sends req.Prompt to Gemini and returns the response text.
func (c *GeminiClient) GenerateText(ctx context.Context, req Request) (string, error) {
	startTime := time.Now()
	c.logger.Debug("generate content", zap.String("model", c.model), zap.Int("prompt_len", len(req.Prompt)))

	var config *genai.GenerateContentConfig
	if req.MaxTokens > 0 || req.Temperature != nil {
		config = &genai.GenerateContentConfig{}
		if req.MaxTokens > 0 {
			config.MaxOutputTokens = int32(req.MaxTokens)
		}
		if req.Temperature != nil {
			config.Temperature = genai.Ptr(float32(*req.Temperature))
		}
	}

	result, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(req.Prompt), config)
	if err != nil {
		return "", &Error{Provider: geminiProvider, Err: err}
	}

	text := result.Text()
	if strings.TrimSpace(text) == "" {
		return "", &Error{Provider: geminiProvider, Err: errors.New("no text returned")}
	}

	c.logger.Info("generate content completed",
		zap.Duration("elapsed", time.Since(startTime)),
		zap.Int("response_len", len(text)))
	return text, nil
}
