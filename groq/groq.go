// Package groq provides an LLM client for Groq's OpenAI-compatible cloud API.
package groq

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
)

const (
	defaultGroqModel = "llama-3.1-8b-instant"
	providerName     = "groq"
	// DefaultBaseURL is Groq's OpenAI-compatible API root.
	DefaultBaseURL = "https://api.groq.com/openai/v1"
)

// Client implements the writewise.Client interface for Groq. One Client is bound
// to one API key.
type Client struct {
	api          *openai.Client
	modelName    string
	jsonResponse bool
	logger       zerolog.Logger
}

// NewClient creates a new Groq client. baseURL may be empty to use DefaultBaseURL.
func NewClient(apiKey, baseURL, modelOverride string, jsonResponse bool, requestTimeoutSeconds int, logger zerolog.Logger) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("groq API key is required")
	}

	modelToUse := defaultGroqModel
	if modelOverride != "" {
		modelToUse = modelOverride
	}

	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = DefaultBaseURL
	if baseURL != "" {
		cfg.BaseURL = strings.TrimSuffix(baseURL, "/")
	}
	if requestTimeoutSeconds > 0 {
		cfg.HTTPClient = &http.Client{Timeout: time.Duration(requestTimeoutSeconds) * time.Second}
	}
	logger.Debug().Str("model", modelToUse).Str("base_url", cfg.BaseURL).Msg("groq client ready")

	return &Client{
		api:          openai.NewClientWithConfig(cfg),
		modelName:    modelToUse,
		jsonResponse: jsonResponse,
		logger:       logger,
	}, nil
}

// Generate sends the prompt as a single user message and returns the reply text.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	if c.api == nil {
		return "", fmt.Errorf("groq client not initialized")
	}

	req := openai.ChatCompletionRequest{
		Model: c.modelName,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	}
	if c.jsonResponse {
		req.ResponseFormat = &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject}
	}

	resp, err := c.api.CreateChatCompletion(ctx, req)
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			return "", fmt.Errorf("groq API error (status %d): %s: %w", apiErr.HTTPStatusCode, apiErr.Message, err)
		}
		return "", fmt.Errorf("failed to send request to Groq API: %w", err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		finish := "N/A"
		if len(resp.Choices) > 0 {
			finish = string(resp.Choices[0].FinishReason)
		}
		c.logger.Warn().Str("id", resp.ID).Str("model", resp.Model).Str("finish_reason", finish).
			Int("total_tokens", resp.Usage.TotalTokens).Msg("groq response without content")
		return "", fmt.Errorf("groq response contained no choices or empty message content")
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// ProviderName returns the name of this provider.
func (c *Client) ProviderName() string {
	return providerName
}

// Close is a no-op; the underlying HTTP client needs no cleanup.
func (c *Client) Close() error {
	return nil
}
