// Package gemini provides an LLM client for Google's Gemini models.
package gemini

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/rs/zerolog"
	"google.golang.org/api/option"
)

const (
	defaultGeminiModel = "gemini-2.0-flash"
	providerName       = "gemini"
	jsonMIMEType       = "application/json"
)

// Client implements the writewise.Client interface for Gemini. One Client is
// bound to one API key.
type Client struct {
	genaiClient  *genai.Client
	modelName    string
	jsonResponse bool
	logger       zerolog.Logger
}

// NewClient creates a new Gemini client for apiKey. An empty modelOverride selects
// gemini-2.0-flash. With jsonResponse set, the model is asked for application/json
// output, which removes most code fences from replies.
func NewClient(ctx context.Context, apiKey string, modelOverride string, jsonResponse bool, logger zerolog.Logger) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("Gemini API key is required")
	}

	genaiClient, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		logger.Error().Err(err).Msg("error initializing Google GenAI client; make sure the API key is valid")
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	modelToUse := defaultGeminiModel
	if modelOverride != "" {
		modelToUse = modelOverride
	}
	logger.Debug().Str("model", modelToUse).Bool("override", modelOverride != "").Msg("gemini client ready")

	return &Client{
		genaiClient:  genaiClient,
		modelName:    modelToUse,
		jsonResponse: jsonResponse,
		logger:       logger,
	}, nil
}

// Generate sends the prompt to the Gemini model and returns the text response.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	if c.genaiClient == nil {
		return "", fmt.Errorf("Gemini client not initialized")
	}

	model := c.genaiClient.GenerativeModel(c.modelName)
	if model == nil {
		return "", fmt.Errorf("failed to get generative model: %s", c.modelName)
	}
	if c.jsonResponse {
		model.ResponseMIMEType = jsonMIMEType
	}

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("failed to generate content from Gemini: %w", err)
	}

	return c.extractText(resp)
}

// extractText concatenates the text parts of the first candidate.
func (c *Client) extractText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil {
		return "", fmt.Errorf("Gemini response was empty or malformed")
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		if len(resp.Candidates) > 0 && resp.Candidates[0].FinishReason == genai.FinishReasonSafety {
			return "", fmt.Errorf("Gemini content generation blocked due to safety settings")
		}
		if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != genai.BlockReasonUnspecified {
			return "", fmt.Errorf("Gemini prompt blocked: %s", resp.PromptFeedback.BlockReason.String())
		}
		return "", fmt.Errorf("Gemini response was empty or malformed")
	}

	var result strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			result.WriteString(string(txt))
		} else {
			c.logger.Debug().Str("part", fmt.Sprintf("%T", part)).Msg("ignoring non-text part in Gemini response")
		}
	}

	if result.Len() == 0 {
		return "", fmt.Errorf("Gemini response contained no usable text content")
	}

	return result.String(), nil
}

// ProviderName returns the name of this provider.
func (c *Client) ProviderName() string {
	return providerName
}

// Close cleans up the genaiClient.
func (c *Client) Close() error {
	if c.genaiClient != nil {
		return c.genaiClient.Close()
	}
	return nil
}
