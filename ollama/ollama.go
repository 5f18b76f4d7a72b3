// Package ollama provides an LLM client for Ollama models.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	defaultOllamaModel = "gemma:2b"
	providerName       = "ollama"
	generateAPIPath    = "/api/generate"
)

// Client implements the writewise.Client interface for Ollama.
type Client struct {
	httpClient   *http.Client
	baseURL      string // e.g., "http://localhost:11434"
	apiKey       string // optional bearer token for servers behind an auth proxy
	modelName    string
	jsonResponse bool
}

// ollamaGenerateRequest is the request body of /api/generate.
type ollamaGenerateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
	Format string `json:"format,omitempty"`
}

// ollamaGenerateResponse is the response of /api/generate when stream is false.
type ollamaGenerateResponse struct {
	Model     string    `json:"model"`
	CreatedAt time.Time `json:"created_at"`
	Response  string    `json:"response"`
	Done      bool      `json:"done"`
	Error     string    `json:"error,omitempty"`
}

// NewClient creates a new Ollama client.
// baseURL is the address of the Ollama server (e.g., "http://localhost:11434").
// apiKey may be empty; when set it is sent as a bearer token.
// With requestTimeoutSeconds <= 0 the deadline of ctx is used, or 60 seconds.
func NewClient(ctx context.Context, baseURL, apiKey, modelOverride string, jsonResponse bool, requestTimeoutSeconds int, logger zerolog.Logger) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("Ollama base URL is required")
	}
	parsedURL, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid Ollama base URL '%s': %w", baseURL, err)
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return nil, fmt.Errorf("Ollama base URL scheme must be http or https, got '%s'", parsedURL.Scheme)
	}
	cleanedBaseURL := strings.TrimSuffix(parsedURL.String(), "/")

	modelToUse := defaultOllamaModel
	if modelOverride != "" {
		modelToUse = modelOverride
	}

	timeout := time.Duration(requestTimeoutSeconds) * time.Second
	if requestTimeoutSeconds <= 0 {
		if deadline, ok := ctx.Deadline(); ok {
			timeout = time.Until(deadline)
		} else {
			timeout = 60 * time.Second
		}
	}
	logger.Debug().Str("model", modelToUse).Str("base_url", cleanedBaseURL).Dur("timeout", timeout).Msg("ollama client ready")

	return &Client{
		httpClient:   &http.Client{Timeout: timeout},
		baseURL:      cleanedBaseURL,
		apiKey:       apiKey,
		modelName:    modelToUse,
		jsonResponse: jsonResponse,
	}, nil
}

// Generate sends the prompt to the Ollama model and returns the text response.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	if c.httpClient == nil {
		return "", fmt.Errorf("Ollama client not initialized")
	}

	payload := ollamaGenerateRequest{
		Model:  c.modelName,
		Prompt: prompt,
		Stream: false,
	}
	if c.jsonResponse {
		payload.Format = "json"
	}

	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal Ollama request payload: %w", err)
	}

	requestURL := c.baseURL + generateAPIPath
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, requestURL, bytes.NewBuffer(payloadBytes))
	if err != nil {
		return "", fmt.Errorf("failed to create Ollama request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() == context.Canceled {
			return "", fmt.Errorf("Ollama request canceled: %w", ctx.Err())
		}
		if ctx.Err() == context.DeadlineExceeded {
			return "", fmt.Errorf("Ollama request timed out: %w", ctx.Err())
		}
		return "", fmt.Errorf("failed to send request to Ollama server at %s: %w", requestURL, err)
	}
	defer resp.Body.Close()

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read Ollama response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errResp ollamaGenerateResponse
		if json.Unmarshal(responseBody, &errResp) == nil && errResp.Error != "" {
			return "", fmt.Errorf("Ollama API error (status %d): %s", resp.StatusCode, errResp.Error)
		}
		return "", fmt.Errorf("Ollama API request failed with status %s. Raw: %s", resp.Status, string(responseBody))
	}

	var ollamaResp ollamaGenerateResponse
	if err := json.Unmarshal(responseBody, &ollamaResp); err != nil {
		return "", fmt.Errorf("failed to unmarshal Ollama response JSON: %w. Raw response: %s", err, string(responseBody))
	}

	if ollamaResp.Error != "" {
		return "", fmt.Errorf("Ollama returned an error in response: %s", ollamaResp.Error)
	}

	if !ollamaResp.Done && ollamaResp.Response == "" {
		return "", fmt.Errorf("Ollama response indicates not done but no text was returned")
	}

	return strings.TrimSpace(ollamaResp.Response), nil
}

// ProviderName returns the name of this provider.
func (c *Client) ProviderName() string {
	return providerName
}

// Close is a no-op for the default transport.
func (c *Client) Close() error {
	return nil
}
