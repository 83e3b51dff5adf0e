// Package ai is the client for the remote chat-completion service that
// powers code diagnosis. The service speaks the common OpenAI-style
// /chat/completions shape; which provider sits behind the base URL is a
// deployment concern.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// systemInstruction forces the model to answer with a single JSON object so
// the diagnosis can be parsed into a structured result.
const systemInstruction = `You are CodeFix AI. ALWAYS respond with a single, valid JSON object and NOTHING else.
The JSON object must contain exactly the keys: "summary", "root_cause", "fix", "patch".
- summary: short one-line summary (max 260 chars)
- root_cause: one-paragraph explanation (plain text, no markdown)
- fix: short exact fix steps or minimal code snippet (plain text, can include code text)
- patch: raw code patch content only (if no patch, return empty string "")
Do not include any markdown formatting, backticks, headings, or extraneous text.
Return strictly JSON in the response body.`

// Config holds connection settings for the completion service.
type Config struct {
	// BaseURL is the API root, e.g. "https://api.groq.com/openai/v1".
	BaseURL string
	// APIKey is the bearer token. Required.
	APIKey string
	// Model is the completion model identifier.
	Model string
	// MaxTokens bounds the completion length.
	MaxTokens int
	// Timeout bounds each request.
	Timeout time.Duration
}

// DefaultConfig provides defaults for a Groq-backed deployment.
func DefaultConfig() Config {
	return Config{
		BaseURL:   "https://api.groq.com/openai/v1",
		Model:     "llama-3.3-70b-versatile",
		MaxTokens: 1000,
		Timeout:   60 * time.Second,
	}
}

// Client performs completion requests.
type Client struct {
	cfg        Config
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a Client. The API key must be set; everything else
// falls back to DefaultConfig values.
func NewClient(cfg Config, logger *slog.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("ai: API key is not set")
	}
	def := DefaultConfig()
	if cfg.BaseURL == "" {
		cfg.BaseURL = def.BaseURL
	}
	if cfg.Model == "" {
		cfg.Model = def.Model
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = def.MaxTokens
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}

	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
	}, nil
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionRequest struct {
	Model     string    `json:"model"`
	Messages  []message `json:"messages"`
	MaxTokens int       `json:"max_tokens"`
}

type completionResponse struct {
	Choices []struct {
		Message message `json:"message"`
	} `json:"choices"`
}

// Complete sends the prompt under the JSON-only system instruction and
// returns the raw text of the first choice.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(completionRequest{
		Model: c.cfg.Model,
		Messages: []message{
			{Role: "system", Content: systemInstruction},
			{Role: "user", Content: prompt},
		},
		MaxTokens: c.cfg.MaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("ai: encoding request: %w", err)
	}

	url := c.cfg.BaseURL + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("ai: building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("ai: completion request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Bounded read so a misbehaving upstream can't flood the logs.
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		c.logger.Error("completion service returned an error",
			slog.Int("status", resp.StatusCode),
			slog.String("body", string(detail)),
		)
		return "", fmt.Errorf("ai: completion service returned status %d", resp.StatusCode)
	}

	var parsed completionResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("ai: decoding response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", errors.New("ai: completion response has no choices")
	}

	return parsed.Choices[0].Message.Content, nil
}
