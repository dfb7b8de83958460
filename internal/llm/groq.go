package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	openai "github.com/sashabaranov/go-openai"
)

// DefaultGroqBaseURL is Groq's OpenAI-compatible API root.
const DefaultGroqBaseURL = "https://api.groq.com/openai/v1"

// GroqClient implements Client over Groq's OpenAI-compatible chat completions API.
type GroqClient struct {
	client *openai.Client
	config *Config
	http   *http.Client
}

// NewGroqClient creates a Groq client. An empty baseURL selects DefaultGroqBaseURL.
func NewGroqClient(apiKey, baseURL string, config *Config) *GroqClient {
	if baseURL == "" {
		baseURL = DefaultGroqBaseURL
	}
	httpClient := &http.Client{Timeout: 60 * time.Second}

	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = strings.TrimSuffix(baseURL, "/")
	cfg.HTTPClient = httpClient

	return &GroqClient{
		client: openai.NewClientWithConfig(cfg),
		config: config,
		http:   httpClient,
	}
}

func (c *GroqClient) GenerateContent(ctx context.Context, prompt string, tier ModelTier) (string, error) {
	return c.complete(ctx, prompt, tier)
}

// GenerateJSON asks for JSON through the prompt only; Groq's json_object mode rejects
// top-level arrays.
func (c *GroqClient) GenerateJSON(ctx context.Context, prompt string, tier ModelTier) (string, error) {
	text, err := c.complete(ctx, prompt, tier)
	if err != nil {
		return "", err
	}
	return CleanJSONBlock(text), nil
}

func (c *GroqClient) complete(ctx context.Context, prompt string, tier ModelTier) (string, error) {
	modelName := c.config.GetModel(tier)
	if modelName == "" {
		return "", fmt.Errorf("no model configured for tier %s", tier)
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: modelName,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: 0.1,
	})
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			return "", fmt.Errorf("Groq API returned %d: %s", apiErr.HTTPStatusCode, truncate(apiErr.Message, 200))
		}
		var reqErr *openai.RequestError
		if errors.As(err, &reqErr) {
			return "", fmt.Errorf("Groq API returned %d: %w", reqErr.HTTPStatusCode, reqErr.Err)
		}
		return "", fmt.Errorf("calling Groq API: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty response from Groq")
	}
	return resp.Choices[0].Message.Content, nil
}

func (c *GroqClient) GetModel(tier ModelTier) string {
	return c.config.GetModel(tier)
}

func (c *GroqClient) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

// truncate shortens s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	cut := n
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
