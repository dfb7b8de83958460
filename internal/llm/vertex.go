package llm

import (
	"context"
	"fmt"
	"strings"

	vertex "cloud.google.com/go/vertexai/genai"
)

// VertexClient implements Client for Gemini models served through Vertex AI. It
// authenticates with application default credentials.
type VertexClient struct {
	client *vertex.Client
	config *Config
}

// NewVertexClient creates a Vertex AI client for project in location.
func NewVertexClient(ctx context.Context, project, location string, config *Config) (*VertexClient, error) {
	if project == "" {
		return nil, fmt.Errorf("GOOGLE_CLOUD_PROJECT is required")
	}
	if location == "" {
		location = "us-central1"
	}

	client, err := vertex.NewClient(ctx, project, location)
	if err != nil {
		return nil, fmt.Errorf("failed to create Vertex AI client: %w", err)
	}
	return &VertexClient{client: client, config: config}, nil
}

func (c *VertexClient) GenerateContent(ctx context.Context, prompt string, tier ModelTier) (string, error) {
	model, err := c.model(tier)
	if err != nil {
		return "", err
	}

	resp, err := model.GenerateContent(ctx, vertex.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}
	return vertexText(resp)
}

func (c *VertexClient) GenerateJSON(ctx context.Context, prompt string, tier ModelTier) (string, error) {
	model, err := c.model(tier)
	if err != nil {
		return "", err
	}
	model.ResponseMIMEType = "application/json"

	resp, err := model.GenerateContent(ctx, vertex.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	text, err := vertexText(resp)
	if err != nil {
		return "", err
	}
	return CleanJSONBlock(text), nil
}

func (c *VertexClient) model(tier ModelTier) (*vertex.GenerativeModel, error) {
	modelName := c.config.GetModel(tier)
	if modelName == "" {
		return nil, fmt.Errorf("no model configured for tier %s", tier)
	}
	model := c.client.GenerativeModel(modelName)
	model.SetTemperature(0.1)
	model.SetTopP(0.95)
	return model, nil
}

func (c *VertexClient) GetModel(tier ModelTier) string {
	return c.config.GetModel(tier)
}

func (c *VertexClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

func vertexText(resp *vertex.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no response candidates returned")
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil {
		return "", fmt.Errorf("no content in response")
	}

	var sb strings.Builder
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(vertex.Text); ok {
			sb.WriteString(string(text))
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("no text parts in response")
	}
	return sb.String(), nil
}
