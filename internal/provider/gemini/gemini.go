// Package gemini implements the Provider interface on top of Google's
// genai SDK.
package gemini

import (
	"context"
	"errors"

	"google.golang.org/genai"

	"github.com/calebhart/drift/internal/provider"
)

// generateClient is the slice of the SDK the provider needs. The real SDK
// client satisfies it through the adapter below; tests supply their own.
type generateClient interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// sdkClient adapts *genai.Client to generateClient.
type sdkClient struct {
	client *genai.Client
}

func (c *sdkClient) GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	return c.client.Models.GenerateContent(ctx, model, contents, config)
}

// Client talks to the Gemini API.
type Client struct {
	client generateClient
	model  string
}

// New creates a Client for the given API key and model name.
func New(ctx context.Context, apiKey, model string) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("gemini: API key is required")
	}
	if model == "" {
		return nil, errors.New("gemini: model name is required")
	}
	sdk, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, err
	}
	return &Client{client: &sdkClient{client: sdk}, model: model}, nil
}

// newWithClient is the test seam.
func newWithClient(client generateClient, model string) *Client {
	return &Client{client: client, model: model}
}

// Generate sends the transcript and returns the model's text response.
// System messages become the system instruction; tool results are sent as
// user turns, which is how a text-protocol conversation represents them.
func (c *Client) Generate(ctx context.Context, messages []provider.Message) (string, error) {
	var system string
	var contents []*genai.Content

	for _, msg := range messages {
		switch msg.Role {
		case provider.RoleSystem:
			if system != "" {
				system += "\n\n"
			}
			system += msg.Content
		case provider.RoleAssistant:
			contents = append(contents, &genai.Content{
				Role:  "model",
				Parts: []*genai.Part{genai.NewPartFromText(msg.Content)},
			})
		default:
			contents = append(contents, &genai.Content{
				Role:  "user",
				Parts: []*genai.Part{genai.NewPartFromText(msg.Content)},
			})
		}
	}

	var config *genai.GenerateContentConfig
	if system != "" {
		config = &genai.GenerateContentConfig{
			SystemInstruction: &genai.Content{
				Parts: []*genai.Part{genai.NewPartFromText(system)},
			},
		}
	}

	resp, err := c.client.GenerateContent(ctx, c.model, contents, config)
	if err != nil {
		return "", &provider.TransportError{Cause: err}
	}

	text := extractText(resp)
	if text == "" {
		return "", &provider.TransportError{Cause: errors.New("empty response from model")}
	}
	return text, nil
}

func extractText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	content := resp.Candidates[0].Content
	if content == nil {
		return ""
	}
	var out string
	for _, part := range content.Parts {
		if part != nil {
			out += part.Text
		}
	}
	return out
}
