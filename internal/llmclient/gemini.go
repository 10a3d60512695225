package llmclient

import (
	"context"
	"strings"

	genai "google.golang.org/genai"
)

// GeminiClient is a thin wrapper around the official genai client.
type GeminiClient struct {
	cli   *genai.Client
	model string
}

// NewGeminiClient creates a Gemini-backed client. When apiKey is empty the
// genai SDK falls back to its environment variables.
func NewGeminiClient(ctx context.Context, apiKey, model string) (*GeminiClient, error) {
	cfg := &genai.ClientConfig{Backend: genai.BackendGeminiAPI}
	if apiKey != "" {
		cfg.APIKey = apiKey
	}
	cli, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &GeminiClient{cli: cli, model: model}, nil
}

func (g *GeminiClient) Name() string { return "gemini:" + g.model }
func (g *GeminiClient) Close() error { return nil }

// Complete asks for application/json with temperature pinned to zero and
// returns the first candidate's raw text.
func (g *GeminiClient) Complete(ctx context.Context, system, user string) (string, error) {
	resp, err := g.cli.Models.GenerateContent(ctx, g.model,
		[]*genai.Content{{Parts: []*genai.Part{{Text: user}}}},
		&genai.GenerateContentConfig{
			ResponseMIMEType:  "application/json",
			Temperature:       genai.Ptr[float32](0),
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: system}}},
		},
	)
	if err != nil {
		return "", err
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", ErrEmptyCompletion
	}
	txt := resp.Candidates[0].Content.Parts[0].Text
	if strings.TrimSpace(txt) == "" {
		return "", ErrEmptyCompletion
	}
	return txt, nil
}
