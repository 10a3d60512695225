package llmclient

import (
	"context"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// AnthropicClient wraps the official Anthropic SDK.
type AnthropicClient struct {
	cli   *anthropic.Client
	model string
}

// NewAnthropicClient creates an Anthropic-backed client. If apiKey is empty,
// the SDK falls back to the ANTHROPIC_API_KEY env var.
func NewAnthropicClient(apiKey, model string) *AnthropicClient {
	var cli anthropic.Client
	if apiKey != "" {
		cli = anthropic.NewClient(option.WithAPIKey(apiKey))
	} else {
		cli = anthropic.NewClient()
	}
	return &AnthropicClient{cli: &cli, model: model}
}

func (a *AnthropicClient) Name() string { return "anthropic:" + a.model }
func (a *AnthropicClient) Close() error { return nil }

// Complete sends the prompt with temperature pinned to zero and returns the
// concatenated text blocks of the response.
func (a *AnthropicClient) Complete(ctx context.Context, system, user string) (string, error) {
	resp, err := a.cli.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(a.model),
		MaxTokens:   4096,
		Temperature: anthropic.Float(0),
		System: []anthropic.TextBlockParam{
			{Text: system},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(user)),
		},
	})
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	if strings.TrimSpace(sb.String()) == "" {
		return "", ErrEmptyCompletion
	}
	return sb.String(), nil
}
