// Package ai wraps the OpenAI chat completion API.
package ai

import (
	"context"
	"io"
	"strings"

	"github.com/evidenx/evidenx/internal/errors"
	"github.com/sashabaranov/go-openai"
)

const (
	MaxTokens    = 1024
	DefaultModel = openai.GPT3Dot5Turbo1106
)

// ErrEmptyCompletion is returned when the completion has no choices.
var ErrEmptyCompletion = errors.NewSentinel("empty completion")

type Config struct {
	APIKey string
	// BaseURL overrides the OpenAI endpoint, used for compatible gateways and tests.
	BaseURL string
	Model   string
}

type Client struct {
	client *openai.Client
	model  string
}

func NewClient(cfg Config) *Client {
	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	return &Client{
		client: openai.NewClientWithConfig(config),
		model:  model,
	}
}

// SyncCompletion returns the content of the first completion choice.
func (c *Client) SyncCompletion(ctx context.Context, messages []openai.ChatCompletionMessage) (string, error) {
	completion, err := c.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{ //nolint:exhaustruct // this is better for readability
			Model:     c.model,
			MaxTokens: MaxTokens,
			Messages:  messages,
		},
	)
	if err != nil {
		return "", errors.Wrap(err, "create chat completion")
	}
	if len(completion.Choices) == 0 {
		return "", ErrEmptyCompletion
	}
	return completion.Choices[0].Message.Content, nil
}

// StreamCompletion calls onDelta for each streamed content fragment and returns the full content.
func (c *Client) StreamCompletion(
	ctx context.Context,
	messages []openai.ChatCompletionMessage,
	onDelta func(delta string),
) (string, error) {
	stream, err := c.client.CreateChatCompletionStream(
		ctx,
		openai.ChatCompletionRequest{ //nolint:exhaustruct // this is better for readability
			Model:     c.model,
			MaxTokens: MaxTokens,
			Messages:  messages,
			Stream:    true,
		},
	)
	if err != nil {
		return "", errors.Wrap(err, "create chat completion stream")
	}
	defer stream.Close()

	var sb strings.Builder
	for {
		response, recvErr := stream.Recv()
		if errors.Is(recvErr, io.EOF) {
			break
		}
		if recvErr != nil {
			return sb.String(), errors.Wrap(recvErr, "receive chat completion stream")
		}
		if len(response.Choices) == 0 {
			continue
		}
		delta := response.Choices[0].Delta.Content
		if delta == "" {
			continue
		}
		sb.WriteString(delta)
		if onDelta != nil {
			onDelta(delta)
		}
	}
	if sb.Len() == 0 {
		return "", ErrEmptyCompletion
	}
	return sb.String(), nil
}
