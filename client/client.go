package client

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kardolus/agentic/http"
	"github.com/kardolus/agentic/types"
)

const (
	AssistantRole    = "assistant"
	ErrEmptyResponse = "empty response"
	SystemRole       = "system"
	UserRole         = "user"
)

var ErrMissingAPIKey = errors.New("missing api key")

// Client is a stateless chat completer. The caller owns the conversation.
type Client struct {
	Config   types.Config
	provider Provider
}

func New(callerFactory http.CallerFactory, cfg types.Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: set AGENTIC_API_KEY or api_key_file", ErrMissingAPIKey)
	}

	var provider Provider
	switch cfg.Provider {
	case types.OpenAI:
		provider = NewOpenAIProvider(callerFactory(cfg))
	case types.Cohere:
		provider = NewCohereProvider(cfg)
	default:
		return nil, fmt.Errorf("unsupported provider: %v", cfg.Provider)
	}

	return NewWithProvider(provider, cfg), nil
}

func NewWithProvider(p Provider, cfg types.Config) *Client {
	return &Client{Config: cfg, provider: p}
}

// Complete sends messages and returns the reply together with the tokens
// the provider billed for it.
func (c *Client) Complete(ctx context.Context, messages []types.Message) (string, int, error) {
	if len(messages) == 0 {
		return "", 0, errors.New("no messages to send")
	}

	response, tokens, err := c.provider.Generate(ctx, messages, c.Config)
	if err != nil {
		return "", 0, err
	}

	if strings.TrimSpace(response) == "" {
		return "", tokens, errors.New(ErrEmptyResponse)
	}

	return response, tokens, nil
}
