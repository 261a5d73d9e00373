package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/kardolus/agentic/http"
	"github.com/kardolus/agentic/types"
)

type Provider interface {
	Generate(ctx context.Context, history []types.Message, cfg types.Config) (string, int, error)
}

type OpenAIProvider struct {
	caller http.Caller
}

var _ Provider = (*OpenAIProvider)(nil)

func NewOpenAIProvider(caller http.Caller) *OpenAIProvider {
	return &OpenAIProvider{caller: caller}
}

func (p *OpenAIProvider) Generate(ctx context.Context, history []types.Message, cfg types.Config) (string, int, error) {
	req := types.CompletionsRequest{
		Messages:    history,
		Model:       cfg.Model,
		MaxTokens:   cfg.MaxTokens,
		Temperature: cfg.Temperature,
		Stream:      false,
	}
	body, err := json.Marshal(req)
	if err != nil {
		return "", 0, err
	}

	raw, err := p.caller.Post(ctx, getEndpoint(cfg, cfg.CompletionsPath), body)
	if err != nil {
		return "", 0, err
	}

	var response types.CompletionsResponse
	if err := processResponse(raw, &response); err != nil {
		return "", 0, err
	}
	if len(response.Choices) == 0 {
		return "", response.Usage.TotalTokens, errors.New("no responses returned")
	}
	return response.Choices[0].Message.Content, response.Usage.TotalTokens, nil
}

func getEndpoint(cfg types.Config, path string) string {
	return cfg.URL + path
}

func processResponse(raw []byte, v interface{}) error {
	if len(raw) == 0 {
		return errors.New(ErrEmptyResponse)
	}

	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}
