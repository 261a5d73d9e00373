package client

import (
	"context"
	"errors"

	co "github.com/cohere-ai/cohere-go/v2"
	cohereclient "github.com/cohere-ai/cohere-go/v2/client"

	"github.com/kardolus/agentic/types"
)

type CohereProvider struct {
	client *cohereclient.Client
}

var _ Provider = (*CohereProvider)(nil)

func NewCohereProvider(cfg types.Config) *CohereProvider {
	return &CohereProvider{
		client: cohereclient.NewClient(cohereclient.WithToken(cfg.APIKey)),
	}
}

// Generate sends the last message as the prompt and everything before it as
// chat history.
func (p *CohereProvider) Generate(ctx context.Context, history []types.Message, cfg types.Config) (string, int, error) {
	if len(history) == 0 {
		return "", 0, errors.New("no messages to send")
	}

	req := &co.ChatRequest{
		Message:     history[len(history)-1].Content,
		ChatHistory: coHistory(history[:len(history)-1]),
	}
	if cfg.Model != "" {
		req.Model = &cfg.Model
	}
	if cfg.Temperature != 0 {
		req.Temperature = &cfg.Temperature
	}

	res, err := p.client.Chat(ctx, req)
	if err != nil {
		return "", 0, err
	}

	return res.Text, billedTokens(res), nil
}

func billedTokens(res *co.NonStreamedChatResponse) int {
	if res.Meta == nil || res.Meta.BilledUnits == nil {
		return 0
	}
	var total float64
	if in := res.Meta.BilledUnits.InputTokens; in != nil {
		total += *in
	}
	if out := res.Meta.BilledUnits.OutputTokens; out != nil {
		total += *out
	}
	return int(total)
}

func coHistory(history []types.Message) []*co.ChatMessage {
	var chatHistory []*co.ChatMessage
	for _, msg := range history {
		role := co.ChatMessageRoleUser
		switch msg.Role {
		case AssistantRole:
			role = co.ChatMessageRoleChatbot
		case SystemRole:
			role = co.ChatMessageRoleSystem
		}
		chatHistory = append(chatHistory, &co.ChatMessage{
			Role:    role,
			Message: msg.Content,
		})
	}
	return chatHistory
}
