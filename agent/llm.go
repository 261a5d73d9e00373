package agent

import (
	"context"

	"github.com/kardolus/agentic/types"
)

//go:generate mockgen -destination=llmmocks_test.go -package=agent_test github.com/kardolus/agentic/agent LLM
type LLM interface {
	Complete(ctx context.Context, messages []types.Message) (string, int, error)
}
