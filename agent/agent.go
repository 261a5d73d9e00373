package agent

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/kardolus/agentic/tools"
)

type Agent interface {
	Run(ctx context.Context, goal string) (Result, error)
}

type Deps struct {
	LLM    LLM
	Tools  *tools.Registry
	Budget Budget
	Clock  Clock
}

func validateDeps(deps Deps) error {
	switch {
	case deps.LLM == nil:
		return errors.New("agent deps: LLM is required")
	case deps.Tools == nil:
		return errors.New("agent deps: Tools is required")
	case deps.Budget == nil:
		return errors.New("agent deps: Budget is required")
	case deps.Clock == nil:
		return errors.New("agent deps: Clock is required")
	}
	return nil
}

func New(deps Deps, opts ...Option) (Agent, error) {
	if err := validateDeps(deps); err != nil {
		return nil, err
	}
	return NewReActAgent(deps.LLM, deps.Tools, deps.Budget, deps.Clock, opts...), nil
}

type Option func(*ReActAgent)

func WithHumanLogger(l *zap.SugaredLogger) Option {
	return func(a *ReActAgent) {
		if l != nil {
			a.out = l
		}
	}
}

func WithDebugLogger(l *zap.SugaredLogger) Option {
	return func(a *ReActAgent) {
		if l != nil {
			a.debug = l
		}
	}
}

// WithModel names the model in recorded traces.
func WithModel(model string) Option {
	return func(a *ReActAgent) { a.model = model }
}

// WithSystemPrompt replaces the default prompt. The template may reference
// {{tools}} and {{response_format}}.
func WithSystemPrompt(tmpl string) Option {
	return func(a *ReActAgent) {
		if tmpl != "" {
			a.systemPrompt = tmpl
		}
	}
}
