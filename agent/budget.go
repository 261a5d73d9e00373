package agent

import (
	"fmt"
	"time"
)

//go:generate mockgen -destination=budgetmocks_test.go -package=agent_test github.com/kardolus/agentic/agent Budget
type Budget interface {
	Start(now time.Time)
	AllowTurn(now time.Time) error
	AllowToolCall(now time.Time) error
	ChargeLLMTokens(tokens int, now time.Time)
	Snapshot(now time.Time) BudgetSnapshot
}

const (
	BudgetKindTurns     = "turns"
	BudgetKindToolCalls = "tool_calls"
	BudgetKindLLMTokens = "llm_tokens"
	BudgetKindWallTime  = "wall_time"
)

// BudgetLimits caps a run. Zero means unlimited.
type BudgetLimits struct {
	MaxTurns     int
	MaxToolCalls int
	MaxLLMTokens int
	MaxWallTime  time.Duration
}

type BudgetSnapshot struct {
	StartedAt     time.Time
	Elapsed       time.Duration
	Limits        BudgetLimits
	TurnsUsed     int
	ToolCallsUsed int
	LLMTokensUsed int
}

type DefaultBudget struct {
	limits BudgetLimits

	started   bool
	startedAt time.Time

	turnsUsed     int
	toolCallsUsed int
	llmTokensUsed int
}

func NewDefaultBudget(limits BudgetLimits) *DefaultBudget {
	return &DefaultBudget{limits: limits}
}

func (b *DefaultBudget) Start(now time.Time) {
	b.started = true
	b.startedAt = now
	b.turnsUsed = 0
	b.toolCallsUsed = 0
	b.llmTokensUsed = 0
}

func (b *DefaultBudget) Snapshot(now time.Time) BudgetSnapshot {
	b.ensureStarted(now)

	elapsed := now.Sub(b.startedAt)
	if elapsed < 0 {
		elapsed = 0
	}

	return BudgetSnapshot{
		StartedAt:     b.startedAt,
		Elapsed:       elapsed,
		Limits:        b.limits,
		TurnsUsed:     b.turnsUsed,
		ToolCallsUsed: b.toolCallsUsed,
		LLMTokensUsed: b.llmTokensUsed,
	}
}

func (b *DefaultBudget) ChargeLLMTokens(tokens int, now time.Time) {
	b.ensureStarted(now)
	if tokens <= 0 {
		return
	}
	b.llmTokensUsed += tokens
}

// AllowTurn admits one more LLM round trip. Tokens are checked here since
// they are only known after the call that spent them.
func (b *DefaultBudget) AllowTurn(now time.Time) error {
	b.ensureStarted(now)

	if err := b.checkWall(now); err != nil {
		return err
	}

	if b.limits.MaxLLMTokens > 0 && b.llmTokensUsed >= b.limits.MaxLLMTokens {
		return BudgetExceededError{
			Kind:    BudgetKindLLMTokens,
			Limit:   b.limits.MaxLLMTokens,
			Used:    b.llmTokensUsed,
			Message: "llm token budget exceeded",
		}
	}

	if b.limits.MaxTurns > 0 && b.turnsUsed+1 > b.limits.MaxTurns {
		return BudgetExceededError{
			Kind:    BudgetKindTurns,
			Limit:   b.limits.MaxTurns,
			Used:    b.turnsUsed,
			Message: "turn budget exceeded",
		}
	}

	b.turnsUsed++
	return nil
}

func (b *DefaultBudget) AllowToolCall(now time.Time) error {
	b.ensureStarted(now)

	if err := b.checkWall(now); err != nil {
		return err
	}

	if b.limits.MaxToolCalls > 0 && b.toolCallsUsed+1 > b.limits.MaxToolCalls {
		return BudgetExceededError{
			Kind:    BudgetKindToolCalls,
			Limit:   b.limits.MaxToolCalls,
			Used:    b.toolCallsUsed,
			Message: "tool call budget exceeded",
		}
	}

	b.toolCallsUsed++
	return nil
}

func (b *DefaultBudget) ensureStarted(now time.Time) {
	if b.started {
		return
	}
	b.Start(now)
}

func (b *DefaultBudget) checkWall(now time.Time) error {
	if b.limits.MaxWallTime <= 0 {
		return nil
	}
	elapsed := now.Sub(b.startedAt)
	if elapsed > b.limits.MaxWallTime {
		return BudgetExceededError{
			Kind:    BudgetKindWallTime,
			LimitD:  b.limits.MaxWallTime,
			UsedD:   elapsed,
			Message: "wall time budget exceeded",
		}
	}
	return nil
}

// BudgetExceededError is a typed error so callers can branch on the kind.
type BudgetExceededError struct {
	Kind    string
	Limit   int
	Used    int
	LimitD  time.Duration
	UsedD   time.Duration
	Message string
}

func (e BudgetExceededError) Error() string {
	switch e.Kind {
	case BudgetKindWallTime:
		return fmt.Sprintf("%s: limit=%s used=%s", e.Message, e.LimitD, e.UsedD)
	default:
		return fmt.Sprintf("%s: kind=%s limit=%d used=%d", e.Message, e.Kind, e.Limit, e.Used)
	}
}
