package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode"

	"go.uber.org/zap"

	"github.com/kardolus/agentic/tools"
	"github.com/kardolus/agentic/trace"
	"github.com/kardolus/agentic/types"
)

const (
	roleSystem    = "system"
	roleUser      = "user"
	roleAssistant = "assistant"

	StatusError Status = "error"
)

var ErrInvalidResponse = errors.New("invalid response format")

const DefaultSystemPrompt = `You are a helpful agent that can use tools to solve problems.

This is the list of tools you have available:
{{tools}}

CRITICAL: You MUST ALWAYS respond with valid JSON in this exact format:
{{response_format}}

IMPORTANT RULES:
1. NEVER respond in plain text or natural language
2. Return ONLY raw JSON - no markdown blocks, no code fences, no extra text
3. Use "reasoning" to explain your thought process
4. Use "tool_calls" when you need to call tools (null if none needed)
5. Use "result" to provide your final answer when is_finished is true
6. Set "is_finished" to true only when you have the complete answer
7. Calls in one response run together; only batch calls that do not depend on each other

EXAMPLE:
{
  "reasoning": "I need to use the calculator to compute this.",
  "tool_calls": [{"id": "call_1", "tool": "calculator", "args": {"operation": "add", "x": 5, "y": 3}}],
  "result": null,
  "is_finished": false
}
`

const (
	continueMsg        = "You can continue working on the task, or if you finished, set is_finished to true and result to the final answer."
	toolSuccessMsg     = "Tool %s called, and the result is: \"%s\"\n" + continueMsg
	toolErrorMsg       = "Tool %s called with an execution error: \"%s\"\n" + continueMsg
	invalidResponseMsg = "%v\n\nPlease respond with valid JSON matching the required schema."
)

// ReActAgent runs the reason, act, observe loop. Every tool call is recorded
// into a trace under the turn that requested it.
type ReActAgent struct {
	llm    LLM
	tools  *tools.Registry
	budget Budget
	clock  Clock

	model        string
	systemPrompt string

	out   *zap.SugaredLogger
	debug *zap.SugaredLogger
}

func NewReActAgent(llm LLM, registry *tools.Registry, budget Budget, clock Clock, opts ...Option) *ReActAgent {
	a := &ReActAgent{
		llm:          llm,
		tools:        registry,
		budget:       budget,
		clock:        clock,
		systemPrompt: DefaultSystemPrompt,
		out:          zap.NewNop().Sugar(),
		debug:        zap.NewNop().Sugar(),
	}
	for _, o := range opts {
		o(a)
	}
	return a
}

func (a *ReActAgent) RenderSystemPrompt() string {
	return strings.NewReplacer(
		"{{tools}}", a.tools.Describe(),
		"{{response_format}}", responseSchema,
	).Replace(a.systemPrompt)
}

// Run drives the conversation until the model finishes or the turn budget
// runs out. Running out of turns is a result, not an error; any other budget
// breach, LLM failure or cancellation aborts with the partial result.
func (a *ReActAgent) Run(ctx context.Context, goal string) (Result, error) {
	start := a.clock.Now()
	a.budget.Start(start)

	a.out.Infof("Goal: %s", goal)
	a.debug.Debugw("run started", "goal", goal, "model", a.model)

	rec := trace.NewRecorder(a.model)
	messages := []types.Message{
		{Role: roleSystem, Content: a.RenderSystemPrompt()},
		{Role: roleUser, Content: goal},
	}

	var turns, tokens int
	finish := func(answer string, status Status) Result {
		rec.SetAnswer(answer)
		dur := a.clock.Now().Sub(start)
		a.out.Infof("Total duration: %s", dur)
		a.debug.Debugw("run finished", "status", status, "turns", turns, "tokens", tokens, "duration", dur.String())
		return Result{
			Answer:   answer,
			Status:   status,
			Turns:    turns,
			Tokens:   tokens,
			Duration: dur,
			Trace:    rec.Trace(),
		}
	}

	for turn := 1; ; turn++ {
		if err := ctx.Err(); err != nil {
			return finish("", StatusError), err
		}

		if err := a.budget.AllowTurn(a.clock.Now()); err != nil {
			var be BudgetExceededError
			if errors.As(err, &be) && be.Kind == BudgetKindTurns {
				a.out.Infof("Stopped after %d turns without an answer", turns)
				return finish(MaxTurnsAnswer, StatusMaxTurns), nil
			}
			a.debug.Errorw("budget exceeded", "turn", turn, "error", err)
			return finish("", StatusError), err
		}
		turns = turn

		raw, used, err := a.llm.Complete(ctx, messages)
		if err != nil {
			a.debug.Errorw("llm error", "turn", turn, "error", err)
			return finish("", StatusError), err
		}
		tokens += used
		a.budget.ChargeLLMTokens(used, a.clock.Now())
		a.debug.Debugw("llm response", "turn", turn, "tokens", used, "raw", raw)

		messages = append(messages, types.Message{Role: roleAssistant, Content: raw})

		resp, err := ParseResponse(raw)
		if err != nil {
			a.out.Infof("[Turn %d] Invalid response: %v", turn, err)
			messages = append(messages, types.Message{Role: roleUser, Content: fmt.Sprintf(invalidResponseMsg, err)})
			continue
		}

		if resp.Reasoning != "" {
			a.out.Infof("[Turn %d] Thought: %s", turn, resp.Reasoning)
		}

		if len(resp.ToolCalls) > 0 {
			if err := rec.Begin(turn); err != nil {
				return finish("", StatusError), err
			}
		}
		for _, call := range resp.ToolCalls {
			if err := a.budget.AllowToolCall(a.clock.Now()); err != nil {
				a.debug.Errorw("budget exceeded", "turn", turn, "error", err)
				return finish("", StatusError), err
			}

			observation, err := a.callTool(ctx, rec, turn, call)
			if err != nil {
				return finish("", StatusError), err
			}
			messages = append(messages, types.Message{Role: roleUser, Content: observation})
		}

		if resp.IsFinished {
			answer := strings.TrimRightFunc(*resp.Result, unicode.IsSpace)
			a.out.Infof("Result: %s", answer)
			return finish(answer, StatusSuccess), nil
		}

		if len(resp.ToolCalls) == 0 {
			messages = append(messages, types.Message{Role: roleUser, Content: continueMsg})
		}
	}
}

// callTool runs one call and returns the observation for the model. Tool
// failures are observations too; only recording or cancellation errors are
// returned.
func (a *ReActAgent) callTool(ctx context.Context, rec *trace.Recorder, turn int, call ToolCall) (string, error) {
	id := rec.CallID(call.ID)

	out, runErr := a.tools.Call(ctx, call.Tool, call.Args)
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if errors.Is(runErr, tools.ErrToolNotFound) {
		runErr = fmt.Errorf("%w. Available: %v", runErr, a.tools.Names())
	}

	if _, err := rec.Record(id, call.Tool, call.Args, out, runErr); err != nil {
		return "", err
	}

	if runErr != nil {
		a.out.Infof("[Turn %d] %s %s failed: %v", turn, call.Tool, formatArgs(call.Args), runErr)
		a.debug.Debugw("tool failed", "turn", turn, "id", id, "tool", call.Tool, "error", runErr.Error())
		return fmt.Sprintf(toolErrorMsg, call.Tool, runErr), nil
	}

	text := fmt.Sprint(out)
	a.out.Infof("[Turn %d] Action: %s %s -> %s", turn, call.Tool, formatArgs(call.Args), truncateForDisplay(text, 100))
	a.debug.Debugw("tool result", "turn", turn, "id", id, "tool", call.Tool, "result", text)
	return fmt.Sprintf(toolSuccessMsg, call.Tool, text), nil
}

// ParseResponse extracts the first JSON object from raw, tolerating code
// fences and chatter around it.
func ParseResponse(raw string) (Response, error) {
	cleaned := cleanResponse(raw)
	if cleaned == "" {
		return Response{}, fmt.Errorf("%w: empty response from LLM", ErrInvalidResponse)
	}

	dec := json.NewDecoder(strings.NewReader(cleaned))
	dec.UseNumber()

	var resp Response
	if err := dec.Decode(&resp); err != nil {
		return Response{}, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	resp.Reasoning = strings.TrimSpace(resp.Reasoning)

	for i := range resp.ToolCalls {
		resp.ToolCalls[i].Tool = strings.TrimSpace(resp.ToolCalls[i].Tool)
		if resp.ToolCalls[i].Tool == "" {
			return Response{}, fmt.Errorf("%w: tool_calls[%d] has no tool", ErrInvalidResponse, i)
		}
	}

	if resp.IsFinished && resp.Result == nil {
		return Response{}, fmt.Errorf("%w: is_finished is true but result is missing", ErrInvalidResponse)
	}

	return resp, nil
}

func cleanResponse(raw string) string {
	raw = strings.TrimSpace(raw)

	if i := strings.Index(raw, "```"); i != -1 {
		raw = strings.TrimSpace(raw[i+3:])

		if j := strings.IndexByte(raw, '\n'); j != -1 {
			firstLine := strings.ToLower(strings.TrimSpace(raw[:j]))
			if firstLine == "json" || firstLine == "application/json" {
				raw = raw[j+1:]
			}
		}

		if j := strings.Index(raw, "```"); j != -1 {
			raw = raw[:j]
		}
		raw = strings.TrimSpace(raw)
	}

	if i := strings.IndexByte(raw, '{'); i > 0 {
		raw = raw[i:]
	}

	return raw
}

func formatArgs(args map[string]any) string {
	keys := make([]string, 0, len(args))
	for k := range args {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, args[k]))
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func truncateForDisplay(s string, maxLen int) string {
	s = strings.TrimSpace(s)
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
