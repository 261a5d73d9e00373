package agent

import (
	"encoding/json"
	"time"

	"github.com/kardolus/agentic/trace"
)

type Status string

const (
	StatusSuccess  Status = "success"
	StatusMaxTurns Status = "max_turns"
)

const MaxTurnsAnswer = "[MAX_TURNS] Agent did not complete within turn limit"

// Result is the outcome of one Run. Trace holds every tool call made, even
// when the run ended early.
type Result struct {
	Answer   string
	Status   Status
	Turns    int
	Tokens   int
	Duration time.Duration
	Trace    trace.Trace
}

// ToolCall is a single requested invocation inside a Response.
type ToolCall struct {
	ID   string         `json:"id"`
	Tool string         `json:"tool"`
	Args map[string]any `json:"args"`
}

// Response is the JSON object the model must reply with on every turn.
type Response struct {
	Reasoning  string     `json:"reasoning"`
	ToolCalls  []ToolCall `json:"tool_calls"`
	Result     *string    `json:"result"`
	IsFinished bool       `json:"is_finished"`
}

const responseSchema = `{
  "reasoning": "string, your thought process",
  "tool_calls": [{"id": "string", "tool": "string", "args": {}}] or null,
  "result": "string, the final answer when is_finished is true" or null,
  "is_finished": "boolean"
}`

func (r Response) String() string {
	b, _ := json.Marshal(r)
	return string(b)
}
