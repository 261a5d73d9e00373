package trace

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// Recorder accumulates entries while an agent runs. It is not safe for
// concurrent use; the agent loop owns it.
type Recorder struct {
	trace Trace
	turn  int
	ids   map[string]struct{}
}

func NewRecorder(model string) *Recorder {
	return &Recorder{
		trace: Trace{ID: uuid.NewString(), Model: model},
		ids:   make(map[string]struct{}),
	}
}

// Begin marks the start of a reasoning turn. Turns must not go backwards.
func (r *Recorder) Begin(turn int) error {
	if turn < r.turn || turn < 1 {
		return fmt.Errorf("%w: turn %d after turn %d", ErrMalformedTrace, turn, r.turn)
	}
	r.turn = turn
	return nil
}

// CallID returns id when it is usable, otherwise a fresh one.
func (r *Recorder) CallID(id string) string {
	if _, taken := r.ids[id]; id == "" || taken {
		return "call_" + uuid.NewString()
	}
	return id
}

// Record appends a finished call. A non-nil runErr is stored as the error
// text and the result is dropped.
func (r *Recorder) Record(id, tool string, args map[string]any, result any, runErr error) (Entry, error) {
	if r.turn == 0 {
		return Entry{}, fmt.Errorf("%w: record before the first turn", ErrMalformedTrace)
	}

	e := Entry{
		Turn: r.turn,
		ID:   r.CallID(id),
		Tool: tool,
		Args: args,
	}

	if runErr != nil {
		e.Error = runErr.Error()
	} else {
		raw, err := json.Marshal(result)
		if err != nil {
			return Entry{}, fmt.Errorf("encode %s result: %w", tool, err)
		}
		e.Result = raw
	}

	r.ids[e.ID] = struct{}{}
	r.trace.Entries = append(r.trace.Entries, e)
	return e, nil
}

func (r *Recorder) SetAnswer(answer string) { r.trace.Answer = answer }

// Trace returns a copy of what has been recorded so far.
func (r *Recorder) Trace() Trace {
	t := r.trace
	t.Entries = append([]Entry(nil), r.trace.Entries...)
	return t
}
