package trace

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/kardolus/agentic/internal/fsio"
)

const (
	ToolListDirectory = "list_directory"
	ToolCalculator    = "calculator"

	// DirectoryMarker is the listing value used for subdirectories.
	DirectoryMarker = "directory"
)

var ErrMalformedTrace = errors.New("malformed trace")

// Entry is one tool call paired with its outcome. Exactly one of Result and
// Error is expected to be set once the call has executed.
type Entry struct {
	Turn   int             `json:"turn"`
	ID     string          `json:"id"`
	Tool   string          `json:"tool"`
	Args   map[string]any  `json:"args"`
	Result json.RawMessage `json:"result,omitempty"`
	Error  string          `json:"error,omitempty"`
}

func (e Entry) Failed() bool { return e.Error != "" }

// Trace is the ordered log of one agent run.
type Trace struct {
	ID      string  `json:"id,omitempty"`
	Model   string  `json:"model,omitempty"`
	Answer  string  `json:"final_answer"`
	Entries []Entry `json:"steps"`
}

// Parse decodes and checks a trace document.
func Parse(data []byte) (Trace, error) {
	var t Trace

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&t); err != nil {
		return Trace{}, fmt.Errorf("%w: %v", ErrMalformedTrace, err)
	}

	if err := t.Check(); err != nil {
		return Trace{}, err
	}
	return t, nil
}

func Load(r fsio.Reader, path string) (Trace, error) {
	data, err := r.ReadFile(path)
	if err != nil {
		return Trace{}, fmt.Errorf("read trace %s: %w", path, err)
	}
	return Parse(data)
}

// Check enforces the structural invariants: turns start at 1 and never
// decrease, every call has a unique id and a tool name.
func (t Trace) Check() error {
	ids := make(map[string]struct{}, len(t.Entries))
	last := 0

	for i, e := range t.Entries {
		switch {
		case e.Turn < 1:
			return fmt.Errorf("%w: step %d: turn must be positive, got %d", ErrMalformedTrace, i, e.Turn)
		case e.Turn < last:
			return fmt.Errorf("%w: step %d: turn %d after turn %d", ErrMalformedTrace, i, e.Turn, last)
		case e.ID == "":
			return fmt.Errorf("%w: step %d: missing call id", ErrMalformedTrace, i)
		case e.Tool == "":
			return fmt.Errorf("%w: step %d: missing tool name", ErrMalformedTrace, i)
		}

		if _, dup := ids[e.ID]; dup {
			return fmt.Errorf("%w: step %d: duplicate call id %q", ErrMalformedTrace, i, e.ID)
		}
		ids[e.ID] = struct{}{}
		last = e.Turn
	}

	return nil
}

// Turns groups consecutive entries sharing a turn index.
func (t Trace) Turns() [][]Entry {
	var out [][]Entry
	for i, e := range t.Entries {
		if i == 0 || e.Turn != t.Entries[i-1].Turn {
			out = append(out, nil)
		}
		out[len(out)-1] = append(out[len(out)-1], e)
	}
	return out
}

func (t Trace) Marshal() ([]byte, error) {
	return json.MarshalIndent(t, "", "  ")
}

// ListingItem is one row of a list_directory result.
type ListingItem struct {
	Name  string
	IsDir bool
	Size  int64
}

type Listing []ListingItem

// Listing decodes a list_directory payload: an object mapping each name to
// either an integer size or the directory marker.
func (e Entry) Listing() (Listing, error) {
	var raw map[string]json.RawMessage
	if err := decodeStrict(e.Result, &raw); err != nil || raw == nil {
		return nil, fmt.Errorf("%w: %s result of %s is not an object", ErrMalformedTrace, e.Tool, e.ID)
	}

	out := make(Listing, 0, len(raw))
	for name, v := range raw {
		var marker string
		if err := json.Unmarshal(v, &marker); err == nil {
			if marker != DirectoryMarker {
				return nil, fmt.Errorf("%w: %s: entry %q has value %q", ErrMalformedTrace, e.ID, name, marker)
			}
			out = append(out, ListingItem{Name: name, IsDir: true})
			continue
		}

		var n json.Number
		if err := decodeStrict(v, &n); err != nil {
			return nil, fmt.Errorf("%w: %s: entry %q is neither a size nor %q", ErrMalformedTrace, e.ID, name, DirectoryMarker)
		}
		size, ok := AsInt(n)
		if !ok || size < 0 {
			return nil, fmt.Errorf("%w: %s: entry %q has invalid size %s", ErrMalformedTrace, e.ID, name, n)
		}
		out = append(out, ListingItem{Name: name, Size: size})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Number decodes a calculator payload.
func (e Entry) Number() (int64, error) {
	var n json.Number
	if err := decodeStrict(e.Result, &n); err != nil {
		return 0, fmt.Errorf("%w: %s result of %s is not a number", ErrMalformedTrace, e.Tool, e.ID)
	}
	v, ok := AsInt(n)
	if !ok {
		return 0, fmt.Errorf("%w: %s result of %s is not an integer: %s", ErrMalformedTrace, e.Tool, e.ID, n)
	}
	return v, nil
}

// IntArg returns the named argument as an integer when it holds one.
func (e Entry) IntArg(name string) (int64, bool) {
	v, ok := e.Args[name]
	if !ok {
		return 0, false
	}
	return AsInt(v)
}

func (e Entry) StringArg(name string) string {
	s, _ := e.Args[name].(string)
	return s
}

// AsInt converts JSON-decoded numbers to int64. Floats are accepted only when
// they carry no fraction.
func AsInt(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int64:
		return n, true
	case int32:
		return int64(n), true
	case float64:
		if n != math.Trunc(n) || math.IsInf(n, 0) || n >= math.MaxInt64 || n < math.MinInt64 {
			return 0, false
		}
		return int64(n), true
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i, true
		}
		f, err := n.Float64()
		if err != nil {
			return 0, false
		}
		return AsInt(f)
	default:
		return 0, false
	}
}

func decodeStrict(data []byte, v any) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return errors.New("empty payload")
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return dec.Decode(v)
}

// MarshalJSON writes the listing as an object, keeping the item order.
func (l Listing) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, item := range l {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(item.Name)
		if err != nil {
			return nil, err
		}
		buf.Write(name)
		buf.WriteByte(':')
		if item.IsDir {
			buf.WriteString(`"` + DirectoryMarker + `"`)
		} else {
			fmt.Fprintf(&buf, "%d", item.Size)
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
