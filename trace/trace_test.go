package trace_test

import (
	"encoding/json"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/kardolus/agentic/internal/fsio"
	"github.com/kardolus/agentic/trace"
	. "github.com/onsi/gomega"
	"github.com/sclevine/spec"
	"github.com/sclevine/spec/report"
)

func TestUnitTrace(t *testing.T) {
	spec.Run(t, "Testing the trace package", testTrace, spec.Report(report.Terminal{}))
}

func testTrace(t *testing.T, when spec.G, it spec.S) {
	it.Before(func() {
		RegisterTestingT(t)
	})

	when("Parse()", func() {
		it("decodes steps and the final answer", func() {
			tr, err := trace.Parse([]byte(`{
				"final_answer": "The total is 150",
				"steps": [
					{"turn": 1, "id": "c1", "tool": "list_directory", "args": {"path": "."}, "result": {"a": "directory", "test_y.py": 50}},
					{"turn": 2, "id": "c2", "tool": "calculator", "args": {"x": 100, "y": 50}, "result": 150}
				]
			}`))
			Expect(err).NotTo(HaveOccurred())
			Expect(tr.Answer).To(Equal("The total is 150"))
			Expect(tr.Entries).To(HaveLen(2))

			x, ok := tr.Entries[1].IntArg("x")
			Expect(ok).To(BeTrue())
			Expect(x).To(Equal(int64(100)))
			Expect(tr.Entries[0].StringArg("path")).To(Equal("."))
		})

		it("rejects decreasing turns", func() {
			_, err := trace.Parse([]byte(`{"steps": [
				{"turn": 2, "id": "a", "tool": "calculator"},
				{"turn": 1, "id": "b", "tool": "calculator"}
			]}`))
			Expect(errors.Is(err, trace.ErrMalformedTrace)).To(BeTrue())
			Expect(err.Error()).To(ContainSubstring("turn 1 after turn 2"))
		})

		it("rejects duplicate ids", func() {
			_, err := trace.Parse([]byte(`{"steps": [
				{"turn": 1, "id": "a", "tool": "calculator"},
				{"turn": 1, "id": "a", "tool": "calculator"}
			]}`))
			Expect(errors.Is(err, trace.ErrMalformedTrace)).To(BeTrue())
		})

		it("rejects a zero turn", func() {
			_, err := trace.Parse([]byte(`{"steps": [{"turn": 0, "id": "a", "tool": "calculator"}]}`))
			Expect(errors.Is(err, trace.ErrMalformedTrace)).To(BeTrue())
		})

		it("rejects missing tool names", func() {
			_, err := trace.Parse([]byte(`{"steps": [{"turn": 1, "id": "a"}]}`))
			Expect(errors.Is(err, trace.ErrMalformedTrace)).To(BeTrue())
		})

		it("rejects broken JSON", func() {
			_, err := trace.Parse([]byte(`{"steps": [`))
			Expect(errors.Is(err, trace.ErrMalformedTrace)).To(BeTrue())
		})
	})

	when("Turns()", func() {
		it("groups consecutive entries by turn", func() {
			tr := trace.Trace{Entries: []trace.Entry{
				{Turn: 1, ID: "a"}, {Turn: 1, ID: "b"}, {Turn: 3, ID: "c"},
			}}
			turns := tr.Turns()
			Expect(turns).To(HaveLen(2))
			Expect(turns[0]).To(HaveLen(2))
			Expect(turns[1][0].ID).To(Equal("c"))
		})

		it("returns nothing for an empty trace", func() {
			Expect(trace.Trace{}.Turns()).To(BeEmpty())
		})
	})

	when("Listing()", func() {
		it("decodes sizes and directories sorted by name", func() {
			e := trace.Entry{ID: "x", Tool: trace.ToolListDirectory, Result: json.RawMessage(`{"z.py": 3, "a": "directory"}`)}
			listing, err := e.Listing()
			Expect(err).NotTo(HaveOccurred())
			Expect(listing).To(Equal(trace.Listing{
				{Name: "a", IsDir: true},
				{Name: "z.py", Size: 3},
			}))
		})

		for _, payload := range []string{`[1]`, `42`, `null`, `{"a": "file"}`, `{"a": 1.5}`, `{"a": -3}`, `{"a": true}`, ``} {
			payload := payload
			it("rejects the payload "+payload, func() {
				e := trace.Entry{ID: "x", Tool: trace.ToolListDirectory, Result: json.RawMessage(payload)}
				_, err := e.Listing()
				Expect(errors.Is(err, trace.ErrMalformedTrace)).To(BeTrue())
			})
		}

		it("round-trips through MarshalJSON", func() {
			listing := trace.Listing{{Name: "sub", IsDir: true}, {Name: "test_a.py", Size: 1234}}
			raw, err := json.Marshal(listing)
			Expect(err).NotTo(HaveOccurred())
			Expect(string(raw)).To(Equal(`{"sub":"directory","test_a.py":1234}`))

			decoded, err := trace.Entry{Result: raw}.Listing()
			Expect(err).NotTo(HaveOccurred())
			Expect(decoded).To(Equal(listing))
		})
	})

	when("Number()", func() {
		it("accepts integral values", func() {
			n, err := trace.Entry{Result: json.RawMessage(`150.0`)}.Number()
			Expect(err).NotTo(HaveOccurred())
			Expect(n).To(Equal(int64(150)))
		})

		it("rejects fractions", func() {
			_, err := trace.Entry{Result: json.RawMessage(`1.25`)}.Number()
			Expect(errors.Is(err, trace.ErrMalformedTrace)).To(BeTrue())
		})

		it("rejects objects", func() {
			_, err := trace.Entry{Result: json.RawMessage(`{"a": 1}`)}.Number()
			Expect(errors.Is(err, trace.ErrMalformedTrace)).To(BeTrue())
		})
	})

	when("AsInt()", func() {
		it("handles the decoded number types", func() {
			for _, v := range []any{7, int64(7), float64(7), json.Number("7"), json.Number("7.0")} {
				n, ok := trace.AsInt(v)
				Expect(ok).To(BeTrue())
				Expect(n).To(Equal(int64(7)))
			}
			for _, v := range []any{"7", 7.5, nil, json.Number("x"), float64(1 << 63), json.Number("9223372036854775808")} {
				_, ok := trace.AsInt(v)
				Expect(ok).To(BeFalse())
			}
		})
	})

	when("AsInt() at the int64 edges", func() {
		it("keeps the smallest int64 and rejects 2^63", func() {
			n, ok := trace.AsInt(float64(math.MinInt64))
			Expect(ok).To(BeTrue())
			Expect(n).To(Equal(int64(math.MinInt64)))

			_, ok = trace.AsInt(math.Ldexp(1, 63))
			Expect(ok).To(BeFalse())
		})
	})

	when("Recorder", func() {
		var recorder *trace.Recorder

		it.Before(func() {
			recorder = trace.NewRecorder("gpt-test")
		})

		it("refuses to record before a turn begins", func() {
			_, err := recorder.Record("a", trace.ToolCalculator, nil, 1, nil)
			Expect(errors.Is(err, trace.ErrMalformedTrace)).To(BeTrue())
		})

		it("refuses to go back in turns", func() {
			Expect(recorder.Begin(2)).To(Succeed())
			Expect(errors.Is(recorder.Begin(1), trace.ErrMalformedTrace)).To(BeTrue())
		})

		it("records results, errors and fills in missing or duplicate ids", func() {
			Expect(recorder.Begin(1)).To(Succeed())

			first, err := recorder.Record("call_1", trace.ToolCalculator, map[string]any{"x": 1.0, "y": 2.0}, int64(3), nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(first.ID).To(Equal("call_1"))
			Expect(string(first.Result)).To(Equal("3"))

			second, err := recorder.Record("call_1", trace.ToolListDirectory, map[string]any{"path": "nope"}, nil, errors.New("path not found"))
			Expect(err).NotTo(HaveOccurred())
			Expect(second.ID).NotTo(Equal("call_1"))
			Expect(second.Error).To(Equal("path not found"))
			Expect(second.Result).To(BeNil())

			third, err := recorder.Record("", trace.ToolCalculator, nil, int64(0), nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(third.ID).To(HavePrefix("call_"))

			recorder.SetAnswer("3")
			tr := recorder.Trace()
			Expect(tr.ID).NotTo(BeEmpty())
			Expect(tr.Model).To(Equal("gpt-test"))
			Expect(tr.Answer).To(Equal("3"))
			Expect(tr.Entries).To(HaveLen(3))
			Expect(tr.Check()).To(Succeed())
		})
	})

	when("FileStore", func() {
		var (
			dir   string
			store *trace.FileStore
		)

		it.Before(func() {
			var err error
			dir, err = os.MkdirTemp("", "agentic-traces")
			Expect(err).NotTo(HaveOccurred())

			store = trace.NewFileStore(filepath.Join(dir, "runs"), fsio.NewRealReader(), fsio.NewRealWriter())
		})

		it.After(func() {
			Expect(os.RemoveAll(dir)).To(Succeed())
		})

		it("writes, lists and reads traces", func() {
			tr := trace.Trace{
				ID:     "run-b",
				Answer: "3",
				Entries: []trace.Entry{
					{Turn: 1, ID: "c1", Tool: trace.ToolCalculator, Args: map[string]any{"x": 1, "y": 2}, Result: json.RawMessage(`3`)},
				},
			}

			path, err := store.Write(tr)
			Expect(err).NotTo(HaveOccurred())
			Expect(path).To(Equal(store.Path("run-b")))

			_, err = store.Write(trace.Trace{ID: "run-a"})
			Expect(err).NotTo(HaveOccurred())

			ids, err := store.List()
			Expect(err).NotTo(HaveOccurred())
			Expect(ids).To(Equal([]string{"run-a", "run-b"}))

			read, err := store.Read("run-b")
			Expect(err).NotTo(HaveOccurred())
			Expect(read.Answer).To(Equal("3"))
			Expect(read.Entries).To(HaveLen(1))
			Expect(read.Entries[0].Args["x"]).To(Equal(json.Number("1")))
		})

		it("requires an id", func() {
			_, err := store.Write(trace.Trace{})
			Expect(err).To(MatchError(trace.ErrNoTraceID))
		})
	})
}
