package eval

import (
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/kardolus/agentic/scenario"
	"github.com/kardolus/agentic/trace"
)

const DefaultIgnoredDir = "__pycache__"

type settings struct {
	initial     scenario.Path
	ignored     map[string]struct{}
	chainInTurn bool
	log         *zap.SugaredLogger
}

type Option func(*settings)

// WithInitialPath sets the directory that is owed a visit before anything
// has been listed. Defaults to the root.
func WithInitialPath(p scenario.Path) Option {
	return func(s *settings) { s.initial = p }
}

// WithIgnoredDirs replaces the directory names that are never owed a visit.
func WithIgnoredDirs(names ...string) Option {
	return func(s *settings) {
		s.ignored = make(map[string]struct{}, len(names))
		for _, n := range names {
			s.ignored[n] = struct{}{}
		}
	}
}

// WithSameTurnChaining lets a call use results produced earlier in its own
// turn. By default results only become known once the turn is over.
func WithSameTurnChaining(v bool) Option {
	return func(s *settings) { s.chainInTurn = v }
}

func WithLogger(l *zap.SugaredLogger) Option {
	return func(s *settings) {
		if l != nil {
			s.log = l
		}
	}
}

// state is the replay bookkeeping for one validation run.
type state struct {
	settings

	owed       map[string]scenario.Path
	visited    map[string]bool
	discovered map[string]bool

	valid       map[int64]struct{}
	seenSizes   map[int64]struct{}
	calcResults map[int64]struct{}

	// fileOperands holds operands only a listing could have produced.
	// derivedOperands also match an earlier calculator result, so they
	// may stand for a file but never count as summing a non-test file.
	fileOperands    map[int64]struct{}
	derivedOperands map[int64]struct{}

	pendingValues []int64
	pendingSizes  []int64
	pendingCalc   []int64
	pendingDirs   []scenario.Path

	violations []Issue
	warnings   []Issue
	metrics    Metrics
}

func newState(opts []Option) *state {
	s := &state{
		settings: settings{
			initial: scenario.Root(),
			ignored: map[string]struct{}{DefaultIgnoredDir: {}},
			log:     zap.NewNop().Sugar(),
		},
		owed:        make(map[string]scenario.Path),
		visited:     make(map[string]bool),
		discovered:  make(map[string]bool),
		valid:       make(map[int64]struct{}),
		seenSizes:   make(map[int64]struct{}),
		calcResults: make(map[int64]struct{}),

		fileOperands:    make(map[int64]struct{}),
		derivedOperands: make(map[int64]struct{}),
	}
	for _, o := range opts {
		o(&s.settings)
	}

	key := s.initial.Key()
	s.owed[key] = s.initial
	s.discovered[key] = true
	return s
}

// Validate replays tr against gt and reports on the answer, completeness and
// the legitimacy of every call. Findings never produce an error; only a
// result payload that cannot be decoded does.
func Validate(gt GroundTruth, tr trace.Trace, opts ...Option) (Report, error) {
	if err := tr.Check(); err != nil {
		return Report{}, err
	}

	s := newState(opts)

	for _, turn := range tr.Turns() {
		s.metrics.Turns++
		for _, e := range turn {
			if err := s.apply(e); err != nil {
				return Report{}, err
			}
			if s.chainInTurn {
				s.commit()
			}
		}
		s.commit()
	}

	answer := s.checkAnswer(gt, tr.Answer)
	completeness := s.checkCompleteness(gt, answer.FinalAnswer)

	tv := TraceValidation{
		Passed:     len(s.violations) == 0,
		Violations: nonNil(s.violations),
		Warnings:   nonNil(s.warnings),
		Summary:    TraceSummary{Violations: len(s.violations), Warnings: len(s.warnings)},
	}

	r := Report{
		Answer:          answer,
		Completeness:    completeness,
		TraceValidation: tv,
		Metrics:         s.metrics,
	}
	r.Passed = answer.Passed && completeness.Passed && tv.Passed

	s.log.Debugw("validation finished", "passed", r.Passed, "violations", len(s.violations), "warnings", len(s.warnings))
	return r, nil
}

func (s *state) apply(e trace.Entry) error {
	s.metrics.TotalToolCalls++

	switch e.Tool {
	case trace.ToolListDirectory:
		s.metrics.ListDirectoryCalls++
		return s.applyListDirectory(e)
	case trace.ToolCalculator:
		s.metrics.CalculatorCalls++
		return s.applyCalculator(e)
	default:
		s.metrics.UnknownCalls++
		s.violate(Issue{
			Kind:    KindUnknownTool,
			Turn:    e.Turn,
			CallID:  e.ID,
			Tool:    e.Tool,
			Message: fmt.Sprintf("Unknown tool '%s'", e.Tool),
		})
		return nil
	}
}

func (s *state) applyListDirectory(e trace.Entry) error {
	path := scenario.ParsePath(e.StringArg("path"))
	key := path.Key()

	if e.Failed() {
		s.fail(e, path.String())
		return nil
	}

	_, owed := s.owed[key]
	switch {
	case owed:
		delete(s.owed, key)
	case s.visited[key]:
		s.warn(Issue{
			Kind:    KindDuplicateCall,
			Turn:    e.Turn,
			CallID:  e.ID,
			Tool:    e.Tool,
			Arg:     path.String(),
			Message: fmt.Sprintf("Listed '%s' more than once", path),
		})
	case !s.discovered[key]:
		s.warn(Issue{
			Kind:    KindUnexplainedCall,
			Turn:    e.Turn,
			CallID:  e.ID,
			Tool:    e.Tool,
			Arg:     path.String(),
			Message: fmt.Sprintf("Listed '%s' which no earlier result revealed", path),
		})
	}
	s.visited[key] = true

	listing, err := e.Listing()
	if err != nil {
		return err
	}

	for _, item := range listing {
		if item.IsDir {
			if _, skip := s.ignored[item.Name]; !skip {
				s.pendingDirs = append(s.pendingDirs, path.Child(item.Name))
			}
			continue
		}
		s.pendingValues = append(s.pendingValues, item.Size)
		s.pendingSizes = append(s.pendingSizes, item.Size)
	}

	s.log.Debugw("list_directory", "turn", e.Turn, "path", path.String(), "entries", len(listing), "owed", len(s.owed))
	return nil
}

func (s *state) applyCalculator(e trace.Entry) error {
	for _, arg := range []string{"x", "y"} {
		v, ok := e.IntArg(arg)
		if !ok {
			s.violate(Issue{
				Kind:    KindHallucinatedValue,
				Turn:    e.Turn,
				CallID:  e.ID,
				Tool:    e.Tool,
				Arg:     arg,
				Message: fmt.Sprintf("Calculator arg '%s' is missing or not an integer", arg),
			})
			continue
		}

		s.noteOperand(v)
		if _, known := s.valid[v]; !known {
			s.violate(Issue{
				Kind:    KindHallucinatedValue,
				Turn:    e.Turn,
				CallID:  e.ID,
				Tool:    e.Tool,
				Arg:     arg,
				Value:   int64Ptr(v),
				Message: fmt.Sprintf("Calculator arg '%s=%d' not from known values", arg, v),
			})
		}
	}

	if e.Failed() {
		s.fail(e, "")
		return nil
	}

	n, err := e.Number()
	if err != nil {
		return err
	}
	s.pendingValues = append(s.pendingValues, n)
	s.pendingCalc = append(s.pendingCalc, n)

	s.log.Debugw("calculator", "turn", e.Turn, "result", n, "known_values", len(s.valid))
	return nil
}

func (s *state) noteOperand(v int64) {
	if _, listed := s.seenSizes[v]; !listed {
		return
	}
	if _, derived := s.calcResults[v]; derived {
		s.derivedOperands[v] = struct{}{}
		return
	}
	s.fileOperands[v] = struct{}{}
}

// commit makes everything queued during the turn visible to later calls.
func (s *state) commit() {
	for _, v := range s.pendingValues {
		s.valid[v] = struct{}{}
	}
	for _, v := range s.pendingSizes {
		s.seenSizes[v] = struct{}{}
	}
	for _, v := range s.pendingCalc {
		s.calcResults[v] = struct{}{}
	}
	for _, p := range s.pendingDirs {
		key := p.Key()
		s.discovered[key] = true
		if !s.visited[key] {
			s.owed[key] = p
		}
	}

	s.pendingValues = s.pendingValues[:0]
	s.pendingSizes = s.pendingSizes[:0]
	s.pendingCalc = s.pendingCalc[:0]
	s.pendingDirs = s.pendingDirs[:0]
}

func (s *state) checkCompleteness(gt GroundTruth, answer *int64) CompletenessCheck {
	var issues []Issue

	if len(s.owed) > 0 {
		paths := make([]string, 0, len(s.owed))
		for _, p := range s.owed {
			paths = append(paths, p.String())
		}
		sort.Strings(paths)
		issues = append(issues, Issue{
			Kind:    KindIncompletePaths,
			Paths:   paths,
			Message: fmt.Sprintf("Failed to explore %d required paths", len(paths)),
		})
	}

	used := make(map[int64]struct{}, len(s.fileOperands))
	for v := range s.fileOperands {
		used[v] = struct{}{}
	}
	if s.metrics.CalculatorCalls == 0 && answer != nil {
		if _, seen := s.seenSizes[*answer]; seen {
			used[*answer] = struct{}{}
		}
	}
	covered := make(map[int64]struct{}, len(used)+len(s.derivedOperands))
	for v := range used {
		covered[v] = struct{}{}
	}
	for v := range s.derivedOperands {
		covered[v] = struct{}{}
	}

	expected := gt.TestFileSizes()
	if missing := difference(expected, covered); len(missing) > 0 {
		issues = append(issues, Issue{
			Kind:    KindMissingTestFiles,
			Sizes:   missing,
			Message: fmt.Sprintf("Failed to find %d test files", len(missing)),
		})
	}
	if extra := difference(used, expected); len(extra) > 0 {
		issues = append(issues, Issue{
			Kind:    KindExtraFiles,
			Sizes:   extra,
			Message: fmt.Sprintf("Included %d non-test files", len(extra)),
		})
	}

	return CompletenessCheck{Passed: len(issues) == 0, Issues: nonNil(issues)}
}

func (s *state) checkAnswer(gt GroundTruth, text string) AnswerCheck {
	check := AnswerCheck{Expected: gt.ExpectedSum}

	answer, found := PickAnswer(text, s.calcResults)
	if !found {
		check.Issues = append(check.Issues, Issue{
			Kind:    KindWrongAnswer,
			Message: "No numeric answer found",
		})
		check.Issues = nonNil(check.Issues)
		return check
	}
	check.FinalAnswer = int64Ptr(answer)

	if answer != gt.ExpectedSum {
		check.Issues = append(check.Issues, Issue{
			Kind:    KindWrongAnswer,
			Value:   int64Ptr(answer),
			Message: fmt.Sprintf("Wrong answer: expected %d, got %d", gt.ExpectedSum, answer),
		})
	}

	if !s.grounded(gt, answer) {
		check.Issues = append(check.Issues, Issue{
			Kind:    KindAnswerNotGrounded,
			Value:   int64Ptr(answer),
			Message: "Final answer not in tool results (mental calculation?)",
		})
	}

	check.Passed = len(check.Issues) == 0
	check.Issues = nonNil(check.Issues)
	return check
}

// grounded reports whether answer came out of a tool. With at most one test
// file there is nothing to add, so a listed size or zero is acceptable.
func (s *state) grounded(gt GroundTruth, answer int64) bool {
	if _, ok := s.calcResults[answer]; ok {
		return true
	}
	switch len(gt.TestFiles) {
	case 0:
		return answer == 0
	case 1:
		_, seen := s.seenSizes[answer]
		return seen
	default:
		return false
	}
}

func (s *state) violate(i Issue) {
	s.log.Debugw("violation", "kind", i.Kind, "turn", i.Turn, "message", i.Message)
	s.violations = append(s.violations, i)
}

func (s *state) warn(i Issue) {
	s.log.Debugw("warning", "kind", i.Kind, "turn", i.Turn, "message", i.Message)
	s.warnings = append(s.warnings, i)
}

func (s *state) fail(e trace.Entry, arg string) {
	s.metrics.FailedCalls++
	s.warn(Issue{
		Kind:    KindFailedCall,
		Turn:    e.Turn,
		CallID:  e.ID,
		Tool:    e.Tool,
		Arg:     arg,
		Message: fmt.Sprintf("%s failed: %s", e.Tool, e.Error),
	})
}

func difference(a, b map[int64]struct{}) []int64 {
	var out []int64
	for v := range a {
		if _, ok := b[v]; !ok {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func nonNil(issues []Issue) []Issue {
	if issues == nil {
		return []Issue{}
	}
	return issues
}
