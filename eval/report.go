package eval

// Kind names a validation finding.
type Kind string

const (
	KindUnknownTool       Kind = "unknown_tool"
	KindHallucinatedValue Kind = "hallucinated_value"

	KindIncompletePaths  Kind = "incomplete_paths"
	KindMissingTestFiles Kind = "missing_test_files"
	KindExtraFiles       Kind = "extra_files"

	KindAnswerNotGrounded Kind = "answer_not_grounded"
	KindWrongAnswer       Kind = "wrong_answer"

	// warnings
	KindUnexplainedCall Kind = "unexplained_call"
	KindDuplicateCall   Kind = "duplicate_call"
	KindFailedCall      Kind = "failed_call"
)

// Issue is a single violation or warning. Fields that do not apply to a kind
// are left empty.
type Issue struct {
	Kind    Kind     `json:"type"`
	Turn    int      `json:"turn,omitempty"`
	CallID  string   `json:"call_id,omitempty"`
	Tool    string   `json:"tool,omitempty"`
	Arg     string   `json:"arg,omitempty"`
	Value   *int64   `json:"value,omitempty"`
	Paths   []string `json:"paths,omitempty"`
	Sizes   []int64  `json:"sizes,omitempty"`
	Message string   `json:"message"`
}

type AnswerCheck struct {
	Passed      bool    `json:"passed"`
	Issues      []Issue `json:"issues"`
	FinalAnswer *int64  `json:"final_answer"`
	Expected    int64   `json:"expected"`
}

type CompletenessCheck struct {
	Passed bool    `json:"passed"`
	Issues []Issue `json:"issues"`
}

type TraceSummary struct {
	Violations int `json:"violations"`
	Warnings   int `json:"warnings"`
}

type TraceValidation struct {
	Passed     bool         `json:"passed"`
	Violations []Issue      `json:"violations"`
	Warnings   []Issue      `json:"warnings"`
	Summary    TraceSummary `json:"summary"`
}

type Metrics struct {
	TotalToolCalls     int `json:"total_tool_calls"`
	ListDirectoryCalls int `json:"list_directory_calls"`
	CalculatorCalls    int `json:"calculator_calls"`
	UnknownCalls       int `json:"unknown_calls"`
	FailedCalls        int `json:"failed_calls"`
	Turns              int `json:"turns"`
}

// Report is the outcome of one validation run.
type Report struct {
	Passed          bool              `json:"passed"`
	Answer          AnswerCheck       `json:"answer"`
	Completeness    CompletenessCheck `json:"completeness"`
	TraceValidation TraceValidation   `json:"trace_validation"`
	Metrics         Metrics           `json:"metrics"`
}

// ChecksPassed counts the sections that passed, out of three.
func (r Report) ChecksPassed() int {
	n := 0
	for _, ok := range []bool{r.Answer.Passed, r.Completeness.Passed, r.TraceValidation.Passed} {
		if ok {
			n++
		}
	}
	return n
}

// Has reports whether any section carries an issue of kind k.
func (r Report) Has(k Kind) bool {
	return r.Find(k) != nil
}

// Find returns the first issue of kind k across all sections.
func (r Report) Find(k Kind) *Issue {
	for _, list := range [][]Issue{r.Answer.Issues, r.Completeness.Issues, r.TraceValidation.Violations, r.TraceValidation.Warnings} {
		for i := range list {
			if list[i].Kind == k {
				return &list[i]
			}
		}
	}
	return nil
}

func int64Ptr(v int64) *int64 { return &v }
