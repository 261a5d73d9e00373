package eval

import (
	"fmt"
	"io"
	"strings"
)

const (
	rule          = "======================================================================"
	maxViolations = 3
)

// WriteSummary prints a human readable rendition of r.
func WriteSummary(w io.Writer, gt GroundTruth, r Report) error {
	var b strings.Builder

	b.WriteString("Ground Truth:\n")
	fmt.Fprintf(&b, "  Expected answer: %d\n", gt.ExpectedSum)
	fmt.Fprintf(&b, "  Number of test files: %d\n", len(gt.TestFiles))

	b.WriteString("\nMetrics:\n")
	fmt.Fprintf(&b, "  Total tool calls: %d\n", r.Metrics.TotalToolCalls)
	fmt.Fprintf(&b, "  - list_directory: %d\n", r.Metrics.ListDirectoryCalls)
	fmt.Fprintf(&b, "  - calculator: %d\n", r.Metrics.CalculatorCalls)
	if r.Metrics.UnknownCalls > 0 {
		fmt.Fprintf(&b, "  - unknown: %d\n", r.Metrics.UnknownCalls)
	}
	fmt.Fprintf(&b, "  Turns: %d\n", r.Metrics.Turns)

	fmt.Fprintf(&b, "\n%s\nValidation Results\n%s\n\n", rule, rule)

	if r.Answer.Passed {
		fmt.Fprintf(&b, "✓ PASS - Final Answer: %d\n", *r.Answer.FinalAnswer)
	} else {
		b.WriteString("✗ FAIL - Final Answer\n")
		writeIssues(&b, r.Answer.Issues)
	}

	if r.Completeness.Passed {
		b.WriteString("✓ PASS - Task Completeness\n")
	} else {
		b.WriteString("✗ FAIL - Task Completeness\n")
		writeIssues(&b, r.Completeness.Issues)
	}

	tv := r.TraceValidation
	if tv.Passed {
		b.WriteString("✓ PASS - Trace Validation (no hallucinations)\n")
	} else {
		b.WriteString("✗ FAIL - Trace Validation\n")
		fmt.Fprintf(&b, "     %d violation(s)\n", len(tv.Violations))
		for i, v := range tv.Violations {
			if i == maxViolations {
				break
			}
			fmt.Fprintf(&b, "     - Turn %d: %s\n", v.Turn, v.Message)
		}
	}
	if len(tv.Warnings) > 0 {
		fmt.Fprintf(&b, "  %d warning(s)\n", len(tv.Warnings))
	}

	fmt.Fprintf(&b, "\n%s\n", rule)
	if r.Passed {
		b.WriteString("Result: ALL CHECKS PASSED\n")
	} else {
		fmt.Fprintf(&b, "Result: FAILED (%d/3 checks passed)\n", r.ChecksPassed())
	}
	fmt.Fprintf(&b, "%s\n", rule)

	_, err := io.WriteString(w, b.String())
	return err
}

func writeIssues(b *strings.Builder, issues []Issue) {
	for _, i := range issues {
		fmt.Fprintf(b, "     %s\n", i.Message)
		switch {
		case len(i.Paths) > 0:
			fmt.Fprintf(b, "     Missing: %s\n", strings.Join(i.Paths, ", "))
		case len(i.Sizes) > 0:
			fmt.Fprintf(b, "     Sizes: %v\n", i.Sizes)
		}
	}
}
