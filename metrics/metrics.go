package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/kardolus/agentic/agent"
	"github.com/kardolus/agentic/eval"
)

const namespace = "agentic"

const (
	SeverityViolation = "violation"
	SeverityWarning   = "warning"
	SeverityFinding   = "finding"
)

// Collector turns run results and validation reports into Prometheus
// metrics on a private registry, suitable for the node exporter textfile
// collector.
type Collector struct {
	registry *prometheus.Registry

	toolCalls *prometheus.CounterVec
	issues    *prometheus.CounterVec
	checks    *prometheus.GaugeVec
	passed    prometheus.Gauge

	runs        *prometheus.CounterVec
	turns       prometheus.Histogram
	llmTokens   prometheus.Counter
	runDuration prometheus.Histogram
}

func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		toolCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tool_calls_total",
			Help:      "Tool calls seen in validated traces, by tool",
		}, []string{"tool"}),
		issues: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "validation_issues_total",
			Help:      "Validation issues, by severity and kind",
		}, []string{"severity", "kind"}),
		checks: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "check_passed",
			Help:      "1 if the named check passed in the last validation",
		}, []string{"check"}),
		passed: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "validation_passed",
			Help:      "1 if every check passed in the last validation",
		}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "agent_runs_total",
			Help:      "Agent runs, by final status",
		}, []string{"status"}),
		turns: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "agent_turns",
			Help:      "Turns taken per agent run",
			Buckets:   []float64{1, 2, 4, 8, 16, 32, 64},
		}),
		llmTokens: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "llm_tokens_total",
			Help:      "Tokens billed by the LLM provider",
		}),
		runDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "agent_run_duration_seconds",
			Help:      "Wall time per agent run",
			Buckets:   prometheus.ExponentialBuckets(0.5, 2, 10),
		}),
	}

	c.registry.MustRegister(c.toolCalls, c.issues, c.checks, c.passed, c.runs, c.turns, c.llmTokens, c.runDuration)
	return c
}

func (c *Collector) Registry() *prometheus.Registry { return c.registry }

func (c *Collector) ObserveRun(res agent.Result) {
	c.runs.WithLabelValues(string(res.Status)).Inc()
	c.turns.Observe(float64(res.Turns))
	c.llmTokens.Add(float64(res.Tokens))
	c.runDuration.Observe(res.Duration.Seconds())
}

func (c *Collector) ObserveReport(r eval.Report) {
	m := r.Metrics
	c.toolCalls.WithLabelValues("list_directory").Add(float64(m.ListDirectoryCalls))
	c.toolCalls.WithLabelValues("calculator").Add(float64(m.CalculatorCalls))
	if m.UnknownCalls > 0 {
		c.toolCalls.WithLabelValues("unknown").Add(float64(m.UnknownCalls))
	}

	for _, i := range r.TraceValidation.Violations {
		c.issues.WithLabelValues(SeverityViolation, string(i.Kind)).Inc()
	}
	for _, i := range r.TraceValidation.Warnings {
		c.issues.WithLabelValues(SeverityWarning, string(i.Kind)).Inc()
	}
	for _, i := range r.Answer.Issues {
		c.issues.WithLabelValues(SeverityFinding, string(i.Kind)).Inc()
	}
	for _, i := range r.Completeness.Issues {
		c.issues.WithLabelValues(SeverityFinding, string(i.Kind)).Inc()
	}

	c.checks.WithLabelValues("answer").Set(boolToFloat(r.Answer.Passed))
	c.checks.WithLabelValues("completeness").Set(boolToFloat(r.Completeness.Passed))
	c.checks.WithLabelValues("trace_validation").Set(boolToFloat(r.TraceValidation.Passed))
	c.passed.Set(boolToFloat(r.Passed))
}

// WriteFile atomically writes every metric in the text exposition format.
func (c *Collector) WriteFile(path string) error {
	return prometheus.WriteToTextfile(path, c.registry)
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
