package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/kardolus/agentic/agent"
	"github.com/kardolus/agentic/client"
	"github.com/kardolus/agentic/config"
	"github.com/kardolus/agentic/eval"
	"github.com/kardolus/agentic/http"
	"github.com/kardolus/agentic/internal"
	"github.com/kardolus/agentic/internal/fsio"
	"github.com/kardolus/agentic/metrics"
	"github.com/kardolus/agentic/scenario"
	"github.com/kardolus/agentic/tools"
	"github.com/kardolus/agentic/trace"
	"github.com/kardolus/agentic/types"
)

const defaultTask = `Find every test file under the current directory. A test file is named %s*%s.
Explore every directory that could contain one, then use the calculator to add up the sizes
of all test files. Report the total size in bytes as your final answer.`

var (
	GitCommit  string
	GitVersion string
)

// errChecksFailed signals exit code 1 after the report has been printed.
var errChecksFailed = errors.New("validation failed")

var (
	configPath   string
	scenarioFile string
	traceRef     string
	answerText   string
	promptText   string
	promptFile   string
	jsonOutput   bool
	saveTrace    bool
	metricsFile  string
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "agentic",
		Short:         "ReAct agent runtime and trace evaluator",
		Long:          "Runs a tool-using agent over a mock filesystem and validates recorded traces against ground truth.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to the config file")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().String("model", "", "Override the model")
	rootCmd.PersistentFlags().Int("max-turns", 0, "Override the turn limit")
	rootCmd.PersistentFlags().Bool("same-turn-chaining", false, "Allow calls to use results from earlier in their own turn")

	_ = viper.BindPFlag("model", rootCmd.PersistentFlags().Lookup("model"))
	_ = viper.BindPFlag("max_turns", rootCmd.PersistentFlags().Lookup("max-turns"))
	_ = viper.BindPFlag("same_turn_chaining", rootCmd.PersistentFlags().Lookup("same-turn-chaining"))
	_ = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))

	truthCmd := &cobra.Command{
		Use:   "truth <scenario>",
		Short: "Print the ground truth of a scenario",
		Args:  cobra.ExactArgs(1),
		RunE:  runTruth,
	}
	truthCmd.Flags().BoolVar(&jsonOutput, "json", false, "Print JSON instead of YAML")

	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a recorded trace against a scenario",
		RunE:  runValidate,
	}
	validateCmd.Flags().StringVar(&scenarioFile, "scenario", "", "Scenario file (JSON or YAML)")
	validateCmd.Flags().StringVar(&traceRef, "trace", "", "Trace file or stored trace id")
	validateCmd.Flags().StringVar(&answerText, "answer", "", "Override the final answer recorded in the trace")
	validateCmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the report as JSON")
	validateCmd.Flags().StringVar(&metricsFile, "metrics-file", "", "Write Prometheus metrics to this file")
	_ = validateCmd.MarkFlagRequired("scenario")
	_ = validateCmd.MarkFlagRequired("trace")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run the agent over a scenario and validate its trace",
		RunE:  runAgent,
	}
	runCmd.Flags().StringVar(&scenarioFile, "scenario", "", "Scenario file (JSON or YAML)")
	runCmd.Flags().StringVar(&promptText, "prompt", "", "Task given to the agent")
	runCmd.Flags().StringVar(&promptFile, "prompt-file", "", "Read the task from a file")
	runCmd.Flags().BoolVar(&saveTrace, "save", false, "Store the trace under the data directory")
	runCmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the report as JSON")
	runCmd.Flags().StringVar(&metricsFile, "metrics-file", "", "Write Prometheus metrics to this file")
	runCmd.MarkFlagsMutuallyExclusive("prompt", "prompt-file")
	_ = runCmd.MarkFlagRequired("scenario")

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE:  runConfig,
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "commit %s (%s)\n", GitCommit, GitVersion)
		},
	}

	rootCmd.AddCommand(truthCmd, validateCmd, runCmd, configCmd, versionCmd)

	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errChecksFailed) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func runTruth(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	root, err := scenario.Load(fsio.NewRealReader(), args[0])
	if err != nil {
		return err
	}

	summary := eval.Extract(root, eval.NewAffixPredicate(cfg.TestPrefix, cfg.TestSuffix)).Summary()

	var out []byte
	if jsonOutput {
		out, err = json.MarshalIndent(summary, "", "  ")
		out = append(out, '\n')
	} else {
		out, err = yaml.Marshal(summary)
	}
	if err != nil {
		return err
	}

	_, err = cmd.OutOrStdout().Write(out)
	return err
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	reader := fsio.NewRealReader()

	root, err := scenario.Load(reader, scenarioFile)
	if err != nil {
		return err
	}

	tr, err := loadTrace(reader, traceRef)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("answer") {
		tr.Answer = answerText
	}

	return report(cmd.OutOrStdout(), cfg, root, tr, metrics.New())
}

func runAgent(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	reader := fsio.NewRealReader()

	root, err := scenario.Load(reader, scenarioFile)
	if err != nil {
		return err
	}

	goal, err := task(reader, cfg)
	if err != nil {
		return err
	}

	llm, err := client.New(http.RealCallerFactory, cfg)
	if err != nil {
		return err
	}

	registry, err := tools.NewRegistry(tools.NewCalculator(), tools.NewListDirectory(root))
	if err != nil {
		return err
	}

	cacheHome, err := internal.GetCacheHome()
	if err != nil {
		return err
	}
	logs, err := agent.NewLogs(filepath.Join(cacheHome, "agent"))
	if err != nil {
		return err
	}
	defer logs.Close()

	budget := agent.NewDefaultBudget(agent.BudgetLimits{
		MaxTurns:     cfg.MaxTurns,
		MaxToolCalls: cfg.MaxToolCalls,
		MaxLLMTokens: cfg.MaxLLMTokens,
		MaxWallTime:  time.Duration(cfg.MaxWallTime) * time.Second,
	})

	a, err := agent.New(
		agent.Deps{LLM: llm, Tools: registry, Budget: budget, Clock: agent.NewRealClock()},
		agent.WithModel(cfg.Model),
		agent.WithHumanLogger(logs.HumanLogger),
		agent.WithDebugLogger(logs.DebugLogger),
	)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	sugar := zap.S()
	sugar.Infof("Running %s on %s (transcript: %s)", cfg.Model, scenarioFile, logs.HumanPath)

	res, err := a.Run(ctx, goal)
	if err != nil {
		return fmt.Errorf("agent run failed after %d turns: %w", res.Turns, err)
	}
	sugar.Infof("Agent finished with status %s in %d turns (%d tokens, %s)", res.Status, res.Turns, res.Tokens, res.Duration.Round(time.Millisecond))
	sugar.Debugf("Final answer: %s", res.Answer)

	if saveTrace {
		dataHome, err := internal.GetDataHome()
		if err != nil {
			return err
		}
		path, err := trace.NewFileStore(dataHome, reader, fsio.NewRealWriter()).Write(res.Trace)
		if err != nil {
			return err
		}
		sugar.Infof("Trace saved to %s", path)
	}

	collector := metrics.New()
	collector.ObserveRun(res)

	return report(cmd.OutOrStdout(), cfg, root, res.Trace, collector)
}

func runConfig(cmd *cobra.Command, args []string) error {
	mgr, err := newManager()
	if err != nil {
		return err
	}

	out, err := mgr.ShowConfig()
	if err != nil {
		return err
	}

	_, err = io.WriteString(cmd.OutOrStdout(), out)
	return err
}

// report validates tr and prints either the summary or the JSON report.
func report(w io.Writer, cfg types.Config, root *scenario.Dir, tr trace.Trace, collector *metrics.Collector) error {
	gt := eval.Extract(root, eval.NewAffixPredicate(cfg.TestPrefix, cfg.TestSuffix))

	opts := []eval.Option{
		eval.WithIgnoredDirs(cfg.IgnoredDirs...),
		eval.WithSameTurnChaining(cfg.SameTurnChaining),
		eval.WithLogger(zap.S()),
	}
	if cfg.InitialPath != "" {
		opts = append(opts, eval.WithInitialPath(scenario.ParsePath(cfg.InitialPath)))
	}

	r, err := eval.Validate(gt, tr, opts...)
	if err != nil {
		return err
	}

	if metricsFile != "" {
		collector.ObserveReport(r)
		if err := collector.WriteFile(metricsFile); err != nil {
			return err
		}
	}

	if jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(r); err != nil {
			return err
		}
	} else if err := eval.WriteSummary(w, gt, r); err != nil {
		return err
	}

	if !r.Passed {
		return errChecksFailed
	}
	return nil
}

// loadTrace accepts a path to a trace file or the id of a stored trace.
func loadTrace(r fsio.Reader, ref string) (trace.Trace, error) {
	if _, err := os.Stat(ref); err == nil {
		return trace.Load(r, ref)
	}

	dataHome, err := internal.GetDataHome()
	if err != nil {
		return trace.Trace{}, err
	}

	return trace.NewFileStore(dataHome, r, fsio.NewRealWriter()).Read(ref)
}

func task(r fsio.Reader, cfg types.Config) (string, error) {
	switch {
	case promptFile != "":
		data, err := r.ReadFile(promptFile)
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(data)), nil
	case promptText != "":
		return promptText, nil
	default:
		return fmt.Sprintf(defaultTask, cfg.TestPrefix, cfg.TestSuffix), nil
	}
}

func newManager() (*config.Manager, error) {
	store := config.New(fsio.NewRealReader(), fsio.NewRealWriter())
	if configPath != "" {
		store = store.WithConfigPath(configPath)
	}

	mgr, err := config.NewManager(store).WithEnvironment().WithAPIKeyFile()
	if err != nil {
		return nil, err
	}

	applyFlags(&mgr.Config)
	return mgr, nil
}

// loadConfig builds and validates the effective configuration, then installs
// the console logger it asks for.
func loadConfig() (types.Config, error) {
	mgr, err := newManager()
	if err != nil {
		return types.Config{}, err
	}

	internal.ConfigureLogging(mgr.Config.Debug)

	if err := mgr.Validate(); err != nil {
		return types.Config{}, err
	}
	return mgr.Config, nil
}

// applyFlags lets explicitly set flags win over file and environment values.
func applyFlags(cfg *types.Config) {
	if viper.IsSet("model") {
		cfg.Model = viper.GetString("model")
	}
	if viper.IsSet("max_turns") {
		cfg.MaxTurns = viper.GetInt("max_turns")
	}
	if viper.IsSet("same_turn_chaining") {
		cfg.SameTurnChaining = viper.GetBool("same_turn_chaining")
	}
	if viper.IsSet("debug") {
		cfg.Debug = viper.GetBool("debug")
	}
}
