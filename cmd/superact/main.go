package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/superactdev/superact/pkg/inputs"
	"github.com/superactdev/superact/pkg/pipeline"
	"github.com/superactdev/superact/pkg/presets"
	"github.com/superactdev/superact/pkg/results"
	"github.com/superactdev/superact/pkg/runner"
	"github.com/superactdev/superact/pkg/schema"
	"github.com/superactdev/superact/pkg/workflow"
)

// Version is set at build time via ldflags.
var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	loadDotEnv() // load .env file if present (gitignored)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadDotEnv reads a .env file from the working directory and sets
// any variables that aren't already set in the environment.
// Lines are KEY=VALUE (or KEY="VALUE"). Comments (#) and blanks are skipped.
// The .env file is gitignored so secrets never end up in source control.
func loadDotEnv() {
	f, err := os.Open(".env")
	if err != nil {
		return // no .env file — that's fine
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		val := strings.TrimSpace(parts[1])
		val = strings.Trim(val, `"'`)
		// Don't overwrite existing env vars
		if os.Getenv(key) == "" {
			os.Setenv(key, val)
		}
	}
}

var rootCmd = &cobra.Command{
	Use:   "superact",
	Short: "Dynamic workflow composer and runner",
	Long:  "superact — composes preset and inline action steps into a workflow, runs it through act, and returns per-step results in the caller's original order.",
}

// --- run ---

var (
	runPresets     string
	runActionList  string
	runVars        string
	runRunnerOS    string
	runOutputFile  string
	runNoDisplay   bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Compose the workflow and execute it",
	Long: `Compose a workflow from the preset and action_list inputs and execute
it through act.

Inputs are read from the INPUT_* environment variables the action runner
provides; flags override them. At least one of presets or action_list
must be non-empty.`,
	RunE: runRun,
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg := configFromFlags(cmd)

	engine := &runner.ActEngine{Binary: cfg.EngineBinary}
	parser := &results.ExecParser{Binary: cfg.ParserBinary}

	p := &pipeline.Pipeline{
		Config: cfg,
		Engine: engine,
		Parser: parser,
	}

	// Engine failure is best-effort territory: the results output carries
	// the per-step status, so the command itself still succeeds. Only
	// configuration and setup errors exit non-zero.
	_, err := p.Run(context.Background())
	return err
}

// configFromFlags merges the environment config with any flags the
// caller set. Flags win.
func configFromFlags(cmd *cobra.Command) *inputs.Config {
	cfg := inputs.FromEnv()
	if cmd.Flags().Changed("presets") {
		cfg.PresetsYAML = runPresets
	}
	if cmd.Flags().Changed("action-list") {
		cfg.ActionListYAML = runActionList
	}
	if cmd.Flags().Changed("vars") {
		cfg.VarsYAML = runVars
	}
	if cmd.Flags().Changed("runner-os") {
		cfg.RunnerOS = runRunnerOS
	}
	if cmd.Flags().Changed("results-output-file") {
		cfg.ResultsOutputFile = runOutputFile
	}
	if runNoDisplay {
		cfg.DisplayResults = false
	}
	return cfg
}

// --- validate ---

var validateCmd = &cobra.Command{
	Use:   "validate [steps.yaml]",
	Short: "Validate a step list YAML file",
	Args:  cobra.ExactArgs(1),
	RunE:  runValidate,
}

func runValidate(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read %s: %w", args[0], err)
	}

	specs, errs := schema.ValidateListString(string(data))
	var errors []*schema.ValidationError
	var warnings []*schema.ValidationError
	for _, e := range errs {
		if e.Severity == "warning" {
			warnings = append(warnings, e)
		} else {
			errors = append(errors, e)
		}
	}
	for _, w := range warnings {
		fmt.Fprintf(os.Stderr, "  ⚠ [%s] %s\n", w.Phase, w.Message)
		if w.Path != "" {
			fmt.Fprintf(os.Stderr, "    at: %s\n", w.Path)
		}
	}
	if len(errors) > 0 {
		fmt.Fprintf(os.Stderr, "Validation failed: %d error(s)\n\n", len(errors))
		for i, e := range errors {
			fmt.Fprintf(os.Stderr, "  %d. [%s] %s\n", i+1, e.Phase, e.Message)
			if e.Path != "" {
				fmt.Fprintf(os.Stderr, "     at: %s\n", e.Path)
			}
		}
		return fmt.Errorf("validation failed with %d error(s)", len(errors))
	}
	fmt.Printf("✓ %s is valid (%d steps)\n", args[0], len(specs))
	return nil
}

// --- plan ---

var planShowMap bool

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Print the workflow that run would execute, without executing it",
	Long: `Merge the presets and action_list inputs, assign step ids, and print
the generated workflow document to stdout. Nothing is executed.

With --show-map the id-to-index correlation map is printed to stderr as
JSON.`,
	RunE: runPlan,
}

func runPlan(cmd *cobra.Command, args []string) error {
	cfg := configFromFlags(cmd)
	if err := cfg.Validate(); err != nil {
		return err
	}

	vars, err := schema.LoadVars(cfg.VarsYAML)
	if err != nil {
		return fmt.Errorf("input 'vars' must be a YAML mapping: %w", err)
	}
	presetSteps, err := presets.NewLoader(cfg.PresetsDir).LoadPresets(cfg.PresetsYAML)
	if err != nil {
		return err
	}
	customSteps, err := presets.LoadCustom(cfg.ActionListYAML)
	if err != nil {
		return err
	}
	steps, err := workflow.Merge(presetSteps, customSteps, vars)
	if err != nil {
		return err
	}

	doc, corr := workflow.Build(steps, cfg.RunnerOS, "results.json")
	out, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal workflow: %w", err)
	}
	fmt.Print(string(out))

	if planShowMap {
		enc := json.NewEncoder(os.Stderr)
		enc.SetIndent("", "  ")
		if err := enc.Encode(corr); err != nil {
			return fmt.Errorf("encode correlation map: %w", err)
		}
	}
	return nil
}

// --- schema export ---

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Schema operations",
}

var schemaExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the step list JSON Schema to stdout",
	RunE:  runSchemaExport,
}

func runSchemaExport(cmd *cobra.Command, args []string) error {
	data, err := schema.GenerateJSONSchema()
	if err != nil {
		return fmt.Errorf("generate schema: %w", err)
	}
	var out json.RawMessage = data
	formatted, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		// fallback to raw
		fmt.Println(string(data))
		return nil
	}
	fmt.Println(string(formatted))
	return nil
}

// --- version ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("superact %s (build: %s)\n", version, commit)
	},
}

func init() {
	for _, c := range []*cobra.Command{runCmd, planCmd} {
		c.Flags().StringVar(&runPresets, "presets", "", "YAML sequence of preset names (overrides INPUT_PRESETS)")
		c.Flags().StringVar(&runActionList, "action-list", "", "YAML sequence of step specs (overrides INPUT_ACTION_LIST)")
		c.Flags().StringVar(&runVars, "vars", "", "YAML mapping of variables for when: guards (overrides INPUT_VARS)")
		c.Flags().StringVar(&runRunnerOS, "runner-os", "", "Runner OS label (overrides INPUT_RUNNER_OS)")
	}
	runCmd.Flags().StringVar(&runOutputFile, "results-output-file", "", "Workspace-relative path to save the results JSON")
	runCmd.Flags().BoolVar(&runNoDisplay, "no-display", false, "Suppress the formatted results display")
	planCmd.Flags().BoolVar(&planShowMap, "show-map", false, "Also print the id-to-index correlation map to stderr")

	schemaCmd.AddCommand(schemaExportCmd)

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(schemaCmd)
	rootCmd.AddCommand(versionCmd)
}
