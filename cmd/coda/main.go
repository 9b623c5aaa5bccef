// Command coda runs the coding assistant from the terminal. The first
// argument names a capability or composite workflow; the payload comes from
// the remaining arguments or, when absent, from stdin. The result envelope is
// printed to stdout as JSON.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/XiaoConstantine/coda-go/pkg/assistant"
	"github.com/XiaoConstantine/coda-go/pkg/config"
	"github.com/XiaoConstantine/coda-go/pkg/core"
	"github.com/XiaoConstantine/coda-go/pkg/logging"
	"github.com/XiaoConstantine/coda-go/pkg/router"
)

// errRequestFailed marks a request whose failure envelope was already printed;
// main exits non-zero without printing it again.
var errRequestFailed = errors.New("request failed")

var (
	flagLanguage string
	flagError    string
	flagDetail   string
	flagConfig   string
	flagParallel bool
)

var rootCmd = &cobra.Command{
	Use:   "coda <capability> [payload]",
	Short: "Offline coding assistant: analyze, debug, generate, optimize, explain, and solve",
	Long: `coda routes a request to one of its processing units and prints the result
envelope as JSON. Capabilities: analysis, debug, generation, optimization,
explanation, dsa, plus the comprehensive_review composite.

The payload is taken from the arguments after the capability name, or read
from stdin when none are given.`,
	Example: `  echo 'def f(): pass' | coda analysis
  coda dsa "reverse a linked list"
  coda debug --error "KeyError: 'k' at line 2" < broken.py
  coda comprehensive_review --language java < Main.java`,
	Args:          cobra.ArbitraryArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	Version:       "0.1.0",
	RunE:          run,
}

func main() {
	rootCmd.PersistentFlags().StringVarP(&flagLanguage, "language", "l", "", "payload language (python, java, javascript, cpp, go)")
	rootCmd.PersistentFlags().StringVarP(&flagConfig, "config", "c", "", "path to a YAML config file")
	rootCmd.Flags().StringVar(&flagError, "error", "", "observed runtime error message (debug capability)")
	rootCmd.Flags().StringVar(&flagDetail, "detail", "", "explanation detail level (low, medium, high)")
	rootCmd.Flags().BoolVar(&flagParallel, "parallel", false, "run comprehensive_review steps concurrently")

	rootCmd.AddCommand(newCapabilitiesCommand(), newHistoryCommand(), newMetricsCommand())

	if err := rootCmd.Execute(); err != nil {
		// the failure envelope is already on stdout; deferred cleanup in run
		// has completed by the time we get here
		if !errors.Is(err, errRequestFailed) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return cmd.Help()
	}

	name := args[0]
	a, err := buildAssistant()
	if err != nil {
		return err
	}
	defer a.Close()

	if !knownCapability(a, name) {
		printResult(cmd.OutOrStdout(), core.Failure("Unknown command: "+name))
		return errRequestFailed
	}

	payload, err := readPayload(args[1:], cmd.InOrStdin())
	if err != nil {
		return err
	}

	req := core.NewRequest(core.Capability(name), payload, core.Language(flagLanguage))
	meta := map[string]interface{}{}
	if flagError != "" {
		meta["error_message"] = flagError
	}
	if flagDetail != "" {
		meta["detail_level"] = flagDetail
	}
	if len(meta) > 0 {
		req.Metadata = meta
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var result core.Result
	if flagParallel && name == string(router.ComprehensiveReview) {
		result = a.ParallelReview(ctx, payload, core.Language(flagLanguage))
	} else {
		result = a.Process(ctx, req)
	}
	printResult(cmd.OutOrStdout(), result)
	if !result.Success {
		return errRequestFailed
	}
	return nil
}

func buildAssistant() (*assistant.Assistant, error) {
	cfg := config.Default()
	if flagConfig != "" {
		loaded, err := config.Load(flagConfig)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	outputs, err := cfg.LoggingOutputs()
	if err != nil {
		return nil, err
	}
	logging.SetLogger(logging.NewLogger(logging.Config{
		Severity: logging.ParseSeverity(cfg.Logging.Level),
		Outputs:  outputs,
	}))

	opts, err := cfg.AssistantOptions()
	if err != nil {
		return nil, err
	}
	return assistant.New(opts...)
}

func knownCapability(a *assistant.Assistant, name string) bool {
	for _, c := range a.Capabilities() {
		if c.String() == name {
			return true
		}
	}
	for _, c := range a.Composites() {
		if string(c) == name {
			return true
		}
	}
	return false
}

func readPayload(args []string, stdin io.Reader) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func printResult(w io.Writer, result core.Result) {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "cannot encode result: %v\n", err)
		return
	}
	fmt.Fprintln(w, string(data))
}

func newCapabilitiesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "capabilities",
		Short: "List registered capabilities and composite workflows",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildAssistant()
			if err != nil {
				return err
			}
			defer a.Close()

			out := map[string]interface{}{
				"capabilities": a.Capabilities(),
				"composites":   a.Composites(),
			}
			data, err := json.MarshalIndent(out, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}
}

func newHistoryCommand() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show the most recent exchanges recorded in memory",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildAssistant()
			if err != nil {
				return err
			}
			defer a.Close()

			entries, err := a.History(limit)
			if err != nil {
				return err
			}
			data, err := json.MarshalIndent(entries, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "number of entries to show")
	return cmd
}

func newMetricsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "metrics",
		Short: "Show request counters for this process",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildAssistant()
			if err != nil {
				return err
			}
			defer a.Close()

			data, err := json.MarshalIndent(a.Metrics(), "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}
}
