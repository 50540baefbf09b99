package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/aretw0/powerset"
	"github.com/aretw0/powerset/internal/cli"
	"github.com/aretw0/powerset/internal/config"
	"github.com/aretw0/powerset/internal/logging"
	"github.com/aretw0/powerset/pkg/automaton"
)

var rootCmd = &cobra.Command{
	Use:   "powerset",
	Short: "powerset converts nondeterministic automata into deterministic ones",
	Long: `powerset parses finite automata written as
  states/alphabet/transitions/initial/accepting
and converts them to DFAs by subset construction. It can also prune,
canonicalize, compare, lint, draw and store machines, and serve the same
operations over HTTP or MCP.

A machine argument is a file path, "-" for stdin, or an inline encoding.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "powerset.yaml", "Configuration file")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn or error (overrides config)")
	rootCmd.PersistentFlags().String("store", "", "Store backend: memory, redis, buntdb or loam (overrides config)")
	rootCmd.PersistentFlags().StringP("format", "f", cli.FormatAuto, "Input format: auto, text, yaml or json")
	rootCmd.PersistentFlags().StringP("output", "o", cli.FormatText, "Output format: text, yaml or json")
}

// loadConfig reads the configuration file and applies flag overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, nil, err
	}
	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel, _ = cmd.Flags().GetString("log-level")
	}
	if cmd.Flags().Changed("store") {
		cfg.Store.Backend, _ = cmd.Flags().GetString("store")
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	level, _ := logging.ParseLevel(cfg.LogLevel)
	return cfg, logging.New(level), nil
}

// openEngine builds the engine for cmd. Callers must invoke the returned CloseFunc.
func openEngine(cmd *cobra.Command, opts ...powerset.Option) (*powerset.Engine, cli.CloseFunc, error) {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	return cli.NewEngine(cfg, logger, opts...)
}

func readMachine(cmd *cobra.Command, arg string) (automaton.Machine, error) {
	format, _ := cmd.Flags().GetString("format")
	return cli.ReadMachine(arg, format)
}

func writeMachine(cmd *cobra.Command, m automaton.Machine) error {
	format, _ := cmd.Flags().GetString("output")
	return cli.WriteMachine(cmd.OutOrStdout(), m, format)
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
