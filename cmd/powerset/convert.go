package main

import (
	"github.com/spf13/cobra"
)

var convertCmd = &cobra.Command{
	Use:   "convert <machine>",
	Short: "Convert a machine to a DFA by subset construction",
	Long: `Runs the subset construction. Every DFA state is named after the set of
NFA states it stands for; the empty set {} is the dead state. The text
output renumbers those sets, use -o yaml or -o json to keep the labels.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, closeEngine, err := openEngine(cmd)
		if err != nil {
			return err
		}
		defer closeEngine()

		m, err := readMachine(cmd, args[0])
		if err != nil {
			return err
		}
		d, err := engine.ToDFA(cmd.Context(), m)
		if err != nil {
			return err
		}
		return writeMachine(cmd, d)
	},
}

var pruneCmd = &cobra.Command{
	Use:   "prune <machine>",
	Short: "Remove the states unreachable from the initial state",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, closeEngine, err := openEngine(cmd)
		if err != nil {
			return err
		}
		defer closeEngine()

		m, err := readMachine(cmd, args[0])
		if err != nil {
			return err
		}
		pruned, err := engine.RemoveUnreachable(cmd.Context(), m)
		if err != nil {
			return err
		}
		return writeMachine(cmd, pruned)
	},
}

var canonicalCmd = &cobra.Command{
	Use:   "canonical <machine>",
	Short: "Renumber states in traversal order",
	Long: `Renumbers states 0, 1, 2, ... in depth-first discovery order from the
initial state, exploring ε first and then the alphabet in declaration
order. Two machines that differ only in numbering print identically.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, closeEngine, err := openEngine(cmd)
		if err != nil {
			return err
		}
		defer closeEngine()

		m, err := readMachine(cmd, args[0])
		if err != nil {
			return err
		}
		canonical, err := engine.Canonical(cmd.Context(), m)
		if err != nil {
			return err
		}
		return writeMachine(cmd, canonical)
	},
}

func init() {
	rootCmd.AddCommand(convertCmd)
	rootCmd.AddCommand(pruneCmd)
	rootCmd.AddCommand(canonicalCmd)
}
