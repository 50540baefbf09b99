package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/powerset/internal/presentation/graph"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph <machine>",
	Short: "Export the machine as a Mermaid diagram",
	Long: `Outputs a Mermaid diagram (graph LR) of the machine. Accepting states are
drawn as double circles and the dead state is greyed out. --trace highlights
the states visited by an input and implies --dfa.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		toDFA, _ := cmd.Flags().GetBool("dfa")
		input, _ := cmd.Flags().GetString("trace")
		traced := cmd.Flags().Changed("trace")

		engine, closeEngine, err := openEngine(cmd)
		if err != nil {
			return err
		}
		defer closeEngine()

		m, err := readMachine(cmd, args[0])
		if err != nil {
			return err
		}

		var overlay *graph.GraphOverlay
		switch {
		case traced:
			d, err := engine.Determinize(cmd.Context(), m)
			if err != nil {
				return err
			}
			trace, err := engine.Trace(cmd.Context(), d, input)
			if err != nil {
				return err
			}
			m, overlay = d, graph.TraceOverlay(trace)
		case toDFA:
			d, err := engine.ToDFA(cmd.Context(), m)
			if err != nil {
				return err
			}
			m = d
		}

		fmt.Fprintln(cmd.OutOrStdout(), graph.GenerateMermaid(m, overlay))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().Bool("dfa", false, "Convert to a DFA before drawing")
	graphCmd.Flags().String("trace", "", "Highlight the run of this input")
}
