package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var acceptsCmd = &cobra.Command{
	Use:   "accepts <machine> <input>...",
	Short: "Run inputs through the machine and print the verdicts",
	Long: `Determinizes the machine if needed and reports, for every input, whether
it is accepted. With --trace the visited DFA states are printed as well.`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		trace, _ := cmd.Flags().GetBool("trace")

		engine, closeEngine, err := openEngine(cmd)
		if err != nil {
			return err
		}
		defer closeEngine()

		m, err := readMachine(cmd, args[0])
		if err != nil {
			return err
		}
		inputs := args[1:]
		out := cmd.OutOrStdout()

		if !trace {
			results, err := engine.Evaluate(cmd.Context(), m, inputs...)
			if err != nil {
				return err
			}
			for i, input := range inputs {
				fmt.Fprintf(out, "%s %q\n", verdict(results[i]), input)
			}
			return nil
		}

		traces, err := engine.TraceAll(cmd.Context(), m, inputs...)
		if err != nil {
			return err
		}
		for i, t := range traces {
			input := inputs[i]
			visited := make([]string, len(t.States))
			for i, s := range t.States {
				visited[i] = s.Encode()
			}
			fmt.Fprintf(out, "%s %q: %s\n", verdict(t.Accepted), input, strings.Join(visited, " -> "))
		}
		return nil
	},
}

func verdict(accepted bool) string {
	if accepted {
		return "accept"
	}
	return "reject"
}

func init() {
	rootCmd.AddCommand(acceptsCmd)
	acceptsCmd.Flags().Bool("trace", false, "Print the DFA states visited by each input")
}
