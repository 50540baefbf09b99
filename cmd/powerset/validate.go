package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/powerset/internal/validator"
)

var validateCmd = &cobra.Command{
	Use:   "validate <machine>",
	Short: "Lint a machine",
	Long: `Parses the machine and reports unreachable states, trap states,
ε transitions, nondeterministic choices and missing transitions.
--dfa fails unless the machine is already a complete DFA.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		requireDFA, _ := cmd.Flags().GetBool("dfa")

		m, err := readMachine(cmd, args[0])
		if err != nil {
			return err
		}
		report := validator.Lint(m)
		fmt.Fprintln(cmd.OutOrStdout(), report.String())
		if requireDFA && !report.IsDFA() {
			return fmt.Errorf("%s is not a complete DFA", args[0])
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().Bool("dfa", false, "Fail unless the machine is a complete DFA")
}
