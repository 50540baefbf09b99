package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/powerset/internal/presentation/tui"
)

var describeCmd = &cobra.Command{
	Use:   "describe <machine>",
	Short: "Print the machine in set notation",
	Long: `Prints the five components K, Σ, δ, s and A of the machine. On a terminal
the output is rendered as formatted markdown; --table prints the transition
relation as a table instead.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		asTable, _ := cmd.Flags().GetBool("table")

		m, err := readMachine(cmd, args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if asTable {
			return tui.WriteTable(out, m)
		}

		render := tui.PlainRenderer()
		if isTerminal(out) {
			if render, err = tui.NewRenderer(); err != nil {
				return err
			}
		}
		text, err := render(tui.Describe(m))
		if err != nil {
			return err
		}
		fmt.Fprint(out, text)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(describeCmd)
	describeCmd.Flags().Bool("table", false, "Print transitions as a From/Symbol/To table")
}
