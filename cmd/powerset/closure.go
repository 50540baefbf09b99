package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/aretw0/powerset/pkg/domain"
)

var closureCmd = &cobra.Command{
	Use:   "closure <machine> <state>...",
	Short: "Print the ε-closure of a set of states",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ids := make([]int, 0, len(args)-1)
		for _, arg := range args[1:] {
			id, err := strconv.Atoi(arg)
			if err != nil {
				return fmt.Errorf("state %q is not an integer", arg)
			}
			ids = append(ids, id)
		}

		engine, closeEngine, err := openEngine(cmd)
		if err != nil {
			return err
		}
		defer closeEngine()

		m, err := readMachine(cmd, args[0])
		if err != nil {
			return err
		}
		states, err := engine.EpsilonClosure(cmd.Context(), m, ids...)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), domain.Label(states))
		return nil
	},
}

var equalCmd = &cobra.Command{
	Use:   "equal <machine> <machine>",
	Short: "Report whether two machines differ only in state numbering",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, closeEngine, err := openEngine(cmd)
		if err != nil {
			return err
		}
		defer closeEngine()

		a, err := readMachine(cmd, args[0])
		if err != nil {
			return err
		}
		b, err := readMachine(cmd, args[1])
		if err != nil {
			return err
		}
		same, err := engine.Equal(cmd.Context(), a, b)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), same)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(closureCmd)
	rootCmd.AddCommand(equalCmd)
}
