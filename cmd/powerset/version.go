package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/powerset"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of powerset",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "powerset version %s\n", strings.TrimSpace(powerset.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
