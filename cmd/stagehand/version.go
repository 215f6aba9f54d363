package main

import (
	"fmt"

	"github.com/aretw0/stagehand"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of stagehand",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "stagehand version %s\n", stagehand.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
