package main

import (
	"fmt"
	"os"

	"github.com/aretw0/stagehand/internal/config"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "stagehand",
	Short: "Stagehand replays optimistic transitions against confirmed state",
	Long: `Stagehand stages, commits, fails and stashes optimistic updates of a todo list,
keeping confirmed state apart from the pending log and checkpointing it between runs.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("config", "stagehand.yaml", "Config file (.yaml, .json or .toml)")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging to stderr")
}

func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	return config.Load(path)
}
