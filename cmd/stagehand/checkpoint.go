package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/aretw0/stagehand/internal/cli"
	"github.com/spf13/cobra"
)

var checkpointCmd = &cobra.Command{
	Use:   "checkpoint",
	Short: "Manage stored checkpoints",
	Long:  `List, inspect, and remove confirmed-state checkpoints in the configured backend.`,
}

var checkpointLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List all checkpoints",
	Run: func(cmd *cobra.Command, args []string) {
		backend := getBackend(cmd)
		defer backend.Close()

		keys, err := backend.Store.List(cmd.Context())
		if err != nil {
			fmt.Printf("Error listing checkpoints: %v\n", err)
			os.Exit(1)
		}

		if len(keys) == 0 {
			fmt.Println("No checkpoints found.")
			return
		}

		fmt.Printf("Checkpoints (%s):\n", backend.Name)
		for _, k := range keys {
			fmt.Println("- " + k)
		}
	},
}

var checkpointInspectCmd = &cobra.Command{
	Use:   "inspect <session-id>",
	Short: "Inspect the confirmed state of a session",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		sessionID := args[0]
		backend := getBackend(cmd)
		defer backend.Close()

		cp, err := backend.Store.Load(cmd.Context(), sessionID)
		if err != nil {
			fmt.Printf("Error loading checkpoint '%s': %v\n", sessionID, err)
			os.Exit(1)
		}

		data, err := json.MarshalIndent(cp, "", "  ")
		if err != nil {
			fmt.Printf("Error marshaling checkpoint: %v\n", err)
			os.Exit(1)
		}

		fmt.Println(string(data))
	},
}

var checkpointRmCmd = &cobra.Command{
	Use:   "rm <session-id>...",
	Short: "Remove one or more checkpoints",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		backend := getBackend(cmd)
		defer backend.Close()
		hasError := false

		for _, sessionID := range args {
			if err := backend.Store.Delete(cmd.Context(), sessionID); err != nil {
				fmt.Printf("Error removing '%s': %v\n", sessionID, err)
				hasError = true
			} else {
				fmt.Printf("Removed checkpoint '%s'\n", sessionID)
			}
		}

		if hasError {
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(checkpointCmd)
	checkpointCmd.AddCommand(checkpointLsCmd)
	checkpointCmd.AddCommand(checkpointInspectCmd)
	checkpointCmd.AddCommand(checkpointRmCmd)
}

func getBackend(cmd *cobra.Command) *cli.Backend {
	cfg, err := loadConfig(cmd)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}
	backend, err := cli.OpenBackend(cfg.Checkpoint)
	if err != nil {
		fmt.Printf("Error opening checkpoint backend: %v\n", err)
		os.Exit(1)
	}
	return backend
}
