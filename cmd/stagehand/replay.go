package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/aretw0/stagehand/internal/cli"
	"github.com/aretw0/stagehand/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var replayCmd = &cobra.Command{
	Use:   "replay <script>",
	Short: "Replay a script of todo transitions",
	Long: `Replays a YAML or JSON script of stage/commit/fail/stash steps through a session,
then prints the confirmed state and the pending log.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		script, err := cli.LoadScript(args[0])
		if err != nil {
			return err
		}

		debug, _ := cmd.Flags().GetBool("debug")
		sessionID, _ := cmd.Flags().GetString("session")
		fresh, _ := cmd.Flags().GetBool("fresh")
		trace, _ := cmd.Flags().GetBool("trace")
		jsonMode, _ := cmd.Flags().GetBool("json")
		dump, _ := cmd.Flags().GetBool("dump")
		showMetrics, _ := cmd.Flags().GetBool("metrics")

		if jsonMode && dump {
			return fmt.Errorf("--json and --dump cannot be used together")
		}

		format := cli.FormatText
		interactive := tui.IsTerminal(os.Stdout)
		switch {
		case jsonMode:
			format = cli.FormatJSON
		case dump:
			format = cli.FormatDump
		case interactive:
			format = cli.FormatMarkdown
		}

		if format == cli.FormatMarkdown {
			tui.PrintBanner(os.Stdout)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		opts := cli.ReplayOptions{
			Session: sessionID,
			Debug:   debug,
			Fresh:   fresh,
		}
		if trace {
			opts.Trace = os.Stderr
		}

		res, err := cli.Replay(ctx, cfg, script, opts)
		if err != nil {
			return err
		}

		if err := cli.WriteResult(os.Stdout, res, format); err != nil {
			return err
		}
		if showMetrics {
			cli.WriteMetrics(os.Stderr, res)
		}
		if format != cli.FormatJSON && format != cli.FormatDump {
			cli.PrintSystemMessage(os.Stdout, "Session '%s' checkpointed to %s.", res.Session, cfg.Checkpoint.Backend)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(replayCmd)

	replayCmd.Flags().String("session", "", "Session key (overrides the script and config)")
	replayCmd.Flags().Bool("fresh", false, "Delete the session checkpoint before replaying")
	replayCmd.Flags().Bool("trace", false, "Print each step and its output diff to stderr")
	replayCmd.Flags().Bool("json", false, "Print the result as JSON")
	replayCmd.Flags().Bool("dump", false, "Print the result as a Go value dump")
	replayCmd.Flags().Bool("metrics", false, "Print transition metrics to stderr")
}
