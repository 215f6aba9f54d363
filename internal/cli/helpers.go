package cli

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/stagehand/internal/logging"
	"github.com/aretw0/stagehand/pkg/domain"
)

// createLogger configures the application logger from the configured level.
// debug forces the debug level. Logs go to Stderr to keep Stdout for reports.
func createLogger(level string, debug bool) (*slog.Logger, error) {
	if debug {
		return logging.New(slog.LevelDebug), nil
	}
	lvl, err := logging.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	return logging.New(lvl), nil
}

// PrintSystemMessage prints a standardized system message.
func PrintSystemMessage(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, ">>> %s\n", fmt.Sprintf(format, args...))
}

func createDebugHooks(logger *slog.Logger) domain.LifecycleHooks {
	log := func(msg string) func(*domain.TransitionEvent) {
		return func(e *domain.TransitionEvent) {
			logger.Debug(msg,
				"kind", e.Kind.String(),
				"transition_id", e.TransitionID,
				"conflict", e.Conflict,
				"failed", e.Failed,
				"pending", e.Pending,
			)
		}
	}
	return domain.LifecycleHooks{
		OnStage:  log("Stage"),
		OnCommit: log("Commit"),
		OnFail:   log("Fail"),
		OnStash:  log("Stash"),
		OnIgnored: func(e *domain.TransitionEvent) {
			logger.Debug("Ignored", "kind", e.Kind.String(), "transition_id", e.TransitionID, "reason", string(e.Reason))
		},
	}
}
