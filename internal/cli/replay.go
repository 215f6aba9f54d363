package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/stagehand"
	"github.com/aretw0/stagehand/internal/config"
	"github.com/aretw0/stagehand/internal/presentation/tui"
	"github.com/aretw0/stagehand/internal/todo"
	"github.com/aretw0/stagehand/pkg/domain"
	"github.com/aretw0/stagehand/pkg/observability"
	"github.com/aretw0/stagehand/pkg/session"
	"github.com/muesli/termenv"
	"github.com/prometheus/client_golang/prometheus"
)

// ReplayOptions contains the configuration for the replay command.
type ReplayOptions struct {
	// Session overrides both the script and the configured session key.
	Session string
	Debug   bool
	// Fresh deletes the session checkpoint before replaying.
	Fresh bool
	// Trace receives one line per step plus its output diff. Nil disables tracing.
	Trace io.Writer
}

// ReplayResult is the outcome of a replay.
type ReplayResult struct {
	Session string
	Output  domain.Output[todo.Todo]
	Metrics []observability.Sample
}

// Replay runs script through a session of the todo engine, checkpointing
// confirmed state to the configured backend after every commit.
func Replay(ctx context.Context, cfg config.Config, script *Script, opts ReplayOptions) (*ReplayResult, error) {
	logger, err := createLogger(cfg.LogLevel, opts.Debug)
	if err != nil {
		return nil, err
	}

	actions, err := script.Actions()
	if err != nil {
		return nil, err
	}

	backend, err := OpenBackend(cfg.Checkpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to open checkpoint backend: %w", err)
	}
	defer func() {
		if err := backend.Close(); err != nil {
			logger.Warn("Failed to close checkpoint backend", "backend", backend.Name, "err", err)
		}
	}()

	reg := prometheus.NewRegistry()
	metrics, err := observability.NewMetrics(reg)
	if err != nil {
		return nil, err
	}

	engineOpts := []stagehand.Option{
		stagehand.WithLogger(logger),
		stagehand.WithLifecycleHooks(metrics.Hooks()),
	}
	if opts.Debug {
		engineOpts = append(engineOpts, stagehand.WithLifecycleHooks(createDebugHooks(logger)))
	}
	engine, err := todo.NewEngine(script.Entries(), engineOpts...)
	if err != nil {
		return nil, fmt.Errorf("error initializing engine: %w", err)
	}

	managerOpts := []session.Option{
		session.WithStore(backend.Store),
		session.WithLogger(logger),
	}
	if backend.Locker != nil {
		managerOpts = append(managerOpts, session.WithLocker(backend.Locker))
	}
	manager := session.NewManager[todo.Todo](engine, managerOpts...)

	sessionID := firstNonEmpty(opts.Session, script.Session, cfg.Session)
	if opts.Fresh {
		if err := backend.Store.Delete(ctx, sessionID); err != nil {
			return nil, fmt.Errorf("failed to reset session %s: %w", sessionID, err)
		}
	}

	out, err := manager.Open(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to open session: %w", err)
	}
	logger.Info("Session opened", "session_id", sessionID, "backend", backend.Name, "entries", len(out.State))

	out, err = replaySteps(ctx, manager, sessionID, actions, out, opts.Trace, logger)
	if err != nil {
		return nil, err
	}

	if err := manager.Close(ctx, sessionID); err != nil {
		return nil, fmt.Errorf("failed to close session: %w", err)
	}

	samples, err := observability.Summary(reg)
	if err != nil {
		return nil, err
	}
	return &ReplayResult{Session: sessionID, Output: out, Metrics: samples}, nil
}

// dispatcher is the session surface the step loop drives.
type dispatcher interface {
	Dispatch(ctx context.Context, id string, actions ...domain.Action) (domain.Output[todo.Todo], error)
}

// replaySteps dispatches actions one at a time starting from out.
// A failed checkpoint is logged and the replay continues, since the output
// still advanced. Any other error stops the replay.
func replaySteps(ctx context.Context, d dispatcher, sessionID string, actions []domain.Action, out domain.Output[todo.Todo], trace io.Writer, logger *slog.Logger) (domain.Output[todo.Todo], error) {
	for i, a := range actions {
		next, err := d.Dispatch(ctx, sessionID, a)
		if err != nil {
			if !errors.Is(err, domain.ErrCheckpointFailed) {
				return out, fmt.Errorf("step %d: %w", i+1, err)
			}
			logger.Error("Checkpoint failed", "session_id", sessionID, "step", i+1, "err", err)
		}
		if trace != nil {
			writeTrace(trace, i+1, a, out, next)
		}
		out = next
	}
	return out, nil
}

func writeTrace(w io.Writer, step int, a domain.Action, prev, next domain.Output[todo.Todo]) {
	status := "-"
	if p, ok := next.Pending(a.ID()); ok {
		status = tui.Badges(p.Transition, termenv.Ascii)
	}
	fmt.Fprintf(w, "%3d  %-22s %s  %s\n", step, a.Type(), a.ID(), status)

	if d := domain.Diff(prev, next); !d.IsEmpty() {
		data, _ := json.Marshal(d)
		fmt.Fprintf(w, "     %s\n", data)
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
