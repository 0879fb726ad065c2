// Package main provides the one-shot flow runner: load a flow, execute it,
// stream events to the log, exit when every branch settles.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/google/uuid"
	cli "github.com/urfave/cli/v3"

	"github.com/joeleaver/flowgrid/pkg/cmd"
	"github.com/joeleaver/flowgrid/pkg/config"
	"github.com/joeleaver/flowgrid/pkg/contexts"
	"github.com/joeleaver/flowgrid/pkg/eventbus"
	"github.com/joeleaver/flowgrid/pkg/events"
	"github.com/joeleaver/flowgrid/pkg/flow"
	"github.com/joeleaver/flowgrid/pkg/log"
	"github.com/joeleaver/flowgrid/pkg/models"
	"github.com/joeleaver/flowgrid/pkg/protocol"
)

func main() {
	logger := log.WithModule("run")

	command := &cli.Command{
		Name:                  "flowgrid-run",
		Usage:                 "Execute a flow definition once",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "flow",
				Aliases:  []string{"f"},
				Usage:    "Path to the flow definition JSON file",
				Required: true,
				Sources:  cli.EnvVars("FLOW_PATH"),
			},
			&cli.StringFlag{
				Name:    "trigger-data",
				Usage:   "JSON object seeded on the entry node's data port",
				Sources: cli.EnvVars("TRIGGER_DATA"),
			},
			&cli.StringFlag{
				Name:    "database-url",
				Usage:   "Session store URL (file path, postgres:// or redis://)",
				Value:   "./data/sessions",
				Sources: cli.EnvVars("DATABASE_URL"),
			},
			&cli.StringFlag{
				Name:    "config-overrides",
				Usage:   "Path to a JSON file with live node config overrides",
				Sources: cli.EnvVars("CONFIG_OVERRIDES"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"))

			return run(ctx, command, logger)
		},
	}

	if err := command.Run(context.Background(), os.Args); err != nil {
		logger.Error("Run failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, command *cli.Command, logger *slog.Logger) error {
	flowDef, err := models.LoadFlow(command.String("flow"))
	if err != nil {
		return err
	}

	var triggerData map[string]any
	if raw := command.String("trigger-data"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &triggerData); err != nil {
			return fmt.Errorf("invalid trigger data: %w", err)
		}
	}

	reg := cmd.NewRegistry(logger)

	store, err := cmd.NewSessionStore(ctx, logger, command.String("database-url"))
	if err != nil {
		return err
	}

	defer func() {
		if err := store.Close(ctx); err != nil {
			logger.ErrorContext(ctx, "Failed to close session store", "error", err)
		}
	}()

	bus := cmd.NewEventBus("gochannel", logger)
	defer func() {
		if err := bus.Close(); err != nil {
			logger.ErrorContext(ctx, "Failed to close event bus", "error", err)
		}
	}()

	var configs protocol.ConfigSource = config.NewStaticSource(flowDef)

	if overridePath := command.String("config-overrides"); overridePath != "" {
		fileSource, err := config.NewFileSource(configs, overridePath, logger)
		if err != nil {
			return err
		}

		defer func() {
			if err := fileSource.Close(); err != nil {
				logger.ErrorContext(ctx, "Failed to close config watcher", "error", err)
			}
		}()

		configs = fileSource
	}

	requestID := "run-" + uuid.New().String()[:8]

	executor, err := flow.NewExecutor(flowDef, reg, flow.Options{
		RequestID:      requestID,
		Configs:        configs,
		Sinks:          []protocol.EventSink{eventbus.NewBusSink(bus, requestID, logger)},
		ContextOptions: []contexts.Option{contexts.WithStore(store)},
		Logger:         logger,
	})
	if err != nil {
		return err
	}

	if err := store.Activate(ctx, requestID); err != nil {
		logger.WarnContext(ctx, "Failed to activate session", "request_id", requestID, "error", err)
	}

	runCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pauses, err := subscribeEvents(runCtx, bus, logger)
	if err != nil {
		return err
	}

	go func() {
		<-runCtx.Done()
		executor.Cancel()
	}()

	// Terminal runs answer user-input pauses from stdin.
	go promptLoop(runCtx, executor, pauses)

	return executor.Run(runCtx, triggerData)
}

// subscribeEvents registers the bus handlers and starts consuming. Lifecycle
// events go to the log; pauses are forwarded so the prompt loop can answer
// them.
func subscribeEvents(ctx context.Context, bus eventbus.EventBus, logger *slog.Logger) (<-chan string, error) {
	logEvent := func(ctx context.Context, event any) error {
		if typed, ok := event.(events.Event); ok {
			logger.InfoContext(ctx, "Execution event", "event_type", typed.GetType())
		}

		return nil
	}

	for _, eventType := range []events.EventType{
		events.ExecutionStartedEvent,
		events.ExecutionFinishedEvent,
		events.ExecutionFailedEvent,
		events.ExecutionCancelledEvent,
		events.NodeStartedEvent,
		events.NodeFinishedEvent,
		events.NodeFailedEvent,
	} {
		if err := bus.Handle(eventType, logEvent); err != nil {
			return nil, err
		}
	}

	pauses := make(chan string, 1)

	err := bus.Handle(events.ExecutionPausedEvent, func(_ context.Context, event any) error {
		if paused, ok := event.(*events.ExecutionPaused); ok {
			select {
			case pauses <- paused.NodeID:
			default:
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	go func() {
		if err := bus.Subscribe(ctx); err != nil {
			logger.ErrorContext(ctx, "Event subscription ended", "error", err)
		}
	}()

	return pauses, nil
}

// promptLoop reads a line from stdin whenever the run pauses for user input
// and resumes the paused node with it.
func promptLoop(ctx context.Context, executor *flow.Executor, pauses <-chan string) {
	reader := bufio.NewReader(os.Stdin)

	for {
		select {
		case <-ctx.Done():
			return
		case nodeID := <-pauses:
			line, err := reader.ReadString('\n')
			if err != nil {
				executor.Gate().Resume(nodeID, nil)

				return
			}

			executor.Gate().Resume(nodeID, strings.TrimSpace(line))
		}
	}
}
