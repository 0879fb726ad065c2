package main

import (
	"context"
	"os"

	cli "github.com/urfave/cli/v3"

	"github.com/joeleaver/flowgrid/pkg/cmd"
	"github.com/joeleaver/flowgrid/pkg/config"
	"github.com/joeleaver/flowgrid/pkg/log"
	"github.com/joeleaver/flowgrid/pkg/models"
	"github.com/joeleaver/flowgrid/pkg/protocol"
)

const defaultPort = 9091

func main() {
	logger := log.WithModule("api")

	command := &cli.Command{
		Name:                  "flowgrid-api",
		Usage:                 "Serve flow executions over HTTP",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "flow",
				Aliases:  []string{"f"},
				Usage:    "Path to the flow definition JSON file",
				Required: true,
				Sources:  cli.EnvVars("FLOW_PATH"),
			},
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to run the API server on",
				Value:   defaultPort,
				Sources: cli.EnvVars("PORT"),
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
				Name:    "event-bus",
				Usage:   "Event bus provider",
				Value:   "gochannel",
				Sources: cli.EnvVars("EVENT_BUS"),
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

			logger.InfoContext(ctx, "Initializing Flowgrid API")

			flowDef, err := models.LoadFlow(command.String("flow"))
			if err != nil {
				return err
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

			bus := cmd.NewEventBus(command.String("event-bus"), logger)
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

			api := NewAPI(logger, flowDef, reg, store, bus, configs)

			return api.Start(command.Int("port"))
		},
	}

	if err := command.Run(context.Background(), os.Args); err != nil {
		panic(err)
	}
}
