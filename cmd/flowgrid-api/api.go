// Package main provides the Flowgrid API server implementation.
package main

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/google/uuid"

	"github.com/joeleaver/flowgrid/pkg/contexts"
	"github.com/joeleaver/flowgrid/pkg/eventbus"
	"github.com/joeleaver/flowgrid/pkg/flow"
	"github.com/joeleaver/flowgrid/pkg/models"
	"github.com/joeleaver/flowgrid/pkg/persistence"
	"github.com/joeleaver/flowgrid/pkg/protocol"
	"github.com/joeleaver/flowgrid/pkg/registry"
	"github.com/joeleaver/flowgrid/pkg/web"
)

type API struct {
	logger   *slog.Logger
	flowDef  *models.Flow
	registry *registry.Registry
	store    persistence.SessionStore
	bus      eventbus.EventBus
	configs  protocol.ConfigSource
	runs     *flow.Manager
	validate *validator.Validate
}

func NewAPI(
	logger *slog.Logger,
	flowDef *models.Flow,
	reg *registry.Registry,
	store persistence.SessionStore,
	bus eventbus.EventBus,
	configs protocol.ConfigSource,
) *API {
	return &API{
		logger:   logger,
		flowDef:  flowDef,
		registry: reg,
		store:    store,
		bus:      bus,
		configs:  configs,
		runs:     flow.NewManager(),
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// startExecution builds an executor for a trigger payload, registers it with
// the run manager and launches it. The HTTP request context is not used for
// the run itself; runs outlive the request that started them.
func (a *API) startExecution(ctx context.Context, triggerData map[string]any) (*flow.Executor, error) {
	requestID := "run-" + uuid.New().String()[:8]

	executor, err := flow.NewExecutor(a.flowDef, a.registry, flow.Options{
		RequestID:      requestID,
		Configs:        a.configs,
		Sinks:          []protocol.EventSink{eventbus.NewBusSink(a.bus, requestID, a.logger)},
		ContextOptions: []contexts.Option{contexts.WithStore(a.store)},
		Logger:         a.logger,
	})
	if err != nil {
		return nil, err
	}

	if err := a.store.Activate(ctx, requestID); err != nil {
		a.logger.WarnContext(ctx, "Failed to activate session", "request_id", requestID, "error", err)
	}

	a.runs.Add(executor)

	go func() {
		if err := executor.Run(context.Background(), triggerData); err != nil {
			a.logger.Error("Execution failed", "request_id", requestID, "error", err)
		}
	}()

	return executor, nil
}

func (a *API) App() *fiber.App {
	handlers := web.NewAPIHandlers(a.runs, a.startExecution, a.validate, a.logger)

	app := fiber.New()
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker())

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("Flowgrid API")
	})

	e := app.Group("/executions")
	e.Post("/", handlers.StartExecution)
	e.Get("/:id", handlers.GetExecution)
	e.Post("/:id/input", handlers.SubmitInput)
	e.Post("/:id/cancel", handlers.CancelExecution)

	return app
}

func (a *API) Start(port int) error {
	app := a.App()

	return app.Listen(":" + strconv.Itoa(port))
}
