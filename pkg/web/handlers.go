// Package web provides the HTTP surface over live flow executions: start a
// run, inspect its snapshot, deliver user input, cancel.
package web

import (
	"context"
	"log/slog"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"

	"github.com/joeleaver/flowgrid/pkg/flow"
)

// Starter creates and starts a new run for the given trigger data, returning
// the executor already registered with the run manager.
type Starter func(ctx context.Context, triggerData map[string]any) (*flow.Executor, error)

type APIHandlers struct {
	runs      *flow.Manager
	start     Starter
	validator *validator.Validate
	logger    *slog.Logger
}

func NewAPIHandlers(runs *flow.Manager, start Starter, validate *validator.Validate, logger *slog.Logger) *APIHandlers {
	if logger == nil {
		logger = slog.Default()
	}

	return &APIHandlers{
		runs:      runs,
		start:     start,
		validator: validate,
		logger:    logger.With("module", "web"),
	}
}

// StartExecution accepts a trigger payload and launches a run. The response
// carries the request ID used by every other endpoint.
func (h *APIHandlers) StartExecution(c fiber.Ctx) error {
	var req StartExecutionRequest
	if len(c.Body()) > 0 {
		if err := c.Bind().JSON(&req); err != nil {
			return badRequest(c, "Invalid request body: "+err.Error())
		}
	}

	executor, err := h.start(c.Context(), req.TriggerData)
	if err != nil {
		return internalError(c, err)
	}

	h.logger.Info("Execution started", "request_id", executor.RequestID())

	return c.Status(fiber.StatusAccepted).JSON(StartExecutionResponse{
		RequestID: executor.RequestID(),
		Status:    string(flow.StatusRunning),
	})
}

// GetExecution returns the live status snapshot for a run.
func (h *APIHandlers) GetExecution(c fiber.Ctx) error {
	executor, ok := h.runs.Get(c.Params("id"))
	if !ok {
		return notFound(c, "execution not found")
	}

	return c.JSON(executor.Snapshot())
}

// SubmitInput delivers a user-input value to a paused run. Without a node_id
// the value resolves whichever node is waiting.
func (h *APIHandlers) SubmitInput(c fiber.Ctx) error {
	executor, ok := h.runs.Get(c.Params("id"))
	if !ok {
		return notFound(c, "execution not found")
	}

	var req SubmitInputRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid request body: "+err.Error())
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	var delivered bool
	if req.NodeID != "" {
		delivered = executor.Gate().Resume(req.NodeID, req.Value)
	} else {
		delivered = executor.Gate().ResumeAny(req.Value)
	}

	if !delivered {
		return conflict(c, "no node is waiting for input")
	}

	return c.JSON(fiber.Map{"delivered": true})
}

// CancelExecution requests a cooperative stop. Cancellation is one way; the
// run never restarts.
func (h *APIHandlers) CancelExecution(c fiber.Ctx) error {
	executor, ok := h.runs.Get(c.Params("id"))
	if !ok {
		return notFound(c, "execution not found")
	}

	executor.Cancel()

	return c.Status(fiber.StatusAccepted).JSON(CancelExecutionResponse{
		RequestID: executor.RequestID(),
		Status:    string(flow.StatusStopped),
	})
}
