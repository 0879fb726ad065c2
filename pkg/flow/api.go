package flow

import (
	"context"
	"fmt"
	"time"

	"github.com/joeleaver/flowgrid/pkg/contexts"
	"github.com/joeleaver/flowgrid/pkg/events"
	"github.com/joeleaver/flowgrid/pkg/graph"
	"github.com/joeleaver/flowgrid/pkg/models"
)

// nodeAPI is the per-invocation capability surface handed to node functions.
type nodeAPI struct {
	executor   *Executor
	nodeID     string
	nodeExecID string
}

// Pull resolves one input on demand: a live pushed value wins; otherwise the
// sole producing edge is required, an in-flight producer is awaited (never
// re-run), and an idle producer is executed with isPull=true, seeded with
// whatever was already pending for it.
func (a *nodeAPI) Pull(ctx context.Context, input string) (any, error) {
	name := models.CanonicalizePort(input)
	e := a.executor

	e.mu.Lock()

	if live, ok := e.live[a.nodeID]; ok {
		if v, ok := live[name]; ok {
			e.mu.Unlock()

			return v, nil
		}
	}

	producers := e.graph.IncomingByPort(a.nodeID, name)
	if len(producers) != 1 {
		e.mu.Unlock()

		return nil, graph.NewConfigurationError(
			"input %q of node %q has %d producing edges; pull requires exactly one",
			name, a.nodeID, len(producers),
		)
	}

	edge := producers[0]

	if run, ok := e.inflight[edge.Source]; ok {
		e.mu.Unlock()

		result, err := e.await(ctx, run)
		if err != nil {
			return nil, fmt.Errorf("pull %q from node %s: %w", name, edge.Source, err)
		}

		v, _ := result.Output(edge.SourcePort)

		return v, nil
	}

	seed := e.pending[edge.Source]
	delete(e.pending, edge.Source)
	e.mu.Unlock()

	result, err := e.Execute(ctx, edge.Source, seed, a.nodeID, true)
	if err != nil {
		return nil, fmt.Errorf("pull %q from node %s: %w", name, edge.Source, err)
	}

	// An output absent from the producer's result resolves to nil, not an
	// error.
	v, _ := result.Output(edge.SourcePort)

	return v, nil
}

// Has reports whether an input is live already, or unambiguously pullable.
func (a *nodeAPI) Has(input string) bool {
	name := models.CanonicalizePort(input)
	e := a.executor

	e.mu.Lock()
	defer e.mu.Unlock()

	if live, ok := e.live[a.nodeID]; ok {
		if _, ok := live[name]; ok {
			return true
		}
	}

	return len(e.graph.IncomingByPort(a.nodeID, name)) == 1
}

// WaitForInput suspends this node on the gate and records the paused marker.
func (a *nodeAPI) WaitForInput(ctx context.Context) (any, error) {
	e := a.executor

	e.emitter.Emit(events.ExecutionPaused{
		NodeEvent: e.emitter.NodeEvent(events.ExecutionPausedEvent, a.nodeID, a.nodeExecID),
	})

	value, err := e.gate.WaitForInput(ctx, a.nodeID)

	if err == nil && !e.gate.Cancelled() {
		e.emitter.Emit(events.ExecutionResumed{
			NodeEvent: e.emitter.NodeEvent(events.ExecutionResumedEvent, a.nodeID, a.nodeExecID),
		})
	}

	return value, err
}

func (a *nodeAPI) Contexts() *contexts.Manager {
	return a.executor.contexts
}

func (a *nodeAPI) Check() error {
	return a.executor.gate.Check()
}

func (a *nodeAPI) NodeExecutionID() string {
	return a.nodeExecID
}

func (a *nodeAPI) EmitContent(content string) {
	e := a.executor
	e.emitter.Emit(events.ContentChunk{
		NodeEvent: e.emitter.NodeEvent(events.ContentChunkEvent, a.nodeID, a.nodeExecID),
		Content:   content,
	})
}

func (a *nodeAPI) EmitToolStarted(tool string) {
	e := a.executor
	e.emitter.Emit(events.ToolCallStarted{
		NodeEvent: e.emitter.NodeEvent(events.ToolCallStartedEvent, a.nodeID, a.nodeExecID),
		Tool:      tool,
	})
}

func (a *nodeAPI) EmitToolFinished(tool string, duration time.Duration) {
	e := a.executor
	e.emitter.Emit(events.ToolCallFinished{
		NodeEvent:  e.emitter.NodeEvent(events.ToolCallFinishedEvent, a.nodeID, a.nodeExecID),
		Tool:       tool,
		DurationMs: duration.Milliseconds(),
	})
}

func (a *nodeAPI) EmitToolFailed(tool string, err error) {
	e := a.executor
	e.emitter.Emit(events.ToolCallFailed{
		NodeEvent: e.emitter.NodeEvent(events.ToolCallFailedEvent, a.nodeID, a.nodeExecID),
		Tool:      tool,
		Error:     err.Error(),
	})
}

func (a *nodeAPI) EmitUsage(provider, model string, promptTokens, completionTokens int) {
	e := a.executor
	e.emitter.Emit(events.UsageReported{
		NodeEvent:        e.emitter.NodeEvent(events.UsageReportedEvent, a.nodeID, a.nodeExecID),
		Provider:         provider,
		Model:            model,
		PromptTokens:     promptTokens,
		CompletionTokens: completionTokens,
	})
}

func (a *nodeAPI) EmitRateLimited(provider string, retryAfter time.Duration) {
	e := a.executor
	e.emitter.Emit(events.RateLimited{
		NodeEvent:    e.emitter.NodeEvent(events.RateLimitedEvent, a.nodeID, a.nodeExecID),
		Provider:     provider,
		RetryAfterMs: retryAfter.Milliseconds(),
	})
}
