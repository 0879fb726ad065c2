// Package flow implements the push/pull execution core: it runs node
// functions over the canonical graph, deduplicates concurrent triggers,
// coalesces partial inputs, and decides when a node is safe to start.
package flow

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/joeleaver/flowgrid/pkg/contexts"
	"github.com/joeleaver/flowgrid/pkg/events"
	"github.com/joeleaver/flowgrid/pkg/gate"
	"github.com/joeleaver/flowgrid/pkg/graph"
	"github.com/joeleaver/flowgrid/pkg/models"
	"github.com/joeleaver/flowgrid/pkg/protocol"
)

// inflightRun is a registered in-flight node invocation. Concurrent triggers
// (push and pull alike) await it instead of double-executing.
type inflightRun struct {
	nodeID string
	done   chan struct{}
	result models.NodeResult
	err    error
}

// Executor is the engine instance for one logical run. It may suspend
// indefinitely at a user-input point and is torn down on explicit
// cancellation or unrecoverable error.
//
// The reference design confines all state to a single logical thread; here
// node runs are real goroutines, so one mutex guards the in-flight table,
// the live input sets, and the pending-push buffers.
type Executor struct {
	requestID string
	flow      *models.Flow
	graph     *graph.Graph
	contexts  *contexts.Manager
	gate      *gate.Gate
	nodes     protocol.NodeResolver
	configs   protocol.ConfigSource
	emitter   *Emitter
	logger    *slog.Logger

	mu       sync.Mutex
	inflight map[string]*inflightRun
	live     map[string]map[string]any // live pushed inputs of running nodes
	pending  map[string]map[string]any // partial pushes for nodes not yet started
	wg       sync.WaitGroup
}

// Options configures an Executor.
type Options struct {
	// RequestID is the stable run/session ID the main context is keyed by.
	// Generated when empty.
	RequestID string

	// Seed is the initial main-context state.
	Seed *models.ExecutionContext

	// Configs overrides the configuration source. Defaults to the static
	// node configs from the flow definition.
	Configs protocol.ConfigSource

	// Sinks receive execution events.
	Sinks []protocol.EventSink

	// ContextOptions are passed through to the context manager (session
	// store, observer).
	ContextOptions []contexts.Option

	Logger *slog.Logger
}

// NewExecutor builds the graph, seeds the main context, and wires the gate.
func NewExecutor(flowDef *models.Flow, nodes protocol.NodeResolver, opts Options) (*Executor, error) {
	g, err := graph.Build(flowDef)
	if err != nil {
		return nil, err
	}

	requestID := opts.RequestID
	if requestID == "" {
		requestID = "run-" + uuid.New().String()[:8]
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	logger = logger.With("module", "flow", "flow_id", flowDef.ID, "request_id", requestID)

	configs := opts.Configs
	if configs == nil {
		configs = staticConfigs{flow: flowDef}
	}

	e := &Executor{
		requestID: requestID,
		flow:      flowDef,
		graph:     g,
		contexts:  contexts.NewManager(requestID, opts.Seed, logger, opts.ContextOptions...),
		gate:      gate.New(logger),
		nodes:     nodes,
		configs:   configs,
		emitter:   NewEmitter(flowDef.ID, requestID, opts.Sinks, logger),
		logger:    logger,
		inflight:  make(map[string]*inflightRun),
		live:      make(map[string]map[string]any),
		pending:   make(map[string]map[string]any),
	}

	// Best-effort flush of context state when the run is torn down.
	e.gate.OnCancel(func() {
		e.contexts.Flush(context.Background())
	})

	return e, nil
}

// RequestID returns the stable run ID other collaborators bind to.
func (e *Executor) RequestID() string {
	return e.requestID
}

// Contexts returns the run's context manager.
func (e *Executor) Contexts() *contexts.Manager {
	return e.contexts
}

// Gate returns the run's cancellation and user-input gate.
func (e *Executor) Gate() *gate.Gate {
	return e.gate
}

// Cancel requests a cooperative stop. Idempotent.
func (e *Executor) Cancel() {
	e.gate.Cancel()
}

// Run executes the flow from its entry node and blocks until every branch
// has settled. Cancellation is a benign stop, never an error.
func (e *Executor) Run(ctx context.Context, triggerData map[string]any) error {
	started := time.Now()

	startedEvent := events.ExecutionStarted{
		BaseEvent:   events.NewBaseEvent(events.ExecutionStartedEvent, e.flow.ID, e.requestID),
		EntryNodeID: e.graph.EntryID(),
		TriggerData: triggerData,
	}
	e.emitter.Emit(startedEvent)

	seed := make(map[string]any)
	if triggerData != nil {
		seed[models.PortData] = triggerData
	}

	_, err := e.Execute(ctx, e.graph.EntryID(), seed, "", false)

	e.wg.Wait()

	duration := time.Since(started).Milliseconds()

	if e.gate.Cancelled() || gate.IsCancellation(err) {
		e.emitter.Emit(events.ExecutionCancelled{
			BaseEvent:  events.NewBaseEvent(events.ExecutionCancelledEvent, e.flow.ID, e.requestID),
			DurationMs: duration,
		})

		return nil
	}

	if err != nil {
		e.emitter.Emit(events.ExecutionFailed{
			BaseEvent:  events.NewBaseEvent(events.ExecutionFailedEvent, e.flow.ID, e.requestID),
			NodeID:     e.graph.EntryID(),
			Error:      err.Error(),
			DurationMs: duration,
		})

		return err
	}

	e.emitter.Emit(events.ExecutionFinished{
		BaseEvent:  events.NewBaseEvent(events.ExecutionFinishedEvent, e.flow.ID, e.requestID),
		DurationMs: duration,
	})

	e.contexts.Flush(ctx)

	return nil
}

// Execute runs one node. Concurrent triggers for the same node reuse the
// registered in-flight run; pushed inputs from losers of that race merge into
// the winner's live input set. The live input set is discarded the moment the
// run settles. When isPull is true the caller consumes the return value
// directly and the push phase is skipped.
func (e *Executor) Execute(ctx context.Context, nodeID string, pushed map[string]any, callerID string, isPull bool) (models.NodeResult, error) {
	e.mu.Lock()

	if run, ok := e.inflight[nodeID]; ok {
		if len(pushed) > 0 {
			if live, ok := e.live[nodeID]; ok {
				maps.Copy(live, pushed)
			}
		}

		e.mu.Unlock()

		return e.await(ctx, run)
	}

	run := &inflightRun{nodeID: nodeID, done: make(chan struct{})}
	e.inflight[nodeID] = run

	if pushed == nil {
		pushed = make(map[string]any)
	}

	e.live[nodeID] = pushed
	e.mu.Unlock()

	result, err := e.runNode(ctx, nodeID, pushed, callerID, isPull)

	e.mu.Lock()
	run.result = result
	run.err = err
	delete(e.inflight, nodeID)
	delete(e.live, nodeID)
	e.mu.Unlock()
	close(run.done)

	if err == nil && !isPull {
		e.pushOutputs(ctx, nodeID, result)
	}

	return result, err
}

func (e *Executor) await(ctx context.Context, run *inflightRun) (models.NodeResult, error) {
	select {
	case <-run.done:
		return run.result, run.err
	case <-ctx.Done():
		return models.NodeResult{}, ctx.Err()
	}
}

func (e *Executor) runNode(ctx context.Context, nodeID string, pushed map[string]any, callerID string, isPull bool) (models.NodeResult, error) {
	if err := e.gate.Check(); err != nil {
		return models.NodeResult{}, err
	}

	spec, ok := e.graph.Node(nodeID)
	if !ok {
		return models.NodeResult{}, graph.NewConfigurationError("unknown node %q", nodeID)
	}

	// Fetched fresh per invocation so edits made between runs take effect.
	config := e.configs.ConfigFor(nodeID)

	fn, err := e.nodes.Resolve(ctx, spec, config)
	if err != nil {
		return models.NodeResult{}, fmt.Errorf("failed to resolve node %s (%s): %w", nodeID, spec.Type, err)
	}

	nodeExecID := "nexec-" + uuid.New().String()[:8]
	logger := e.logger.With("node_id", nodeID, "node_type", spec.Type, "node_execution_id", nodeExecID)

	e.emitter.Emit(events.NodeStarted{
		NodeEvent: e.emitter.NodeEvent(events.NodeStartedEvent, nodeID, nodeExecID),
		NodeType:  spec.Type,
		CallerID:  callerID,
		Pulled:    isPull,
	})

	started := time.Now()

	e.mu.Lock()
	snapshot := make(map[string]any, len(pushed))
	maps.Copy(snapshot, pushed)
	e.mu.Unlock()

	in := protocol.NodeInput{
		Inputs: snapshot,
		Config: config,
		Data:   snapshot[models.PortData],
	}
	if c, ok := snapshot[models.PortContext].(*models.ExecutionContext); ok {
		in.Context = c
	}

	api := &nodeAPI{executor: e, nodeID: nodeID, nodeExecID: nodeExecID}

	logger.DebugContext(ctx, "Running node", "caller_id", callerID, "pulled", isPull)

	result, err := fn.Run(ctx, api, in)
	duration := time.Since(started)

	if err == nil && result.Status == models.NodeStatusError {
		err = fmt.Errorf("node %s reported failure: %s", nodeID, result.Error)
	}

	if err != nil {
		if gate.IsCancellation(err) {
			logger.DebugContext(ctx, "Node run stopped by cancellation")

			return models.NodeResult{}, err
		}

		logger.ErrorContext(ctx, "Node run failed", "error", err, "duration", duration)
		e.emitter.Emit(events.NodeFailed{
			NodeEvent:  e.emitter.NodeEvent(events.NodeFailedEvent, nodeID, nodeExecID),
			NodeType:   spec.Type,
			Error:      err.Error(),
			DurationMs: duration.Milliseconds(),
		})

		return models.NodeResult{}, fmt.Errorf("node %s: %w", nodeID, err)
	}

	// Portal relays never mutate context; everything else commits the
	// returned context through the manager's main/isolated rules.
	if c, ok := result.Context(); ok && !spec.IsPortal() {
		e.contexts.Commit(ctx, c)
	}

	outputKeys := make([]string, 0, len(result.Outputs))
	for k := range result.Outputs {
		outputKeys = append(outputKeys, k)
	}

	sort.Strings(outputKeys)

	e.emitter.Emit(events.NodeFinished{
		NodeEvent:  e.emitter.NodeEvent(events.NodeFinishedEvent, nodeID, nodeExecID),
		NodeType:   spec.Type,
		OutputKeys: outputKeys,
		DurationMs: duration.Milliseconds(),
	})

	return result, nil
}

// staticConfigs serves node configuration straight from the flow definition.
type staticConfigs struct {
	flow *models.Flow
}

func (s staticConfigs) ConfigFor(nodeID string) map[string]any {
	if n, ok := s.flow.NodeByID(nodeID); ok && n.Config != nil {
		return n.Config
	}

	return map[string]any{}
}
