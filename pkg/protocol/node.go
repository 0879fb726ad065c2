// Package protocol defines the interfaces and contracts between the engine
// and its collaborators.
package protocol

import (
	"context"
	"time"

	"github.com/joeleaver/flowgrid/pkg/contexts"
	"github.com/joeleaver/flowgrid/pkg/models"
)

// NodeInput carries everything a node function receives for one invocation.
type NodeInput struct {
	// Context is the conversation state pushed on the context port, if any.
	Context *models.ExecutionContext

	// Data is the value pushed on the data port, if any.
	Data any

	// Inputs is the live pushed-input map at start time, keyed by canonical
	// port name.
	Inputs map[string]any

	// Config is the node's configuration, fetched fresh for this invocation.
	Config map[string]any
}

// NodeAPI is the engine capability surface handed to a running node. Node
// functions are autonomous: they decide whether to pull missing inputs,
// suspend for external input, or report sub-events.
type NodeAPI interface {
	// Pull triggers or awaits the sole producer of an input and returns the
	// requested value. Zero or multiple producers for the name is a
	// configuration error; an absent output resolves to nil.
	Pull(ctx context.Context, input string) (any, error)

	// Has reports whether an input is already available or can be pulled
	// unambiguously. False means "wait for a push", never an error.
	Has(input string) bool

	// WaitForInput suspends indefinitely until external input arrives or the
	// run is cancelled, in which case it resolves with nil.
	WaitForInput(ctx context.Context) (any, error)

	// Contexts exposes explicit create/release of isolated conversation
	// contexts.
	Contexts() *contexts.Manager

	// Check returns a cancellation error once the run has been cancelled.
	// Long-running node logic is expected to call it between steps.
	Check() error

	// NodeExecutionID identifies this specific invocation.
	NodeExecutionID() string

	// Node-raised sub-events, delivered on the run's event stream.
	EmitContent(content string)
	EmitToolStarted(tool string)
	EmitToolFinished(tool string, duration time.Duration)
	EmitToolFailed(tool string, err error)
	EmitUsage(provider, model string, promptTokens, completionTokens int)
	EmitRateLimited(provider string, retryAfter time.Duration)
}

// NodeFunction is a runnable node. Implementations are fully autonomous; the
// engine only dictates the input/output contract and the reserved
// context/data/tools ports.
type NodeFunction interface {
	// ID returns the node instance ID.
	ID() string

	// Type returns the node type.
	Type() string

	// Run executes the node. A returned error or a NodeStatusError result
	// halts this branch only.
	Run(ctx context.Context, api NodeAPI, in NodeInput) (models.NodeResult, error)
}

// NodeFactory creates node function instances and provides metadata about
// the node type.
type NodeFactory interface {
	// Create creates a new node instance with the given configuration.
	Create(ctx context.Context, id string, config map[string]any) (NodeFunction, error)

	// ID returns the unique identifier for this node type.
	ID() string

	// Name returns the human-readable name for this node type.
	Name() string

	// Description returns a description of what this node does.
	Description() string

	// Schema returns the JSON schema for configuring this node.
	Schema() map[string]any
}
