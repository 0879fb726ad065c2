package protocol

import (
	"context"

	"github.com/joeleaver/flowgrid/pkg/events"
	"github.com/joeleaver/flowgrid/pkg/models"
)

// NodeResolver resolves a node spec to a runnable node function. The registry
// is the standard implementation.
type NodeResolver interface {
	Resolve(ctx context.Context, spec *models.NodeSpec, config map[string]any) (NodeFunction, error)
}

// ConfigSource provides a node's current configuration, preferring a
// live-editable source over the static graph snapshot. The engine fetches
// the configuration fresh on every invocation so edits made between runs
// take effect.
type ConfigSource interface {
	ConfigFor(nodeID string) map[string]any
}

// EventSink receives every event the engine emits. Delivery is synchronous
// and best effort: the engine discards panics raised by a sink and never
// retries or persists events itself.
type EventSink interface {
	Emit(event events.Event)
}

// EventSinkFunc adapts a function to the EventSink interface.
type EventSinkFunc func(event events.Event)

func (f EventSinkFunc) Emit(event events.Event) {
	f(event)
}
