package flow

import (
	"log/slog"

	"github.com/joeleaver/flowgrid/pkg/events"
	"github.com/joeleaver/flowgrid/pkg/protocol"
)

// Emitter delivers events to the registered sinks, synchronously and best
// effort. A panicking sink is logged and discarded; it never propagates back
// into the engine.
type Emitter struct {
	flowID    string
	requestID string
	sinks     []protocol.EventSink
	logger    *slog.Logger
}

func NewEmitter(flowID, requestID string, sinks []protocol.EventSink, logger *slog.Logger) *Emitter {
	if logger == nil {
		logger = slog.Default()
	}

	return &Emitter{
		flowID:    flowID,
		requestID: requestID,
		sinks:     sinks,
		logger:    logger.With("module", "emitter"),
	}
}

// Emit delivers an event to every sink.
func (em *Emitter) Emit(event events.Event) {
	for _, sink := range em.sinks {
		em.deliver(sink, event)
	}
}

func (em *Emitter) deliver(sink protocol.EventSink, event events.Event) {
	defer func() {
		if r := recover(); r != nil {
			em.logger.Warn("Event sink panicked", "event_type", event.GetType(), "panic", r)
		}
	}()

	sink.Emit(event)
}

// NodeEvent builds a node-tagged event base for this run.
func (em *Emitter) NodeEvent(eventType events.EventType, nodeID, nodeExecutionID string) events.NodeEvent {
	return events.NewNodeEvent(eventType, em.flowID, em.requestID, nodeID, nodeExecutionID)
}
