package eventbus

import (
	"context"
	"log/slog"

	"github.com/joeleaver/flowgrid/pkg/events"
	"github.com/joeleaver/flowgrid/pkg/protocol"
)

// busSink adapts an EventBus to the engine's EventSink contract. Publish
// failures are logged and dropped; the engine never sees them.
type busSink struct {
	bus    EventBus
	key    string
	logger *slog.Logger
}

// NewBusSink returns an EventSink publishing every engine event on the bus,
// keyed by the run's request ID.
func NewBusSink(bus EventBus, key string, logger *slog.Logger) protocol.EventSink {
	if logger == nil {
		logger = slog.Default()
	}

	return &busSink{
		bus:    bus,
		key:    key,
		logger: logger.With("module", "eventbus_sink"),
	}
}

func (s *busSink) Emit(event events.Event) {
	if err := s.bus.Publish(context.Background(), s.key, event); err != nil {
		s.logger.Warn("Failed to publish execution event", "event_type", event.GetType(), "error", err)
	}
}
