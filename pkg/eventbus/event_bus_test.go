package eventbus

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joeleaver/flowgrid/pkg/events"
)

func TestPublishSubscribeRoundTrip(t *testing.T) {
	bus := NewTestBus(watermill.NopLogger{})

	defer func() { _ = bus.Close() }()

	var (
		mu       sync.Mutex
		received []*events.NodeStarted
	)

	err := bus.Handle(events.NodeStartedEvent, func(_ context.Context, event any) error {
		started, ok := event.(*events.NodeStarted)
		if !ok {
			t.Errorf("unexpected event payload type %T", event)

			return nil
		}

		mu.Lock()
		received = append(received, started)
		mu.Unlock()

		return nil
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, bus.Subscribe(ctx))

	event := events.NodeStarted{
		NodeEvent: events.NewNodeEvent(events.NodeStartedEvent, "flow-1", "run-1", "node-1", "nexec-1"),
		NodeType:  "log",
	}

	require.NoError(t, bus.Publish(ctx, "run-1", event))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()

		return len(received) == 1
	}, 2*time.Second, 5*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()

	assert.Equal(t, "node-1", received[0].NodeID)
	assert.Equal(t, "run-1", received[0].RequestID)
	assert.Equal(t, "log", received[0].NodeType)
}

func TestUnhandledEventTypesAreAcked(t *testing.T) {
	bus := NewTestBus(watermill.NopLogger{})

	defer func() { _ = bus.Close() }()

	handled := make(chan struct{}, 1)

	err := bus.Handle(events.ExecutionFinishedEvent, func(_ context.Context, _ any) error {
		handled <- struct{}{}

		return nil
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, bus.Subscribe(ctx))

	// No handler registered for this type; it is dropped, not stuck.
	started := events.ExecutionStarted{
		BaseEvent: events.NewBaseEvent(events.ExecutionStartedEvent, "flow-1", "run-1"),
	}
	require.NoError(t, bus.Publish(ctx, "run-1", started))

	finished := events.ExecutionFinished{
		BaseEvent: events.NewBaseEvent(events.ExecutionFinishedEvent, "flow-1", "run-1"),
	}
	require.NoError(t, bus.Publish(ctx, "run-1", finished))

	select {
	case <-handled:
	case <-time.After(2 * time.Second):
		t.Fatal("handled event never arrived")
	}
}

func TestGenerateID(t *testing.T) {
	bus := NewTestBus(watermill.NopLogger{})

	defer func() { _ = bus.Close() }()

	assert.NotEqual(t, bus.GenerateID(), bus.GenerateID())
}
