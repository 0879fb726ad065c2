// Package eventbus fans execution events out to external consumers over a
// message transport. The engine itself neither retries nor persists events;
// anything beyond in-process delivery is this layer's concern.
package eventbus

import (
	"context"

	"github.com/joeleaver/flowgrid/pkg/events"
)

type EventPublisher interface {
	Publish(ctx context.Context, key string, event events.Event) error
}

type EventSubscriber interface {
	Handle(eventType events.EventType, handler EventHandler) error
	Subscribe(ctx context.Context) error
}

type EventHandler func(ctx context.Context, event any) error

type EventBus interface {
	EventPublisher
	EventSubscriber
	Close() error
	GenerateID() string
}
