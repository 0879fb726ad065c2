package cmd

import (
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"

	"github.com/joeleaver/flowgrid/pkg/eventbus"
)

// NewEventBus creates an event bus for the given provider. Only the
// in-process gochannel transport ships today; the watermill seam keeps other
// transports pluggable.
func NewEventBus(provider string, logger *slog.Logger) eventbus.EventBus {
	switch provider {
	case "", "gochannel":
		return eventbus.NewGoChannelBus(watermill.NewSlogLogger(logger))
	default:
		panic("Unsupported event bus provider: " + provider)
	}
}
