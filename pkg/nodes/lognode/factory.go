package lognode

import (
	"context"

	"github.com/joeleaver/flowgrid/pkg/protocol"
)

// LogNodeFactory creates LogNode instances.
type LogNodeFactory struct{}

func (f *LogNodeFactory) Create(_ context.Context, id string, config map[string]any) (protocol.NodeFunction, error) {
	return NewLogNode(id, config)
}

func (f *LogNodeFactory) ID() string {
	return "log"
}

func (f *LogNodeFactory) Name() string {
	return "Log"
}

func (f *LogNodeFactory) Description() string {
	return "Logs the incoming data and passes it through unchanged"
}

func (f *LogNodeFactory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"level": map[string]any{
				"type":        "string",
				"enum":        []string{"debug", "info", "warn", "error"},
				"default":     "info",
				"description": "Log level to record the data at",
			},
			"message": map[string]any{
				"type":        "string",
				"description": "Message to log alongside the data",
			},
		},
	}
}

func NewLogNodeFactory() protocol.NodeFactory {
	return &LogNodeFactory{}
}
