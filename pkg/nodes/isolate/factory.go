package isolate

import (
	"context"

	"github.com/joeleaver/flowgrid/pkg/protocol"
)

// OpenNodeFactory creates OpenNode instances.
type OpenNodeFactory struct{}

func (f *OpenNodeFactory) Create(_ context.Context, id string, config map[string]any) (protocol.NodeFunction, error) {
	return NewOpenNode(id, config)
}

func (f *OpenNodeFactory) ID() string {
	return "context:isolate"
}

func (f *OpenNodeFactory) Name() string {
	return "Isolate Context"
}

func (f *OpenNodeFactory) Description() string {
	return "Opens an isolated conversation context for the downstream branch"
}

func (f *OpenNodeFactory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"provider": map[string]any{
				"type":        "string",
				"description": "Provider for the isolated context; defaults to the parent's",
			},
			"model": map[string]any{
				"type":        "string",
				"description": "Model for the isolated context; defaults to the parent's",
			},
			"system_instructions": map[string]any{
				"type":        "string",
				"description": "System instructions for the isolated context",
			},
		},
	}
}

func NewOpenNodeFactory() protocol.NodeFactory {
	return &OpenNodeFactory{}
}

// CloseNodeFactory creates CloseNode instances.
type CloseNodeFactory struct{}

func (f *CloseNodeFactory) Create(_ context.Context, id string, config map[string]any) (protocol.NodeFunction, error) {
	return NewCloseNode(id, config)
}

func (f *CloseNodeFactory) ID() string {
	return "context:release"
}

func (f *CloseNodeFactory) Name() string {
	return "Release Context"
}

func (f *CloseNodeFactory) Description() string {
	return "Releases an isolated conversation context and returns to the caller's"
}

func (f *CloseNodeFactory) Schema() map[string]any {
	return map[string]any{
		"type":       "object",
		"properties": map[string]any{},
	}
}

func NewCloseNodeFactory() protocol.NodeFactory {
	return &CloseNodeFactory{}
}
