package transform

import (
	"context"

	"github.com/joeleaver/flowgrid/pkg/protocol"
)

// TransformNodeFactory creates TransformNode instances.
type TransformNodeFactory struct{}

func (f *TransformNodeFactory) Create(_ context.Context, id string, config map[string]any) (protocol.NodeFunction, error) {
	return NewTransformNode(id, config)
}

func (f *TransformNodeFactory) ID() string {
	return "transform"
}

func (f *TransformNodeFactory) Name() string {
	return "Transform"
}

func (f *TransformNodeFactory) Description() string {
	return "Reshapes inputs into named outputs using dotted-path selectors; missing inputs are pulled on demand"
}

func (f *TransformNodeFactory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"mapping": map[string]any{
				"type":        "object",
				"description": "Output name to dotted path, e.g. {\"data\": \"data.items.0.name\"}",
				"additionalProperties": map[string]any{
					"type": "string",
				},
			},
		},
		"required": []string{"mapping"},
	}
}

func NewTransformNodeFactory() protocol.NodeFactory {
	return &TransformNodeFactory{}
}
