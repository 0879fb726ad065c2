package entry

import (
	"context"

	"github.com/joeleaver/flowgrid/pkg/models"
	"github.com/joeleaver/flowgrid/pkg/protocol"
)

// EntryNodeFactory creates EntryNode instances.
type EntryNodeFactory struct{}

func (f *EntryNodeFactory) Create(_ context.Context, id string, config map[string]any) (protocol.NodeFunction, error) {
	return NewEntryNode(id, config)
}

func (f *EntryNodeFactory) ID() string {
	return models.NodeTypeEntry
}

func (f *EntryNodeFactory) Name() string {
	return "Entry"
}

func (f *EntryNodeFactory) Description() string {
	return "Starting point of a flow; forwards trigger data and the main conversation context"
}

func (f *EntryNodeFactory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"default_data": map[string]any{
				"description": "Data emitted when the run is started without trigger data",
			},
		},
	}
}

func NewEntryNodeFactory() protocol.NodeFactory {
	return &EntryNodeFactory{}
}
