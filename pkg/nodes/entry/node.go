// Package entry provides the distinguished node type where a flow run
// begins.
package entry

import (
	"context"

	"github.com/joeleaver/flowgrid/pkg/models"
	"github.com/joeleaver/flowgrid/pkg/protocol"
)

// EntryNode seeds the run: it forwards trigger data on the data port and the
// main conversation context on the context port so downstream nodes can bind
// to either.
type EntryNode struct {
	id          string
	defaultData any
}

func NewEntryNode(id string, config map[string]any) (*EntryNode, error) {
	return &EntryNode{
		id:          id,
		defaultData: config["default_data"],
	}, nil
}

func (n *EntryNode) ID() string {
	return n.id
}

func (n *EntryNode) Type() string {
	return models.NodeTypeEntry
}

func (n *EntryNode) Run(_ context.Context, api protocol.NodeAPI, in protocol.NodeInput) (models.NodeResult, error) {
	data := in.Data
	if data == nil {
		data = n.defaultData
	}

	outputs := map[string]any{
		models.PortContext: api.Contexts().Main(),
	}
	if data != nil {
		outputs[models.PortData] = data
	}

	return models.Success(outputs), nil
}
