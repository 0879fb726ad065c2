// Package portal provides the portalInput/portalOutput relay pair. The graph
// builder bridges matching pairs out of the adjacency maps, so these node
// functions almost never run; when they do (an unpaired portal), they relay
// inputs verbatim and never return a context, since portal relays must not
// mutate conversation state.
package portal

import (
	"context"
	"errors"
	"maps"

	"github.com/joeleaver/flowgrid/pkg/models"
	"github.com/joeleaver/flowgrid/pkg/protocol"
)

type PortalNode struct {
	id       string
	nodeType string
	portalID string
}

func NewPortalNode(id, nodeType string, config map[string]any) (*PortalNode, error) {
	portalID, _ := config["portal_id"].(string)
	if portalID == "" {
		return nil, errors.New("missing required field 'portal_id'")
	}

	return &PortalNode{id: id, nodeType: nodeType, portalID: portalID}, nil
}

func (n *PortalNode) ID() string {
	return n.id
}

func (n *PortalNode) Type() string {
	return n.nodeType
}

func (n *PortalNode) Run(_ context.Context, _ protocol.NodeAPI, in protocol.NodeInput) (models.NodeResult, error) {
	outputs := make(map[string]any, len(in.Inputs))
	maps.Copy(outputs, in.Inputs)
	delete(outputs, models.PortContext)

	return models.Success(outputs), nil
}
