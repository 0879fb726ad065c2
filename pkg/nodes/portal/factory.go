package portal

import (
	"context"

	"github.com/joeleaver/flowgrid/pkg/models"
	"github.com/joeleaver/flowgrid/pkg/protocol"
)

// PortalNodeFactory creates portal relays for one direction.
type PortalNodeFactory struct {
	nodeType string
	name     string
}

func (f *PortalNodeFactory) Create(_ context.Context, id string, config map[string]any) (protocol.NodeFunction, error) {
	return NewPortalNode(id, f.nodeType, config)
}

func (f *PortalNodeFactory) ID() string {
	return f.nodeType
}

func (f *PortalNodeFactory) Name() string {
	return f.name
}

func (f *PortalNodeFactory) Description() string {
	return "Half of a portal pair; matching pairs are bridged into direct edges at graph build time"
}

func (f *PortalNodeFactory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"portal_id": map[string]any{
				"type":        "string",
				"description": "Pairing ID shared by a portal input and its portal outputs",
			},
		},
		"required": []string{"portal_id"},
	}
}

func NewPortalInputFactory() protocol.NodeFactory {
	return &PortalNodeFactory{nodeType: models.NodeTypePortalInput, name: "Portal Input"}
}

func NewPortalOutputFactory() protocol.NodeFactory {
	return &PortalNodeFactory{nodeType: models.NodeTypePortalOutput, name: "Portal Output"}
}
