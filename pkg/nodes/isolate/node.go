// Package isolate provides the nodes that open and close isolated
// conversation contexts. Isolated contexts exist only through these explicit
// actions; the engine never garbage-collects them.
package isolate

import (
	"context"
	"fmt"

	"github.com/joeleaver/flowgrid/pkg/models"
	"github.com/joeleaver/flowgrid/pkg/protocol"
)

// OpenNode creates a fresh isolated context parented to the incoming one and
// forwards it on the context port, so the downstream branch runs against
// independent conversation state.
type OpenNode struct {
	id                 string
	provider           string
	model              string
	systemInstructions string
}

func NewOpenNode(id string, config map[string]any) (*OpenNode, error) {
	provider, _ := config["provider"].(string)
	model, _ := config["model"].(string)
	system, _ := config["system_instructions"].(string)

	return &OpenNode{
		id:                 id,
		provider:           provider,
		model:              model,
		systemInstructions: system,
	}, nil
}

func (n *OpenNode) ID() string {
	return n.id
}

func (n *OpenNode) Type() string {
	return "context:isolate"
}

func (n *OpenNode) Run(ctx context.Context, api protocol.NodeAPI, in protocol.NodeInput) (models.NodeResult, error) {
	parent := in.Context
	if parent == nil {
		parent = api.Contexts().Main()
	}

	provider := n.provider
	if provider == "" {
		provider = parent.Provider
	}

	model := n.model
	if model == "" {
		model = parent.Model
	}

	created := api.Contexts().CreateIsolated(ctx, provider, model, n.systemInstructions, parent.ID)

	outputs := map[string]any{
		models.PortContext: created,
	}
	if in.Data != nil {
		outputs[models.PortData] = in.Data
	}

	return models.Success(outputs), nil
}

// CloseNode releases the incoming isolated context and returns the caller's
// context so the merged path continues where the branch left off.
type CloseNode struct {
	id string
}

func NewCloseNode(id string, _ map[string]any) (*CloseNode, error) {
	return &CloseNode{id: id}, nil
}

func (n *CloseNode) ID() string {
	return n.id
}

func (n *CloseNode) Type() string {
	return "context:release"
}

func (n *CloseNode) Run(ctx context.Context, api protocol.NodeAPI, in protocol.NodeInput) (models.NodeResult, error) {
	if in.Context == nil || in.Context.EffectiveType() != models.ContextTypeIsolated {
		return models.Failure(fmt.Sprintf("node %s requires an isolated context input", n.id)), nil
	}

	parent := api.Contexts().Parent(in.Context.ID)
	api.Contexts().ReleaseIsolated(ctx, in.Context.ID)

	outputs := map[string]any{
		models.PortContext: parent,
	}
	if in.Data != nil {
		outputs[models.PortData] = in.Data
	}

	return models.Success(outputs), nil
}
