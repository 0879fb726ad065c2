// Package userinput provides a node that suspends the run indefinitely until
// external (human) input arrives.
package userinput

import (
	"context"
	"fmt"

	"github.com/joeleaver/flowgrid/pkg/models"
	"github.com/joeleaver/flowgrid/pkg/protocol"
)

type UserInputNode struct {
	id     string
	prompt string
}

func NewUserInputNode(id string, config map[string]any) (*UserInputNode, error) {
	prompt, _ := config["prompt"].(string)

	return &UserInputNode{id: id, prompt: prompt}, nil
}

func (n *UserInputNode) ID() string {
	return n.id
}

func (n *UserInputNode) Type() string {
	return "userinput"
}

// Run surfaces the prompt on the event stream, then waits. Cancellation
// resolves the wait with an empty value; the node then settles quietly and
// the engine stops the branch.
func (n *UserInputNode) Run(ctx context.Context, api protocol.NodeAPI, in protocol.NodeInput) (models.NodeResult, error) {
	if n.prompt != "" {
		api.EmitContent(n.prompt)
	}

	value, err := api.WaitForInput(ctx)
	if err != nil {
		return models.NodeResult{}, err
	}

	if value == nil {
		return models.Success(nil), nil
	}

	outputs := map[string]any{
		models.PortData: value,
	}

	if in.Context != nil {
		outputs[models.PortContext] = in.Context.Append("user", fmt.Sprint(value))
	}

	return models.Success(outputs), nil
}
