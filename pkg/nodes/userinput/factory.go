package userinput

import (
	"context"

	"github.com/joeleaver/flowgrid/pkg/protocol"
)

// UserInputNodeFactory creates UserInputNode instances.
type UserInputNodeFactory struct{}

func (f *UserInputNodeFactory) Create(_ context.Context, id string, config map[string]any) (protocol.NodeFunction, error) {
	return NewUserInputNode(id, config)
}

func (f *UserInputNodeFactory) ID() string {
	return "userinput"
}

func (f *UserInputNodeFactory) Name() string {
	return "User Input"
}

func (f *UserInputNodeFactory) Description() string {
	return "Suspends the run until external input arrives, then forwards it and appends it to the conversation"
}

func (f *UserInputNodeFactory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"prompt": map[string]any{
				"type":        "string",
				"description": "Prompt surfaced on the event stream before waiting",
			},
		},
	}
}

func NewUserInputNodeFactory() protocol.NodeFactory {
	return &UserInputNodeFactory{}
}
