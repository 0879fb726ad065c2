package models

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
)

// Flow is a node/edge definition to execute. Immutable after construction.
type Flow struct {
	ID          string         `json:"id"    validate:"required"`
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Nodes       []*NodeSpec    `json:"nodes" validate:"required,min=1,dive"`
	Edges       []*EdgeSpec    `json:"edges" validate:"dive"`
	Variables   map[string]any `json:"variables,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// NodeByID returns the node with the given ID, if present.
func (f *Flow) NodeByID(id string) (*NodeSpec, bool) {
	for _, n := range f.Nodes {
		if n.ID == id {
			return n, true
		}
	}

	return nil, false
}

// Validate checks structural validity of the definition: required fields,
// unique node IDs, and edges referencing known nodes.
func (f *Flow) Validate() error {
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(f); err != nil {
		return fmt.Errorf("invalid flow definition: %w", err)
	}

	seen := make(map[string]bool, len(f.Nodes))
	for _, n := range f.Nodes {
		if seen[n.ID] {
			return fmt.Errorf("invalid flow definition: duplicate node id %q", n.ID)
		}

		seen[n.ID] = true
	}

	for _, e := range f.Edges {
		if !seen[e.Source] {
			return fmt.Errorf("invalid flow definition: edge %q references unknown source %q", e.ID, e.Source)
		}

		if !seen[e.Target] {
			return fmt.Errorf("invalid flow definition: edge %q references unknown target %q", e.ID, e.Target)
		}
	}

	return nil
}

// ParseFlow decodes and validates a flow definition from JSON.
func ParseFlow(data []byte) (*Flow, error) {
	var flow Flow
	if err := json.Unmarshal(data, &flow); err != nil {
		return nil, fmt.Errorf("failed to decode flow definition: %w", err)
	}

	if err := flow.Validate(); err != nil {
		return nil, err
	}

	return &flow, nil
}

// LoadFlow reads a flow definition from a JSON file.
func LoadFlow(path string) (*Flow, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read flow definition %s: %w", path, err)
	}

	return ParseFlow(data)
}
