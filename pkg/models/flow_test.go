package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlow(t *testing.T) {
	data := []byte(`{
		"id": "greeting",
		"name": "Greeting Flow",
		"nodes": [
			{"id": "start", "type": "entry"},
			{"id": "log", "type": "log", "config": {"level": "info"}}
		],
		"edges": [
			{"id": "e1", "source": "start", "target": "log", "source_port": "data", "target_port": "data"}
		]
	}`)

	flow, err := ParseFlow(data)
	require.NoError(t, err)
	assert.Equal(t, "greeting", flow.ID)
	assert.Len(t, flow.Nodes, 2)

	node, ok := flow.NodeByID("log")
	require.True(t, ok)
	assert.Equal(t, "log", node.Type)
}

func TestFlowValidateDuplicateNodeID(t *testing.T) {
	flow := &Flow{
		ID: "f",
		Nodes: []*NodeSpec{
			{ID: "a", Type: "entry"},
			{ID: "a", Type: "log"},
		},
	}

	err := flow.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate node id")
}

func TestFlowValidateUnknownEdgeEndpoint(t *testing.T) {
	flow := &Flow{
		ID: "f",
		Nodes: []*NodeSpec{
			{ID: "a", Type: "entry"},
		},
		Edges: []*EdgeSpec{
			{ID: "e1", Source: "a", Target: "ghost"},
		},
	}

	err := flow.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown target")
}

func TestFlowValidateRequiresNodes(t *testing.T) {
	flow := &Flow{ID: "f"}

	assert.Error(t, flow.Validate())
}
